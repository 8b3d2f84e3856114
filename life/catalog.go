// Package life holds the Game of Life records (worlds and patterns) and the
// catalog giving access to their stores.
package life

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/andreyvit/lifedb"
	"github.com/andreyvit/lifedb/sqlitestore"
)

const (
	WorldsKind   = "worlds"
	PatternsKind = "patterns"
)

type Backend string

const (
	BoltBackend   Backend = "bolt"
	SQLiteBackend Backend = "sqlite"
	MemoryBackend Backend = "memory"
)

func (b Backend) Valid() bool {
	switch b {
	case BoltBackend, SQLiteBackend, MemoryBackend:
		return true
	}
	return false
}

type CatalogOptions struct {
	DataDir  string
	Backend  Backend
	Encoding lifedb.Encoding

	BoltTimeout time.Duration
	NoSync      bool
	MmapSize    int

	Logf    func(format string, args ...any)
	Verbose bool
}

// Catalog holds the single access point of each entity kind. Nothing is
// opened until a store is first requested.
type Catalog struct {
	Worlds   *lifedb.Lazy[World]
	Patterns *lifedb.Lazy[Pattern]
}

func NewCatalog(opt CatalogOptions) (*Catalog, error) {
	if opt.Backend == "" {
		opt.Backend = BoltBackend
	}
	if !opt.Backend.Valid() {
		return nil, fmt.Errorf("unknown backend %q", opt.Backend)
	}
	if opt.Backend != MemoryBackend && opt.DataDir == "" {
		return nil, fmt.Errorf("data dir is required for %s backend", opt.Backend)
	}
	return &Catalog{
		Worlds: lifedb.NewLazy(storageOpener(opt, WorldsKind), lifedb.Options[World]{
			Kind:     WorldsKind,
			Defaults: DefaultWorlds,
			Marker:   DemoWorld,
			Encoding: opt.Encoding,
			Logf:     opt.Logf,
			Verbose:  opt.Verbose,
		}),
		Patterns: lifedb.NewLazy(storageOpener(opt, PatternsKind), lifedb.Options[Pattern]{
			Kind:     PatternsKind,
			Defaults: DefaultPatterns,
			Marker:   DemoPattern,
			Encoding: opt.Encoding,
			Logf:     opt.Logf,
			Verbose:  opt.Verbose,
		}),
	}, nil
}

func storageOpener(opt CatalogOptions, kind string) func() (lifedb.Storage, error) {
	return func() (lifedb.Storage, error) {
		if opt.Backend == MemoryBackend {
			return lifedb.NewMemStorage(), nil
		}
		if err := os.MkdirAll(opt.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		switch opt.Backend {
		case BoltBackend:
			return lifedb.OpenBolt(filepath.Join(opt.DataDir, kind+".db"), kind, lifedb.BoltOptions{
				Timeout:   opt.BoltTimeout,
				IsTesting: opt.NoSync,
				MmapSize:  opt.MmapSize,
			})
		case SQLiteBackend:
			s, err := sqlitestore.Open(filepath.Join(opt.DataDir, kind+".sqlite"), kind)
			if err != nil {
				return nil, err
			}
			return s, nil
		default:
			panic("unreachable")
		}
	}
}

// Close closes both stores, whichever of them have been opened.
func (c *Catalog) Close() error {
	return errors.Join(c.Worlds.Close(), c.Patterns.Close())
}
