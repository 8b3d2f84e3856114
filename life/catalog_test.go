package life

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/andreyvit/lifedb"
)

func TestCatalog_Backends(t *testing.T) {
	for _, backend := range []Backend{BoltBackend, SQLiteBackend, MemoryBackend} {
		t.Run(string(backend), func(t *testing.T) {
			dir := t.TempDir()
			opt := CatalogOptions{DataDir: dir, Backend: backend, NoSync: true, Logf: t.Logf}
			cat, err := NewCatalog(opt)
			if err != nil {
				t.Fatal(err)
			}
			worlds, err := cat.Worlds.Get()
			if err != nil {
				t.Fatal(err)
			}
			glider := World{Name: "Glider", Constants: ConwayConstants, Distribution: []Cell{{0, 1}, {1, 2}, {2, 0}, {2, 1}, {2, 2}}}
			if err := worlds.Create(glider); err != nil {
				t.Fatal(err)
			}
			if cat.Patterns.IsReady() {
				t.Errorf("patterns opened without being requested")
			}
			if err := cat.Close(); err != nil {
				t.Fatal(err)
			}
			if backend == MemoryBackend {
				return
			}

			// Reopen and check what survived.
			cat, err = NewCatalog(opt)
			if err != nil {
				t.Fatal(err)
			}
			defer cat.Close()
			worlds = cat.Worlds.MustGet()
			if diff := cmp.Diff([]string{"Glider", DemoWorld}, worlds.AllKeys()); diff != "" {
				t.Errorf("keys mismatch (-want +got):\n%s", diff)
			}
			got, err := worlds.Get("Glider")
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(glider, got); diff != "" {
				t.Errorf("Glider mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(DefaultPatterns(), cat.Patterns.MustGet().All()); diff != "" {
				t.Errorf("patterns mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCatalog_FilesPerKind(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	cat, err := NewCatalog(CatalogOptions{DataDir: dir, Encoding: lifedb.JSON, NoSync: true})
	if err != nil {
		t.Fatal(err)
	}
	cat.Worlds.MustGet()
	cat.Patterns.MustGet()
	if err := cat.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"worlds.db", "patterns.db"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	if _, err := NewCatalog(CatalogOptions{Backend: "redis", DataDir: "x"}); err == nil {
		t.Errorf("unknown backend accepted")
	}
	if _, err := NewCatalog(CatalogOptions{Backend: SQLiteBackend}); err == nil {
		t.Errorf("missing data dir accepted")
	}
	if _, err := NewCatalog(CatalogOptions{Backend: MemoryBackend}); err != nil {
		t.Errorf("memory backend without data dir: %v", err)
	}
}

func TestCatalog_RecordsAreCopies(t *testing.T) {
	cat, err := NewCatalog(CatalogOptions{Backend: MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	worlds := cat.Worlds.MustGet()
	w := World{Name: "W", Constants: []int{2, 3, 3}, Distribution: []Cell{{1, 1}}}
	if err := worlds.Create(w); err != nil {
		t.Fatal(err)
	}
	w.Constants[0] = 7
	got, _ := worlds.Get("W")
	got.Constants[1] = 8
	got.Distribution[0].Row = 8
	got, _ = worlds.Get("W")
	if diff := cmp.Diff([]int{2, 3, 3}, got.Constants); diff != "" {
		t.Errorf("constants changed without an update (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Cell{{1, 1}}, got.Distribution); diff != "" {
		t.Errorf("distribution changed without an update (-want +got):\n%s", diff)
	}

	patterns := cat.Patterns.MustGet()
	patterns.All()[0].Scheme[0][0] = 1
	p, _ := patterns.Get(DemoPattern)
	if diff := cmp.Diff(DefaultPatterns()[0], p); diff != "" {
		t.Errorf("pattern changed without an update (-want +got):\n%s", diff)
	}
}
