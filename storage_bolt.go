package lifedb

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

type BoltOptions struct {
	Timeout   time.Duration
	IsTesting bool
	MmapSize  int
}

type boltStorage struct {
	mu     sync.Mutex
	bdb    *bbolt.DB
	bucket []byte
}

// OpenBolt opens (creating if necessary) a Bolt file at path and returns
// a Storage over the bucket of the given name.
func OpenBolt(path, bucket string, opt BoltOptions) (Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bolt: empty bucket name")
	}
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.Timeout != 0 {
		bopt.Timeout = opt.Timeout
	}
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}

	s := &boltStorage{bdb: bdb, bucket: []byte(bucket)}
	err = bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(s.bucket)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("bolt: creating bucket %s: %w", bucket, err)
	}
	return s, nil
}

func (s *boltStorage) db() (*bbolt.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bdb == nil {
		return nil, ErrClosed
	}
	return s.bdb, nil
}

func (s *boltStorage) update(f func(b *bbolt.Bucket) error) error {
	bdb, err := s.db()
	if err != nil {
		return err
	}
	return bdb.Update(func(btx *bbolt.Tx) error {
		return f(nonNil(btx.Bucket(s.bucket)))
	})
}

func (s *boltStorage) view(f func(b *bbolt.Bucket) error) error {
	bdb, err := s.db()
	if err != nil {
		return err
	}
	return bdb.View(func(btx *bbolt.Tx) error {
		return f(nonNil(btx.Bucket(s.bucket)))
	})
}

func (s *boltStorage) Insert(key string, data []byte) error {
	return s.update(func(b *bbolt.Bucket) error {
		return b.Put([]byte(key), data)
	})
}

func (s *boltStorage) Delete(key string) error {
	return s.update(func(b *bbolt.Bucket) error {
		return b.Delete(unsafeBytesFromString(key))
	})
}

func (s *boltStorage) QueryAll() ([]RawRecord, error) {
	var result []RawRecord
	err := s.view(func(b *bbolt.Bucket) error {
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			// Bolt memory is only valid for the life of the transaction.
			result = append(result, RawRecord{Key: string(k), Data: slices.Clone(v)})
		}
		return nil
	})
	return result, err
}

func (s *boltStorage) QueryByKey(key string) ([]byte, bool, error) {
	var data []byte
	err := s.view(func(b *bbolt.Bucket) error {
		if v := b.Get(unsafeBytesFromString(key)); v != nil {
			data = slices.Clone(v)
		}
		return nil
	})
	return data, data != nil, err
}

func (s *boltStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bdb == nil {
		return nil
	}
	err := s.bdb.Close()
	s.bdb = nil
	if err != nil && !errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return fmt.Errorf("bolt: closing: %w", err)
	}
	return nil
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
