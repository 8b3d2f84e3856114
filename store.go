package lifedb

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Record is anything a Store can hold. Keys are compared ordinally and are
// immutable once the record is stored.
type Record interface {
	RecordKey() string
}

type Options[R Record] struct {
	// Kind names the entity collection in errors and logs ("worlds").
	Kind string

	// Defaults returns the seed records. It's called every time a store needs
	// seeding, so it must return fresh values.
	Defaults func() []R

	// Marker is the key whose presence means defaults have been seeded.
	// Empty means the first default's key.
	Marker string

	Encoding Encoding

	Logf    func(format string, args ...any)
	Verbose bool
}

// ValueMeta is the bookkeeping stored alongside each record.
type ValueMeta struct {
	ModCount uint64
	Encoding Encoding
}

// Store is the CRUD owner of one entity kind. The ordered index is the
// cache-of-record: it's loaded from Storage once and then kept in sync with
// every mutation, which always hits Storage first.
type Store[R Record] struct {
	kind     string
	defaults func() []R
	marker   string
	encoding Encoding
	logf     func(format string, args ...any)
	verbose  bool

	mu      sync.RWMutex
	idx     orderedIndex[R]
	storage Storage

	ReadCount   atomic.Uint64
	CreateCount atomic.Uint64
	UpdateCount atomic.Uint64
	DeleteCount atomic.Uint64
	ResetCount  atomic.Uint64
}

// Open builds a Store over storage and loads every durable record into the
// ordered index. It does not seed defaults; see Bootstrap.
func Open[R Record](storage Storage, opt Options[R]) (*Store[R], error) {
	if opt.Kind == "" {
		panic("lifedb: Options.Kind is required")
	}
	s := &Store[R]{
		kind:     opt.Kind,
		defaults: opt.Defaults,
		marker:   opt.Marker,
		encoding: opt.Encoding,
		logf:     opt.Logf,
		verbose:  opt.Verbose,
		storage:  storage,
	}
	if s.logf == nil {
		s.logf = func(format string, args ...any) {}
	}
	if s.marker == "" && s.defaults != nil {
		if d := s.defaults(); len(d) > 0 {
			s.marker = d[0].RecordKey()
		}
	}

	raws, err := storage.QueryAll()
	if err != nil {
		return nil, fmt.Errorf("%s: loading: %w", s.kind, err)
	}
	records := make([]R, 0, len(raws))
	for _, raw := range raws {
		r, _, err := s.decode(raw.Data)
		if err != nil {
			return nil, recordErr(s.kind, "load", raw.Key, err)
		}
		if k := r.RecordKey(); k != raw.Key {
			return nil, recordErr(s.kind, "load", raw.Key, fmt.Errorf("stored under a different key than its own %q", k))
		}
		records = append(records, r)
	}
	s.idx.load(records)
	if s.verbose {
		s.logf("db: OPEN %s => %d records", s.kind, s.idx.len())
	}
	return s, nil
}

func (s *Store[R]) Kind() string {
	return s.kind
}

// Bootstrap seeds the default dataset unless the marker record is present.
// A failure removes whatever part of the dataset it managed to insert.
func (s *Store[R]) Bootstrap() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return recordErr(s.kind, "bootstrap", "", ErrClosed)
	}
	if s.marker == "" {
		return nil
	}
	if pos := s.idx.locate(s.marker); pos > 0 {
		if s.verbose {
			s.logf("db: BOOTSTRAP.NOOP %s/%s", s.kind, s.marker)
		}
		return nil
	}

	seeded, err := s.seedLocked()
	if err != nil {
		return errors.Join(err, s.unseedLocked(seeded))
	}
	if s.verbose {
		s.logf("db: BOOTSTRAP %s => %d defaults", s.kind, len(seeded))
	}
	return nil
}

// seedLocked inserts every default record that isn't already present and
// returns the keys it inserted.
func (s *Store[R]) seedLocked() ([]string, error) {
	if s.defaults == nil {
		return nil, nil
	}
	var seeded []string
	for _, r := range s.defaults() {
		key := r.RecordKey()
		pos := s.idx.locate(key)
		if pos > 0 {
			continue
		}
		if err := s.insertLocked(pos, r); err != nil {
			return seeded, recordErr(s.kind, "seed", key, err)
		}
		seeded = append(seeded, key)
	}
	return seeded, nil
}

// unseedLocked removes the given freshly seeded keys. A key whose deletion
// fails stays in the index, matching Storage.
func (s *Store[R]) unseedLocked(keys []string) error {
	var errs []error
	for _, key := range keys {
		pos := s.idx.locate(key)
		if pos <= 0 {
			continue
		}
		if err := s.storage.Delete(key); err != nil {
			errs = append(errs, recordErr(s.kind, "rollback", key, err))
			continue
		}
		s.idx.removeAt(pos)
	}
	return errors.Join(errs...)
}

// Get returns a copy of the record stored under key.
func (s *Store[R]) Get(key string) (R, error) {
	var zero R
	if key == "" {
		return zero, recordErr(s.kind, "get", key, ErrInvalidKey)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.storage == nil {
		return zero, recordErr(s.kind, "get", key, ErrClosed)
	}
	s.ReadCount.Add(1)
	r, found := s.idx.get(key)
	if !found {
		if s.verbose {
			s.logf("db: GET.NOTFOUND %s/%s", s.kind, key)
		}
		return zero, recordErr(s.kind, "get", key, ErrNotFound)
	}
	if s.verbose {
		s.logf("db: GET %s/%s", s.kind, key)
	}
	return s.detach(r), nil
}

// GetRecord looks up the stored record with the same key as r.
func (s *Store[R]) GetRecord(r R) (R, error) {
	return s.Get(r.RecordKey())
}

func (s *Store[R]) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.locate(key) > 0
}

// All returns every record in ascending key order.
func (s *Store[R]) All() []R {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.ReadCount.Add(1)
	records := s.idx.records()
	for i, r := range records {
		records[i] = s.detach(r)
	}
	return records
}

func (s *Store[R]) AllKeys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.keys()
}

func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.len()
}

// Locate reports the index position of key using the same encoding as the
// Locate function: positive when found, negated insertion point otherwise.
func (s *Store[R]) Locate(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx.locate(key)
}

func (s *Store[R]) Create(r R) error {
	key := r.RecordKey()
	if key == "" {
		return recordErr(s.kind, "create", key, ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return recordErr(s.kind, "create", key, ErrClosed)
	}

	pos := s.idx.locate(key)
	if pos > 0 {
		if s.verbose {
			s.logf("db: CREATE.EXISTS %s/%s", s.kind, key)
		}
		return recordErr(s.kind, "create", key, ErrAlreadyExists)
	}
	if err := s.insertLocked(pos, r); err != nil {
		return recordErr(s.kind, "create", key, err)
	}
	s.CreateCount.Add(1)
	if s.verbose {
		s.logf("db: CREATE %s/%s at %d", s.kind, key, -pos)
	}
	return nil
}

// insertLocked writes r to Storage, then indexes a copy decoded from the
// written bytes, so the index never shares memory with the caller.
func (s *Store[R]) insertLocked(pos int, r R) error {
	raw, stored, err := s.encodeDetached(r, 1)
	if err != nil {
		return err
	}
	if err := s.storage.Insert(r.RecordKey(), raw); err != nil {
		return err
	}
	s.idx.insertAt(pos, stored)
	return nil
}

// Update replaces the payload of the stored record sharing r's key. The
// record keeps its key and its position.
func (s *Store[R]) Update(r R) error {
	key := r.RecordKey()
	if key == "" {
		return recordErr(s.kind, "update", key, ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return recordErr(s.kind, "update", key, ErrClosed)
	}

	pos := s.idx.locate(key)
	if pos <= 0 {
		if s.verbose {
			s.logf("db: UPDATE.NOTFOUND %s/%s", s.kind, key)
		}
		return recordErr(s.kind, "update", key, ErrNotFound)
	}

	meta, err := s.metaLocked(key)
	if err != nil {
		return recordErr(s.kind, "update", key, err)
	}
	raw, stored, err := s.encodeDetached(r, meta.ModCount+1)
	if err != nil {
		return recordErr(s.kind, "update", key, err)
	}
	if err := s.storage.Insert(key, raw); err != nil {
		return recordErr(s.kind, "update", key, err)
	}
	s.idx.replaceAt(pos, stored)
	s.UpdateCount.Add(1)
	if s.verbose {
		s.logf("db: UPDATE %s/%s => m=%d", s.kind, key, meta.ModCount+1)
	}
	return nil
}

// Delete removes the record stored under key and returns it.
func (s *Store[R]) Delete(key string) (R, error) {
	var zero R
	if key == "" {
		return zero, recordErr(s.kind, "delete", key, ErrInvalidKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return zero, recordErr(s.kind, "delete", key, ErrClosed)
	}

	pos := s.idx.locate(key)
	if pos <= 0 {
		if s.verbose {
			s.logf("db: DELETE.NOTFOUND %s/%s", s.kind, key)
		}
		return zero, recordErr(s.kind, "delete", key, ErrNotFound)
	}
	if err := s.storage.Delete(key); err != nil {
		return zero, recordErr(s.kind, "delete", key, err)
	}
	r := s.idx.removeAt(pos)
	s.DeleteCount.Add(1)
	if s.verbose {
		s.logf("db: DELETE %s/%s", s.kind, key)
	}
	return r, nil
}

// DeleteAll removes every record, then seeds the default dataset again, so
// the store is never left empty when it has defaults. If seeding fails, the
// defaults it managed to insert are removed again and the error is returned;
// the store is then empty, and a later DeleteAll or Bootstrap seeds it.
func (s *Store[R]) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return recordErr(s.kind, "deleteAll", "", ErrClosed)
	}

	// Delete from the tail so that a storage failure leaves a sorted prefix.
	for n := s.idx.len(); n > 0; n-- {
		key := s.idx.items[n-1].RecordKey()
		if err := s.storage.Delete(key); err != nil {
			return recordErr(s.kind, "deleteAll", key, err)
		}
		s.idx.removeAt(n)
	}
	s.idx.reset()

	seeded, err := s.seedLocked()
	if err != nil {
		return errors.Join(err, s.unseedLocked(seeded))
	}
	s.ResetCount.Add(1)
	if s.verbose {
		s.logf("db: DELETEALL %s => %d defaults", s.kind, len(seeded))
	}
	return nil
}

// Meta returns the stored bookkeeping of the record under key.
func (s *Store[R]) Meta(key string) (ValueMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.storage == nil {
		return ValueMeta{}, recordErr(s.kind, "meta", key, ErrClosed)
	}
	meta, err := s.metaLocked(key)
	if err != nil {
		return meta, recordErr(s.kind, "meta", key, err)
	}
	return meta, nil
}

func (s *Store[R]) metaLocked(key string) (ValueMeta, error) {
	raw, found, err := s.storage.QueryByKey(key)
	if err != nil {
		return ValueMeta{}, err
	}
	if !found {
		return ValueMeta{}, ErrNotFound
	}
	var vle value
	if err := vle.decode(raw); err != nil {
		return ValueMeta{}, err
	}
	return ValueMeta{ModCount: vle.ModCount, Encoding: vle.Flags.encoding()}, nil
}

// Close releases the storage handle. Closing a closed store is a no-op.
func (s *Store[R]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.storage == nil {
		return nil
	}
	err := s.storage.Close()
	s.storage = nil
	if s.verbose {
		s.logf("db: CLOSE %s", s.kind)
	}
	return err
}

func (s *Store[R]) encode(r R, modCount uint64) ([]byte, error) {
	data, err := s.encoding.encode(nil, r)
	if err != nil {
		return nil, err
	}
	return encodeValue(s.encoding.flags(), modCount, data), nil
}

// encodeDetached encodes r and decodes the result back, returning the bytes
// to store and the copy to index.
func (s *Store[R]) encodeDetached(r R, modCount uint64) ([]byte, R, error) {
	raw, err := s.encode(r, modCount)
	if err != nil {
		var zero R
		return nil, zero, err
	}
	stored, _, err := s.decode(raw)
	if err != nil {
		return nil, stored, err
	}
	return raw, stored, nil
}

// detach returns a copy of an indexed record that the caller may modify.
// Records implementing Clone() R are cloned; others take a trip through
// the store's encoding.
func (s *Store[R]) detach(r R) R {
	if c, ok := any(r).(interface{ Clone() R }); ok {
		return c.Clone()
	}
	data, err := s.encoding.encode(nil, r)
	if err != nil {
		panic(fmt.Errorf("%s: re-encoding indexed record %q: %w", s.kind, r.RecordKey(), err))
	}
	var cp R
	if err := s.encoding.decode(data, &cp); err != nil {
		panic(fmt.Errorf("%s: decoding indexed record %q: %w", s.kind, r.RecordKey(), err))
	}
	return cp
}

func (s *Store[R]) decode(raw []byte) (R, ValueMeta, error) {
	var r R
	var vle value
	if err := vle.decode(raw); err != nil {
		return r, ValueMeta{}, err
	}
	enc := vle.Flags.encoding()
	if err := enc.decode(vle.Data, &r); err != nil {
		return r, ValueMeta{}, err
	}
	return r, ValueMeta{ModCount: vle.ModCount, Encoding: enc}, nil
}
