package lifedb

import (
	"fmt"
	"sync"
)

// Lazy is the single access point to the Store of one entity kind. The store
// is opened and seeded on the first call to Get; later calls return the same
// instance. Construct one per kind at startup and pass it to whoever needs it.
type Lazy[R Record] struct {
	open func() (Storage, error)
	opt  Options[R]

	mu    sync.Mutex
	store *Store[R]
}

func NewLazy[R Record](open func() (Storage, error), opt Options[R]) *Lazy[R] {
	return &Lazy[R]{open: open, opt: opt}
}

// Get returns the ready Store, opening and bootstrapping it if needed.
// If bootstrap fails, the storage is closed and the next Get starts over.
func (l *Lazy[R]) Get() (*Store[R], error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}

	storage, err := l.open()
	if err != nil {
		return nil, fmt.Errorf("%s: opening storage: %w", l.opt.Kind, err)
	}
	store, err := Open(storage, l.opt)
	if err != nil {
		storage.Close()
		return nil, err
	}
	if err := store.Bootstrap(); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s: bootstrap: %w", l.opt.Kind, err)
	}
	l.store = store
	return store, nil
}

// MustGet is like Get, but panics on failure.
func (l *Lazy[R]) MustGet() *Store[R] {
	return must(l.Get())
}

func (l *Lazy[R]) IsReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store != nil
}

// Close closes the store if it has been opened. The accessor stays Ready, so
// subsequent operations on the returned store fail with ErrClosed.
func (l *Lazy[R]) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
