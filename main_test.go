package lifedb

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/goleak"
)

type Widget struct {
	Name  string `msgpack:"n" json:"name"`
	Color string `msgpack:"c" json:"color"`
	Size  int    `msgpack:"s" json:"size"`
}

func (w Widget) RecordKey() string {
	return w.Name
}

func defaultWidgets() []Widget {
	return []Widget{
		{Name: "Demo", Color: "red", Size: 1},
		{Name: "Aardvark", Color: "grey", Size: 7},
	}
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type backend struct {
	name string
	open func(t testing.TB, dir string) Storage
}

var backends = []backend{
	{"mem", func(t testing.TB, dir string) Storage {
		return NewMemStorage()
	}},
	{"bolt", func(t testing.TB, dir string) Storage {
		return must(OpenBolt(filepath.Join(dir, "widgets.db"), "widgets", BoltOptions{IsTesting: true}))
	}},
}

func forEachBackend(t *testing.T, f func(t *testing.T, b backend)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			f(t, b)
		})
	}
}

// setup opens an unseeded store with no defaults.
func setup(t testing.TB, b backend, keys ...string) *Store[Widget] {
	t.Helper()
	s := must(Open(b.open(t, t.TempDir()), Options[Widget]{
		Kind:    "widgets",
		Logf:    t.Logf,
		Verbose: testing.Verbose(),
	}))
	t.Cleanup(func() { ensure(s.Close()) })
	for _, k := range keys {
		ensure(s.Create(Widget{Name: k, Color: "white"}))
	}
	return s
}

// setupSeeded opens a store with defaultWidgets and bootstraps it.
func setupSeeded(t testing.TB, b backend) *Store[Widget] {
	t.Helper()
	s := must(Open(b.open(t, t.TempDir()), Options[Widget]{
		Kind:     "widgets",
		Defaults: defaultWidgets,
		Logf:     t.Logf,
		Verbose:  testing.Verbose(),
	}))
	t.Cleanup(func() { ensure(s.Close()) })
	ensure(s.Bootstrap())
	return s
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func isErr(t testing.TB, err, target error) {
	if !errors.Is(err, target) {
		t.Helper()
		t.Errorf("** got error %v, wanted %v", err, target)
	}
}
