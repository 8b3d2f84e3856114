package sqlitestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreyvit/lifedb"
)

type gadget struct {
	Name string `msgpack:"n"`
	Size int    `msgpack:"s"`
}

func (g gadget) RecordKey() string { return g.Name }

func TestStore_InsertQueryDelete(t *testing.T) {
	s, err := Open(":memory:", "gadgets")
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.QueryByKey("a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Insert("b", []byte("2")))
	require.NoError(t, s.Insert("a", []byte("1")))
	require.NoError(t, s.Insert("b", []byte("22")))

	data, found, err := s.QueryByKey("b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("22"), data)

	require.NoError(t, s.Delete("a"))
	require.NoError(t, s.Delete("missing"))

	all, err := s.QueryAll()
	require.NoError(t, err)
	assert.Equal(t, []lifedb.RawRecord{{Key: "b", Data: []byte("22")}}, all)
}

func TestStore_Closed(t *testing.T) {
	s, err := Open(":memory:", "gadgets")
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Insert("a", []byte("1")), lifedb.ErrClosed)
	_, err = s.QueryAll()
	assert.ErrorIs(t, err, lifedb.ErrClosed)
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open("", "gadgets")
	assert.ErrorContains(t, err, "path is required")
	_, err = Open(":memory:", "drop table;")
	assert.ErrorContains(t, err, "invalid table name")
}

func TestStore_BacksLifedbStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gadgets.sqlite")
	opt := lifedb.Options[gadget]{
		Kind:     "gadgets",
		Defaults: func() []gadget { return []gadget{{Name: "Demo", Size: 1}} },
	}

	storage, err := Open(path, "gadgets")
	require.NoError(t, err)
	s, err := lifedb.Open[gadget](storage, opt)
	require.NoError(t, err)
	require.NoError(t, s.Bootstrap())
	require.NoError(t, s.Create(gadget{Name: "C", Size: 3}))
	require.NoError(t, s.Create(gadget{Name: "A", Size: 2}))
	assert.ErrorIs(t, s.Create(gadget{Name: "A"}), lifedb.ErrAlreadyExists)
	require.NoError(t, s.Update(gadget{Name: "C", Size: 30}))
	require.NoError(t, s.Close())

	storage, err = Open(path, "gadgets")
	require.NoError(t, err)
	s, err = lifedb.Open[gadget](storage, opt)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Bootstrap())

	assert.Equal(t, []string{"A", "C", "Demo"}, s.AllKeys())
	c, err := s.Get("C")
	require.NoError(t, err)
	assert.Equal(t, gadget{Name: "C", Size: 30}, c)

	removed, err := s.Delete("A")
	require.NoError(t, err)
	assert.Equal(t, gadget{Name: "A", Size: 2}, removed)
	_, err = s.Get("A")
	assert.ErrorIs(t, err, lifedb.ErrNotFound)
}
