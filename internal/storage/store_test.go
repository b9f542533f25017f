package storage

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreGetSet(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, DBFileName, filepath.Base(s.Path()))
	require.NoError(t, s.Ping())

	v, err := s.Get(BucketUsers, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, s.Set(BucketUsers, "k", []byte("v")))
	v, err = s.Get(BucketUsers, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, s.Delete(BucketUsers, "k"))
	v, err = s.Get(BucketUsers, "k")
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = s.Get([]byte("nope"), "k")
	assert.Error(t, err)
}

func TestStoreJSON(t *testing.T) {
	s := newTestStore(t)

	type rec struct {
		Name string `json:"name"`
	}
	require.NoError(t, s.SetJSON(BucketUsers, "a", rec{Name: "alice"}))

	var got rec
	require.NoError(t, s.GetJSON(BucketUsers, "a", &got))
	assert.Equal(t, "alice", got.Name)

	var empty rec
	require.NoError(t, s.GetJSON(BucketUsers, "b", &empty))
	assert.Empty(t, empty.Name)
}

func TestStoreAppendRecentTrim(t *testing.T) {
	s := newTestStore(t)

	for i := 1; i <= 5; i++ {
		seq, err := s.AppendJSON(BucketHistory, map[string]int{"n": i})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), seq)
	}

	collect := func(limit int) []int {
		var out []int
		require.NoError(t, s.Recent(BucketHistory, limit, func(v []byte) error {
			var m map[string]int
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			out = append(out, m["n"])
			return nil
		}))
		return out
	}

	assert.Equal(t, []int{5, 4, 3}, collect(3))
	assert.Equal(t, []int{5, 4, 3, 2, 1}, collect(100))

	removed, err := s.Trim(BucketHistory, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.Equal(t, []int{5, 4}, collect(100))

	removed, err = s.Trim(BucketHistory, 10)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestStoreReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.Set(BucketUsers, "persist", []byte("1")))
	require.NoError(t, s.Close())

	s, err = NewStore(dir)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(BucketUsers, "persist")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}
