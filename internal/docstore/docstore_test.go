package docstore

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddGet(t *testing.T) {
	s := openTest(t)
	id, err := s.Add("data", Document{"name": "pi", "value": "3.14"})
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err, "ids are uuids")

	doc, err := s.Get("data", id)
	require.NoError(t, err)
	assert.Equal(t, Document{"id": id, "name": "pi", "value": "3.14"}, doc)
}

func TestGetMissing(t *testing.T) {
	s := openTest(t)
	_, err := s.Get("data", "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPutMerge(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Put("calc", "x", Document{"a": 1.0, "b": "two"}, false))
	require.NoError(t, s.Put("calc", "x", Document{"b": "three", "c": true}, true))
	doc, err := s.Get("calc", "x")
	require.NoError(t, err)
	assert.Equal(t, Document{"id": "x", "a": 1.0, "b": "three", "c": true}, doc)

	require.NoError(t, s.Put("calc", "x", Document{"d": "only"}, false))
	doc, err = s.Get("calc", "x")
	require.NoError(t, err)
	assert.Equal(t, Document{"id": "x", "d": "only"}, doc)

	// Merging into a missing document creates it.
	require.NoError(t, s.Put("calc", "y", Document{"e": "new"}, true))
	doc, err = s.Get("calc", "y")
	require.NoError(t, err)
	assert.Equal(t, Document{"id": "y", "e": "new"}, doc)
}

func TestPutIgnoresID(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Put("calc", "x", Document{"id": "other", "v": "1"}, false))
	doc, err := s.Get("calc", "x")
	require.NoError(t, err)
	assert.Equal(t, "x", doc["id"])
	_, err = s.Get("calc", "other")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Put("calc", "x", Document{"id": "only"}, false), ErrEmpty)
	assert.ErrorIs(t, s.Put("calc", "x", Document{}, true), ErrEmpty)
}

func TestList(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Put("a", "2", Document{"n": "two"}, false))
	require.NoError(t, s.Put("a", "1", Document{"n": "one"}, false))
	require.NoError(t, s.Put("ab", "3", Document{"n": "other collection"}, false))

	docs, err := s.List("a")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Document{"id": "1", "n": "one"}, docs[0])
	assert.Equal(t, Document{"id": "2", "n": "two"}, docs[1])

	docs, err = s.List("empty")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestDelete(t *testing.T) {
	s := openTest(t)
	require.NoError(t, s.Put("data", "x", Document{"v": "1"}, false))
	require.NoError(t, s.Delete("data", "x"))
	_, err := s.Get("data", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete("data", "x"), ErrNotFound)
}

func TestInvalidKeys(t *testing.T) {
	s := openTest(t)
	var kerr *KeyError
	_, err := s.Get("", "x")
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "collection", kerr.What)
	assert.Equal(t, "collection is required", err.Error())

	_, err = s.Get("a/b", "x")
	require.ErrorAs(t, err, &kerr)
	assert.Contains(t, err.Error(), "must not contain /")

	err = s.Put("data", "x/y", Document{"v": 1}, false)
	require.ErrorAs(t, err, &kerr)
	assert.Equal(t, "id", kerr.What)

	assert.ErrorAs(t, s.Delete("data", ""), &kerr)
	_, err = s.List("")
	assert.ErrorAs(t, err, &kerr)
}

func TestPersistent(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(Config{Path: dir})
	require.NoError(t, err)
	require.NoError(t, s.Put("data", "kept", Document{"v": "1"}, false))
	require.NoError(t, s.Close())

	s, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer s.Close()
	doc, err := s.Get("data", "kept")
	require.NoError(t, err)
	assert.Equal(t, "1", doc["v"])

	_, err = Open(Config{})
	assert.Error(t, err)
}
