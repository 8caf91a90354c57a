// Package storetest holds behaviour checks every types.Store implementation
// must pass. Backends call Run from their own tests with a constructor that
// returns a fresh, empty store.
package storetest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Factory returns a fresh, empty store. Cleanup is registered on t.
type Factory func(t *testing.T) types.Store

// Run executes the full behaviour suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("CreateThenRead", func(t *testing.T) { testCreateThenRead(t, newStore(t)) })
	t.Run("UpdateAndDelete", func(t *testing.T) { testUpdateAndDelete(t, newStore(t)) })
	t.Run("PeekNextID", func(t *testing.T) { testPeekNextID(t, newStore(t)) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, newStore(t)) })
	t.Run("MonotonicAllocation", func(t *testing.T) { testMonotonicAllocation(t, newStore(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newStore(t)) })
	t.Run("DeleteIsFinal", func(t *testing.T) { testDeleteIsFinal(t, newStore(t)) })
	t.Run("UnknownIDOnEmptyStore", func(t *testing.T) { testUnknownIDOnEmptyStore(t, newStore(t)) })
	t.Run("FailedUpdateDoesNotCreate", func(t *testing.T) { testFailedUpdateDoesNotCreate(t, newStore(t)) })
	t.Run("ReadReturnsCopy", func(t *testing.T) { testReadReturnsCopy(t, newStore(t)) })
}

func testCreateThenRead(t *testing.T, s types.Store) {
	id, err := s.Create("Write spec")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)

	got, err := s.Read(1)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "Write spec", Status: false}, got)
}

func testUpdateAndDelete(t *testing.T, s types.Store) {
	id, err := s.Create("Write spec")
	require.NoError(t, err)

	title, status := "Write spec v2", true
	require.NoError(t, s.Update(id, types.Update{Title: &title, Status: &status}))

	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "Write spec v2", Status: true}, got)

	require.NoError(t, s.Delete(id))
	_, err = s.Read(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func testPeekNextID(t *testing.T, s types.Store) {
	next, err := s.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next)

	_, err = s.Create("one")
	require.NoError(t, err)

	next, err = s.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), next)

	// Peeking twice allocates nothing.
	again, err := s.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, next, again)
}

func testRoundTrip(t *testing.T, s types.Store) {
	titles := []string{"", "plain", "with spaces and punctuation!", "ünïcødé ✓", "line\nbreak", `"quoted"`}
	for _, title := range titles {
		id, err := s.Create(title)
		require.NoError(t, err)

		got, err := s.Read(id)
		require.NoError(t, err)
		assert.Equal(t, types.Todo{ID: id, Title: title, Status: false}, got)
	}
}

func testMonotonicAllocation(t *testing.T, s types.Store) {
	var last uint32
	seen := make(map[uint32]bool)
	for i := 0; i < 20; i++ {
		id, err := s.Create("item")
		require.NoError(t, err)
		assert.Greater(t, id, last, "identifiers must strictly increase")
		assert.False(t, seen[id], "identifier %d reused", id)
		seen[id] = true
		last = id

		// Delete every other record, including the newest one.
		if i%2 == 1 {
			require.NoError(t, s.Delete(id))
		}
	}

	next, err := s.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, last+1, next, "deletes must not lower the counter")
}

func testPartialUpdate(t *testing.T, s types.Store) {
	id, err := s.Create("original")
	require.NoError(t, err)

	require.NoError(t, s.Update(id, types.SetTitle("renamed")))
	got, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: id, Title: "renamed", Status: false}, got)

	require.NoError(t, s.Update(id, types.SetStatus(true)))
	got, err = s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: id, Title: "renamed", Status: true}, got)

	require.NoError(t, s.Update(id, types.Update{}))
	got, err = s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: id, Title: "renamed", Status: true}, got)

	require.NoError(t, s.Update(id, types.SetStatus(false)))
	got, err = s.Read(id)
	require.NoError(t, err)
	assert.False(t, got.Status)
}

func testDeleteIsFinal(t *testing.T, s types.Store) {
	id, err := s.Create("to be deleted")
	require.NoError(t, err)
	require.NoError(t, s.Delete(id))

	_, err = s.Read(id)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, s.Delete(id), types.ErrNotFound)
	assert.ErrorIs(t, s.Update(id, types.SetTitle("ghost")), types.ErrNotFound)

	for i := 0; i < 5; i++ {
		other, err := s.Create("later")
		require.NoError(t, err)
		assert.NotEqual(t, id, other)
	}
}

func testUnknownIDOnEmptyStore(t *testing.T, s types.Store) {
	_, err := s.Read(999)
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, s.Delete(999), types.ErrNotFound)
	assert.ErrorIs(t, s.Update(999, types.Update{}), types.ErrNotFound)

	_, err = s.Read(0)
	assert.ErrorIs(t, err, types.ErrNotFound)

	// Failed calls leave the counter alone.
	next, err := s.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), next)

	assert.False(t, errors.Is(types.ErrAlreadyExists, types.ErrNotFound))
}

func testFailedUpdateDoesNotCreate(t *testing.T, s types.Store) {
	require.ErrorIs(t, s.Update(1, types.SetTitle("upsert?")), types.ErrNotFound)

	_, err := s.Read(1)
	assert.ErrorIs(t, err, types.ErrNotFound)

	id, err := s.Create("first real")
	require.NoError(t, err)
	assert.Equal(t, uint32(1), id)
}

func testReadReturnsCopy(t *testing.T, s types.Store) {
	id, err := s.Create("stable")
	require.NoError(t, err)

	got, err := s.Read(id)
	require.NoError(t, err)
	got.Title = "mutated by caller"
	got.Status = true

	again, err := s.Read(id)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: id, Title: "stable", Status: false}, again)
}
