package sqlite

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func writeFile(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_LoadsExistingData(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL,
		`{"id":3,"title":"three","status":true}`,
		`{"id":1,"title":"one","status":false}`,
	)
	writeFile(t, dir, stateJSONL, `{"store_id":"fixed-id","next_id":9}`)

	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	assert.Equal(t, "fixed-id", b.StoreID())

	got, err := b.Read(3)
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 3, Title: "three", Status: true}, got)

	next, err := b.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(9), next)
}

func TestLoader_SkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL,
		`{"id":1,"title":"good","status":false}`,
		`this is not json`,
		`{"id":"two","title":"wrong id type"}`,
		`{"id":0,"title":"never issued"}`,
		`{"id":-4,"title":"negative"}`,
		`{"id":2,"title":"also good","status":true,"extra":"ignored"}`,
	)

	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	_, err := b.Read(1)
	assert.NoError(t, err)
	got, err := b.Read(2)
	require.NoError(t, err)
	assert.Equal(t, "also good", got.Title)
	_, err = b.Read(0)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestLoader_DuplicateIDFails(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL,
		`{"id":1,"title":"first","status":false}`,
		`{"id":1,"title":"clash","status":false}`,
	)

	b := NewBackend(WithLogger(quietLogger()))
	err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir})
	assert.ErrorIs(t, err, types.ErrAlreadyExists)

	_, err = b.Read(1)
	assert.ErrorIs(t, err, types.ErrStoreDetached, "a failed Attach leaves the backend detached")
}

func TestLoader_RaisesStaleCounter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL, `{"id":7,"title":"hand edited","status":false}`)
	writeFile(t, dir, stateJSONL, `{"store_id":"s","next_id":2}`)

	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	next, err := b.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(8), next)
}

func TestLoader_MissingStateGetsNewStoreID(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL, `{"id":2,"title":"orphan","status":false}`)

	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	assert.NotEmpty(t, b.StoreID())
	next, err := b.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), next)

	state := readStateFile(t, dir)
	assert.Equal(t, b.StoreID(), state.StoreID)
	assert.Equal(t, uint32(3), state.NextID)
}

func TestLoader_CounterSaturates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, todosJSONL, `{"id":4294967295,"title":"top","status":false}`)
	writeFile(t, dir, stateJSONL, `{"store_id":"s","next_id":4294967295}`)

	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	next, err := b.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), next)

	id, err := b.Create("replaces top")
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), id)

	got, err := b.Read(math.MaxUint32)
	require.NoError(t, err)
	assert.Equal(t, "replaces top", got.Title)

	next, err = b.PeekNextID()
	require.NoError(t, err)
	assert.Equal(t, uint32(math.MaxUint32), next)
}
