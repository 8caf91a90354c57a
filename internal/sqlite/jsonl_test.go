package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/todos/pkg/types"
)

func readTodoLines(t *testing.T, dir string) []types.Todo {
	t.Helper()
	lines, err := readJSONL(filepath.Join(dir, todosJSONL))
	require.NoError(t, err)
	todos := make([]types.Todo, 0, len(lines))
	for _, line := range lines {
		var td types.Todo
		require.NoError(t, json.Unmarshal(line, &td))
		todos = append(todos, td)
	}
	return todos
}

func readStateFile(t *testing.T, dir string) stateRecord {
	t.Helper()
	lines, err := readJSONL(filepath.Join(dir, stateJSONL))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	var s stateRecord
	require.NoError(t, json.Unmarshal(lines[0], &s))
	return s
}

func TestReadJSONL_SkipsEmptyAndMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixed.jsonl")
	content := strings.Join([]string{
		`{"id":1,"title":"a","status":false}`,
		``,
		`{not json`,
		`{"id":2,"title":"b","status":true}`,
		``,
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":1,"title":"a","status":false}`, string(records[0]))
	assert.JSONEq(t, `{"id":2,"title":"b","status":true}`, string(records[1]))
}

func TestReadJSONL_MissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteJSONL_ReplacesFileAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o644))

	lines, err := marshalLines([]types.Todo{{ID: 1, Title: "x"}, {ID: 2, Title: "y", Status: true}})
	require.NoError(t, err)
	require.NoError(t, writeJSONL(path, lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":1,"title":"x","status":false}`+"\n"+`{"id":2,"title":"y","status":true}`+"\n",
		string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestWriteJSONL_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, writeJSONL(path, nil))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestJSONLNotPrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	b := attach(t, types.Config{Backend: types.BackendSQLite, DataDir: dir})

	_, err := b.Create("compact")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, todosJSONL))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.NotContains(t, string(data), "  ")
}
