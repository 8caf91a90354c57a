package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/todos/pkg/types"
)

type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	for _, key := range []string{"TODOS_CONFIG_DIR", "TODOS_DATA_DIR", "TODOS_BACKEND", "TODOS_SYNC_STRATEGY", "TODOS_BATCH_SIZE", "TODOS_BATCH_INTERVAL"} {
		t.Setenv(key, "")
	}
	root := t.TempDir()
	return cliEnv{
		configDir: filepath.Join(root, "config"),
		dataDir:   filepath.Join(root, "data"),
	}
}

// run executes one CLI invocation and returns stdout, stderr and the error.
func (e cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (e cliEnv) getJSON(t *testing.T, id string) types.Todo {
	t.Helper()
	out, _, err := e.run(t, "", "--json", "get", id)
	require.NoError(t, err)
	var td types.Todo
	require.NoError(t, json.Unmarshal([]byte(out), &td))
	return td
}

func TestCLI_Lifecycle(t *testing.T) {
	e := newCLIEnv(t)

	out, _, err := e.run(t, "", "create", "Write", "spec")
	require.NoError(t, err)
	assert.Contains(t, out, "Created todo 1")

	assert.Equal(t, types.Todo{ID: 1, Title: "Write spec"}, e.getJSON(t, "1"))

	out, _, err = e.run(t, "", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, boxUnchecked)
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "Write spec")

	_, _, err = e.run(t, "", "update", "1", "--title", "Write spec v2", "--status=true")
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "Write spec v2", Status: true}, e.getJSON(t, "1"))

	out, _, err = e.run(t, "", "get", "1")
	require.NoError(t, err)
	assert.Contains(t, out, boxChecked)

	out, _, err = e.run(t, "", "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted todo 1")

	_, _, err = e.run(t, "", "get", "1")
	require.Error(t, err)
	assert.Equal(t, exitUserError, exitCode(err))
	assert.EqualError(t, err, "todo 1 not found")

	out, _, err = e.run(t, "", "next-id")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestCLI_PartialUpdates(t *testing.T) {
	e := newCLIEnv(t)
	_, _, err := e.run(t, "", "create", "original")
	require.NoError(t, err)

	_, _, err = e.run(t, "", "update", "1")
	require.NoError(t, err, "update without flags is a no-op, not an error")
	assert.Equal(t, types.Todo{ID: 1, Title: "original"}, e.getJSON(t, "1"))

	_, _, err = e.run(t, "", "done", "1")
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "original", Status: true}, e.getJSON(t, "1"))

	_, _, err = e.run(t, "", "update", "1", "--title", "")
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "", Status: true}, e.getJSON(t, "1"))

	_, _, err = e.run(t, "", "undone", "1")
	require.NoError(t, err)
	assert.Equal(t, types.Todo{ID: 1, Title: "", Status: false}, e.getJSON(t, "1"))
}

func TestCLI_JSONOutput(t *testing.T) {
	e := newCLIEnv(t)

	out, _, err := e.run(t, "", "--json", "create", "json please")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"json please","status":false}`, out)

	out, _, err = e.run(t, "", "--json", "done", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"json please","status":true}`, out)

	out, _, err = e.run(t, "", "--json", "next-id")
	require.NoError(t, err)
	var next struct {
		NextID  uint32 `json:"next_id"`
		StoreID string `json:"store_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &next))
	assert.Equal(t, uint32(2), next.NextID)
	assert.NotEmpty(t, next.StoreID)

	out, _, err = e.run(t, "", "--json", "delete", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"deleted":1}`, out)
}

func TestCLI_Errors(t *testing.T) {
	e := newCLIEnv(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{name: "get unknown", args: []string{"get", "999"}, wantCode: exitUserError},
		{name: "delete unknown", args: []string{"delete", "999"}, wantCode: exitUserError},
		{name: "update unknown", args: []string{"update", "999", "--title", "x"}, wantCode: exitUserError},
		{name: "malformed id", args: []string{"get", "one"}, wantCode: exitUserError},
		{name: "missing id", args: []string{"get"}, wantCode: exitUserError},
		{name: "missing title", args: []string{"create"}, wantCode: exitUserError},
		{name: "unknown backend flag", args: []string{"--backend", "postgres", "next-id"}, wantCode: exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := e.run(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, exitCode(err))
		})
	}

	// Failed calls allocate nothing.
	out, _, err := e.run(t, "", "next-id")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestCLI_IdentifiersNotReusedAcrossInvocations(t *testing.T) {
	e := newCLIEnv(t)

	for i := 0; i < 3; i++ {
		_, _, err := e.run(t, "", "create", "item")
		require.NoError(t, err)
	}
	_, _, err := e.run(t, "", "delete", "3")
	require.NoError(t, err)

	out, _, err := e.run(t, "", "create", "after delete")
	require.NoError(t, err)
	assert.Contains(t, out, "Created todo 4")
}

func TestCLI_Init(t *testing.T) {
	e := newCLIEnv(t)

	out, _, err := e.run(t, "", "--json", "init")
	require.NoError(t, err)

	var res map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, e.dataDir, res["data_dir"])
	assert.NotEmpty(t, res["store_id"])

	data, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	var cfg fileConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, types.BackendSQLite, cfg.Backend)
	assert.Equal(t, e.dataDir, cfg.DataDir)

	for _, name := range []string{"todos.jsonl", "state.jsonl"} {
		_, err := os.Stat(filepath.Join(e.dataDir, name))
		assert.NoError(t, err, name)
	}

	// A second init keeps the same store.
	out, _, err = e.run(t, "", "--json", "init")
	require.NoError(t, err)
	var again map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &again))
	assert.Equal(t, res["store_id"], again["store_id"])
}

func TestCLI_InvalidConfigFile(t *testing.T) {
	e := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: postgres\n"), 0o644))

	_, _, err := e.run(t, "", "next-id")
	require.Error(t, err)
	assert.Equal(t, exitSysError, exitCode(err))
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}

func TestCLI_Version(t *testing.T) {
	e := newCLIEnv(t)
	out, _, err := e.run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "todos v")
	assert.Contains(t, out, modulePath)
}

func TestCLI_InitKeepsFileSyncSettings(t *testing.T) {
	e := newCLIEnv(t)
	require.NoError(t, os.MkdirAll(e.configDir, 0o755))
	cfgPath := filepath.Join(e.configDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: sqlite\nsync_strategy: on_close\nbatch_size: 7\n"), 0o644))

	t.Setenv("TODOS_SYNC_STRATEGY", types.SyncBatch)
	_, _, err := e.run(t, "", "init")
	require.NoError(t, err)

	cfg, err := readConfigFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, fileConfig{
		Backend:      types.BackendSQLite,
		DataDir:      e.dataDir,
		SyncStrategy: types.SyncOnClose,
		BatchSize:    7,
	}, cfg, "environment overrides are not written back")
}
