// Package todos is the public entry point for opening a Todo store.
//
// Example:
//
//	store, err := todos.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".todos-db",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Detach()
//	id, err := store.Create("Write spec")
package todos

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/todos/internal/memory"
	"github.com/mesh-intelligence/todos/internal/sqlite"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// Version is the release version of the todos module.
const Version = "0.1.0"

// NewBackend returns a detached backend for cfg.Backend.
// A nil logger means slog.Default().
func NewBackend(cfg types.Config, logger *slog.Logger) (types.Backend, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		return sqlite.NewBackend(sqlite.WithLogger(logger)), nil
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case "":
		return nil, types.ErrBackendEmpty
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// Open creates the backend for cfg and attaches it. The caller must Detach.
func Open(cfg types.Config, logger *slog.Logger) (types.Backend, error) {
	b, err := NewBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := b.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach %s store: %w", cfg.Backend, err)
	}
	return b, nil
}
