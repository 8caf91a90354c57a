// Package cli implements the todos command-line interface: the command tree,
// config loading, exit codes, output modes and the interactive shell.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/todos/internal/paths"
	"github.com/mesh-intelligence/todos/pkg/todos"
	"github.com/mesh-intelligence/todos/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	verbose   bool
}

// app carries the state shared by one command tree. Inside the shell, store
// is already attached and every line runs against it.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	logger    *slog.Logger
	store     types.Backend
}

// NewRootCmd creates the top-level "todos" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "todos",
		Short:   "A persistent todo record store",
		Long:    "todos stores todo items under store-assigned, never reused identifiers\nand supports create, get, update and delete by identifier.",
		Version: todos.Version,
		// Errors are printed by Execute or the shell loop.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.prepare,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.todos-db)")
	root.PersistentFlags().StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite or memory (default from config)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&a.flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.newVersionCmd(),
		a.newInitCmd(),
		a.newCreateCmd(),
		a.newGetCmd(),
		a.newUpdateCmd(),
		a.newStatusCmd("done", true),
		a.newStatusCmd("undone", false),
		a.newDeleteCmd(),
		a.newNextIDCmd(),
		a.newShellCmd(),
	)
	return root
}

// Execute runs the root command and exits with the code the error carries.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// prepare sets up logging and resolves the store config. Inside the shell
// both are inherited from the session.
func (a *app) prepare(cmd *cobra.Command, args []string) error {
	if a.store != nil || cmd.Name() == "version" {
		return nil
	}

	a.logger = newLogger(cmd.ErrOrStderr(), a.flags.verbose)

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := a.loadStoreConfig(configDir)
	if err != nil {
		return sysError(err)
	}
	a.configDir = configDir
	a.cfg = cfg
	a.logger.Debug("config resolved",
		"config_dir", configDir,
		"backend", cfg.Backend,
		"data_dir", cfg.DataDir,
		"sync", cfg.GetSyncStrategy())
	return nil
}

// newLogger returns a text slog logger on w. Only warnings and errors are
// shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// withStore runs fn against the session store, or opens the configured store
// for the duration of fn.
func (a *app) withStore(fn func(types.Store) error) (err error) {
	if a.store != nil {
		return fn(a.store)
	}

	store, err := todos.Open(a.cfg, a.logger)
	if err != nil {
		return sysError(err)
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = sysError(fmt.Errorf("detach store: %w", derr))
		}
	}()
	return fn(store)
}

// exitError pairs an error with the process exit code it maps to.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// exitCode maps err to a process exit code. Errors without an explicit code
// come from argument parsing and count as user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

// storeError classifies an error returned by a Store operation.
func storeError(id uint32, err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return userError(fmt.Errorf("todo %d not found", id))
	}
	return sysError(err)
}
