// Package sqlite implements the durable Todo store. JSONL files in DataDir are
// the source of truth; SQLite is the query engine, rebuilt from the JSONL
// files on every Attach. Mutations go to SQLite first and are then written
// back to JSONL according to the configured sync strategy.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Backend implements types.Backend using SQLite and JSONL files.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	storeID  string
	logger   *slog.Logger

	syncStrategy  string
	batchSize     int
	batchInterval time.Duration
	pendingWrites []pendingWrite
	batchTimer    *time.Timer
	batchMu       sync.Mutex // protects pendingWrites and batchTimer
}

var _ types.Backend = (*Backend)(nil)

// pendingWrite is a deferred JSONL write, queued by the on_close and batch
// strategies.
type pendingWrite struct {
	operation string
	id        uint32
	persist   func() error
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for lifecycle and flush events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a detached SQLite backend.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// StoreID returns the identifier of the attached data directory, or "" when
// detached. It is generated once per data directory and kept in state.jsonl.
func (b *Backend) StoreID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.storeID
}

// Attach creates DataDir if needed, rebuilds the SQLite database from the
// JSONL files and starts the batch timer when the batch strategy is used.
// Returns types.ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := initJSONLFiles(dataDir); err != nil {
		return fmt.Errorf("init JSONL: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	// The database is a cache of the JSONL files; start from scratch.
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	// One connection keeps transactions and the single-writer rule simple.
	db.SetMaxOpenConns(1)

	for _, ddl := range schemaDDL {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	res, err := loadJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}

	b.db = db
	b.config = config
	b.config.DataDir = dataDir
	b.storeID = res.storeID
	b.syncStrategy = config.GetSyncStrategy()
	b.batchSize = config.GetBatchSize()
	b.batchInterval = time.Duration(config.GetBatchInterval()) * time.Second
	b.pendingWrites = nil
	b.attached = true

	// A new store id must reach disk whatever the strategy.
	if res.newState {
		if err := b.writeSnapshot(); err != nil {
			b.attached = false
			b.db = nil
			db.Close()
			return fmt.Errorf("write initial state: %w", err)
		}
	}

	if b.syncStrategy == types.SyncBatch && b.batchInterval > 0 {
		b.startBatchTimer()
	}

	b.logger.Info("store attached",
		"data_dir", dataDir,
		"store_id", res.storeID,
		"todos", res.todos,
		"next_id", res.nextID,
		"sync", b.syncStrategy)
	return nil
}

// Detach flushes pending writes and closes the database. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.stopBatchTimer()

	if err := b.flushPendingWritesLocked(); err != nil {
		return fmt.Errorf("flush pending writes: %w", err)
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.logger.Debug("store detached", "store_id", b.storeID)
	b.attached = false
	b.storeID = ""
	return nil
}

// initJSONLFiles creates an empty todos.jsonl if none exists. state.jsonl is
// created by the first snapshot.
func initJSONLFiles(dataDir string) error {
	for _, name := range []string{todosJSONL, stateJSONL} {
		path := filepath.Join(dataDir, name)
		ok, err := fileExists(path)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// shouldPersistImmediately reports whether JSONL writes happen on every
// mutation.
func (b *Backend) shouldPersistImmediately() bool {
	return b.syncStrategy == types.SyncImmediate || b.syncStrategy == ""
}

// persist writes the current state to JSONL now or queues the write,
// depending on the sync strategy. The caller must hold b.mu.
func (b *Backend) persist(operation string, id uint32) error {
	if b.shouldPersistImmediately() {
		if err := b.writeSnapshot(); err != nil {
			return fmt.Errorf("persist %s %d: %w", operation, id, err)
		}
		return nil
	}
	b.queueWrite(operation, id, b.writeSnapshot)
	return nil
}

// queueWrite adds a write to the pending queue. For the batch strategy the
// queue is flushed synchronously once it reaches batchSize.
// The caller must hold b.mu.
func (b *Backend) queueWrite(operation string, id uint32, persist func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{
		operation: operation,
		id:        id,
		persist:   persist,
	})

	if b.syncStrategy == types.SyncBatch && b.batchSize > 0 && len(b.pendingWrites) >= b.batchSize {
		if err := b.flushPendingWritesBatchLocked(); err != nil {
			b.logger.Warn("batch flush failed", "error", err)
		}
	}
}

// flushPendingWritesLocked flushes the queue. The caller must hold b.mu.
func (b *Backend) flushPendingWritesLocked() error {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	return b.flushPendingWritesBatchLocked()
}

// flushPendingWritesBatchLocked writes the queued state. Every queued entry
// rewrites the whole snapshot, so one successful write covers the queue.
// The caller must hold b.batchMu.
func (b *Backend) flushPendingWritesBatchLocked() error {
	if len(b.pendingWrites) == 0 {
		return nil
	}

	last := b.pendingWrites[len(b.pendingWrites)-1]
	if err := last.persist(); err != nil {
		return fmt.Errorf("flush %s %d: %w", last.operation, last.id, err)
	}

	b.logger.Debug("flushed pending writes", "count", len(b.pendingWrites))
	b.pendingWrites = nil
	return nil
}

// startBatchTimer starts the periodic flush for the batch strategy.
func (b *Backend) startBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		return
	}

	b.batchTimer = time.AfterFunc(b.batchInterval, func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if !b.attached {
			return
		}

		if err := b.flushPendingWritesLocked(); err != nil {
			b.logger.Warn("interval flush failed", "error", err)
		}

		b.batchMu.Lock()
		if b.batchTimer != nil {
			b.batchTimer.Reset(b.batchInterval)
		}
		b.batchMu.Unlock()
	})
}

// stopBatchTimer stops the batch timer if running.
func (b *Backend) stopBatchTimer() {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	if b.batchTimer != nil {
		b.batchTimer.Stop()
		b.batchTimer = nil
	}
}
