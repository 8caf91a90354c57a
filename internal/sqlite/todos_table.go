package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Create allocates the next identifier and inserts a Todo with status false.
// The counter read, the insert and the counter advance share one transaction.
// At math.MaxUint32 the counter stays put and the record under it is replaced.
func (b *Backend) Create(title string) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}

	tx, err := b.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	id, err := readNextID(tx)
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO todos (id, title, status) VALUES (?, ?, ?)",
		id, title, false); err != nil {
		return 0, fmt.Errorf("inserting todo: %w", err)
	}
	if err := writeState(tx, stateKeyNextID, strconv.FormatUint(uint64(saturatingInc(id)), 10)); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create: %w", err)
	}

	// The record stays in the database when the JSONL write fails; the next
	// successful write carries it.
	if err := b.persist("create", id); err != nil {
		return 0, err
	}
	return id, nil
}

// Read returns the Todo with the given identifier.
// Returns types.ErrNotFound if it does not exist.
func (b *Backend) Read(id uint32) (types.Todo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Todo{}, types.ErrStoreDetached
	}
	return getTodo(b.db, id)
}

// Update applies u to the Todo with the given identifier in one transaction.
// An empty u only checks existence and writes nothing.
// Returns types.ErrNotFound if it does not exist.
func (b *Backend) Update(id uint32, u types.Update) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}
	if u.IsEmpty() {
		_, err := getTodo(b.db, id)
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	t, err := getTodo(tx, id)
	if err != nil {
		return err
	}
	t = u.Apply(t)
	if _, err := tx.Exec("UPDATE todos SET title = ?, status = ? WHERE id = ?", t.Title, t.Status, id); err != nil {
		return fmt.Errorf("updating todo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update: %w", err)
	}

	return b.persist("update", id)
}

// Delete removes the Todo with the given identifier.
// Returns types.ErrNotFound if it does not exist.
func (b *Backend) Delete(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	res, err := b.db.Exec("DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting todo: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}

	return b.persist("delete", id)
}

// PeekNextID returns the identifier the next Create will allocate.
func (b *Backend) PeekNextID() (uint32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrStoreDetached
	}
	return readNextID(b.db)
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func getTodo(q querier, id uint32) (types.Todo, error) {
	var t types.Todo
	err := q.QueryRow("SELECT id, title, status FROM todos WHERE id = ?", id).
		Scan(&t.ID, &t.Title, &t.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Todo{}, types.ErrNotFound
	}
	if err != nil {
		return types.Todo{}, fmt.Errorf("scanning todo %d: %w", id, err)
	}
	return t, nil
}

func readNextID(q querier) (uint32, error) {
	var raw string
	if err := q.QueryRow("SELECT value FROM store_state WHERE key = ?", stateKeyNextID).Scan(&raw); err != nil {
		return 0, fmt.Errorf("reading next_id: %w", err)
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing next_id %q: %w", raw, err)
	}
	return uint32(n), nil
}

// writeSnapshot rewrites todos.jsonl and state.jsonl from the database.
// The caller must hold b.mu.
func (b *Backend) writeSnapshot() error {
	rows, err := b.db.Query("SELECT id, title, status FROM todos ORDER BY id")
	if err != nil {
		return fmt.Errorf("querying todos: %w", err)
	}
	var todos []types.Todo
	for rows.Next() {
		var t types.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.Status); err != nil {
			rows.Close()
			return fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	nextID, err := readNextID(b.db)
	if err != nil {
		return err
	}

	todoLines, err := marshalLines(todos)
	if err != nil {
		return fmt.Errorf("encoding todos: %w", err)
	}
	stateLines, err := marshalLines([]stateRecord{{StoreID: b.storeID, NextID: nextID}})
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	// State goes first so that a crash between the two writes can lose a
	// record but never hand its identifier out again.
	if err := writeJSONL(filepath.Join(b.config.DataDir, stateJSONL), stateLines); err != nil {
		return err
	}
	return writeJSONL(filepath.Join(b.config.DataDir, todosJSONL), todoLines)
}
