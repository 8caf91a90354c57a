package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// loadResult summarises what loadJSONL put into SQLite.
type loadResult struct {
	todos    int
	storeID  string
	nextID   uint32
	newState bool // state.jsonl held no usable record
}

// loadJSONL reads todos.jsonl and state.jsonl from dataDir into db inside one
// transaction: either everything loads or the database stays empty.
//
// Lines that are not valid JSON, do not decode as a Todo, or carry id 0 are
// skipped. Two records with the same id fail the load with
// types.ErrAlreadyExists. A persisted next_id that does not exceed the
// largest loaded id is raised so retired identifiers stay retired.
func loadJSONL(db *sql.DB, dataDir string) (loadResult, error) {
	var res loadResult

	todoLines, err := readJSONL(filepath.Join(dataDir, todosJSONL))
	if err != nil {
		return res, err
	}
	stateLines, err := readJSONL(filepath.Join(dataDir, stateJSONL))
	if err != nil {
		return res, err
	}

	tx, err := db.Begin()
	if err != nil {
		return res, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO todos (id, title, status) VALUES (?, ?, ?)")
	if err != nil {
		return res, fmt.Errorf("preparing todo insert: %w", err)
	}
	defer stmt.Close()

	var maxID uint32
	seen := make(map[uint32]bool, len(todoLines))
	for _, line := range todoLines {
		var t types.Todo
		if err := json.Unmarshal(line, &t); err != nil || t.ID == 0 {
			continue
		}
		if seen[t.ID] {
			return res, fmt.Errorf("%s: id %d: %w", todosJSONL, t.ID, types.ErrAlreadyExists)
		}
		seen[t.ID] = true
		if _, err := stmt.Exec(t.ID, t.Title, t.Status); err != nil {
			return res, fmt.Errorf("inserting todo %d: %w", t.ID, err)
		}
		maxID = max(maxID, t.ID)
		res.todos++
	}

	state, ok := lastState(stateLines)
	if !ok {
		state = stateRecord{StoreID: generateUUID(), NextID: 1}
		res.newState = true
	}
	if state.StoreID == "" {
		state.StoreID = generateUUID()
		res.newState = true
	}
	if state.NextID == 0 {
		state.NextID = 1
	}
	if maxID >= state.NextID {
		state.NextID = saturatingInc(maxID)
	}

	if err := writeState(tx, stateKeyStoreID, state.StoreID); err != nil {
		return res, err
	}
	if err := writeState(tx, stateKeyNextID, strconv.FormatUint(uint64(state.NextID), 10)); err != nil {
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing load transaction: %w", err)
	}

	res.storeID = state.StoreID
	res.nextID = state.NextID
	return res, nil
}

// lastState returns the last line of state.jsonl that decodes cleanly.
func lastState(lines []json.RawMessage) (stateRecord, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		var s stateRecord
		if err := json.Unmarshal(lines[i], &s); err == nil {
			return s, true
		}
	}
	return stateRecord{}, false
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func writeState(e execer, key, value string) error {
	_, err := e.Exec(
		"INSERT INTO store_state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// generateUUID returns a UUID v7, falling back to v4 if v7 generation fails.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func saturatingInc(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}
