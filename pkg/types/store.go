package types

import "errors"

// Store is the record store for Todo items. Identifiers are allocated by the
// store from a counter that starts at 1, only ever grows, and is never lowered
// by Delete, so an identifier is never handed out twice.
//
// Every method runs atomically with respect to the others.
type Store interface {
	// Create stores a new Todo with the given title and status false and
	// returns its identifier.
	Create(title string) (uint32, error)

	// Read returns a copy of the Todo with the given identifier.
	// Returns ErrNotFound if no such Todo exists.
	Read(id uint32) (Todo, error)

	// Update applies u to the Todo with the given identifier.
	// Returns ErrNotFound if no such Todo exists; nothing is created.
	Update(id uint32, u Update) error

	// Delete removes the Todo with the given identifier.
	// Returns ErrNotFound if no such Todo exists.
	Delete(id uint32) error

	// PeekNextID returns the identifier the next Create will allocate.
	PeekNextID() (uint32, error)
}

// Backend is a Store whose state lives outside the process. Callers attach it
// to a data directory, use it, and detach when done.
type Backend interface {
	Store

	// Attach loads state described by config. Returns ErrAlreadyAttached if
	// called while attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases resources. Idempotent.
	// After Detach, Store methods return ErrStoreDetached.
	Detach() error
}

// Record errors.
var (
	ErrNotFound = errors.New("todo not found")

	// ErrAlreadyExists reports an identifier collision. Create never returns
	// it since identifiers are always allocated by the store.
	ErrAlreadyExists = errors.New("todo already exists")
)

// Backend lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)
