package memory

import (
	"sync"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// Backend adapts a RecordStore to the types.Backend lifecycle. Attach starts
// from an empty store; Detach drops all state.
type Backend struct {
	mu    sync.RWMutex
	store *RecordStore
}

var _ types.Backend = (*Backend)(nil)

// NewBackend returns a detached in-memory backend.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach validates config and starts a fresh store.
// Returns types.ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store != nil {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	b.store = New()
	return nil
}

// Detach discards the store. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.store = nil
	return nil
}

func (b *Backend) attached() (*RecordStore, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.store == nil {
		return nil, types.ErrStoreDetached
	}
	return b.store, nil
}

// Create allocates an identifier in the attached store.
func (b *Backend) Create(title string) (uint32, error) {
	s, err := b.attached()
	if err != nil {
		return 0, err
	}
	return s.Create(title)
}

// Read returns the Todo stored under id.
func (b *Backend) Read(id uint32) (types.Todo, error) {
	s, err := b.attached()
	if err != nil {
		return types.Todo{}, err
	}
	return s.Read(id)
}

// Update applies u to the Todo stored under id.
func (b *Backend) Update(id uint32, u types.Update) error {
	s, err := b.attached()
	if err != nil {
		return err
	}
	return s.Update(id, u)
}

// Delete removes the Todo stored under id.
func (b *Backend) Delete(id uint32) error {
	s, err := b.attached()
	if err != nil {
		return err
	}
	return s.Delete(id)
}

// PeekNextID returns the identifier the next Create will allocate.
func (b *Backend) PeekNextID() (uint32, error) {
	s, err := b.attached()
	if err != nil {
		return 0, err
	}
	return s.PeekNextID()
}
