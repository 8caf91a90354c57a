// Package memory implements the in-process record store for Todo items.
// State lives in a map keyed by identifier plus a high-water counter that is
// decoupled from the map, so deleting a record never frees its identifier.
package memory

import (
	"math"
	"sync"

	"github.com/mesh-intelligence/todos/pkg/types"
)

// firstID is the identifier handed out by the first Create on a fresh store.
const firstID uint32 = 1

// RecordStore owns every Todo it holds and the counter used to name them.
// The mutex covers both so that allocation and insert happen as one step.
type RecordStore struct {
	mu      sync.Mutex
	records map[uint32]types.Todo
	nextID  uint32
}

var _ types.Store = (*RecordStore)(nil)

// New returns an empty store whose first Create allocates identifier 1.
func New() *RecordStore {
	return &RecordStore{
		records: make(map[uint32]types.Todo),
		nextID:  firstID,
	}
}

// Create allocates the next identifier, stores a Todo with the given title
// and status false, and returns the identifier. It never fails.
//
// The counter saturates at math.MaxUint32: once there, every further Create
// reuses that identifier and overwrites the record stored under it.
func (s *RecordStore) Create(title string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.records[id] = types.Todo{ID: id, Title: title}
	s.nextID = saturatingInc(s.nextID)
	return id, nil
}

// Read returns a copy of the Todo stored under id.
// Returns types.ErrNotFound if id is absent.
func (s *RecordStore) Read(id uint32) (types.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.records[id]
	if !ok {
		return types.Todo{}, types.ErrNotFound
	}
	return t, nil
}

// Update writes the present fields of u over the Todo stored under id.
// Returns types.ErrNotFound if id is absent.
func (s *RecordStore) Update(id uint32, u types.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.records[id]
	if !ok {
		return types.ErrNotFound
	}
	s.records[id] = u.Apply(t)
	return nil
}

// Delete removes the Todo stored under id. The identifier stays retired.
// Returns types.ErrNotFound if id is absent.
func (s *RecordStore) Delete(id uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

// PeekNextID returns the identifier the next Create will allocate.
func (s *RecordStore) PeekNextID() (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.nextID, nil
}

func saturatingInc(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}
