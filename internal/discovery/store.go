package discovery

// Store is the persistence abstraction for the last result set.
// The ResultRepository uses Store for all reads and writes; callers of the
// repository do not need to know which Store is used.
type Store interface {
	GetLast() (*LastResult, bool)
	SetLast(r *LastResult)
}

// InMemoryStore is a single-slot in-memory implementation of Store.
type InMemoryStore struct {
	last *LastResult
}

// NewInMemoryStore returns a new empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// GetLast implements Store.GetLast.
func (s *InMemoryStore) GetLast() (*LastResult, bool) {
	return s.last, s.last != nil
}

// SetLast implements Store.SetLast.
func (s *InMemoryStore) SetLast(r *LastResult) {
	s.last = r
}
