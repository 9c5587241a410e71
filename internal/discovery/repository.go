package discovery

import (
	"sync"
	"time"
)

// LastResult is the most recent ranked result set and the request that produced it.
type LastResult struct {
	SearchID string
	Request  SearchRequest
	Videos   []VideoRecord
	StoredAt time.Time
}

// ResultRepository defines the concurrency-safe contract for the last result cache.
type ResultRepository interface {
	// SaveLast replaces the cached result set. Videos may be empty.
	SaveLast(r LastResult)

	// Last returns a copy of the cached result set. The ok return is false
	// if nothing has been stored yet.
	Last() (LastResult, bool)
}

// InMemoryResultRepository is a concurrency-safe implementation of ResultRepository.
// It uses a Store for persistence; by default that is an InMemoryStore.
type InMemoryResultRepository struct {
	mu    sync.RWMutex
	store Store
}

// NewInMemoryResultRepository constructs a repository with a default in-memory store.
func NewInMemoryResultRepository() *InMemoryResultRepository {
	return NewInMemoryResultRepositoryWithStore(NewInMemoryStore())
}

// NewInMemoryResultRepositoryWithStore constructs a repository that uses the given Store.
func NewInMemoryResultRepositoryWithStore(store Store) *InMemoryResultRepository {
	return &InMemoryResultRepository{store: store}
}

// SaveLast implements ResultRepository.SaveLast.
func (r *InMemoryResultRepository) SaveLast(res LastResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res.Videos = copyVideos(res.Videos)
	if res.StoredAt.IsZero() {
		res.StoredAt = time.Now().UTC()
	}
	r.store.SetLast(&res)
}

// Last implements ResultRepository.Last.
func (r *InMemoryResultRepository) Last() (LastResult, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	last, ok := r.store.GetLast()
	if !ok {
		return LastResult{}, false
	}
	out := *last
	// Copy so callers cannot mutate the cached slice.
	out.Videos = copyVideos(last.Videos)
	return out, true
}

func copyVideos(videos []VideoRecord) []VideoRecord {
	out := make([]VideoRecord, len(videos))
	copy(out, videos)
	return out
}
