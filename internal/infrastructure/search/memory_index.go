// Package search provides vector indexes over recipe embeddings
package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/alchemorsel/mealplanner/internal/ports/outbound"
	"github.com/google/uuid"
)

// MemoryIndex is a brute-force cosine index held in process memory
type MemoryIndex struct {
	mu      sync.RWMutex
	vectors map[uuid.UUID][]float32
}

// NewMemoryIndex creates an empty index
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{vectors: make(map[uuid.UUID][]float32)}
}

var _ outbound.RecipeIndex = (*MemoryIndex)(nil)

// Upsert stores a copy of vector under id
func (i *MemoryIndex) Upsert(ctx context.Context, id uuid.UUID, vector []float32) error {
	if len(vector) == 0 {
		return fmt.Errorf("search: empty vector for %s", id)
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vectors[id] = append([]float32(nil), vector...)
	return nil
}

// Query returns up to limit ids ordered by descending cosine similarity.
// Vectors of a different dimension are skipped.
func (i *MemoryIndex) Query(ctx context.Context, vector []float32, limit int) ([]outbound.ScoredID, error) {
	if limit <= 0 {
		return nil, nil
	}

	i.mu.RLock()
	hits := make([]outbound.ScoredID, 0, len(i.vectors))
	for id, v := range i.vectors {
		if len(v) != len(vector) {
			continue
		}
		hits = append(hits, outbound.ScoredID{ID: id, Score: Cosine(vector, v)})
	}
	i.mu.RUnlock()

	sort.Slice(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score > hits[b].Score
		}
		return hits[a].ID.String() < hits[b].ID.String()
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Len returns the number of indexed vectors
func (i *MemoryIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vectors)
}

// Cosine returns the cosine similarity of a and b, 0 when either is zero
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for k := range a {
		dot += float64(a[k]) * float64(b[k])
		na += float64(a[k]) * float64(a[k])
		nb += float64(b[k]) * float64(b[k])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
