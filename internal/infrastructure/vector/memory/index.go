package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// Index is an in-process vector index using brute-force cosine distance.
type Index struct {
	name string

	mu        sync.RWMutex
	dimension int
	entries   []domain.IndexedEntry
	norms     []float64
	ids       map[string]int
}

func New(name string) *Index {
	return &Index{
		name: name,
		ids:  make(map[string]int),
	}
}

func (ix *Index) Name() string { return ix.name }

// Add validates the whole batch before storing any of it.
func (ix *Index) Add(_ context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dimension := ix.dimension
	batchIDs := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("entry %d: empty id", i)
		}
		if len(e.Embedding) == 0 {
			return fmt.Errorf("entry %s: empty embedding", e.ID)
		}
		if dimension == 0 {
			dimension = len(e.Embedding)
		}
		if len(e.Embedding) != dimension {
			return fmt.Errorf("entry %s: embedding dimension %d, index expects %d", e.ID, len(e.Embedding), dimension)
		}
		if _, ok := ix.ids[e.ID]; ok {
			return fmt.Errorf("entry %s: id already exists", e.ID)
		}
		if _, ok := batchIDs[e.ID]; ok {
			return fmt.Errorf("entry %s: duplicate id in batch", e.ID)
		}
		batchIDs[e.ID] = struct{}{}
	}

	ix.dimension = dimension
	for _, e := range entries {
		stored := e
		stored.Embedding = append([]float32(nil), e.Embedding...)
		ix.ids[e.ID] = len(ix.entries)
		ix.entries = append(ix.entries, stored)
		ix.norms = append(ix.norms, norm(stored.Embedding))
	}
	return nil
}

func (ix *Index) Query(_ context.Context, embedding []float32, k int) ([]domain.VectorHit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.entries) == 0 {
		return []domain.VectorHit{}, nil
	}
	if len(embedding) != ix.dimension {
		return nil, fmt.Errorf("query dimension %d, index expects %d", len(embedding), ix.dimension)
	}

	queryNorm := norm(embedding)
	hits := make([]domain.VectorHit, 0, len(ix.entries))
	for i, e := range ix.entries {
		hits = append(hits, domain.VectorHit{
			ID:       e.ID,
			Text:     e.Text,
			Metadata: e.Metadata,
			Distance: cosineDistance(e.Embedding, ix.norms[i], embedding, queryNorm),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) Count(context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries), nil
}

func (ix *Index) DeleteByDocument(_ context.Context, documentID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	entries := ix.entries[:0]
	norms := ix.norms[:0]
	ids := make(map[string]int, len(ix.ids))
	for i, e := range ix.entries {
		if e.Metadata.DocumentID == documentID {
			continue
		}
		ids[e.ID] = len(entries)
		entries = append(entries, e)
		norms = append(norms, ix.norms[i])
	}
	ix.entries = entries
	ix.norms = norms
	ix.ids = ids
	if len(ix.entries) == 0 {
		ix.dimension = 0
	}
	return nil
}

// cosineDistance is 1 - cos(a, b); zero vectors are treated as orthogonal.
func cosineDistance(a []float32, normA float64, b []float32, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 1
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot/(normA*normB)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
