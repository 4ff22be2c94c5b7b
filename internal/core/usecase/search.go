package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

type SimilaritySearch struct {
	embedder ports.Embedder
	index    ports.VectorIndex
}

func NewSimilaritySearch(embedder ports.Embedder, index ports.VectorIndex) *SimilaritySearch {
	return &SimilaritySearch{embedder: embedder, index: index}
}

// Search returns the indexed chunks whose similarity to query is at least
// threshold, nearest first. An empty index yields an empty result.
func (s *SimilaritySearch) Search(ctx context.Context, query string, threshold float64, topK int) ([]domain.MatchResult, error) {
	if err := validateSearch(query, threshold, topK); err != nil {
		return nil, err
	}

	count, err := s.index.Count(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexQuery, "count index entries", err)
	}
	if count == 0 {
		return []domain.MatchResult{}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", err)
	}
	if len(vectors) != 1 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", fmt.Errorf("expected 1 vector, got %d", len(vectors)))
	}

	hits, err := s.index.Query(ctx, vectors[0], min(topK, count))
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexQuery, "query index", err)
	}

	results := make([]domain.MatchResult, 0, len(hits))
	for _, hit := range hits {
		score := similarityFromDistance(hit.Distance)
		if score < threshold {
			continue
		}
		results = append(results, domain.MatchResult{
			SimilarityScore: round3(score),
			MatchingText:    hit.Text,
			Cause:           hit.Metadata.Cause,
			DocumentTitle:   hit.Metadata.Title,
			DocumentID:      hit.Metadata.DocumentID,
		})
	}
	return results, nil
}

func validateSearch(query string, threshold float64, topK int) error {
	switch {
	case strings.TrimSpace(query) == "":
		return domain.WrapError(domain.ErrValidation, "search", errors.New("query text is empty"))
	case math.IsNaN(threshold) || threshold < 0 || threshold > 1:
		return domain.WrapError(domain.ErrValidation, "search", fmt.Errorf("threshold %v outside [0,1]", threshold))
	case topK < 1:
		return domain.WrapError(domain.ErrValidation, "search", fmt.Errorf("top_k must be >= 1, got %d", topK))
	}
	return nil
}

func similarityFromDistance(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
