package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

func hit(id string, distance float64, cause domain.CauseLabel) domain.VectorHit {
	return domain.VectorHit{
		ID:       id,
		Text:     "text " + id,
		Distance: distance,
		Metadata: domain.EntryMetadata{Cause: cause, Title: "Doc " + id, DocumentID: "doc-" + id},
	}
}

func TestSearchFiltersByThresholdAndKeepsOrder(t *testing.T) {
	index := &indexFake{
		count: 4,
		hits: []domain.VectorHit{
			hit("a", 0.05, domain.CausePaymentTerms),
			hit("b", 0.4, domain.CauseFraud),
			hit("c", 0.2, domain.CauseConfidentiality),
			hit("d", 0.9, domain.CauseFraud),
		},
	}
	search := NewSimilaritySearch(&embedderFake{}, index)

	results, err := search.Search(context.Background(), "query text here", 0.7, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if index.queryK != 4 {
		t.Fatalf("expected k=min(top_k,count)=4, got %d", index.queryK)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %+v", results)
	}
	if results[0].DocumentID != "doc-a" || results[1].DocumentID != "doc-c" {
		t.Fatalf("expected rank order a, c; got %+v", results)
	}
	if results[0].SimilarityScore != 0.95 || results[1].SimilarityScore != 0.8 {
		t.Fatalf("unexpected scores %+v", results)
	}
	for _, r := range results {
		if r.SimilarityScore < 0.7 {
			t.Fatalf("result below threshold: %+v", r)
		}
	}
	if results[0].Cause != domain.CausePaymentTerms || results[0].DocumentTitle != "Doc a" || results[0].MatchingText != "text a" {
		t.Fatalf("unexpected mapping %+v", results[0])
	}
}

func TestSearchThresholdUsesUnroundedScore(t *testing.T) {
	index := &indexFake{count: 1, hits: []domain.VectorHit{hit("a", 0.3004, domain.CauseFraud)}}
	search := NewSimilaritySearch(&embedderFake{}, index)

	results, err := search.Search(context.Background(), "query text here", 0.7, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected score 0.6996 to be filtered, got %+v", results)
	}
}

func TestSearchClampsScore(t *testing.T) {
	index := &indexFake{count: 2, hits: []domain.VectorHit{
		hit("a", -0.0000001, domain.CauseFraud),
		hit("b", 1.6, domain.CauseFraud),
	}}
	search := NewSimilaritySearch(&embedderFake{}, index)

	results, err := search.Search(context.Background(), "query text here", 0, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 || results[0].SimilarityScore != 1 || results[1].SimilarityScore != 0 {
		t.Fatalf("expected clamped scores 1 and 0, got %+v", results)
	}
}

func TestSearchEmptyIndexSkipsEmbedding(t *testing.T) {
	embedder := &embedderFake{}
	index := &indexFake{}
	search := NewSimilaritySearch(embedder, index)

	results, err := search.Search(context.Background(), "query text here", 0.7, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if results == nil || len(results) != 0 {
		t.Fatalf("expected empty non-nil result, got %#v", results)
	}
	if embedder.calls != 0 || index.queryCalls != 0 {
		t.Fatalf("expected no embed/query calls, got %d/%d", embedder.calls, index.queryCalls)
	}
}

func TestSearchValidation(t *testing.T) {
	cases := []struct {
		name      string
		query     string
		threshold float64
		topK      int
	}{
		{name: "empty query", query: "  ", threshold: 0.5, topK: 5},
		{name: "negative threshold", query: "query", threshold: -0.1, topK: 5},
		{name: "threshold above one", query: "query", threshold: 1.01, topK: 5},
		{name: "zero top_k", query: "query", threshold: 0.5, topK: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			embedder := &embedderFake{}
			index := &indexFake{count: 3, countErr: errors.New("must not be called")}
			search := NewSimilaritySearch(embedder, index)

			_, err := search.Search(context.Background(), tc.query, tc.threshold, tc.topK)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if embedder.calls != 0 {
				t.Fatalf("expected no embedding call")
			}
		})
	}
}

func TestSearchCollaboratorFailures(t *testing.T) {
	cases := []struct {
		name     string
		embedder *embedderFake
		index    *indexFake
		want     error
	}{
		{name: "count", embedder: &embedderFake{}, index: &indexFake{countErr: errors.New("down")}, want: domain.ErrIndexQuery},
		{name: "embed", embedder: &embedderFake{err: errors.New("down")}, index: &indexFake{count: 1}, want: domain.ErrEmbedding},
		{name: "query", embedder: &embedderFake{}, index: &indexFake{count: 1, queryErr: errors.New("down")}, want: domain.ErrIndexQuery},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			search := NewSimilaritySearch(tc.embedder, tc.index)
			_, err := search.Search(context.Background(), "query text here", 0.7, 5)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestSearchKeepsHitAtThresholdAndReportsRoundedScore(t *testing.T) {
	const distance = 0.2996
	threshold := 1 - distance
	index := &indexFake{count: 1, hits: []domain.VectorHit{hit("a", distance, domain.CauseFraud)}}
	search := NewSimilaritySearch(&embedderFake{}, index)

	results, err := search.Search(context.Background(), "query text here", threshold, 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the hit at the threshold to be kept, got %+v", results)
	}
	if results[0].SimilarityScore != 0.7 {
		t.Fatalf("expected score reported as 0.7, got %v", results[0].SimilarityScore)
	}
}
