package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

// IndexingPipeline turns document text into classified, embedded index entries.
// It performs exactly one embedding call and one index write per document and
// never retries; retry policy belongs to the collaborator adapters.
type IndexingPipeline struct {
	chunker    ports.Chunker
	classifier ports.CauseClassifier
	embedder   ports.Embedder
	index      ports.VectorIndex
}

func NewIndexingPipeline(
	chunker ports.Chunker,
	classifier ports.CauseClassifier,
	embedder ports.Embedder,
	index ports.VectorIndex,
) *IndexingPipeline {
	return &IndexingPipeline{
		chunker:    chunker,
		classifier: classifier,
		embedder:   embedder,
		index:      index,
	}
}

func (p *IndexingPipeline) Index(ctx context.Context, text string, meta domain.DocumentMetadata) (*domain.IndexingResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrEmptyInput, "index document", errors.New("document text is empty"))
	}
	if strings.TrimSpace(meta.DocumentID) == "" {
		return nil, domain.WrapError(domain.ErrValidation, "index document", errors.New("document_id is required"))
	}

	chunks := p.chunker.Split(text)
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyInput, "index document", errors.New("chunking produced zero chunks"))
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].Cause = p.classifier.Classify(chunks[i].Text)
		texts[i] = chunks[i].Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed chunks", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrEmbedding,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}

	entries := make([]domain.IndexedEntry, len(chunks))
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = domain.EntryID(meta.DocumentID, chunk.ChunkIndex)
		entries[i] = domain.IndexedEntry{
			ID:        ids[i],
			Embedding: vectors[i],
			Text:      chunk.Text,
			Metadata:  entryMetadata(chunk, meta),
		}
	}

	if err := p.index.Add(ctx, entries); err != nil {
		return nil, domain.WrapError(domain.ErrIndexWrite, "add index entries", err)
	}

	return &domain.IndexingResult{
		DocumentID: meta.DocumentID,
		ChunkCount: len(chunks),
		EntryIDs:   ids,
	}, nil
}

// entryMetadata starts from the chunk-local fields and lets the document
// fields override anything of the same name.
func entryMetadata(chunk domain.Chunk, meta domain.DocumentMetadata) domain.EntryMetadata {
	out := domain.EntryMetadata{
		Cause:      chunk.Cause,
		ChunkID:    chunk.ChunkID,
		ChunkIndex: chunk.ChunkIndex,
	}
	out.Title = meta.Title
	out.DocumentID = meta.DocumentID
	out.Category = meta.Category
	out.UploadedAt = meta.UploadedAt
	return out
}

// RemoveDocument drops every index entry of the document.
func (p *IndexingPipeline) RemoveDocument(ctx context.Context, documentID string) error {
	if err := p.index.DeleteByDocument(ctx, documentID); err != nil {
		return domain.WrapError(domain.ErrIndexWrite, "remove document entries", err)
	}
	return nil
}
