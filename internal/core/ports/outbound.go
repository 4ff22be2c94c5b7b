package ports

import (
	"context"
	"io"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// DocumentRepository persists and reads document metadata.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	MarkIndexed(ctx context.Context, id string, result domain.IndexingResult) error
	Delete(ctx context.Context, id string) error
}

// ObjectStorage stores uploaded source files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes indexing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor extracts plain text from a stored document.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// Embedder maps texts to fixed-length vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Chunker splits document text into overlapping spans.
type Chunker interface {
	Split(text string) []domain.Chunk
}

// CauseClassifier labels a span of text with exactly one compliance cause.
type CauseClassifier interface {
	Classify(text string) domain.CauseLabel
}

// VectorIndex stores embedded chunks and answers nearest-neighbour queries.
// Add is all-or-nothing. Query returns hits nearest first with cosine distance.
type VectorIndex interface {
	Add(ctx context.Context, entries []domain.IndexedEntry) error
	Query(ctx context.Context, embedding []float32, k int) ([]domain.VectorHit, error)
	Count(ctx context.Context) (int, error)
	DeleteByDocument(ctx context.Context, documentID string) error
	Name() string
}
