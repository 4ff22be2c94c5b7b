package ports

import (
	"context"
	"io"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, req domain.UploadRequest, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document indexing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// DocumentRemover deletes a document together with its index entries.
type DocumentRemover interface {
	Delete(ctx context.Context, id string) error
}

// ComplianceChecker produces a risk report for a query passage.
type ComplianceChecker interface {
	Check(ctx context.Context, query string, threshold float64, topK int) (*domain.ComplianceReport, error)
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
