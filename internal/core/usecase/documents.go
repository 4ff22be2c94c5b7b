package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

// DocumentsUseCase serves document reads and the cascading delete.
type DocumentsUseCase struct {
	repo    ports.DocumentRepository
	storage ports.ObjectStorage
	index   ports.VectorIndex
}

func NewDocumentsUseCase(repo ports.DocumentRepository, storage ports.ObjectStorage, index ports.VectorIndex) *DocumentsUseCase {
	return &DocumentsUseCase{repo: repo, storage: storage, index: index}
}

func (uc *DocumentsUseCase) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *DocumentsUseCase) List(ctx context.Context) ([]domain.Document, error) {
	docs, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Delete removes the index entries first, then the stored file, then the
// metadata row. A failed index delete leaves everything in place.
func (uc *DocumentsUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.index.DeleteByDocument(ctx, doc.ID); err != nil {
		return domain.WrapError(domain.ErrIndexWrite, "delete index entries", err)
	}

	if doc.StoragePath != "" {
		if err := uc.storage.Delete(ctx, doc.StoragePath); err != nil {
			return fmt.Errorf("delete stored file: %w", err)
		}
	}

	if err := uc.repo.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document metadata: %w", err)
	}
	return nil
}
