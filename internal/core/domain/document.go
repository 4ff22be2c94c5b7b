package domain

import (
	"fmt"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded DocumentStatus = "uploaded"
	StatusIndexing DocumentStatus = "indexing"
	StatusIndexed  DocumentStatus = "indexed"
	StatusFailed   DocumentStatus = "failed"
)

type DocumentCategory string

const (
	CategoryContract   DocumentCategory = "contract"
	CategoryPolicy     DocumentCategory = "policy"
	CategoryRegulation DocumentCategory = "regulation"
	CategoryCaseLaw    DocumentCategory = "case_law"
	CategoryOther      DocumentCategory = "other"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// ParseCategory accepts the lower-case category names; empty input means "other".
func ParseCategory(raw string) (DocumentCategory, error) {
	switch c := DocumentCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case "":
		return CategoryOther, nil
	case CategoryContract, CategoryPolicy, CategoryRegulation, CategoryCaseLaw, CategoryOther:
		return c, nil
	default:
		return "", WrapError(ErrValidation, "parse category", fmt.Errorf("unknown category %q", raw))
	}
}

type Document struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Category         DocumentCategory `json:"category"`
	OriginalFilename string           `json:"original_filename"`
	MimeType         string           `json:"mime_type"`
	StoragePath      string           `json:"storage_path"`
	FileSize         int64            `json:"file_size"`
	Status           DocumentStatus   `json:"status"`
	Error            string           `json:"error,omitempty"`
	VectorIDs        []string         `json:"vector_ids"`
	ChunkCount       int              `json:"chunk_count"`
	UploadedAt       time.Time        `json:"uploaded_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// Metadata is the bundle handed to the indexing pipeline for every chunk of the document.
func (d *Document) Metadata() DocumentMetadata {
	return DocumentMetadata{
		DocumentID:  d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		UploadedAt:  d.UploadedAt,
	}
}

type DocumentMetadata struct {
	DocumentID  string           `json:"document_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Category    DocumentCategory `json:"category"`
	UploadedAt  time.Time        `json:"uploaded_at"`
}

// UploadRequest carries the caller-supplied fields of a new document.
type UploadRequest struct {
	Title       string
	Description string
	Category    string
	Filename    string
	MimeType    string
}

func (r UploadRequest) Validate() (DocumentCategory, error) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return "", WrapError(ErrValidation, "validate upload", fmt.Errorf("title is required"))
	}
	if len([]rune(title)) > MaxTitleLength {
		return "", WrapError(ErrValidation, "validate upload", fmt.Errorf("title exceeds %d characters", MaxTitleLength))
	}
	if len([]rune(r.Description)) > MaxDescriptionLength {
		return "", WrapError(ErrValidation, "validate upload", fmt.Errorf("description exceeds %d characters", MaxDescriptionLength))
	}
	return ParseCategory(r.Category)
}
