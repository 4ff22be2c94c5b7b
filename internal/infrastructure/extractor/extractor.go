package extractor

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/html"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor/xlsx"
)

const defaultMaxBytes = 50 << 20

type Format string

const (
	FormatPlainText Format = "text"
	FormatPDF       Format = "pdf"
	FormatXLSX      Format = "xlsx"
	FormatHTML      Format = "html"
)

// Decoder turns the raw bytes of one file format into plain text.
type Decoder interface {
	Decode(raw []byte) (string, error)
}

// Extractor reads a stored document and decodes it by format.
type Extractor struct {
	storage  ports.ObjectStorage
	decoders map[Format]Decoder
	maxBytes int64
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{
		storage: storage,
		decoders: map[Format]Decoder{
			FormatPlainText: plaintext.NewDecoder(),
			FormatPDF:       pdf.NewDecoder(),
			FormatXLSX:      xlsx.NewDecoder(),
			FormatHTML:      html.NewDecoder(),
		},
		maxBytes: defaultMaxBytes,
	}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	format := DetectFormat(doc.OriginalFilename, doc.MimeType)
	decoder, ok := e.decoders[format]
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("no decoder for format %s", format))
	}

	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if int64(len(raw)) > e.maxBytes {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", fmt.Errorf("document exceeds %d bytes", e.maxBytes))
	}

	text, err := decoder.Decode(raw)
	if err != nil {
		return "", fmt.Errorf("decode %s %q: %w", format, doc.OriginalFilename, err)
	}
	return text, nil
}

// DetectFormat prefers the file extension and falls back to the MIME type.
// Unknown inputs are treated as plain text.
func DetectFormat(filename, mimeType string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".txt", ".md", ".text", ".csv":
		return FormatPlainText
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0]))
	switch mediaType {
	case "application/pdf":
		return FormatPDF
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return FormatXLSX
	case "text/html", "application/xhtml+xml":
		return FormatHTML
	default:
		return FormatPlainText
	}
}
