package extractor

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type storageFake struct {
	files map[string]string
}

func (f *storageFake) Save(context.Context, string, io.Reader) (int64, error) {
	return 0, errors.New("not implemented")
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.files[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "open", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *storageFake) Delete(context.Context, string) error { return nil }

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		filename string
		mime     string
		want     Format
	}{
		{filename: "contract.PDF", want: FormatPDF},
		{filename: "ledger.xlsx", want: FormatXLSX},
		{filename: "policy.htm", want: FormatHTML},
		{filename: "notes.txt", mime: "application/pdf", want: FormatPlainText},
		{filename: "upload", mime: "application/pdf", want: FormatPDF},
		{filename: "upload", mime: "text/html; charset=utf-8", want: FormatHTML},
		{filename: "upload", mime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", want: FormatXLSX},
		{filename: "upload", mime: "", want: FormatPlainText},
	}
	for _, tc := range cases {
		if got := DetectFormat(tc.filename, tc.mime); got != tc.want {
			t.Fatalf("DetectFormat(%q, %q) = %s, want %s", tc.filename, tc.mime, got, tc.want)
		}
	}
}

func TestExtractDispatchesByFormat(t *testing.T) {
	storage := &storageFake{files: map[string]string{
		"a.txt":  "  plain clause  ",
		"b.html": "<p>Data <i>protection</i></p>",
	}}
	ex := New(storage)

	text, err := ex.Extract(context.Background(), &domain.Document{OriginalFilename: "a.txt", StoragePath: "a.txt"})
	if err != nil || text != "plain clause" {
		t.Fatalf("plain text: got %q, %v", text, err)
	}
	text, err = ex.Extract(context.Background(), &domain.Document{OriginalFilename: "b.html", StoragePath: "b.html"})
	if err != nil || text != "Data protection" {
		t.Fatalf("html: got %q, %v", text, err)
	}
}

func TestExtractEnforcesSizeLimit(t *testing.T) {
	storage := &storageFake{files: map[string]string{"big.txt": strings.Repeat("x", 64)}}
	ex := New(storage)
	ex.maxBytes = 16

	_, err := ex.Extract(context.Background(), &domain.Document{OriginalFilename: "big.txt", StoragePath: "big.txt"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	ex := New(&storageFake{files: map[string]string{}})

	_, err := ex.Extract(context.Background(), &domain.Document{OriginalFilename: "gone.txt", StoragePath: "gone.txt"})
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
