package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type chunkerFake struct {
	chunks []domain.Chunk
}

func (f *chunkerFake) Split(string) []domain.Chunk {
	out := make([]domain.Chunk, len(f.chunks))
	copy(out, f.chunks)
	return out
}

type classifierFake struct {
	labels map[string]domain.CauseLabel
}

func (f *classifierFake) Classify(text string) domain.CauseLabel {
	if label, ok := f.labels[text]; ok {
		return label
	}
	return domain.CauseGeneralCompliance
}

type embedderFake struct {
	vectors  map[string][]float32
	fixed    [][]float32
	err      error
	calls    int
	lastText []string
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.lastText = append([]string(nil), texts...)
	if f.err != nil {
		return nil, f.err
	}
	if f.fixed != nil {
		return f.fixed, nil
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			vec = []float32{0, 0, 1}
		}
		out = append(out, vec)
	}
	return out, nil
}

type indexFake struct {
	added      [][]domain.IndexedEntry
	addErr     error
	count      int
	countErr   error
	hits       []domain.VectorHit
	queryErr   error
	queryK     int
	queryCalls int
	deleted    []string
	deleteErr  error
}

func (f *indexFake) Add(_ context.Context, entries []domain.IndexedEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.added = append(f.added, entries)
	return nil
}

func (f *indexFake) Query(_ context.Context, _ []float32, k int) ([]domain.VectorHit, error) {
	f.queryCalls++
	f.queryK = k
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if k < len(f.hits) {
		return f.hits[:k], nil
	}
	return f.hits, nil
}

func (f *indexFake) Count(context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.count, nil
}

func (f *indexFake) DeleteByDocument(_ context.Context, documentID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, documentID)
	return nil
}

func (f *indexFake) Name() string { return "legal_documents" }

type statusCall struct {
	status domain.DocumentStatus
	errMsg string
}

type repoFake struct {
	docs        map[string]*domain.Document
	created     *domain.Document
	createErr   error
	getErr      error
	statusErr   error
	markErr     error
	deleteErr   error
	statusCalls []statusCall
	indexed     *domain.IndexingResult
	deletedIDs  []string
}

func (f *repoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.created = &copyDoc
	return nil
}

func (f *repoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *repoFake) List(context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (f *repoFake) UpdateStatus(_ context.Context, _ string, status domain.DocumentStatus, errMessage string) error {
	f.statusCalls = append(f.statusCalls, statusCall{status: status, errMsg: errMessage})
	return f.statusErr
}

func (f *repoFake) MarkIndexed(_ context.Context, _ string, result domain.IndexingResult) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.indexed = &result
	return nil
}

func (f *repoFake) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	saveErr   error
	deleted   []string
	deleteErr error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return 0, err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return int64(len(raw)), nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type queueFake struct {
	documentID string
	err        error
}

func (f *queueFake) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if f.err != nil {
		return f.err
	}
	f.documentID = documentID
	return nil
}

func (f *queueFake) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, *domain.Document) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}
