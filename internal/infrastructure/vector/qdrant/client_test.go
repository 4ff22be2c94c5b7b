package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/resilience"
)

func testEntries() []domain.IndexedEntry {
	return []domain.IndexedEntry{
		{
			ID:        "doc-1_0",
			Embedding: []float32{0.1, 0.2},
			Text:      "late payment penalty",
			Metadata: domain.EntryMetadata{
				Title:      "Supply agreement",
				Cause:      domain.CausePaymentTerms,
				ChunkID:    "abcdef0123",
				DocumentID: "doc-1",
				ChunkIndex: 0,
				Category:   domain.CategoryContract,
			},
		},
		{
			ID:        "doc-1_1",
			Embedding: []float32{0.3, 0.4},
			Text:      "breach of warranty",
			Metadata: domain.EntryMetadata{
				Title:      "Supply agreement",
				Cause:      domain.CauseContractBreach,
				ChunkID:    "0123abcdef",
				DocumentID: "doc-1",
				ChunkIndex: 1,
				Category:   domain.CategoryContract,
			},
		},
	}
}

func TestAddEnsuresCollectionOncePerVectorSize(t *testing.T) {
	var ensureCalls int32
	var upsertBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPut && r.URL.Path == "/collections/legal_documents":
			atomic.AddInt32(&ensureCalls, 1)
			w.WriteHeader(http.StatusCreated)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/legal_documents/points":
			if err := json.NewDecoder(r.Body).Decode(&upsertBody); err != nil {
				t.Errorf("decode upsert body: %v", err)
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := New(server.URL, "legal_documents", nil)
	if err := client.Add(context.Background(), testEntries()); err != nil {
		t.Fatalf("first Add() error = %v", err)
	}
	if err := client.Add(context.Background(), testEntries()); err != nil {
		t.Fatalf("second Add() error = %v", err)
	}
	if got := atomic.LoadInt32(&ensureCalls); got != 1 {
		t.Fatalf("expected ensure collection called once, got %d", got)
	}

	points := upsertBody["points"].([]any)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	first := points[0].(map[string]any)
	if first["id"] != PointID("doc-1_0") {
		t.Fatalf("expected deterministic point id, got %v", first["id"])
	}
	payload := first["payload"].(map[string]any)
	if payload["entry_id"] != "doc-1_0" || payload["document_id"] != "doc-1" || payload["cause"] != "Payment Terms" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestAddRejectsMixedDimensions(t *testing.T) {
	client := New("http://127.0.0.1:0", "legal_documents", nil)
	entries := testEntries()
	entries[1].Embedding = []float32{1}
	if err := client.Add(context.Background(), entries); err == nil {
		t.Fatalf("expected dimension error")
	}
}

func TestEnsureCollectionIncludesResponseBodyInError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && r.URL.Path == "/collections/legal_documents" {
			http.Error(w, "boom", http.StatusBadRequest)
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "legal_documents", nil)
	err := client.Add(context.Background(), testEntries()[:1])
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected error to include body, got %v", err)
	}
}

func TestQueryConvertsScoreToDistance(t *testing.T) {
	var searchBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/legal_documents/points/search" {
			if err := json.NewDecoder(r.Body).Decode(&searchBody); err != nil {
				t.Errorf("decode search body: %v", err)
			}
			_, _ = w.Write([]byte(`{"result":[
				{"id":"x","score":0.9,"payload":{"entry_id":"doc-1_0","text":"late payment","title":"Supply agreement","cause":"Payment Terms","chunk_id":"abcdef0123","document_id":"doc-1","chunk_index":0,"category":"contract","uploaded_at":"2026-01-02T03:04:05Z"}},
				{"id":"y","score":0.4,"payload":{"entry_id":"doc-1_1","text":"breach","cause":"Contract Breach","document_id":"doc-1","chunk_index":1}}
			]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := New(server.URL, "legal_documents", nil)
	hits, err := client.Query(context.Background(), []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if d := hits[0].Distance; d < 0.0999 || d > 0.1001 {
		t.Fatalf("expected distance 0.1, got %f", d)
	}
	if hits[0].Metadata.Cause != domain.CausePaymentTerms || hits[0].Metadata.Title != "Supply agreement" {
		t.Fatalf("unexpected metadata: %#v", hits[0].Metadata)
	}
	if !hits[0].Metadata.UploadedAt.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)) {
		t.Fatalf("unexpected uploaded_at: %v", hits[0].Metadata.UploadedAt)
	}
	if hits[1].Metadata.ChunkIndex != 1 || hits[1].ID != "doc-1_1" {
		t.Fatalf("unexpected second hit: %#v", hits[1])
	}
	if searchBody["limit"].(float64) != 2 {
		t.Fatalf("expected limit 2, got %v", searchBody["limit"])
	}
}

func TestCountTreatsMissingCollectionAsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status":{"error":"Not found: Collection legal_documents doesn't exist!"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	n, err := New(server.URL, "legal_documents", nil).Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
}

func TestCountDecodesExactCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/legal_documents/points/count" {
			_, _ = w.Write([]byte(`{"result":{"count":7}}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	n, err := New(server.URL, "legal_documents", nil).Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7, got %d", n)
	}
}

func TestDeleteByDocumentFiltersOnDocumentID(t *testing.T) {
	var deleteBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/collections/legal_documents/points/delete" {
			if err := json.NewDecoder(r.Body).Decode(&deleteBody); err != nil {
				t.Errorf("decode delete body: %v", err)
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	if err := New(server.URL, "legal_documents", nil).DeleteByDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("DeleteByDocument() error = %v", err)
	}
	must := deleteBody["filter"].(map[string]any)["must"].([]any)
	cond := must[0].(map[string]any)
	if cond["key"] != "document_id" || cond["match"].(map[string]any)["value"] != "doc-1" {
		t.Fatalf("unexpected delete filter: %#v", deleteBody)
	}
}

func TestServerErrorsAreRetriedAndMarkedTemporary(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     time.Millisecond,
		RetryMultiplier:     2,
		BreakerEnabled:      false,
	})
	_, err := New(server.URL, "legal_documents", exec).Count(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}
