package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/resilience"
)

// pointNamespace derives stable point ids from entry ids; Qdrant only accepts
// UUIDs or unsigned integers as point ids.
var pointNamespace = uuid.MustParse("5b0c2f0e-8f5e-4a55-9d1b-2f3c7a1e6d42")

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client
	executor   *resilience.Executor

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   executor,
	}
}

func (c *Client) Name() string { return c.collection }

func PointID(entryID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(entryID)).String()
}

func (c *Client) Add(ctx context.Context, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	vectorSize := len(entries[0].Embedding)
	for _, e := range entries {
		if len(e.Embedding) != vectorSize || vectorSize == 0 {
			return fmt.Errorf("entry %s: embedding dimension %d, batch expects %d", e.ID, len(e.Embedding), vectorSize)
		}
	}

	if err := c.ensureCollection(ctx, vectorSize); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  []float32      `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(entries))
	for _, e := range entries {
		payload := e.Metadata.Payload()
		payload["entry_id"] = e.ID
		payload["text"] = e.Text
		points = append(points, point{
			ID:      PointID(e.ID),
			Vector:  e.Embedding,
			Payload: payload,
		})
	}

	path := fmt.Sprintf("/collections/%s/points?wait=true", c.collection)
	return c.execute(ctx, "upsert", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPut, path, map[string]any{"points": points}, nil, "upsert")
	})
}

func (c *Client) Query(ctx context.Context, embedding []float32, k int) ([]domain.VectorHit, error) {
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}
	reqBody := map[string]any{
		"vector":       embedding,
		"limit":        k,
		"with_payload": true,
	}

	var searchResp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/search", c.collection)
	err := c.execute(ctx, "search", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, path, reqBody, &searchResp, "search")
	})
	if err != nil {
		if isNotFound(err) {
			return []domain.VectorHit{}, nil
		}
		return nil, err
	}

	out := make([]domain.VectorHit, 0, len(searchResp.Result))
	for _, r := range searchResp.Result {
		out = append(out, domain.VectorHit{
			ID:       getStringPayload(r.Payload, "entry_id"),
			Text:     getStringPayload(r.Payload, "text"),
			Metadata: metadataFromPayload(r.Payload),
			// Cosine collections report similarity; the port speaks distance.
			Distance: 1 - r.Score,
		})
	}
	return out, nil
}

func (c *Client) Count(ctx context.Context) (int, error) {
	var countResp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	path := fmt.Sprintf("/collections/%s/points/count", c.collection)
	err := c.execute(ctx, "count", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, path, map[string]any{"exact": true}, &countResp, "count")
	})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return countResp.Result.Count, nil
}

func (c *Client) DeleteByDocument(ctx context.Context, documentID string) error {
	reqBody := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key": "document_id",
					"match": map[string]any{
						"value": documentID,
					},
				},
			},
		},
	}
	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", c.collection)
	err := c.execute(ctx, "delete", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPost, path, reqBody, nil, "delete")
	})
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	reqBody := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}

	path := fmt.Sprintf("/collections/%s", c.collection)
	err := c.execute(ctx, "ensure_collection", func(ctx context.Context) error {
		return c.doJSON(ctx, http.MethodPut, path, reqBody, nil, "ensure collection")
	})
	// 409 if the collection already exists (depends on version/config).
	if err != nil && !isConflict(err) {
		return err
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

func (c *Client) execute(ctx context.Context, operation string, call func(context.Context) error) error {
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "qdrant."+operation, call, classifyQdrantError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded("qdrant "+operation, err)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func metadataFromPayload(payload map[string]any) domain.EntryMetadata {
	meta := domain.EntryMetadata{
		Title:      getStringPayload(payload, "title"),
		Cause:      domain.CauseLabel(getStringPayload(payload, "cause")),
		ChunkID:    getStringPayload(payload, "chunk_id"),
		DocumentID: getStringPayload(payload, "document_id"),
		ChunkIndex: getIntPayload(payload, "chunk_index"),
		Category:   domain.DocumentCategory(getStringPayload(payload, "category")),
	}
	if raw := getStringPayload(payload, "uploaded_at"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			meta.UploadedAt = ts
		}
	}
	return meta
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func getIntPayload(payload map[string]any, key string) int {
	switch v := payload[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}
