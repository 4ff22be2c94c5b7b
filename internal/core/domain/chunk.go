package domain

import (
	"fmt"
	"strconv"
	"time"
)

// CauseLabel names the compliance category a chunk of legal text concerns.
type CauseLabel string

const (
	CauseContractBreach    CauseLabel = "Contract Breach"
	CausePrivacyViolation  CauseLabel = "Privacy Violation"
	CauseIPInfringement    CauseLabel = "IP Infringement"
	CauseFraud             CauseLabel = "Fraud"
	CauseLiabilityIssues   CauseLabel = "Liability Issues"
	CausePaymentTerms      CauseLabel = "Payment Terms"
	CauseConfidentiality   CauseLabel = "Confidentiality"
	CauseGeneralCompliance CauseLabel = "General Compliance"
)

var allCauses = []CauseLabel{
	CauseContractBreach,
	CausePrivacyViolation,
	CauseIPInfringement,
	CauseFraud,
	CauseLiabilityIssues,
	CausePaymentTerms,
	CauseConfidentiality,
	CauseGeneralCompliance,
}

// AllCauses returns every label in classification priority order.
func AllCauses() []CauseLabel {
	out := make([]CauseLabel, len(allCauses))
	copy(out, allCauses)
	return out
}

func ParseCauseLabel(raw string) (CauseLabel, error) {
	for _, c := range allCauses {
		if string(c) == raw {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown cause label %q", raw)
}

// Chunk is one span of a document's text. It is never mutated after the
// pipeline assigns its cause.
type Chunk struct {
	ChunkID    string     `json:"chunk_id"`
	Text       string     `json:"text"`
	ChunkIndex int        `json:"chunk_index"`
	Cause      CauseLabel `json:"cause"`
	CharLength int        `json:"char_length"`
}

// EntryID is the index-wide unique key of a chunk.
func EntryID(documentID string, chunkIndex int) string {
	return documentID + "_" + strconv.Itoa(chunkIndex)
}

type EntryMetadata struct {
	Title      string           `json:"title"`
	Cause      CauseLabel       `json:"cause"`
	ChunkID    string           `json:"chunk_id"`
	DocumentID string           `json:"document_id"`
	ChunkIndex int              `json:"chunk_index"`
	Category   DocumentCategory `json:"category,omitempty"`
	UploadedAt time.Time        `json:"uploaded_at"`
}

// Payload flattens the metadata into the key/value form vector stores keep.
// Document-level keys are written last so they win over chunk-local ones.
func (m EntryMetadata) Payload() map[string]any {
	payload := map[string]any{
		"cause":       string(m.Cause),
		"chunk_id":    m.ChunkID,
		"chunk_index": m.ChunkIndex,
	}
	payload["title"] = m.Title
	payload["document_id"] = m.DocumentID
	payload["category"] = string(m.Category)
	if !m.UploadedAt.IsZero() {
		payload["uploaded_at"] = m.UploadedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

type IndexedEntry struct {
	ID        string        `json:"id"`
	Embedding []float32     `json:"embedding"`
	Text      string        `json:"text"`
	Metadata  EntryMetadata `json:"metadata"`
}

// VectorHit is one ranked neighbour returned by a vector index. Distance is
// cosine distance, so 0 means identical direction.
type VectorHit struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata EntryMetadata `json:"metadata"`
	Distance float64       `json:"distance"`
}

type IndexingResult struct {
	DocumentID string   `json:"document_id"`
	ChunkCount int      `json:"chunk_count"`
	EntryIDs   []string `json:"entry_ids"`
}

type IndexStats struct {
	CollectionName string `json:"collection_name"`
	DocumentCount  int    `json:"document_count"`
	Status         string `json:"status"`
}
