package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type MatchResult struct {
	SimilarityScore float64    `json:"similarity_score"`
	MatchingText    string     `json:"matching_text"`
	Cause           CauseLabel `json:"cause"`
	DocumentTitle   string     `json:"document_title"`
	DocumentID      string     `json:"document_id"`
}

type CauseGroup struct {
	Cause   CauseLabel
	Matches []MatchResult
}

// CauseGroups keeps causes in first-seen order. It encodes as a JSON object
// whose keys appear in that order.
type CauseGroups []CauseGroup

func (g CauseGroups) Get(cause CauseLabel) []MatchResult {
	for _, group := range g {
		if group.Cause == cause {
			return group.Matches
		}
	}
	return nil
}

func (g CauseGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, group := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(group.Cause))
		if err != nil {
			return nil, err
		}
		matches := group.Matches
		if matches == nil {
			matches = []MatchResult{}
		}
		value, err := json.Marshal(matches)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *CauseGroups) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("results_by_cause: expected object")
	}
	out := CauseGroups{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("results_by_cause: expected string key")
		}
		var matches []MatchResult
		if err := dec.Decode(&matches); err != nil {
			return fmt.Errorf("results_by_cause[%s]: %w", key, err)
		}
		out = append(out, CauseGroup{Cause: CauseLabel(key), Matches: matches})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*g = out
	return nil
}

type HighRiskCause struct {
	Cause         CauseLabel `json:"cause"`
	Count         int        `json:"count"`
	AvgSimilarity float64    `json:"avg_similarity"`
}

type ComplianceReport struct {
	Query           string          `json:"query"`
	Threshold       float64         `json:"threshold"`
	TotalMatches    int             `json:"total_matches"`
	ResultsByCause  CauseGroups     `json:"results_by_cause"`
	HighRiskCauses  []HighRiskCause `json:"high_risk_causes"`
	Recommendations []string        `json:"recommendations"`
}
