package usecase

import (
	"fmt"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

const highRiskMinMatches = 2

const (
	recommendationNone = "No significant similarity found with known compliance issues."
	recommendationSome = "Some similarities found. Consider reviewing these areas."
)

// Aggregate groups matches by cause and derives the risk summary. It keeps
// causes in the order they were first seen and never reorders matches.
func Aggregate(query string, threshold float64, matches []domain.MatchResult) domain.ComplianceReport {
	groups := domain.CauseGroups{}
	positions := make(map[domain.CauseLabel]int)
	for _, match := range matches {
		pos, ok := positions[match.Cause]
		if !ok {
			pos = len(groups)
			positions[match.Cause] = pos
			groups = append(groups, domain.CauseGroup{Cause: match.Cause})
		}
		groups[pos].Matches = append(groups[pos].Matches, match)
	}

	highRisk := []domain.HighRiskCause{}
	for _, group := range groups {
		if len(group.Matches) < highRiskMinMatches {
			continue
		}
		var sum float64
		for _, m := range group.Matches {
			sum += m.SimilarityScore
		}
		highRisk = append(highRisk, domain.HighRiskCause{
			Cause:         group.Cause,
			Count:         len(group.Matches),
			AvgSimilarity: round3(sum / float64(len(group.Matches))),
		})
	}

	var recommendation string
	switch {
	case len(highRisk) > 0:
		recommendation = fmt.Sprintf("High similarity found with %d compliance issues. Review carefully.", len(highRisk))
	case len(matches) > 0:
		recommendation = recommendationSome
	default:
		recommendation = recommendationNone
	}

	return domain.ComplianceReport{
		Query:           query,
		Threshold:       threshold,
		TotalMatches:    len(matches),
		ResultsByCause:  groups,
		HighRiskCauses:  highRisk,
		Recommendations: []string{recommendation},
	}
}
