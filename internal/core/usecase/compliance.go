package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

const indexStatusActive = "active"

// ComplianceRecorder receives the outcome of every compliance check.
type ComplianceRecorder interface {
	RecordComplianceCheck(report *domain.ComplianceReport, duration time.Duration, err error)
}

type ComplianceUseCase struct {
	search   *SimilaritySearch
	index    ports.VectorIndex
	recorder ComplianceRecorder
	logger   *slog.Logger
}

func NewComplianceUseCase(search *SimilaritySearch, index ports.VectorIndex, recorder ComplianceRecorder, logger *slog.Logger) *ComplianceUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceUseCase{
		search:   search,
		index:    index,
		recorder: recorder,
		logger:   logger,
	}
}

func (uc *ComplianceUseCase) Check(ctx context.Context, query string, threshold float64, topK int) (*domain.ComplianceReport, error) {
	start := time.Now()
	report, err := uc.check(ctx, query, threshold, topK)
	duration := time.Since(start)

	if uc.recorder != nil {
		uc.recorder.RecordComplianceCheck(report, duration, err)
	}
	if err != nil {
		uc.logger.WarnContext(ctx, "compliance_check_failed",
			"threshold", threshold,
			"top_k", topK,
			"kind", domain.KindName(err),
			"error", err.Error(),
		)
		return nil, err
	}
	uc.logger.InfoContext(ctx, "compliance_check",
		"threshold", threshold,
		"top_k", topK,
		"total_matches", report.TotalMatches,
		"high_risk_causes", len(report.HighRiskCauses),
		"duration_ms", duration.Milliseconds(),
	)
	return report, nil
}

func (uc *ComplianceUseCase) check(ctx context.Context, query string, threshold float64, topK int) (*domain.ComplianceReport, error) {
	matches, err := uc.search.Search(ctx, query, threshold, topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	report := Aggregate(query, threshold, matches)
	return &report, nil
}

func (uc *ComplianceUseCase) Stats(ctx context.Context) (*domain.IndexStats, error) {
	count, err := uc.index.Count(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrIndexQuery, "count index entries", err)
	}
	return &domain.IndexStats{
		CollectionName: uc.index.Name(),
		DocumentCount:  count,
		Status:         indexStatusActive,
	}, nil
}
