package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
)

// Role names the process a wiring is built for.
type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
	RoleMCP    Role = "mcp"
)

const indexJobTimeout = 5 * time.Minute

// IndexesInProcess reports whether the api has to consume upload events
// itself. A memory index is private to the process that built it, so the
// process answering checks must also be the one writing entries.
func IndexesInProcess(cfg config.Config) bool {
	return cfg.VectorBackend == config.VectorBackendMemory
}

// CheckRole rejects a vector backend the given process cannot share.
func CheckRole(cfg config.Config, role Role) error {
	if !IndexesInProcess(cfg) {
		return nil
	}
	switch role {
	case RoleAPI, "":
		return nil
	case RoleWorker, RoleMCP:
		return fmt.Errorf("vector backend %q is local to the api process; %s needs %q",
			cfg.VectorBackend, role, config.VectorBackendQdrant)
	default:
		return fmt.Errorf("unknown process role %q", role)
	}
}

// JobObserver receives per-document indexing measurements.
type JobObserver interface {
	StartDocument()
	FinishDocument(service string, duration time.Duration, err error)
	ObserveQueueLag(service string, lag time.Duration)
}

type documentLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// RunIndexer consumes upload events and indexes each document until ctx ends.
func (a *App) RunIndexer(ctx context.Context, service string, observer JobObserver) error {
	return a.Queue.SubscribeDocumentUploaded(ctx, indexHandler(service, a.Repo, a.ProcessUC, observer, a.Logger))
}

func indexHandler(
	service string,
	docs documentLookup,
	processor ports.DocumentProcessor,
	observer JobObserver,
	logger *slog.Logger,
) func(context.Context, string) error {
	logger = loggerOrDefault(logger)
	return func(ctx context.Context, documentID string) error {
		jobCtx, cancel := context.WithTimeout(ctx, indexJobTimeout)
		defer cancel()

		if observer != nil {
			if doc, err := docs.GetByID(jobCtx, documentID); err == nil {
				observer.ObserveQueueLag(service, time.Since(doc.UploadedAt))
			}
			observer.StartDocument()
		}

		start := time.Now()
		err := processor.ProcessByID(jobCtx, documentID)
		duration := time.Since(start)
		if observer != nil {
			observer.FinishDocument(service, duration, err)
		}
		if err != nil {
			return err
		}
		logger.InfoContext(jobCtx, "document_indexed",
			"document_id", documentID,
			"duration_ms", duration.Milliseconds(),
		)
		return nil
	}
}
