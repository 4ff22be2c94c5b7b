package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
	"github.com/kirillkom/compliance-checker/internal/core/usecase"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/chunking"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/classifier/keyword"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/extractor"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/queue/nats"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/resilience"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/vector/memory"
	"github.com/kirillkom/compliance-checker/internal/infrastructure/vector/qdrant"
)

// Options carries the process-specific collaborators of the wiring.
type Options struct {
	Role     Role
	Logger   *slog.Logger
	Observer resilience.Observer
	Recorder usecase.ComplianceRecorder
}

// Compliance is the query side of the service: embedding, the vector index
// and the compliance use case built on them.
type Compliance struct {
	Index        ports.VectorIndex
	Embedder     ports.Embedder
	Executor     *resilience.Executor
	ComplianceUC *usecase.ComplianceUseCase
}

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue       ports.MessageQueue
	Repo        *postgres.DocumentRepository
	IngestUC    ports.DocumentIngestor
	ProcessUC   ports.DocumentProcessor
	DocumentsUC *usecase.DocumentsUseCase

	*Compliance

	closeFn func()
}

func NewCompliance(cfg config.Config, opts Options) (*Compliance, error) {
	if err := CheckRole(cfg, opts.Role); err != nil {
		return nil, err
	}
	logger := loggerOrDefault(opts.Logger)

	executorOpts := []resilience.Option{resilience.WithLogger(logger)}
	if opts.Observer != nil {
		executorOpts = append(executorOpts, resilience.WithObserver(opts.Observer))
	}
	executor := resilience.NewExecutor(cfg.Resilience, executorOpts...)

	index, err := newVectorIndex(cfg, executor)
	if err != nil {
		return nil, err
	}
	embedder := ollama.NewEmbedder(ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor))
	search := usecase.NewSimilaritySearch(embedder, index)

	return &Compliance{
		Index:        index,
		Embedder:     embedder,
		Executor:     executor,
		ComplianceUC: usecase.NewComplianceUseCase(search, index, opts.Recorder, logger),
	}, nil
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := loggerOrDefault(opts.Logger)

	compliance, err := NewCompliance(cfg, opts)
	if err != nil {
		return nil, err
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		return nil, err
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: compliance.Executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	pipeline := usecase.NewIndexingPipeline(chunker, classifier, compliance.Embedder, compliance.Index)

	logger.Info("bootstrap_ready",
		"vector_backend", cfg.VectorBackend,
		"collection", compliance.Index.Name(),
		"chunk_size", cfg.ChunkSize,
		"chunk_overlap", cfg.ChunkOverlap,
	)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue:       queue,
		Repo:        repo,
		IngestUC:    usecase.NewIngestDocumentUseCase(repo, storage, queue),
		ProcessUC:   usecase.NewProcessDocumentUseCase(repo, extractor.New(storage), pipeline),
		DocumentsUC: usecase.NewDocumentsUseCase(repo, storage, compliance.Index),

		Compliance: compliance,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func newVectorIndex(cfg config.Config, executor *resilience.Executor) (ports.VectorIndex, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendMemory:
		return memory.New(cfg.VectorCollection), nil
	case config.VectorBackendQdrant, "":
		return qdrant.New(cfg.QdrantURL, cfg.VectorCollection, executor), nil
	default:
		return nil, fmt.Errorf("unsupported vector backend %q", cfg.VectorBackend)
	}
}

func newClassifier(cfg config.Config) (*keyword.Classifier, error) {
	if cfg.ClassifierRulesFile == "" {
		return keyword.New(keyword.DefaultRules), nil
	}
	rules, err := keyword.LoadRules(cfg.ClassifierRulesFile)
	if err != nil {
		return nil, fmt.Errorf("load classifier rules: %w", err)
	}
	return keyword.New(rules), nil
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
