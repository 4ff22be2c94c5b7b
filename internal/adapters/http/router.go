package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/getkin/kin-openapi/openapi3"
	"golang.org/x/time/rate"

	"github.com/kirillkom/compliance-checker/internal/config"
	"github.com/kirillkom/compliance-checker/internal/core/domain"
	"github.com/kirillkom/compliance-checker/internal/core/ports"
	"github.com/kirillkom/compliance-checker/internal/observability/metrics"
)

const (
	serviceName = "compliance-api"

	maxUploadBytes   = 50 << 20
	maxJSONBodyBytes = 1 << 20

	minQueryTextLength = 10
	maxTopK            = 20

	backpressureWait = 100 * time.Millisecond
)

// DocumentService is the read and delete surface the router needs for documents.
type DocumentService interface {
	ports.DocumentReader
	ports.DocumentRemover
}

type Option func(*Router)

func WithMetrics(m *metrics.HTTPServerMetrics) Option {
	return func(rt *Router) { rt.metrics = m }
}

// WithHealthCheck sets the database check reported by /healthz.
func WithHealthCheck(check func(context.Context) error) Option {
	return func(rt *Router) { rt.healthCheck = check }
}

func WithLogger(logger *slog.Logger) Option {
	return func(rt *Router) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

func WithVersion(version string) Option {
	return func(rt *Router) { rt.version = version }
}

type Router struct {
	cfg     config.Config
	ingest  ports.DocumentIngestor
	docs    DocumentService
	checker ports.ComplianceChecker

	metrics     *metrics.HTTPServerMetrics
	healthCheck func(context.Context) error
	logger      *slog.Logger
	version     string
	openAPI     *openapi3.T
}

func NewRouter(
	cfg config.Config,
	ingest ports.DocumentIngestor,
	docs DocumentService,
	checker ports.ComplianceChecker,
	opts ...Option,
) (*Router, error) {
	doc, err := loadOpenAPI(context.Background())
	if err != nil {
		return nil, err
	}
	rt := &Router{
		cfg:     cfg,
		ingest:  ingest,
		docs:    docs,
		checker: checker,
		logger:  slog.Default(),
		version: "dev",
		openAPI: doc,
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/documents", rt.uploadDocument)
	api.HandleFunc("GET /v1/documents", rt.listDocuments)
	api.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	api.HandleFunc("DELETE /v1/documents/{id}", rt.deleteDocument)
	api.HandleFunc("POST /v1/compliance/check", rt.checkCompliance)
	api.HandleFunc("GET /v1/index/stats", rt.indexStats)

	var limiter *rate.Limiter
	if rt.cfg.APIRateLimitRPS > 0 {
		burst := rt.cfg.APIRateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rt.cfg.APIRateLimitRPS), burst)
	}
	var apiHandler http.Handler = api
	apiHandler = backpressureMiddleware(apiHandler, rt.cfg.APIMaxInFlight, backpressureWait, rt.recordRejected)
	apiHandler = rateLimitMiddleware(apiHandler, limiter, rt.recordRejected)

	root := http.NewServeMux()
	root.HandleFunc("GET /healthz", rt.healthz)
	root.HandleFunc("GET /openapi.json", rt.serveOpenAPI)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}
	root.Handle("/v1/", apiHandler)

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) recordRejected(reason string) {
	if rt.metrics != nil {
		rt.metrics.RecordRejected(reason)
	}
}

func (rt *Router) healthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":  "ok",
		"service": serviceName,
		"version": rt.version,
	}
	status := http.StatusOK
	if rt.healthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.healthCheck(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "disconnected"
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "connected"
		}
	}
	writeJSON(w, status, resp)
}

func (rt *Router) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rt.openAPI)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "upload exceeds size limit", Kind: "validation"})
			return
		}
		rt.writeError(w, r, domain.WrapError(domain.ErrValidation, "parse upload", err))
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrValidation, "parse upload", errors.New("multipart field 'file' is required")))
		return
	}
	defer file.Close()

	doc, err := rt.ingest.Upload(r.Context(), domain.UploadRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Filename:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
	}, file)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := rt.docs.List(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.docs.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := rt.docs.Delete(r.Context(), id); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("document %s deleted", id)})
}

type complianceCheckRequest struct {
	QueryText string   `json:"query_text"`
	Threshold *float64 `json:"threshold"`
	TopK      *int     `json:"top_k"`
}

func (rt *Router) checkCompliance(w http.ResponseWriter, r *http.Request) {
	var req complianceCheckRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(&req); err != nil {
		rt.writeError(w, r, domain.WrapError(domain.ErrValidation, "decode request", errors.New("invalid json")))
		return
	}

	threshold, topK, err := rt.resolveCheckParams(req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	report, err := rt.checker.Check(r.Context(), strings.TrimSpace(req.QueryText), threshold, topK)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// resolveCheckParams applies the configured defaults for omitted fields and
// enforces the public bounds.
func (rt *Router) resolveCheckParams(req complianceCheckRequest) (float64, int, error) {
	if utf8.RuneCountInString(strings.TrimSpace(req.QueryText)) < minQueryTextLength {
		return 0, 0, domain.WrapError(domain.ErrValidation, "check compliance",
			fmt.Errorf("query_text must be at least %d characters", minQueryTextLength))
	}

	threshold := rt.cfg.ComplianceThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if threshold < 0 || threshold > 1 {
		return 0, 0, domain.WrapError(domain.ErrValidation, "check compliance", errors.New("threshold must be within [0,1]"))
	}

	topK := rt.cfg.ComplianceTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 1 || topK > maxTopK {
		return 0, 0, domain.WrapError(domain.ErrValidation, "check compliance", fmt.Errorf("top_k must be within [1,%d]", maxTopK))
	}
	return threshold, topK, nil
}

func (rt *Router) indexStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.checker.Stats(r.Context())
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.ErrorContext(r.Context(), "request_failed", "path", r.URL.Path, "status", status, "error", err.Error())
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: errorKind(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
