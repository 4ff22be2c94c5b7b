package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *DocumentRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS documents (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	original_filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT,
	vector_ids JSONB NOT NULL DEFAULT '[]'::jsonb,
	chunk_count INTEGER NOT NULL DEFAULT 0,
	uploaded_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_status ON documents(status);
CREATE INDEX IF NOT EXISTS idx_documents_uploaded_at ON documents(uploaded_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	vectorIDs := doc.VectorIDs
	if vectorIDs == nil {
		vectorIDs = []string{}
	}
	idsJSON, err := json.Marshal(vectorIDs)
	if err != nil {
		return fmt.Errorf("marshal vector ids: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, title, description, category, original_filename, mime_type, storage_path, file_size,
	status, error_message, vector_ids, chunk_count, uploaded_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`,
		doc.ID, doc.Title, doc.Description, string(doc.Category), doc.OriginalFilename, doc.MimeType,
		doc.StoragePath, doc.FileSize, string(doc.Status), doc.Error, idsJSON, doc.ChunkCount,
		doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

const selectDocumentColumns = `
SELECT id, title, description, category, original_filename, mime_type, storage_path, file_size,
	status, COALESCE(error_message, ''), vector_ids, chunk_count, uploaded_at, updated_at
FROM documents
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var idsRaw []byte
	var status, category string

	err := row.Scan(
		&doc.ID, &doc.Title, &doc.Description, &category, &doc.OriginalFilename, &doc.MimeType,
		&doc.StoragePath, &doc.FileSize, &status, &doc.Error, &idsRaw, &doc.ChunkCount,
		&doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.VectorIDs = []string{}
	if len(idsRaw) > 0 {
		if err := json.Unmarshal(idsRaw, &doc.VectorIDs); err != nil {
			return nil, fmt.Errorf("unmarshal vector ids: %w", err)
		}
	}
	doc.Status = domain.DocumentStatus(status)
	doc.Category = domain.DocumentCategory(category)
	return &doc, nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, selectDocumentColumns+`WHERE id = $1`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, selectDocumentColumns+`ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return ensureAffected(res, "update document status", id)
}

func (r *DocumentRepository) MarkIndexed(ctx context.Context, id string, result domain.IndexingResult) error {
	ids := result.EntryIDs
	if ids == nil {
		ids = []string{}
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("marshal vector ids: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = NULL, vector_ids = $3, chunk_count = $4, updated_at = $5
WHERE id = $1
`, id, string(domain.StatusIndexed), idsJSON, result.ChunkCount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document indexed: %w", err)
	}
	return ensureAffected(res, "mark document indexed", id)
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return ensureAffected(res, "delete document", id)
}

func ensureAffected(res sql.Result, op, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDocumentNotFound, op, fmt.Errorf("id=%s", id))
	}
	return nil
}
