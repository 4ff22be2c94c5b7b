package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")

	ErrEmptyInput = errors.New("empty input")
	ErrValidation = errors.New("validation failed")
	ErrEmbedding  = errors.New("embedding failed")
	ErrIndexWrite = errors.New("index write failed")
	ErrIndexQuery = errors.New("index query failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindName returns a short machine-readable name for the first known kind in err.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrDocumentNotFound):
		return "not_found"
	case errors.Is(err, ErrEmbedding):
		return "embedding"
	case errors.Is(err, ErrIndexWrite):
		return "index_write"
	case errors.Is(err, ErrIndexQuery):
		return "index_query"
	case errors.Is(err, ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}
