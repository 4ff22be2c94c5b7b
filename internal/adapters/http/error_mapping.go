package httpadapter

import (
	"net/http"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation),
		domain.IsKind(err, domain.ErrInvalidInput),
		domain.IsKind(err, domain.ErrEmptyInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrEmbedding),
		domain.IsKind(err, domain.ErrIndexQuery),
		domain.IsKind(err, domain.ErrIndexWrite):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorKind names the error in the response body consistently with the status.
func errorKind(err error, status int) string {
	if status == http.StatusServiceUnavailable {
		return "temporary"
	}
	return domain.KindName(err)
}
