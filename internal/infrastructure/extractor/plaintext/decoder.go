package plaintext

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type Decoder struct{}

func NewDecoder() *Decoder { return &Decoder{} }

// Decode accepts UTF-8 text only; a byte-order mark is dropped.
func (Decoder) Decode(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode plain text", errors.New("content is not valid UTF-8"))
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.TrimSpace(text), nil
}
