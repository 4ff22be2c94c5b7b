package xlsx

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

type Decoder struct{}

func NewDecoder() *Decoder { return &Decoder{} }

// Decode flattens every sheet into lines of tab-separated cells, sheets
// separated by a blank line. Empty rows are dropped.
func (Decoder) Decode(raw []byte) (string, error) {
	book, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "decode xlsx", err)
	}
	defer func() {
		_ = book.Close()
	}()

	sheets := make([]string, 0)
	for _, name := range book.GetSheetList() {
		rows, err := book.GetRows(name)
		if err != nil {
			return "", domain.WrapError(domain.ErrInvalidInput, "decode xlsx", err)
		}
		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			sheets = append(sheets, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(sheets, "\n\n"), nil
}
