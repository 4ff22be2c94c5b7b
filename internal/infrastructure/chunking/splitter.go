package chunking

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/compliance-checker/internal/core/domain"
)

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200

	chunkIDLength = 10
)

// defaultSeparators go from coarse to fine: paragraph, line, sentence, word, rune.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts text into spans of at most ChunkSize runes, carrying up to
// Overlap runes of trailing context into the next span. Separators are kept
// attached to the piece they end, so no text is lost between spans.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		ChunkSize:  chunkSize,
		Overlap:    overlap,
		separators: defaultSeparators,
	}
}

func (s *Splitter) Split(text string) []domain.Chunk {
	if strings.TrimSpace(text) == "" {
		return []domain.Chunk{}
	}

	spans := s.splitRecursive(text, s.separators)
	out := make([]domain.Chunk, 0, len(spans))
	for _, span := range spans {
		out = append(out, domain.Chunk{
			ChunkID:    ChunkID(span),
			Text:       span,
			ChunkIndex: len(out),
			CharLength: utf8.RuneCountInString(span),
		})
	}
	return out
}

// ChunkID is a short content hash. Different spans may collide.
func ChunkID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])[:chunkIDLength]
}

func (s *Splitter) splitRecursive(text string, separators []string) []string {
	separator, finer := pickSeparator(text, separators)
	pieces := splitKeepSeparator(text, separator)

	var out []string
	var fitting []string
	for _, piece := range pieces {
		if runeLen(piece) <= s.ChunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, s.merge(fitting)...)
			fitting = nil
		}
		if len(finer) == 0 {
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				out = append(out, trimmed)
			}
			continue
		}
		out = append(out, s.splitRecursive(piece, finer)...)
	}
	if len(fitting) > 0 {
		out = append(out, s.merge(fitting)...)
	}
	return out
}

// merge packs consecutive pieces into spans no longer than ChunkSize and
// starts each new span with the tail pieces of the previous one.
func (s *Splitter) merge(pieces []string) []string {
	var out []string
	var current []string
	total := 0

	for _, piece := range pieces {
		length := runeLen(piece)
		if total+length > s.ChunkSize && len(current) > 0 {
			if span := strings.TrimSpace(strings.Join(current, "")); span != "" {
				out = append(out, span)
			}
			for len(current) > 0 && (total > s.Overlap || total+length > s.ChunkSize) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += length
	}
	if span := strings.TrimSpace(strings.Join(current, "")); span != "" {
		out = append(out, span)
	}
	return out
}

func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

func splitKeepSeparator(text, separator string) []string {
	if separator == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(text, separator)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
