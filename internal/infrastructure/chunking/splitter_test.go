package chunking

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func legalText(paragraphs, sentences int) string {
	var b strings.Builder
	for p := 0; p < paragraphs; p++ {
		if p > 0 {
			b.WriteString("\n\n")
		}
		for s := 0; s < sentences; s++ {
			if s > 0 {
				b.WriteString(" ")
			}
			fmt.Fprintf(&b, "Clause%d.%d obliges the supplier to deliver goods within thirty days of the order.", p, s)
		}
	}
	return b.String()
}

func TestSplitEmptyTextReturnsEmptySequence(t *testing.T) {
	s := NewSplitter(1000, 200)
	for _, text := range []string{"", "   ", "\n\n\t"} {
		chunks := s.Split(text)
		if chunks == nil || len(chunks) != 0 {
			t.Fatalf("Split(%q) expected empty non-nil slice, got %#v", text, chunks)
		}
	}
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)
	chunks := s.Split("  Payment is due within 30 days.  ")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Text != "Payment is due within 30 days." {
		t.Fatalf("unexpected text %q", c.Text)
	}
	if c.ChunkIndex != 0 {
		t.Fatalf("expected index 0, got %d", c.ChunkIndex)
	}
	if c.CharLength != utf8.RuneCountInString(c.Text) {
		t.Fatalf("char length mismatch: %d", c.CharLength)
	}
	if len(c.ChunkID) != 10 {
		t.Fatalf("expected 10-char chunk id, got %q", c.ChunkID)
	}
}

func TestSplitIndicesAreGaplessAndSizesBounded(t *testing.T) {
	s := NewSplitter(300, 60)
	chunks := s.Split(legalText(6, 8))
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkIndex != i {
			t.Fatalf("chunk %d has index %d", i, c.ChunkIndex)
		}
		if c.CharLength > 300 {
			t.Fatalf("chunk %d exceeds size: %d", i, c.CharLength)
		}
		if strings.TrimSpace(c.Text) != c.Text || c.Text == "" {
			t.Fatalf("chunk %d is not trimmed: %q", i, c.Text)
		}
	}
}

func TestSplitCoversEveryWord(t *testing.T) {
	text := legalText(5, 7)
	s := NewSplitter(250, 50)
	chunks := s.Split(text)

	for _, word := range strings.Fields(text) {
		found := false
		for _, c := range chunks {
			if strings.Contains(c.Text, word) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("word %q not covered by any chunk", word)
		}
	}
	for i, c := range chunks {
		if !strings.Contains(text, c.Text) {
			t.Fatalf("chunk %d is not a span of the source text: %q", i, c.Text)
		}
	}
}

func TestSplitCarriesOverlapBetweenNeighbours(t *testing.T) {
	s := NewSplitter(200, 100)
	chunks := s.Split(legalText(1, 12))
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		tail := strings.Fields(prev[strings.LastIndex(prev, "Clause"):])[0]
		if !strings.HasPrefix(chunks[i].Text, tail) {
			t.Fatalf("chunk %d does not start with previous tail sentence %q: %q", i, tail, chunks[i].Text)
		}
	}
}

func TestSplitPrefersSentenceBoundaries(t *testing.T) {
	s := NewSplitter(120, 0)
	chunks := s.Split(legalText(1, 6))
	for i, c := range chunks {
		if !strings.HasSuffix(c.Text, ".") {
			t.Fatalf("chunk %d does not end at a sentence boundary: %q", i, c.Text)
		}
	}
}

func TestSplitBreaksUnbrokenRuns(t *testing.T) {
	s := NewSplitter(10, 2)
	chunks := s.Split(strings.Repeat("x", 35))
	if len(chunks) < 4 {
		t.Fatalf("expected long run to be split, got %d chunks", len(chunks))
	}
	for _, c := range chunks {
		if c.CharLength > 10 {
			t.Fatalf("chunk exceeds size: %d", c.CharLength)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := legalText(3, 9)
	a := NewSplitter(256, 64).Split(text)
	b := NewSplitter(256, 64).Split(text)
	if len(a) != len(b) {
		t.Fatalf("chunk counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs: %#v vs %#v", i, a[i], b[i])
		}
	}
}

func TestNewSplitterNormalizesSettings(t *testing.T) {
	s := NewSplitter(0, -5)
	if s.ChunkSize != DefaultChunkSize || s.Overlap != 0 {
		t.Fatalf("unexpected normalization: %+v", s)
	}
	s = NewSplitter(100, 150)
	if s.Overlap != 20 {
		t.Fatalf("expected overlap clamped to size/5, got %d", s.Overlap)
	}
}

func TestChunkIDIsTruncatedMD5(t *testing.T) {
	// md5("hello") = 5d41402abc4b2a76b9719d911017c592
	if got := ChunkID("hello"); got != "5d41402abc" {
		t.Fatalf("unexpected chunk id %q", got)
	}
}
