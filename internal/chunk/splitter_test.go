package chunk

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitShortTextIsOnePiece(t *testing.T) {
	s := splitter{size: 1000, overlap: 200}

	text := "def hello():\n    return 'world'\n"
	pieces := s.split(text, SeparatorsFor(".py"))

	require.Len(t, pieces, 1)
	assert.Equal(t, text, pieces[0])
}

func TestSplitRespectsSizeBound(t *testing.T) {
	s := splitter{size: 100, overlap: 20}

	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "line %02d with some filler text on it\n", i)
	}

	pieces := s.split(b.String(), SeparatorsFor(".md"))

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 100)
	}
}

func TestSplitOverlapWithinBound(t *testing.T) {
	s := splitter{size: 100, overlap: 30}

	// Unique line contents so overlap can be measured as the longest suffix
	// of one piece that prefixes the next.
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "u%02d-abcdefghijklmnopqrst\n", i)
	}
	text := strings.TrimSuffix(b.String(), "\n")

	pieces := s.split(text, defaultSeparators)
	require.Greater(t, len(pieces), 1)

	sawOverlap := false
	for i := 1; i < len(pieces); i++ {
		n := commonBoundary(pieces[i-1], pieces[i])
		assert.LessOrEqual(t, n, 30)
		if n > 0 {
			sawOverlap = true
		}
	}
	assert.True(t, sawOverlap, "expected at least one overlapping boundary")
}

// commonBoundary returns the length of the longest suffix of a that is also a
// prefix of b.
func commonBoundary(a, b string) int {
	max := len(a)
	if len(b) < max {
		max = len(b)
	}
	for n := max; n > 0; n-- {
		if strings.HasPrefix(b, a[len(a)-n:]) {
			return n
		}
	}
	return 0
}

func TestSplitCoversEveryLine(t *testing.T) {
	s := splitter{size: 120, overlap: 20}

	var lines []string
	for i := 0; i < 30; i++ {
		lines = append(lines, fmt.Sprintf("marker-%02d some content", i))
	}
	text := strings.Join(lines, "\n")

	pieces := s.split(text, defaultSeparators)
	joined := strings.Join(pieces, "\x00")

	for _, line := range lines {
		assert.Contains(t, joined, line)
	}
	// The tail is never dropped.
	assert.True(t, strings.HasSuffix(strings.TrimSpace(pieces[len(pieces)-1]), "marker-29 some content"))
}

func TestSplitOversizedPieceRecursesToFinerSeparators(t *testing.T) {
	s := splitter{size: 50, overlap: 10}

	// One paragraph far over size, no blank lines inside it.
	text := strings.Repeat("word ", 40)

	pieces := s.split(text, defaultSeparators)
	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 50)
	}
}

func TestChooseSeparator(t *testing.T) {
	seps := []string{"\nclass ", "\ndef ", "\n\n", "\n", " ", ""}

	sep, rest := chooseSeparator("import os\n\ndef f():\n    pass\n", seps)
	assert.Equal(t, "\ndef ", sep)
	assert.Equal(t, []string{"\n\n", "\n", " ", ""}, rest)

	sep, rest = chooseSeparator("no separators here at all", []string{"\nclass ", ""})
	assert.Equal(t, "", sep)
	assert.Nil(t, rest)
}

func TestSplitKeepingSeparator(t *testing.T) {
	pieces := splitKeepingSeparator("import os\ndef a():\ndef b():", "\ndef ")
	assert.Equal(t, []string{"import os", "\ndef a():", "\ndef b():"}, pieces)

	// Leading separator produces no empty head piece.
	pieces = splitKeepingSeparator("\ndef a():", "\ndef ")
	assert.Equal(t, []string{"\ndef a():"}, pieces)

	// The empty separator splits into runes, not bytes.
	pieces = splitKeepingSeparator("abc", "")
	assert.Equal(t, []string{"a", "b", "c"}, pieces)
	pieces = splitKeepingSeparator("a界b", "")
	assert.Equal(t, []string{"a", "界", "b"}, pieces)
}

func TestSplitNeverCutsMidRune(t *testing.T) {
	s := splitter{size: 50, overlap: 10}

	// A long run of multi-byte runes with no finer separator forces the
	// rune-level fallback.
	text := strings.Repeat("界", 60)

	pieces := s.split(text, defaultSeparators)
	require.Greater(t, len(pieces), 1)

	var joined strings.Builder
	for _, p := range pieces {
		assert.True(t, utf8.ValidString(p), "chunk cut mid-rune: %q", p)
		assert.LessOrEqual(t, len(p), 50)
		joined.WriteString(p)
	}
	assert.Contains(t, joined.String(), strings.Repeat("界", 16))
}
