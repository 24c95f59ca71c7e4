package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocate(t *testing.T, doc, start, end string) Span {
	t.Helper()
	span, err := Locate(doc, start, end)
	require.NoError(t, err)
	return span
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, "\n", Separator("a\nb\n"))
	assert.Equal(t, "\r\n", Separator("a\r\nb\r\n"))
	assert.Equal(t, "\n", Separator(""))
}

func TestDelete_Line(t *testing.T) {
	doc := "A\nB\nC\n"
	span := mustLocate(t, doc, "B\n", "")

	assert.Equal(t, "A\nC\n", Delete(doc, span))
}

func TestDelete_BlockIncludesEndMarker(t *testing.T) {
	// Block deletion removes the matched end-pattern text too.
	doc := "keep\nBEGIN\nbody\nEND\nkeep\n"
	span := mustLocate(t, doc, "BEGIN", "END\n")

	assert.Equal(t, "keep\nkeep\n", Delete(doc, span))
}

func TestReplace_Line(t *testing.T) {
	doc := "x=1\n"
	span := mustLocate(t, doc, "x=1", "")

	assert.Equal(t, "x=2\n", Replace(doc, span, []string{"x=2"}, "\n"))
}

func TestReplace_NoOpIsByteIdentical(t *testing.T) {
	doc := "a\nb\nc\n"
	span := mustLocate(t, doc, "b", "")

	assert.Equal(t, doc, Replace(doc, span, []string{"b"}, "\n"))
}

func TestReplace_SeparatorTerminatedSpanStaysTerminated(t *testing.T) {
	// Removed text ends with a separator; the replacement gains one so the
	// seam loses no line break.
	doc := "a\nb\nc\n"
	span := mustLocate(t, doc, "b\n", "")

	assert.Equal(t, "a\nB1\nB2\nc\n", Replace(doc, span, []string{"B1", "B2"}, "\n"))
}

func TestReplace_NoDuplicateSeparatorAtSeam(t *testing.T) {
	// Replacement already ends with a separator and the tail starts with
	// one; the duplicate is dropped.
	doc := "a\nb\nc\n"
	span := mustLocate(t, doc, "b", "")

	assert.Equal(t, "a\nB\nc\n", Replace(doc, span, []string{"B", ""}, "\n"))
}

func TestReplace_MultiLineBlock(t *testing.T) {
	doc := "head\nold1\nold2\ntail\n"
	span := mustLocate(t, doc, "old1\n", "old2\n")

	assert.Equal(t, "head\nnew\ntail\n", Replace(doc, span, []string{"new"}, "\n"))
}

func TestInsertAfter_AtEndOfDocument(t *testing.T) {
	doc := "import os\n"
	span := mustLocate(t, doc, "import os\n", "")

	assert.Equal(t, "import os\nimport sys\n", InsertAfter(doc, span, []string{"import sys"}, "\n"))
}

func TestInsertAfter_BetweenLines(t *testing.T) {
	doc := "import os\nimport re\n"
	span := mustLocate(t, doc, "import os\n", "")

	got := InsertAfter(doc, span, []string{"import sys"}, "\n")
	assert.Equal(t, "import os\nimport sys\nimport re\n", got)
}

func TestInsertAfter_AnchorWithoutSeparator(t *testing.T) {
	// The anchor match stops before the line break; the content lands on a
	// fresh line below it rather than fusing with the anchor line.
	doc := "import os\nimport re\n"
	span := mustLocate(t, doc, "import os", "")

	got := InsertAfter(doc, span, []string{"import sys"}, "\n")
	assert.Equal(t, "import os\nimport sys\nimport re\n", got)
}

func TestInsertAfter_MultipleLines(t *testing.T) {
	doc := "a\nz\n"
	span := mustLocate(t, doc, "a\n", "")

	got := InsertAfter(doc, span, []string{"b", "c"}, "\n")
	assert.Equal(t, "a\nb\nc\nz\n", got)
}

func TestInsertBefore(t *testing.T) {
	doc := "def main():\n"
	span := mustLocate(t, doc, "def main", "")

	got := InsertBefore(doc, span, []string{"import sys", ""}, "\n")
	assert.Equal(t, "import sys\n\ndef main():\n", got)
}

func TestApply_PreservesCRLF(t *testing.T) {
	doc := "A\r\nB\r\nC\r\n"
	sep := Separator(doc)
	require.Equal(t, "\r\n", sep)

	span := mustLocate(t, doc, "B\r\n", "")
	assert.Equal(t, "A\r\nX\r\nC\r\n", Replace(doc, span, []string{"X"}, sep))

	span = mustLocate(t, doc, "C\r\n", "")
	assert.Equal(t, "A\r\nB\r\n", Delete(doc, span))

	span = mustLocate(t, doc, "A\r\n", "")
	assert.Equal(t, "A\r\nA2\r\nB\r\nC\r\n", InsertAfter(doc, span, []string{"A2"}, sep))
}
