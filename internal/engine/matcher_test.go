package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate_UniqueMatch(t *testing.T) {
	doc := "alpha\nbeta\ngamma\n"

	span, err := Locate(doc, "beta\n", "")
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 6, End: 11}, span)
	assert.Equal(t, "beta\n", doc[span.Start:span.End])
}

func TestLocate_NotFound(t *testing.T) {
	_, err := Locate("alpha\nbeta\n", "delta", "")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "delta", notFound.Pattern)
}

func TestLocate_AmbiguousNeverFallsBackToFirstMatch(t *testing.T) {
	// Two occurrences with no disambiguating context must always be
	// refused, never resolved to the first occurrence.
	doc := "x = 1\ny = 2\nx = 1\n"

	_, err := Locate(doc, "x = 1", "")

	var ambiguous *AmbiguousError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)
	assert.Equal(t, "x = 1", ambiguous.Pattern)
}

func TestLocate_BlockMatch(t *testing.T) {
	doc := "func a() {\n\tbody\n}\n\nfunc b() {}\n"

	span, err := Locate(doc, `func a\(\) \{`, `\}`)
	require.NoError(t, err)
	assert.Equal(t, "func a() {\n\tbody\n}", doc[span.Start:span.End])
}

func TestLocate_BlockEndMustFollowStart(t *testing.T) {
	// The end pattern matches earlier in the document, but only a match at
	// or after the start match's end qualifies.
	doc := "END\nSTART\nmiddle\nEND\n"

	span, err := Locate(doc, "START", "END")
	require.NoError(t, err)
	assert.Equal(t, "START\nmiddle\nEND", doc[span.Start:span.End])
}

func TestLocate_BlockEndOverlapsEarlierMatch(t *testing.T) {
	// The end pattern also matches text straddling the start match's end.
	// That earlier occurrence must not shadow the qualifying one that
	// begins exactly at the start match's end.
	doc := "baaa"

	span, err := Locate(doc, "ba", "aa")
	require.NoError(t, err)
	assert.Equal(t, Span{Start: 0, End: 4}, span)
	assert.Equal(t, "baaa", doc[span.Start:span.End])
}

func TestLocate_BlockEndMissingAfterStart(t *testing.T) {
	doc := "END\nSTART\ntail\n"

	_, err := Locate(doc, "START", "END")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "END", notFound.Pattern)
}

func TestLocate_MultiLinePattern(t *testing.T) {
	// Patterns run over the full document text, not per line.
	doc := "one\ntwo\nthree\n"

	span, err := Locate(doc, "two\nthree", "")
	require.NoError(t, err)
	assert.Equal(t, "two\nthree", doc[span.Start:span.End])
}

func TestLocate_BadPattern(t *testing.T) {
	_, err := Locate("doc", "[unclosed", "")

	var bad *BadPatternError
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, "[unclosed", bad.Pattern)
}

func TestLocate_BadEndPattern(t *testing.T) {
	_, err := Locate("start end", "start", "(")

	var bad *BadPatternError
	require.ErrorAs(t, err, &bad)
}

func TestLocate_Unicode(t *testing.T) {
	doc := "héllo wörld\nsecond line\n"

	span, err := Locate(doc, "wörld", "")
	require.NoError(t, err)
	assert.Equal(t, "wörld", doc[span.Start:span.End])
}

func TestLocate_CaseSensitive(t *testing.T) {
	_, err := Locate("Beta\n", "beta", "")

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestLocate_DeleteThenRelocateYieldsNotFound(t *testing.T) {
	// A pattern matching exactly one span must no longer match after that
	// span is deleted.
	doc := "alpha\nbeta\ngamma\n"

	span, err := Locate(doc, "beta\n", "")
	require.NoError(t, err)

	_, err = Locate(Delete(doc, span), "beta\n", "")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}
