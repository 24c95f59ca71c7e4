package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestVerify_OmittedExpectationPasses(t *testing.T) {
	assert.NoError(t, Verify("anything", Span{Start: 0, End: 3}, nil))
}

func TestVerify_ExactMatch(t *testing.T) {
	doc := "a\n  b\t\nc"
	span := Span{Start: 2, End: 7}

	assert.NoError(t, Verify(doc, span, strptr("  b\t\n")))
}

func TestVerify_MismatchSurfacesBothStrings(t *testing.T) {
	doc := "x=1\n"
	err := Verify(doc, Span{Start: 0, End: 3}, strptr("x=2"))

	var verr *VerificationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x=2", verr.Expected)
	assert.Equal(t, "x=1", verr.Actual)
}

func TestVerify_EverySingleCharacterMutationFails(t *testing.T) {
	doc := "hello\n"
	span := Span{Start: 0, End: len(doc)}

	for i := 0; i < len(doc); i++ {
		mutated := []byte(doc)
		mutated[i] ^= 0x01
		err := Verify(doc, span, strptr(string(mutated)))
		assert.Error(t, err, "mutation at byte %d must fail verification", i)
	}
}

func TestVerify_WhitespaceIsSignificant(t *testing.T) {
	// Trailing line endings and indentation are part of the comparison.
	doc := "line\n"

	assert.Error(t, Verify(doc, Span{Start: 0, End: 5}, strptr("line")))
	assert.Error(t, Verify(doc, Span{Start: 0, End: 4}, strptr("line\n")))
	assert.NoError(t, Verify(doc, Span{Start: 0, End: 5}, strptr("line\n")))
}
