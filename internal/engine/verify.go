package engine

import "fmt"

// VerificationError reports an exact-content mismatch at a located span,
// surfacing both the expected and the actual text.
type VerificationError struct {
	Expected string
	Actual   string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("content verification failed: expected %q, found %q", e.Expected, e.Actual)
}

// Verify checks that the document text at span equals expected, character for
// character including whitespace and line endings. A nil expectation means
// the caller accepted the risk and verification trivially succeeds.
// Verification is always performed strictly before mutation; a failed check
// leaves the document untouched.
func Verify(doc string, span Span, expected *string) error {
	if expected == nil {
		return nil
	}
	actual := doc[span.Start:span.End]
	if actual != *expected {
		return &VerificationError{Expected: *expected, Actual: actual}
	}
	return nil
}
