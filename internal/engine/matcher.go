// Package engine implements the pattern-based edit core: it locates target
// spans of a document by regular-expression matching, optionally verifies
// their exact current content, and applies insert, delete, and replace
// transformations. The engine is pure; it performs no I/O and holds no state
// beyond a single in-flight session.
package engine

import (
	"fmt"
	"regexp"
)

// Span is a half-open [Start, End) byte range within a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// NotFoundError is returned when a required pattern matched zero times, or
// when no end-pattern match exists after the start match in block mode.
type NotFoundError struct {
	Pattern string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pattern %q not found", e.Pattern)
}

// AmbiguousError is returned when a pattern that must identify a unique span
// matched more than once. The engine never guesses which occurrence was
// intended.
type AmbiguousError struct {
	Pattern string
	Count   int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("pattern %q matched %d times, expected exactly one match", e.Pattern, e.Count)
}

// BadPatternError is returned when a pattern does not compile.
type BadPatternError struct {
	Pattern string
	Err     error
}

func (e *BadPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *BadPatternError) Unwrap() error { return e.Err }

// matchUnique resolves pattern to its single match in doc. Matching is
// case-sensitive, Unicode-aware, and scans the full document text, so
// patterns may span line boundaries. Zero matches yield NotFoundError and
// two or more yield AmbiguousError.
func matchUnique(doc, pattern string) (Span, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Span{}, &BadPatternError{Pattern: pattern, Err: err}
	}
	matches := re.FindAllStringIndex(doc, -1)
	switch len(matches) {
	case 0:
		return Span{}, &NotFoundError{Pattern: pattern}
	case 1:
		return Span{Start: matches[0][0], End: matches[0][1]}, nil
	default:
		return Span{}, &AmbiguousError{Pattern: pattern, Count: len(matches)}
	}
}

// Locate resolves startPattern, and optionally endPattern, to a unique span of
// doc. Without an end pattern the span is exactly the start pattern's match.
// With one, the span runs from the start of the start match through the end of
// the first end-pattern match beginning at or after the start match's end;
// when no such match exists the result is NotFoundError for the end pattern.
func Locate(doc, startPattern, endPattern string) (Span, error) {
	span, err := matchUnique(doc, startPattern)
	if err != nil {
		return Span{}, err
	}
	if endPattern == "" {
		return span, nil
	}
	endRe, err := regexp.Compile(endPattern)
	if err != nil {
		return Span{}, &BadPatternError{Pattern: endPattern, Err: err}
	}
	// Search only the suffix after the start match: a whole-document scan
	// would skip end matches overlapping an earlier, non-qualifying one.
	if loc := endRe.FindStringIndex(doc[span.End:]); loc != nil {
		return Span{Start: span.Start, End: span.End + loc[1]}, nil
	}
	return Span{}, &NotFoundError{Pattern: endPattern}
}
