package engine

import "strings"

// Separator reports the line-separator convention of doc: "\r\n" when the
// document contains any CRLF sequence, otherwise "\n". The convention is
// preserved through edits.
func Separator(doc string) string {
	if strings.Contains(doc, "\r\n") {
		return "\r\n"
	}
	return "\n"
}

// Delete removes the text in [span.Start, span.End) entirely. When the span
// was extended through an end pattern the matched end text is removed with it.
func Delete(doc string, span Span) string {
	return doc[:span.Start] + doc[span.End:]
}

// Replace substitutes the text in [span.Start, span.End) with content lines
// joined by sep. The replacement's trailing separator is normalized against
// the removed text so the seam gains no duplicate and loses no line break: a
// replacement for a separator-terminated span stays separator-terminated, and
// a no-op replacement reproduces the document byte for byte.
func Replace(doc string, span Span, content []string, sep string) string {
	body := strings.Join(content, sep)
	removed := doc[span.Start:span.End]
	tail := doc[span.End:]
	switch {
	case strings.HasSuffix(removed, sep) && !strings.HasSuffix(body, sep):
		body += sep
	case !strings.HasSuffix(removed, sep) && strings.HasSuffix(body, sep) && strings.HasPrefix(tail, sep):
		body = strings.TrimSuffix(body, sep)
	}
	return doc[:span.Start] + body + tail
}

// InsertAfter splices content lines into doc immediately after the anchor
// span's end. The inserted text always forms whole lines: when the text after
// the insertion point already begins with a separator the content is pushed
// onto a fresh line below the anchor, otherwise the content is terminated
// with a separator so it does not fuse with the following text.
func InsertAfter(doc string, anchor Span, content []string, sep string) string {
	body := strings.Join(content, sep)
	at := anchor.End
	tail := doc[at:]
	if strings.HasPrefix(tail, sep) {
		body = sep + body
	} else {
		body += sep
	}
	return doc[:at] + body + tail
}

// InsertBefore splices content lines into doc immediately before the anchor
// span's start, terminated with a separator so the anchor text keeps starting
// its own line.
func InsertBefore(doc string, anchor Span, content []string, sep string) string {
	body := strings.Join(content, sep) + sep
	at := anchor.Start
	return doc[:at] + body + doc[at:]
}
