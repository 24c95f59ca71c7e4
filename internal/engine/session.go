package engine

import (
	"errors"
	"fmt"

	"textedit-server/internal/models"
)

// Session processes an ordered list of EditSpecs against one starting
// document. It owns the document for the duration of the request: each edit
// is resolved and applied against the text as modified by the edits before
// it, never against the original. Patterns are re-resolved fresh per edit, so
// no offset-shift arithmetic is needed for correctness.
type Session struct {
	doc      string
	sep      string
	specs    []models.EditSpec
	outcomes []models.EditOutcome
}

// NewSession constructs a session over doc. The document's line-separator
// convention is captured once up front and preserved through all edits.
func NewSession(doc string, specs []models.EditSpec) *Session {
	return &Session{
		doc:   doc,
		sep:   Separator(doc),
		specs: specs,
	}
}

// Run applies the edits strictly in request order and stops at the first
// failure. It returns the document state reached (fully edited on success,
// the partially edited text otherwise), the outcome list with one entry per
// attempted edit, and whether every edit applied. Persisting or discarding a
// partial result is the caller's decision; the session only reports it.
func (s *Session) Run() (string, []models.EditOutcome, bool) {
	for i, spec := range s.specs {
		outcome := s.applyOne(i, spec)
		s.outcomes = append(s.outcomes, outcome)
		if outcome.Status != models.StatusApplied {
			return s.doc, s.outcomes, false
		}
	}
	return s.doc, s.outcomes, true
}

// applyOne resolves and applies a single spec against the current document,
// mutating s.doc only when the edit fully succeeds.
func (s *Session) applyOne(index int, spec models.EditSpec) models.EditOutcome {
	if reason := validateSpec(spec); reason != "" {
		return models.EditOutcome{Index: index, Status: models.StatusInvalidSpec, Reason: reason}
	}

	var span Span
	var err error
	switch spec.Kind {
	case models.KindDelete, models.KindReplace:
		span, err = Locate(s.doc, spec.StartPattern, spec.EndPattern)
	case models.KindInsert:
		anchor := spec.AfterPattern
		if anchor == "" {
			anchor = spec.BeforePattern
		}
		span, err = Locate(s.doc, anchor, "")
	}
	if err != nil {
		return failureOutcome(index, err)
	}

	if err := Verify(s.doc, span, spec.ExpectedContent); err != nil {
		return failureOutcome(index, err)
	}

	switch spec.Kind {
	case models.KindDelete:
		s.doc = Delete(s.doc, span)
	case models.KindReplace:
		s.doc = Replace(s.doc, span, spec.Content, s.sep)
	case models.KindInsert:
		if spec.AfterPattern != "" {
			s.doc = InsertAfter(s.doc, span, spec.Content, s.sep)
		} else {
			s.doc = InsertBefore(s.doc, span, spec.Content, s.sep)
		}
	}
	return models.EditOutcome{Index: index, Status: models.StatusApplied}
}

// validateSpec checks an EditSpec for structural defects. It returns an
// empty string when the spec is well formed, otherwise the reason.
func validateSpec(spec models.EditSpec) string {
	switch spec.Kind {
	case models.KindDelete:
		if spec.StartPattern == "" {
			return "delete requires start_pattern"
		}
		if len(spec.Content) > 0 {
			return "delete does not take content"
		}
		if spec.AfterPattern != "" || spec.BeforePattern != "" {
			return "delete does not take an anchor pattern"
		}
	case models.KindReplace:
		if spec.StartPattern == "" {
			return "replace requires start_pattern"
		}
		if len(spec.Content) == 0 {
			return "replace requires content"
		}
		if spec.AfterPattern != "" || spec.BeforePattern != "" {
			return "replace does not take an anchor pattern"
		}
	case models.KindInsert:
		after, before := spec.AfterPattern != "", spec.BeforePattern != ""
		if after == before {
			return "insert requires exactly one of after_pattern or before_pattern"
		}
		if spec.StartPattern != "" || spec.EndPattern != "" {
			return "insert does not take start_pattern or end_pattern"
		}
		if len(spec.Content) == 0 {
			return "insert requires content"
		}
	default:
		return fmt.Sprintf("unknown edit kind %q", spec.Kind)
	}
	return ""
}

// failureOutcome maps an engine error to its outcome representation. Failures
// are expected, common results of content-based editing and travel as data in
// the outcome list, never as faults that abort the engine.
func failureOutcome(index int, err error) models.EditOutcome {
	var notFound *NotFoundError
	var ambiguous *AmbiguousError
	var badPattern *BadPatternError
	var verification *VerificationError
	switch {
	case errors.As(err, &notFound):
		return models.EditOutcome{
			Index:   index,
			Status:  models.StatusPatternNotFound,
			Pattern: notFound.Pattern,
		}
	case errors.As(err, &ambiguous):
		return models.EditOutcome{
			Index:      index,
			Status:     models.StatusPatternAmbiguous,
			Pattern:    ambiguous.Pattern,
			MatchCount: ambiguous.Count,
		}
	case errors.As(err, &badPattern):
		return models.EditOutcome{
			Index:  index,
			Status: models.StatusInvalidSpec,
			Reason: badPattern.Error(),
		}
	case errors.As(err, &verification):
		return models.EditOutcome{
			Index:    index,
			Status:   models.StatusVerificationFailed,
			Expected: verification.Expected,
			Actual:   verification.Actual,
		}
	default:
		return models.EditOutcome{Index: index, Status: models.StatusInvalidSpec, Reason: err.Error()}
	}
}
