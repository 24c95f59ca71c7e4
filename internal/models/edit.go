package models

// Edit kinds accepted in an EditSpec.
const (
	KindInsert  = "insert"
	KindDelete  = "delete"
	KindReplace = "replace"
)

// Per-edit outcome statuses.
const (
	StatusApplied            = "applied"
	StatusPatternNotFound    = "pattern_not_found"
	StatusPatternAmbiguous   = "pattern_ambiguous"
	StatusVerificationFailed = "verification_failed"
	StatusInvalidSpec        = "invalid_spec"
)

// EditSpec describes one pattern-addressed transformation of a document.
// Targets are located by content, never by line number: start_pattern (with an
// optional end_pattern for block mode) selects the span for delete and replace,
// while insert anchors itself after or before its anchor pattern's match.
type EditSpec struct {
	// Kind is one of "insert", "delete", or "replace".
	Kind string `json:"kind" jsonschema:"required,description=Type of edit: insert\\, delete\\, or replace."`
	// StartPattern is a regular expression locating the target span.
	// Required for delete and replace. It must match exactly once.
	StartPattern string `json:"start_pattern,omitempty" jsonschema:"description=Regular expression locating the start of the target text. Include surrounding context so it matches exactly once."`
	// EndPattern optionally extends the span through the end of its first
	// match at or after the start pattern's match (block mode).
	EndPattern string `json:"end_pattern,omitempty" jsonschema:"description=Regular expression locating the end of a multi-line block\\, matched at or after the start pattern."`
	// AfterPattern anchors an insert immediately after its match.
	AfterPattern string `json:"after_pattern,omitempty" jsonschema:"description=Regular expression after whose match the content is inserted."`
	// BeforePattern anchors an insert immediately before its match.
	BeforePattern string `json:"before_pattern,omitempty" jsonschema:"description=Regular expression before whose match the content is inserted."`
	// ExpectedContent, when present, must equal the located span's current
	// text character for character before the edit is allowed to proceed.
	ExpectedContent *string `json:"expected_content,omitempty" jsonschema:"description=Exact current text expected at the located span. Strongly recommended to guard against editing the wrong text."`
	// Content holds the lines to insert or substitute. Required for insert
	// and replace, forbidden for delete.
	Content []string `json:"content,omitempty" jsonschema:"description=Lines of text to insert or use as replacement\\, one array element per line."`
}

// EditOutcome reports how a single EditSpec resolved against the document,
// tagged with the spec's position in the request for traceability.
type EditOutcome struct {
	// Index is the 0-based position of the EditSpec in the request.
	Index int `json:"index"`
	// Status is one of the Status* constants.
	Status string `json:"status"`
	// Pattern is the offending pattern for pattern failures.
	Pattern string `json:"pattern,omitempty"`
	// MatchCount is the number of matches found when Status is
	// "pattern_ambiguous".
	MatchCount int `json:"match_count,omitempty"`
	// Expected and Actual carry both sides of a failed verification.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	// Reason explains an invalid spec.
	Reason string `json:"reason,omitempty"`
}

// EditFileRequest represents a request to edit a file with a sequence of
// pattern-based operations. Edits are applied strictly in order, each against
// the document as modified by the edits before it.
type EditFileRequest struct {
	// Name is the name of the file to edit, relative to the working directory.
	Name string `json:"name" jsonschema:"required,description=Name of the file to edit."`
	// Edits is the ordered list of operations to apply.
	Edits []EditSpec `json:"edits" jsonschema:"required,description=Ordered list of edit operations. Processing stops at the first failure."`
	// CreateIfMissing, if true, starts from an empty document when the file
	// does not exist yet.
	CreateIfMissing bool `json:"create_if_missing,omitempty" jsonschema:"description=Create the file if it does not already exist."`
}

// EditFileResponse represents the result of an edit_file request.
// On failure nothing is persisted; Content still carries the in-memory
// document state reached at the failing edit so the caller can inspect it.
type EditFileResponse struct {
	// Success is true only when every requested edit applied.
	Success bool `json:"success"`
	// FileCreated indicates a new file was created as part of the operation.
	FileCreated bool `json:"file_created"`
	// EditsApplied counts the edits that were applied before processing
	// stopped (all of them on success).
	EditsApplied int `json:"edits_applied"`
	// NewTotalLines is the line count of the resulting document.
	NewTotalLines int `json:"new_total_lines"`
	// Content is the resulting document text, or the partial state reached
	// at the point of failure.
	Content string `json:"content"`
	// Outcomes holds one entry per attempted edit, in request order.
	Outcomes []EditOutcome `json:"outcomes"`
}
