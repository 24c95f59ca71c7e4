package models

// AppendTextRequest represents a request to append lines to the end of a file.
// Appending never rewrites existing content, so it needs no patterns and no
// verification.
type AppendTextRequest struct {
	// Name is the name of the file to append to.
	Name string `json:"name" jsonschema:"required,description=Name of the file to append to."`
	// Content holds the lines to append, one array element per line.
	Content []string `json:"content" jsonschema:"required,description=Lines of text to append\\, one array element per line."`
	// EnsureNewline, when true (the default), makes sure the existing
	// content ends with a line separator before the new lines are added.
	EnsureNewline *bool `json:"ensure_newline,omitempty" jsonschema:"description=Ensure the file ends with a newline before appending (default true)."`
}

// AppendTextResponse represents the result of an append_text request.
type AppendTextResponse struct {
	Success       bool `json:"success"`
	FileCreated   bool `json:"file_created"`
	LinesAppended int  `json:"lines_appended"`
	NewTotalLines int  `json:"new_total_lines"`
}
