package models

// ReadFileRequest represents a request to read a file.
type ReadFileRequest struct {
	// Name is the name of the file to read.
	Name string `json:"name" jsonschema:"required,description=Name of the file to read."`
	// StartLine is the optional 1-based starting line for partial reads.
	StartLine int `json:"start_line,omitempty" jsonschema:"description=Optional 1-based first line of a partial read."`
	// EndLine is the optional 1-based ending line for partial reads.
	EndLine int `json:"end_line,omitempty" jsonschema:"description=Optional 1-based last line of a partial read."`
}

// RangeRequested echoes back the line range that was served.
type RangeRequested struct {
	StartLine int `json:"start_line,omitempty"`
	EndLine   int `json:"end_line,omitempty"`
}

// ReadFileResponse represents the response from a file read operation.
type ReadFileResponse struct {
	// Content is the content of the file, or the requested range of lines.
	Content string `json:"content"`
	// TotalLines is the total number of lines in the file.
	TotalLines int `json:"total_lines"`
	// RangeRequested is set when a partial read was requested.
	RangeRequested *RangeRequested `json:"range_requested,omitempty"`
}
