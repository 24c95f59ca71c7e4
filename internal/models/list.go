package models

// FileInfo describes a file in the directory listing.
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"` // RFC 3339
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
	Lines    int    `json:"lines"` // -1 when unknown (binary, too large, unreadable)
}

// ListFilesRequest represents a request to list files. It carries no
// parameters; the listing always covers the configured working directory.
type ListFilesRequest struct{}

// ListFilesResponse represents the response from a list_files operation.
type ListFilesResponse struct {
	Files      []FileInfo `json:"files"`
	TotalCount int        `json:"total_count"`
	Directory  string     `json:"directory"`
}
