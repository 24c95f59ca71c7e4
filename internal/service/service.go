// Package service orchestrates file operations: it confines paths to the
// working directory, enforces size and count limits, serializes writes per
// file, and hands document text to the edit engine. All pattern and
// verification failures surface as per-edit outcomes in the response, never
// as service errors.
package service

import (
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"textedit-server/internal/config"
	"textedit-server/internal/engine"
	"textedit-server/internal/errors"
	"textedit-server/internal/filesystem"
	"textedit-server/internal/lock"
	"textedit-server/internal/models"
)

const maxFilenameLength = 255

var filenameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FileOperationService defines the operations exposed as tools.
type FileOperationService interface {
	ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail)
	EditFile(req models.EditFileRequest) (*models.EditFileResponse, *models.ErrorDetail)
	AppendText(req models.AppendTextRequest) (*models.AppendTextResponse, *models.ErrorDetail)
	ListFiles(req models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail)
}

// TextEditService implements FileOperationService against a single working
// directory.
type TextEditService struct {
	fs          filesystem.Adapter
	locks       lock.Manager
	workingDir  string
	maxFileSize int64
	maxEdits    int
	opTimeout   time.Duration
	logger      zerolog.Logger
}

// NewTextEditService creates a TextEditService from the given dependencies.
// The configured working directory must exist.
func NewTextEditService(fs filesystem.Adapter, locks lock.Manager, cfg *config.Config, logger zerolog.Logger) (*TextEditService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock manager is required")
	}

	absDir, err := filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("access working directory %s: %w", absDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("working directory is not a directory: %s", absDir)
	}

	return &TextEditService{
		fs:          fs,
		locks:       locks,
		workingDir:  absDir,
		maxFileSize: int64(cfg.MaxFileSizeMB) * 1024 * 1024,
		maxEdits:    cfg.MaxEditsPerRequest,
		opTimeout:   time.Duration(cfg.OperationTimeoutSec) * time.Second,
		logger:      logger.With().Str("component", "service").Logger(),
	}, nil
}

// resolvePath validates a filename and returns its absolute path inside the
// working directory. The filename character set excludes path separators, so
// traversal is impossible by construction; an existing file is additionally
// checked for symlinks escaping the root.
func (s *TextEditService) resolvePath(name string) (string, *models.ErrorDetail) {
	if len(name) == 0 || len(name) > maxFilenameLength {
		return "", errors.NewInvalidParamsError(
			fmt.Sprintf("Filename length must be between 1 and %d characters.", maxFilenameLength),
			map[string]interface{}{"filename": name})
	}
	if !filenameRegex.MatchString(name) || name == "." || name == ".." {
		return "", errors.NewInvalidParamsError("Filename contains invalid characters.",
			map[string]interface{}{"filename": name})
	}

	path := filepath.Clean(filepath.Join(s.workingDir, name))
	if !strings.HasPrefix(path, s.workingDir+string(os.PathSeparator)) {
		return "", errors.NewInvalidParamsError("Path escapes the working directory.",
			map[string]interface{}{"filename": name})
	}

	if exists, _ := s.fs.FileExists(path); exists {
		resolved, err := s.fs.EvalSymlinks(path)
		if err != nil {
			return "", errors.NewFileSystemError(name, "resolve_path", err.Error())
		}
		if resolved != path && !strings.HasPrefix(resolved, s.workingDir+string(os.PathSeparator)) {
			return "", errors.NewInvalidParamsError("Path escapes the working directory via symlink.",
				map[string]interface{}{"filename": name})
		}
	}
	return path, nil
}

// loadDocument reads a file and returns its text, enforcing the size limit
// and UTF-8 validity. operation tags error details.
func (s *TextEditService) loadDocument(name, path, operation string) (string, *models.ErrorDetail) {
	stats, err := s.fs.GetFileStats(path)
	if err != nil {
		if os.IsPermission(unwrapAll(err)) {
			return "", errors.NewPermissionDeniedError(name, operation)
		}
		return "", errors.NewFileSystemError(name, operation, err.Error())
	}
	if stats.IsDir {
		return "", errors.NewInvalidParamsError(
			fmt.Sprintf("Path '%s' is a directory, not a file.", name),
			map[string]interface{}{"filename": name})
	}
	if stats.Size > s.maxFileSize {
		return "", errors.NewFileTooLargeError(name, stats.Size, int(s.maxFileSize/(1024*1024)))
	}

	content, err := s.fs.ReadFileBytes(path)
	if err != nil {
		if os.IsPermission(unwrapAll(err)) {
			return "", errors.NewPermissionDeniedError(name, operation)
		}
		return "", errors.NewFileSystemError(name, operation, err.Error())
	}
	if !filesystem.IsValidUTF8(content) {
		return "", errors.NewInvalidEncodingError(name, operation)
	}
	return string(content), nil
}

// EditFile resolves the target file, runs the edit session against its
// current content, and persists the result only when every edit applied.
// Per-edit failures travel in the outcome list of a non-error response.
func (s *TextEditService) EditFile(req models.EditFileRequest) (*models.EditFileResponse, *models.ErrorDetail) {
	path, errDetail := s.resolvePath(req.Name)
	if errDetail != nil {
		return nil, errDetail
	}
	if len(req.Edits) == 0 {
		return nil, errors.NewInvalidParamsError("No edits provided.", map[string]interface{}{"filename": req.Name})
	}
	if len(req.Edits) > s.maxEdits {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("Number of edits exceeds maximum allowed of %d.", s.maxEdits),
			map[string]interface{}{"filename": req.Name, "num_edits": len(req.Edits)})
	}

	fileLock, lockErr := s.locks.AcquireLock(path, s.opTimeout)
	if lockErr != nil {
		return nil, errors.NewOperationLockFailedError(req.Name, "edit", lockErr.Error())
	}
	defer func() {
		if err := s.locks.ReleaseLock(fileLock); err != nil {
			s.logger.Warn().Err(err).Str("file", req.Name).Msg("release lock")
		}
	}()

	exists, err := s.fs.FileExists(path)
	if err != nil {
		return nil, errors.NewFileSystemError(req.Name, "edit", err.Error())
	}

	var doc string
	if exists {
		var errDetail *models.ErrorDetail
		doc, errDetail = s.loadDocument(req.Name, path, "edit")
		if errDetail != nil {
			return nil, errDetail
		}
	} else if !req.CreateIfMissing {
		return nil, errors.NewFileNotFoundError(req.Name, "edit")
	}

	result, outcomes, ok := engine.NewSession(doc, req.Edits).Run()

	applied := 0
	for _, o := range outcomes {
		if o.Status == models.StatusApplied {
			applied++
		}
	}

	resp := &models.EditFileResponse{
		Success:       ok,
		EditsApplied:  applied,
		NewTotalLines: filesystem.CountLines([]byte(result)),
		Content:       result,
		Outcomes:      outcomes,
	}

	if !ok {
		// Nothing is persisted on failure; the response carries the
		// partial document state for inspection only.
		last := outcomes[len(outcomes)-1]
		s.logger.Info().
			Str("file", req.Name).
			Str("status", last.Status).
			Int("edit_index", last.Index).
			Msg("edit request failed")
		return resp, nil
	}

	if int64(len(result)) > s.maxFileSize {
		return nil, errors.NewFileTooLargeError(req.Name, int64(len(result)), int(s.maxFileSize/(1024*1024)))
	}
	if err := s.fs.WriteFileBytesAtomic(path, []byte(result), 0o644); err != nil {
		if os.IsPermission(unwrapAll(err)) {
			return nil, errors.NewPermissionDeniedError(req.Name, "edit_write")
		}
		return nil, errors.NewFileSystemError(req.Name, "edit_write", err.Error())
	}

	resp.FileCreated = !exists
	s.logger.Info().
		Str("file", req.Name).
		Int("edits_applied", applied).
		Bool("created", resp.FileCreated).
		Msg("edit request applied")
	return resp, nil
}

// AppendText adds lines at the end of a file, creating it when missing.
func (s *TextEditService) AppendText(req models.AppendTextRequest) (*models.AppendTextResponse, *models.ErrorDetail) {
	path, errDetail := s.resolvePath(req.Name)
	if errDetail != nil {
		return nil, errDetail
	}
	if len(req.Content) == 0 {
		return nil, errors.NewInvalidParamsError("No content provided.", map[string]interface{}{"filename": req.Name})
	}

	fileLock, lockErr := s.locks.AcquireLock(path, s.opTimeout)
	if lockErr != nil {
		return nil, errors.NewOperationLockFailedError(req.Name, "append", lockErr.Error())
	}
	defer func() {
		if err := s.locks.ReleaseLock(fileLock); err != nil {
			s.logger.Warn().Err(err).Str("file", req.Name).Msg("release lock")
		}
	}()

	exists, err := s.fs.FileExists(path)
	if err != nil {
		return nil, errors.NewFileSystemError(req.Name, "append", err.Error())
	}

	var doc string
	if exists {
		doc, errDetail = s.loadDocument(req.Name, path, "append")
		if errDetail != nil {
			return nil, errDetail
		}
	}

	sep := engine.Separator(doc)
	ensureNewline := req.EnsureNewline == nil || *req.EnsureNewline
	if ensureNewline && doc != "" && !strings.HasSuffix(doc, "\n") {
		doc += sep
	}
	doc += strings.Join(req.Content, sep) + sep

	if int64(len(doc)) > s.maxFileSize {
		return nil, errors.NewFileTooLargeError(req.Name, int64(len(doc)), int(s.maxFileSize/(1024*1024)))
	}
	if err := s.fs.WriteFileBytesAtomic(path, []byte(doc), 0o644); err != nil {
		if os.IsPermission(unwrapAll(err)) {
			return nil, errors.NewPermissionDeniedError(req.Name, "append_write")
		}
		return nil, errors.NewFileSystemError(req.Name, "append_write", err.Error())
	}

	return &models.AppendTextResponse{
		Success:       true,
		FileCreated:   !exists,
		LinesAppended: len(req.Content),
		NewTotalLines: filesystem.CountLines([]byte(doc)),
	}, nil
}

// ReadFile returns a file's content, optionally restricted to a 1-based line
// range.
func (s *TextEditService) ReadFile(req models.ReadFileRequest) (*models.ReadFileResponse, *models.ErrorDetail) {
	path, errDetail := s.resolvePath(req.Name)
	if errDetail != nil {
		return nil, errDetail
	}
	if (req.StartLine != 0 && req.StartLine < 1) || (req.EndLine != 0 && req.EndLine < 1) {
		return nil, errors.NewInvalidParamsError("Line numbers must be 1 or greater if specified.",
			map[string]interface{}{"filename": req.Name, "start_line": req.StartLine, "end_line": req.EndLine})
	}
	if req.StartLine > 0 && req.EndLine > 0 && req.StartLine > req.EndLine {
		return nil, errors.NewInvalidParamsError("start_line cannot be greater than end_line.",
			map[string]interface{}{"filename": req.Name, "start_line": req.StartLine, "end_line": req.EndLine})
	}

	exists, err := s.fs.FileExists(path)
	if err != nil {
		return nil, errors.NewFileSystemError(req.Name, "read", err.Error())
	}
	if !exists {
		return nil, errors.NewFileNotFoundError(req.Name, "read")
	}

	doc, errDetail := s.loadDocument(req.Name, path, "read")
	if errDetail != nil {
		return nil, errDetail
	}

	lines := filesystem.SplitLines([]byte(doc))
	total := len(lines)

	if req.StartLine == 0 && req.EndLine == 0 {
		return &models.ReadFileResponse{Content: doc, TotalLines: total}, nil
	}

	start := req.StartLine
	if start == 0 {
		start = 1
	}
	end := req.EndLine
	if end == 0 || end > total {
		end = total
	}
	if start > total {
		return nil, errors.NewInvalidParamsError(
			fmt.Sprintf("start_line %d is greater than total lines %d.", start, total),
			map[string]interface{}{"filename": req.Name, "start_line": start, "total_lines": total})
	}

	// SplitLines normalized CRLF away; rejoin with the document's own
	// separator so ranged reads match what a full read returns.
	return &models.ReadFileResponse{
		Content:        strings.Join(lines[start-1:end], engine.Separator(doc)),
		TotalLines:     total,
		RangeRequested: &models.RangeRequested{StartLine: start, EndLine: end},
	}, nil
}

// ListFiles lists the non-hidden regular files of the working directory.
func (s *TextEditService) ListFiles(_ models.ListFilesRequest) (*models.ListFilesResponse, *models.ErrorDetail) {
	entries, err := s.fs.ListDir(s.workingDir)
	if err != nil {
		if os.IsPermission(unwrapAll(err)) {
			return nil, errors.NewPermissionDeniedError(s.workingDir, "list")
		}
		return nil, errors.NewFileSystemError(s.workingDir, "list", err.Error())
	}

	files := []models.FileInfo{}
	for _, entry := range entries {
		if entry.IsDir || entry.IsHidden {
			continue
		}
		info := models.FileInfo{
			Name:     entry.Name,
			Size:     entry.Size,
			Modified: entry.ModTime.UTC().Format(time.RFC3339),
			Readable: entry.Mode&0o400 != 0,
			Writable: entry.Mode&0o200 != 0,
			Lines:    -1,
		}
		switch {
		case entry.Size == 0:
			info.Lines = 0
		case entry.Size <= s.maxFileSize:
			content, err := s.fs.ReadFileBytes(filepath.Join(s.workingDir, entry.Name))
			if err == nil && filesystem.IsValidUTF8(content) {
				info.Lines = filesystem.CountLines(content)
			}
		}
		files = append(files, info)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	return &models.ListFilesResponse{
		Files:      files,
		TotalCount: len(files),
		Directory:  s.workingDir,
	}, nil
}

// unwrapAll walks the error chain to its root so os.IsPermission sees the
// original syscall error.
func unwrapAll(err error) error {
	for {
		unwrapped := stdErrors.Unwrap(err)
		if unwrapped == nil {
			return err
		}
		err = unwrapped
	}
}
