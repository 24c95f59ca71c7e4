// Package errors defines the JSON-RPC error codes used by the server and the
// constructors that build models.ErrorDetail values for them. Per-edit
// failures (pattern not found, ambiguous, verification failed, invalid spec)
// are not errors in this sense: they travel as EditOutcome data inside a
// successful response. ErrorDetail is reserved for request-level faults such
// as bad parameters, sandbox violations, and file-system problems.
package errors

import (
	"fmt"
	"net/http"
	"time"

	"textedit-server/internal/models"
)

// JSON-RPC error codes as per the JSON-RPC 2.0 specification.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes.
const (
	// CodeFileSystemError covers file-system faults; the data payload's
	// "type" field narrows it (file_not_found, permission_denied, ...).
	CodeFileSystemError = -32001
	// CodeOperationLockFailed indicates the per-file lock could not be
	// acquired within the operation timeout.
	CodeOperationLockFailed = -32002
	// CodeFileTooLarge indicates the file exceeds the configured size limit.
	CodeFileTooLarge = -32003
	// CodeInvalidEncoding indicates the file content is not valid UTF-8.
	CodeInvalidEncoding = -32004
)

// NewErrorDetail creates a new ErrorDetail.
func NewErrorDetail(code int, message string, data map[string]interface{}) *models.ErrorDetail {
	return &models.ErrorDetail{Code: code, Message: message, Data: data}
}

// NewParseError creates an ErrorDetail for JSON parsing errors.
func NewParseError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeParseError, "Parse error", map[string]interface{}{"details": details})
}

// NewInvalidRequestError creates an ErrorDetail for invalid request objects.
func NewInvalidRequestError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidRequest, "Invalid Request", map[string]interface{}{"details": details})
}

// NewMethodNotFoundError creates an ErrorDetail for an unknown method.
func NewMethodNotFoundError(method string) *models.ErrorDetail {
	return NewErrorDetail(CodeMethodNotFound, "Method not found", map[string]interface{}{"method": method})
}

// NewInvalidParamsError creates an ErrorDetail for invalid method parameters.
func NewInvalidParamsError(message string, data map[string]interface{}) *models.ErrorDetail {
	if message == "" {
		message = "Invalid params"
	}
	return NewErrorDetail(CodeInvalidParams, message, data)
}

// NewInternalError creates an ErrorDetail for unexpected server errors.
func NewInternalError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error", map[string]interface{}{"details": details})
}

// NewFileSystemError creates a generic file-system ErrorDetail.
func NewFileSystemError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, "File system error", map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"details":   details,
	})
}

// NewFileNotFoundError creates an ErrorDetail for a missing file.
func NewFileNotFoundError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' not found", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      "file_not_found",
	})
}

// NewPermissionDeniedError creates an ErrorDetail for a permission failure.
func NewPermissionDeniedError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied for file '%s'", filename), map[string]interface{}{
		"filename":  filename,
		"operation": operation,
		"type":      "permission_denied",
	})
}

// NewFileTooLargeError creates an ErrorDetail for files exceeding the limit.
func NewFileTooLargeError(filename string, sizeBytes int64, maxSizeMB int) *models.ErrorDetail {
	return NewErrorDetail(CodeFileTooLarge,
		fmt.Sprintf("File '%s' exceeds maximum allowed size of %d MB", filename, maxSizeMB),
		map[string]interface{}{
			"filename":    filename,
			"size_bytes":  sizeBytes,
			"max_size_mb": maxSizeMB,
			"type":        "file_too_large",
		})
}

// NewInvalidEncodingError creates an ErrorDetail for non-UTF-8 content.
func NewInvalidEncodingError(filename, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidEncoding,
		fmt.Sprintf("File '%s' is not valid UTF-8", filename),
		map[string]interface{}{
			"filename":  filename,
			"operation": operation,
			"type":      "invalid_encoding",
		})
}

// NewOperationLockFailedError creates an ErrorDetail for lock acquisition
// failures.
func NewOperationLockFailedError(filename, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeOperationLockFailed,
		fmt.Sprintf("Could not acquire lock for operation '%s' on file '%s'", operation, filename),
		map[string]interface{}{
			"filename":  filename,
			"operation": operation,
			"details":   details,
		})
}

// ToErrorResponse converts an ErrorDetail to an HTTP models.ErrorResponse.
func ToErrorResponse(errDetail *models.ErrorDetail) *models.ErrorResponse {
	if errDetail == nil {
		return nil
	}
	return &models.ErrorResponse{Error: *errDetail}
}

// ToJSONRPCError converts an ErrorDetail to a models.JSONRPCError, mapping
// the well-known data fields into the structured error data.
func ToJSONRPCError(errDetail *models.ErrorDetail) *models.JSONRPCError {
	if errDetail == nil {
		return nil
	}
	rpcErr := &models.JSONRPCError{
		Code:    errDetail.Code,
		Message: errDetail.Message,
	}
	if errDetail.Data != nil {
		data := &models.JSONRPCErrorData{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		if v, ok := errDetail.Data["filename"].(string); ok {
			data.Filename = v
		}
		if v, ok := errDetail.Data["operation"].(string); ok {
			data.Operation = v
		}
		if v, ok := errDetail.Data["details"].(string); ok {
			data.Details = v
		}
		rpcErr.Data = data
	}
	return rpcErr
}

// MapErrorToHTTPStatus maps an ErrorDetail to an HTTP status code. For
// CodeFileSystemError the data payload's "type" field decides between 404,
// 403, and 500.
func MapErrorToHTTPStatus(errDetail *models.ErrorDetail) int {
	if errDetail == nil {
		return http.StatusInternalServerError
	}
	switch errDetail.Code {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams, CodeInvalidEncoding:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeFileSystemError:
		if t, ok := errDetail.Data["type"].(string); ok {
			switch t {
			case "file_not_found":
				return http.StatusNotFound
			case "permission_denied":
				return http.StatusForbidden
			}
		}
		return http.StatusInternalServerError
	case CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeOperationLockFailed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
