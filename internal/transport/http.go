package transport

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"textedit-server/internal/errors"
	"textedit-server/internal/mcp"
	"textedit-server/internal/models"
	"textedit-server/internal/service"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second
	maxRequestSizeMB    = 50
)

// HTTPHandler exposes the tool operations as plain POST endpoints and the
// full MCP surface at /rpc.
type HTTPHandler struct {
	processor *mcp.Processor
	service   service.FileOperationService
	logger    zerolog.Logger
	Server    *http.Server
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(processor *mcp.Processor, svc service.FileOperationService, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		processor: processor,
		service:   svc,
		logger:    logger.With().Str("component", "http").Logger(),
		Server:    &http.Server{},
	}
}

// RegisterRoutes sets up the HTTP routes for the handler.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/rpc", h.handleRPC)
	mux.HandleFunc("/read_file", handleTool(h, h.service.ReadFile))
	mux.HandleFunc("/edit_file", handleTool(h, h.service.EditFile))
	mux.HandleFunc("/append_text", handleTool(h, h.service.AppendText))
	mux.HandleFunc("/list_files", handleTool(h, h.service.ListFiles))
	mux.HandleFunc("/health", h.handleHealthCheck)
}

// StartServer starts the HTTP server on the given port and blocks until it
// shuts down.
func (h *HTTPHandler) StartServer(port int, readTimeoutSec, writeTimeoutSec int) error {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	readTimeout := defaultReadTimeout
	if readTimeoutSec > 0 {
		readTimeout = time.Duration(readTimeoutSec) * time.Second
	}
	writeTimeout := defaultWriteTimeout
	if writeTimeoutSec > 0 {
		writeTimeout = time.Duration(writeTimeoutSec) * time.Second
	}

	h.Server.Addr = fmt.Sprintf(":%d", port)
	h.Server.Handler = mux
	h.Server.ReadTimeout = readTimeout
	h.Server.WriteTimeout = writeTimeout

	h.logger.Info().Int("port", port).Msg("http transport starting")
	err := h.Server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		h.logger.Error().Err(err).Msg("http server error")
		return err
	}
	h.logger.Info().Msg("http transport stopped")
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (h *HTTPHandler) Shutdown(ctx context.Context) error {
	return h.Server.Shutdown(ctx)
}

// handleRPC serves JSON-RPC over a single POST endpoint, delegating to the
// MCP processor.
func (h *HTTPHandler) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req models.JSONRPCRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp := models.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
	switch {
	case req.JSONRPC != "2.0":
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
	case req.Method == "":
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Method not specified."))
	default:
		resp.Result, resp.Error = h.processor.ProcessRequest(req)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleTool builds a POST handler for one service operation.
func handleTool[Req any, Resp any](h *HTTPHandler, op func(Req) (*Resp, *models.ErrorDetail)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if !h.decodeBody(w, r, &req) {
			return
		}
		resp, errDetail := op(req)
		if errDetail != nil {
			h.writeJSONError(w, errors.MapErrorToHTTPStatus(errDetail), errDetail)
			return
		}
		h.writeJSON(w, http.StatusOK, resp)
	}
}

// decodeBody enforces method, content type, and size limits, then decodes the
// request body into dst. It writes the error response itself and reports
// whether decoding succeeded.
func (h *HTTPHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		errDetail := errors.NewInvalidRequestError(fmt.Sprintf("Method %s not allowed for %s. Use POST.", r.Method, r.URL.Path))
		h.writeJSONError(w, http.StatusMethodNotAllowed, errDetail)
		return false
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		errDetail := errors.NewInvalidRequestError("Invalid Content-Type header. Must be 'application/json'.")
		h.writeJSONError(w, http.StatusUnsupportedMediaType, errDetail)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSizeMB*1024*1024)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stdErrors.As(err, &maxBytesErr):
		errDetail := errors.NewInvalidRequestError(fmt.Sprintf("Request body exceeds maximum size of %dMB.", maxRequestSizeMB))
		h.writeJSONError(w, http.StatusRequestEntityTooLarge, errDetail)
	case stdErrors.As(err, &syntaxErr):
		errDetail := errors.NewParseError(fmt.Sprintf("Invalid JSON syntax at offset %d: %s", syntaxErr.Offset, syntaxErr.Error()))
		h.writeJSONError(w, http.StatusBadRequest, errDetail)
	case stdErrors.As(err, &typeErr):
		errDetail := errors.NewParseError(fmt.Sprintf("Invalid JSON type for field '%s' at offset %d.", typeErr.Field, typeErr.Offset))
		h.writeJSONError(w, http.StatusBadRequest, errDetail)
	default:
		errDetail := errors.NewParseError(fmt.Sprintf("Failed to decode request body: %v", err))
		h.writeJSONError(w, http.StatusBadRequest, errDetail)
	}
	return false
}

func (h *HTTPHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("encode response")
	}
}

func (h *HTTPHandler) writeJSONError(w http.ResponseWriter, statusCode int, errDetail *models.ErrorDetail) {
	if errDetail == nil {
		errDetail = errors.NewInternalError("An unexpected error occurred.")
		statusCode = http.StatusInternalServerError
	}
	h.writeJSON(w, statusCode, models.ErrorResponse{Error: *errDetail})
}
