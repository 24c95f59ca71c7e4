// Package transport carries JSON-RPC requests to the MCP processor and the
// service layer over stdio (newline-delimited) and HTTP.
package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"textedit-server/internal/errors"
	"textedit-server/internal/mcp"
	"textedit-server/internal/models"
	"textedit-server/internal/service"
)

// maxLineSize bounds a single newline-delimited request.
const maxLineSize = 64 * 1024 * 1024

// StdioHandler handles JSON-RPC communication over standard input/output.
// MCP methods go to the processor; the tool operations are also reachable as
// direct JSON-RPC methods for clients that skip the MCP handshake.
type StdioHandler struct {
	processor *mcp.Processor
	service   service.FileOperationService
	logger    zerolog.Logger
}

// NewStdioHandler creates a new StdioHandler.
func NewStdioHandler(processor *mcp.Processor, svc service.FileOperationService, logger zerolog.Logger) *StdioHandler {
	return &StdioHandler{
		processor: processor,
		service:   svc,
		logger:    logger.With().Str("component", "stdio").Logger(),
	}
}

// Start reads newline-delimited JSON-RPC requests from input and writes one
// response per request to output until EOF.
func (h *StdioHandler) Start(input io.Reader, output io.Writer) error {
	h.logger.Info().Msg("stdio transport started")
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var req models.JSONRPCRequest
		if err := json.Unmarshal(line, &req); err != nil {
			h.writeResponse(output, models.JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   errors.ToJSONRPCError(errors.NewParseError(err.Error())),
			})
			continue
		}

		resp := models.JSONRPCResponse{JSONRPC: "2.0", ID: req.ID}
		switch {
		case req.JSONRPC != "2.0":
			resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
		case req.Method == "":
			resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Method not specified."))
		default:
			result, rpcErr := h.handle(req)
			if rpcErr == nil && isNotification(req) {
				continue
			}
			resp.Result, resp.Error = result, rpcErr
		}
		h.writeResponse(output, resp)
	}

	if err := scanner.Err(); err != nil {
		h.logger.Error().Err(err).Msg("stdio read error")
		return err
	}
	h.logger.Info().Msg("stdio transport finished")
	return nil
}

// isNotification reports whether the request is a JSON-RPC notification:
// no ID, so the client expects no response written for it.
func isNotification(req models.JSONRPCRequest) bool {
	return req.ID == nil && strings.HasPrefix(req.Method, "notifications/")
}

// handle routes one request: direct tool methods hit the service, everything
// else goes through the MCP processor.
func (h *StdioHandler) handle(req models.JSONRPCRequest) (interface{}, *models.JSONRPCError) {
	switch req.Method {
	case "read_file":
		return callService(req.Params, h.service.ReadFile)
	case "edit_file":
		return callService(req.Params, h.service.EditFile)
	case "append_text":
		return callService(req.Params, h.service.AppendText)
	case "list_files":
		return callService(req.Params, h.service.ListFiles)
	default:
		return h.processor.ProcessRequest(req)
	}
}

// callService decodes params, invokes a service operation, and converts a
// service error into a JSON-RPC error.
func callService[Req any, Resp any](params json.RawMessage, op func(Req) (*Resp, *models.ErrorDetail)) (interface{}, *models.JSONRPCError) {
	var req Req
	if len(params) > 0 && !bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, errors.ToJSONRPCError(errors.NewInvalidParamsError(fmt.Sprintf("Invalid params: %v", err), nil))
		}
	}
	resp, errDetail := op(req)
	if errDetail != nil {
		return nil, errors.ToJSONRPCError(errDetail)
	}
	return resp, nil
}

func (h *StdioHandler) writeResponse(output io.Writer, resp models.JSONRPCResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		h.logger.Error().Err(err).Interface("id", resp.ID).Msg("marshal response")
		fallback := models.JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      resp.ID,
			Error:   errors.ToJSONRPCError(errors.NewInternalError("failed to marshal response")),
		}
		payload, _ = json.Marshal(fallback)
	}
	if _, err := fmt.Fprintln(output, string(payload)); err != nil {
		h.logger.Error().Err(err).Msg("write response")
	}
}
