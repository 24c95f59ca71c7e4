// Package mcp dispatches MCP-style JSON-RPC methods (initialize, tools/list,
// tools/call) to the file operation service and describes the available tools
// with schemas reflected from the request structs.
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/rs/zerolog"

	"textedit-server/internal/errors"
	"textedit-server/internal/models"
	"textedit-server/internal/service"
)

const (
	protocolVersion = "2024-11-05"
	serverName      = "textedit-server"
	serverVersion   = "1.0.0"
)

// ToolCallParams represents the parameters of a tools/call request.
type ToolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Processor routes JSON-RPC requests to the service layer.
type Processor struct {
	service service.FileOperationService
	logger  zerolog.Logger
}

// NewProcessor creates a new Processor.
func NewProcessor(svc service.FileOperationService, logger zerolog.Logger) *Processor {
	return &Processor{
		service: svc,
		logger:  logger.With().Str("component", "mcp").Logger(),
	}
}

// schemaFor reflects a self-contained JSON schema for the request type T,
// honoring the jsonschema struct tags on its fields.
func schemaFor[T any]() interface{} {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	return reflector.Reflect(&v)
}

// toolDefinitions describes the tools this server exposes.
func toolDefinitions() []models.ToolDefinition {
	return []models.ToolDefinition{
		{
			Name: "edit_file",
			Description: "Edit a text file using pattern-based operations. Targets are located by " +
				"regular-expression content matching, never by line numbers. Each operation may carry " +
				"expected_content for verification before anything is changed; a pattern that matches " +
				"more than once is refused rather than guessed at. Operations apply in order and the " +
				"file is only written when all of them succeed.",
			InputSchema: schemaFor[models.EditFileRequest](),
			Annotations: models.ToolAnnotations{DestructiveHint: true},
		},
		{
			Name: "append_text",
			Description: "Safely add lines of text to the end of a file, creating it if necessary. " +
				"Useful for logs, notes, or any content that should be added sequentially.",
			InputSchema: schemaFor[models.AppendTextRequest](),
			Annotations: models.ToolAnnotations{},
		},
		{
			Name: "read_file",
			Description: "Read the content of a file, in full or restricted to a 1-based line range. " +
				"Reports the total line count alongside the content.",
			InputSchema: schemaFor[models.ReadFileRequest](),
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name: "list_files",
			Description: "List the non-hidden files of the working directory with size, modification " +
				"time, permissions, and line count.",
			InputSchema: schemaFor[models.ListFilesRequest](),
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
	}
}

// ProcessRequest handles a JSON-RPC request and returns the method result or
// a JSON-RPC error. Tool-level failures (including per-edit outcomes) are
// carried inside an MCPToolResult, not as protocol errors.
func (p *Processor) ProcessRequest(req models.JSONRPCRequest) (interface{}, *models.JSONRPCError) {
	switch req.Method {
	case "initialize":
		return models.InitializeResponse{
			ProtocolVersion: protocolVersion,
			Capabilities:    models.Capabilities{Tools: models.ToolsCapabilities{}},
			ServerInfo: models.ServerInfo{
				Name:        serverName,
				Version:     serverVersion,
				Description: "Pattern-based text edit server for files in a sandboxed working directory.",
			},
		}, nil
	case "notifications/initialized":
		return struct{}{}, nil
	case "tools/list":
		return models.ToolsListResponse{Tools: toolDefinitions()}, nil
	case "tools/call":
		var params ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errors.ToJSONRPCError(
				errors.NewInvalidParamsError("Invalid parameters for tools/call: "+err.Error(), nil))
		}
		return p.callTool(params.Name, params.Arguments), nil
	default:
		return nil, errors.ToJSONRPCError(errors.NewMethodNotFoundError(req.Method))
	}
}

// callTool dispatches a named tool call and wraps its result or error into an
// MCPToolResult.
func (p *Processor) callTool(name string, args json.RawMessage) *models.MCPToolResult {
	p.logger.Debug().Str("tool", name).Msg("tool call")
	switch name {
	case "edit_file":
		var req models.EditFileRequest
		if err := json.Unmarshal(args, &req); err != nil {
			return errorResult("Invalid tool arguments: " + err.Error())
		}
		resp, errDetail := p.service.EditFile(req)
		if errDetail != nil {
			return errorResult(fmt.Sprintf("Error: %s (Code: %d)", errDetail.Message, errDetail.Code))
		}
		result := jsonResult(resp)
		// A failed edit sequence is a tool-level error even though the
		// outcome list travels as ordinary result data.
		result.IsError = !resp.Success
		return result
	case "append_text":
		return dispatch(args, p.service.AppendText)
	case "read_file":
		return dispatch(args, p.service.ReadFile)
	case "list_files":
		return dispatch(args, p.service.ListFiles)
	default:
		return errorResult(fmt.Sprintf("Unknown tool '%s'.", name))
	}
}

// dispatch decodes the tool arguments, invokes the service operation, and
// renders the response as a JSON content block.
func dispatch[Req any, Resp any](args json.RawMessage, op func(Req) (*Resp, *models.ErrorDetail)) *models.MCPToolResult {
	var req Req
	if len(args) > 0 {
		if err := json.Unmarshal(args, &req); err != nil {
			return errorResult("Invalid tool arguments: " + err.Error())
		}
	}
	resp, errDetail := op(req)
	if errDetail != nil {
		return errorResult(fmt.Sprintf("Error: %s (Code: %d)", errDetail.Message, errDetail.Code))
	}
	return jsonResult(resp)
}

// jsonResult renders a response value as a single JSON text content block.
func jsonResult(v interface{}) *models.MCPToolResult {
	text, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Failed to encode tool result: " + err.Error())
	}
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: string(text)}},
	}
}

func errorResult(text string) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: text}},
		IsError: true,
	}
}
