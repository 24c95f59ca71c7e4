package mcp

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"textedit-server/internal/config"
	"textedit-server/internal/filesystem"
	"textedit-server/internal/lock"
	"textedit-server/internal/models"
	"textedit-server/internal/service"
)

func newTestProcessor(t *testing.T) (*Processor, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.WorkingDirectory = dir
	svc, err := service.NewTextEditService(filesystem.NewOSAdapter(), lock.NewFlockManager(), cfg, zerolog.Nop())
	require.NoError(t, err)
	return NewProcessor(svc, zerolog.Nop()), dir
}

func rpcRequest(method string, params interface{}) models.JSONRPCRequest {
	raw, _ := json.Marshal(params)
	return models.JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: raw}
}

func TestProcessRequest_Initialize(t *testing.T) {
	p, _ := newTestProcessor(t)

	result, rpcErr := p.ProcessRequest(rpcRequest("initialize", nil))
	require.Nil(t, rpcErr)

	init, ok := result.(models.InitializeResponse)
	require.True(t, ok)
	assert.Equal(t, serverName, init.ServerInfo.Name)
	assert.Equal(t, protocolVersion, init.ProtocolVersion)
}

func TestProcessRequest_ToolsList(t *testing.T) {
	p, _ := newTestProcessor(t)

	result, rpcErr := p.ProcessRequest(rpcRequest("tools/list", nil))
	require.Nil(t, rpcErr)

	list, ok := result.(models.ToolsListResponse)
	require.True(t, ok)
	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.NotNil(t, tool.InputSchema)
	}
	assert.Equal(t, []string{"edit_file", "append_text", "read_file", "list_files"}, names)
}

func TestProcessRequest_MethodNotFound(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, rpcErr := p.ProcessRequest(rpcRequest("resources/list", nil))
	require.NotNil(t, rpcErr)
	assert.Equal(t, -32601, rpcErr.Code)
}

func TestToolCall_EditFileRoundTrip(t *testing.T) {
	p, _ := newTestProcessor(t)

	result, rpcErr := p.ProcessRequest(rpcRequest("tools/call", ToolCallParams{
		Name: "append_text",
		Arguments: mustMarshal(t, models.AppendTextRequest{
			Name:    "doc.txt",
			Content: []string{"alpha", "beta"},
		}),
	}))
	require.Nil(t, rpcErr)
	toolResult := result.(*models.MCPToolResult)
	require.False(t, toolResult.IsError)

	result, rpcErr = p.ProcessRequest(rpcRequest("tools/call", ToolCallParams{
		Name: "edit_file",
		Arguments: mustMarshal(t, models.EditFileRequest{
			Name: "doc.txt",
			Edits: []models.EditSpec{
				{Kind: models.KindReplace, StartPattern: "beta", Content: []string{"gamma"}},
			},
		}),
	}))
	require.Nil(t, rpcErr)
	toolResult = result.(*models.MCPToolResult)
	require.False(t, toolResult.IsError)

	var resp models.EditFileResponse
	require.NoError(t, json.Unmarshal([]byte(toolResult.Content[0].Text), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "alpha\ngamma\n", resp.Content)
}

func TestToolCall_FailedEditIsToolError(t *testing.T) {
	p, _ := newTestProcessor(t)

	_, rpcErr := p.ProcessRequest(rpcRequest("tools/call", ToolCallParams{
		Name:      "append_text",
		Arguments: mustMarshal(t, models.AppendTextRequest{Name: "doc.txt", Content: []string{"x"}}),
	}))
	require.Nil(t, rpcErr)

	result, rpcErr := p.ProcessRequest(rpcRequest("tools/call", ToolCallParams{
		Name: "edit_file",
		Arguments: mustMarshal(t, models.EditFileRequest{
			Name:  "doc.txt",
			Edits: []models.EditSpec{{Kind: models.KindDelete, StartPattern: "absent"}},
		}),
	}))
	require.Nil(t, rpcErr)
	toolResult := result.(*models.MCPToolResult)
	assert.True(t, toolResult.IsError)

	var resp models.EditFileResponse
	require.NoError(t, json.Unmarshal([]byte(toolResult.Content[0].Text), &resp))
	assert.False(t, resp.Success)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, models.StatusPatternNotFound, resp.Outcomes[0].Status)
}

func TestToolCall_UnknownTool(t *testing.T) {
	p, _ := newTestProcessor(t)

	result, rpcErr := p.ProcessRequest(rpcRequest("tools/call", ToolCallParams{Name: "delete_everything"}))
	require.Nil(t, rpcErr)
	toolResult := result.(*models.MCPToolResult)
	assert.True(t, toolResult.IsError)
	assert.Contains(t, toolResult.Content[0].Text, "Unknown tool")
}

func mustMarshal(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
