package mcp

import (
	"context"
	"encoding/json"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	domainerrors "github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/domain/errors"
)

// toolErrorEnvelope is the failure shape every tool surfaces:
// {success:false, error, code}.
type toolErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type toolError struct {
	Envelope toolErrorEnvelope
}

func (e toolError) Error() string {
	encoded, err := json.Marshal(e.Envelope)
	if err != nil {
		return `{"success":false,"error":"failed to encode error envelope","code":"INTERNAL_ERROR"}`
	}
	return string(encoded)
}

// classifyToolError maps any error into the stable taxonomy, keeping the
// message opaque for storage failures.
func classifyToolError(err error) toolErrorEnvelope {
	appErr := domainerrors.From(err)
	return toolErrorEnvelope{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	}
}

// withToolErrors wraps a tool handler so every failure comes back as the
// structured envelope instead of a bare message.
func withToolErrors[In, Out any](h mcpsdk.ToolHandlerFor[In, Out]) mcpsdk.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, Out, error) {
		res, out, err := h(ctx, req, input)
		if err == nil {
			return res, out, nil
		}
		var zero Out
		return nil, zero, toolError{Envelope: classifyToolError(err)}
	}
}
