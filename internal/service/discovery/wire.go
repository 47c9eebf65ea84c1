package discovery

import (
	"encoding/json"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// ProtocolVersion is the version tag carried by every envelope.
const ProtocolVersion = "2.0"

const (
	methodListTools = "tools/list"
	methodCallTool  = "tools/call"
)

// request is the wire envelope sent to a provider.
type request struct {
	ProtocolVersion string `json:"protocolVersion"`
	ID              string `json:"id"`
	Method          string `json:"method"`
	Params          any    `json:"params"`
}

// response is the wire envelope received from a provider.
// Exactly one of Result and Error is set on a well-formed reply.
type response struct {
	ProtocolVersion string          `json:"protocolVersion"`
	ID              string          `json:"id"`
	Result          json.RawMessage `json:"result,omitempty"`
	Error           *wireError      `json:"error,omitempty"`
}

// wireError is the protocol-level error reply body.
type wireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// listToolsResult is the result payload of a tools/list reply.
type listToolsResult struct {
	Tools []types.DiscoveredTool `json:"tools"`
}

// callToolParams is the params payload of a tools/call request.
type callToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}
