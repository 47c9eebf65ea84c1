package types

import (
	"fmt"
	"time"
)

// ConnectionType represents how mcpbridge talks to a tool provider.
// All connection types supported by mcpbridge are defined in this file with this type.
type ConnectionType string

const (
	// ConnectionHTTP is a request/response exchange over HTTP.
	// This is the only connection type that is fully functional.
	ConnectionHTTP ConnectionType = "http"

	// ConnectionWebSocket is a persistent socket connection.
	// Declared but not implemented: using it for discovery or tool calls
	// yields an unsupported-operation failure at call time.
	ConnectionWebSocket ConnectionType = "websocket"

	// ConnectionStdio is a local-process pipe connection.
	// Declared but not implemented, same as ConnectionWebSocket.
	ConnectionStdio ConnectionType = "stdio"
)

// ConnectionStatus represents the connection state of a provider.
// Transitions are driven exclusively by connect/discover attempts.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnected    ConnectionStatus = "connected"
	StatusError        ConnectionStatus = "error"
)

// Provider represents a tool provider (MCP server) registered in the mcpbridge registry.
type Provider struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Endpoint    string         `json:"endpoint"`
	Connection  ConnectionType `json:"connection"`
	Enabled     bool           `json:"enabled"`

	Status        ConnectionStatus `json:"status"`
	LastDiscovery *time.Time       `json:"last_discovery,omitempty"`
	LastError     string           `json:"last_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterProviderInput is the input structure for registering a new provider with mcpbridge.
type RegisterProviderInput struct {
	// Name (mandatory) is the unique name of the provider.
	Name string `json:"name"`

	Description string `json:"description"`

	// Endpoint (mandatory) is the address of the provider.
	// For the http connection type it must be a valid http/https URL.
	Endpoint string `json:"endpoint"`

	// Credential is an optional bearer token used for authenticating
	// requests to the provider.
	Credential string `json:"credential,omitempty"`

	// Connection is the connection type used to reach the provider.
	// Valid values are "http", "websocket" and "stdio". Defaults to "http".
	Connection string `json:"connection,omitempty"`

	// Enabled defaults to true when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

// UpdateProviderInput describes a partial update of a provider record.
// Nil fields are left unchanged. Changing any of Endpoint, Credential or
// Connection triggers a reconnect and rediscovery.
type UpdateProviderInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Endpoint    *string `json:"endpoint,omitempty"`
	Credential  *string `json:"credential,omitempty"`
	Connection  *string `json:"connection,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// ValidateConnectionType validates the input string and returns the corresponding ConnectionType.
// An empty input defaults to ConnectionHTTP.
func ValidateConnectionType(input string) (ConnectionType, error) {
	switch input {
	case string(ConnectionHTTP), "":
		return ConnectionHTTP, nil
	case string(ConnectionWebSocket):
		return ConnectionWebSocket, nil
	case string(ConnectionStdio):
		return ConnectionStdio, nil
	default:
		return "", fmt.Errorf(
			"unsupported connection type: %s (acceptable values: '%s', '%s', '%s')",
			input, ConnectionHTTP, ConnectionWebSocket, ConnectionStdio,
		)
	}
}
