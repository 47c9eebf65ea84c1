package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mcpbridge/mcpbridge/pkg/types"
)

// RegisterTool registers an internal tool with the server.
func (c *Client) RegisterTool(input *types.RegisterToolInput) (*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools")

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool data: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, c.parseErrorResponse(resp)
	}

	var t types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &t, nil
}

// ListTools returns all registered tools.
func (c *Client) ListTools() ([]types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools")
	return c.fetchTools(u)
}

// ListChannelTools returns the tools visible in the given channel.
func (c *Client) ListChannelTools(channelID string) ([]types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/channels/" + channelID + "/tools")
	return c.fetchTools(u)
}

func (c *Client) fetchTools(u string) ([]types.Tool, error) {
	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var tools []types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&tools); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return tools, nil
}

// GetTool returns the tool with the given identifier.
func (c *Client) GetTool(id string) (*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools/" + id)

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var t types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &t, nil
}

// UpdateTool applies a partial update to a tool record.
func (c *Client) UpdateTool(id string, input *types.UpdateToolInput) (*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools/" + id)

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool data: %w", err)
	}

	req, err := c.newRequest(http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var t types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &t, nil
}

// DeregisterTool removes a tool record.
func (c *Client) DeregisterTool(id string) error {
	u, _ := c.constructAPIEndpoint("/tools/" + id)

	req, err := c.newRequest(http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return c.parseErrorResponse(resp)
	}
	return nil
}

// EnableTool enables a tool.
func (c *Client) EnableTool(id string) (*types.Tool, error) {
	return c.setToolEnabled(id, "enable")
}

// DisableTool disables a tool. Disabled tools are hidden from channels and
// reject invocation.
func (c *Client) DisableTool(id string) (*types.Tool, error) {
	return c.setToolEnabled(id, "disable")
}

func (c *Client) setToolEnabled(id, verb string) (*types.Tool, error) {
	u, _ := c.constructAPIEndpoint("/tools/" + id + "/" + verb)

	req, err := c.newRequest(http.MethodPost, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var t types.Tool
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &t, nil
}

// InvokeTool runs a tool with an explicit payload and returns the result.
// An unsuccessful execution is reported in the result, not as an error.
func (c *Client) InvokeTool(input *types.InvokeToolInput) (*types.InvokeToolResult, error) {
	u, _ := c.constructAPIEndpoint("/tools/invoke")

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal invocation data: %w", err)
	}

	req, err := c.newRequest(http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var result types.InvokeToolResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// UsageStats returns the server's aggregated usage statistics.
func (c *Client) UsageStats() (*types.UsageStats, error) {
	u, _ := c.constructAPIEndpoint("/stats")

	req, err := c.newRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var stats types.UsageStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &stats, nil
}
