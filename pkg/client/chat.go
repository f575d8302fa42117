package client

import (
	"net/http"

	"github.com/memorai/memorai/webui/types"
)

// Chat sends one message and returns the assistant's reply.
func (c *Client) Chat(req types.ChatRequest) (*types.ChatResponse, error) {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/chat", req)
	if err != nil {
		return nil, err
	}

	var out types.ChatResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUser fetches a user's profile.
func (c *Client) GetUser(userID string) (*types.UserResponse, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/v1/user/"+userID, nil)
	if err != nil {
		return nil, err
	}

	var out types.UserResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePreferences merges the given preference keys into the profile.
func (c *Client) UpdatePreferences(userID string, prefs types.PreferencesRequest) error {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/user/"+userID+"/preferences", prefs)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// PruneMemory triggers an on-demand retention sweep for one user.
func (c *Client) PruneMemory(req types.PruneRequest) (*types.PruneResponse, error) {
	resp, err := c.doRequest(http.MethodPost, "/api/v1/memory/prune", req)
	if err != nil {
		return nil, err
	}

	var out types.PruneResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health reports server status.
func (c *Client) Health() (*types.HealthResponse, error) {
	resp, err := c.doRequest(http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}

	var out types.HealthResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
