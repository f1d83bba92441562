// Package overfast implements a client for the OverFast API.
// API documentation: https://overfast-api.tekrop.fr/docs
package overfast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	BaseURL = "https://overfast-api.tekrop.fr"
)

var (
	// ErrPlayerNotFound indicates the battletag does not exist on Blizzard servers.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrPrivateProfile indicates the player's career profile is private.
	ErrPrivateProfile = errors.New("profile is private")
)

// Client is an OverFast API client. It carries no request pacing of its
// own; spacing between calls is the caller's responsibility.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new OverFast API client.
func NewClient() *Client {
	return &Client{
		baseURL: BaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// get performs a GET request and decodes the JSON response
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// decoded below
	case http.StatusNotFound:
		return ErrPlayerNotFound
	case http.StatusInternalServerError:
		// The API reports private profiles through a 500 payload.
		body, _ := io.ReadAll(resp.Body)
		if bytes.Contains(bytes.ToLower(body), []byte("private")) {
			return ErrPrivateProfile
		}
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
