// Package platform is the outbound HTTP client for the chat-platform adapter.
// It implements the engine's collaborator ports: role queries, membership
// mutation, offer prompts, channel posts, and direct notifications.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the platform adapter over HTTP with a bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a platform client for the given adapter base URL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the adapter answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform adapter returned %d: %s", e.StatusCode, e.Body)
}

// Roles returns the role IDs currently held by the member.
func (c *Client) Roles(ctx context.Context, memberID string) ([]string, error) {
	var resp struct {
		Roles []string `json:"roles"`
	}
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(memberID)+"/roles", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching roles for member %s: %w", memberID, err)
	}
	return resp.Roles, nil
}

// CountHolders returns the number of members currently holding roleID.
func (c *Client) CountHolders(ctx context.Context, roleID string) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/roles/"+url.PathEscape(roleID)+"/holders/count", nil, &resp); err != nil {
		return 0, fmt.Errorf("counting holders of role %s: %w", roleID, err)
	}
	return resp.Count, nil
}

// DisplayName returns the member's human-readable name.
func (c *Client) DisplayName(ctx context.Context, memberID string) (string, error) {
	var resp struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.do(ctx, http.MethodGet, "/members/"+url.PathEscape(memberID), nil, &resp); err != nil {
		return "", fmt.Errorf("fetching member %s: %w", memberID, err)
	}
	return resp.DisplayName, nil
}

// GrantRole adds roleID to the member, with an audit reason.
func (c *Client) GrantRole(ctx context.Context, memberID, roleID, reason string) error {
	body := map[string]string{"reason": reason}
	path := "/members/" + url.PathEscape(memberID) + "/roles/" + url.PathEscape(roleID)
	if err := c.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("granting role %s to member %s: %w", roleID, memberID, err)
	}
	return nil
}

// RevokeRole removes roleID from the member, with an audit reason.
func (c *Client) RevokeRole(ctx context.Context, memberID, roleID, reason string) error {
	body := map[string]string{"reason": reason}
	path := "/members/" + url.PathEscape(memberID) + "/roles/" + url.PathEscape(roleID)
	if err := c.do(ctx, http.MethodDelete, path, body, nil); err != nil {
		return fmt.Errorf("revoking role %s from member %s: %w", roleID, memberID, err)
	}
	return nil
}

// SendOfferPrompt asks the adapter to DM the member an interactive
// accept/decline prompt for the given team.
func (c *Client) SendOfferPrompt(ctx context.Context, memberID, teamName string) error {
	body := map[string]any{
		"member_id": memberID,
		"content":   fmt.Sprintf("You have been invited to play for **%s**. Do you accept the contract?", teamName),
		"choices":   []string{"accept", "decline"},
	}
	if err := c.do(ctx, http.MethodPost, "/prompts", body, nil); err != nil {
		return fmt.Errorf("sending offer prompt to member %s: %w", memberID, err)
	}
	return nil
}

// Post sends a message to a channel.
func (c *Client) Post(ctx context.Context, channelID, text string) error {
	body := map[string]string{"content": text}
	if err := c.do(ctx, http.MethodPost, "/channels/"+url.PathEscape(channelID)+"/messages", body, nil); err != nil {
		return fmt.Errorf("posting to channel %s: %w", channelID, err)
	}
	return nil
}

// Notify sends a direct message to a member.
func (c *Client) Notify(ctx context.Context, memberID, text string) error {
	body := map[string]string{"content": text}
	if err := c.do(ctx, http.MethodPost, "/members/"+url.PathEscape(memberID)+"/messages", body, nil); err != nil {
		return fmt.Errorf("notifying member %s: %w", memberID, err)
	}
	return nil
}

// do performs a JSON request against the adapter and decodes the response
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}
