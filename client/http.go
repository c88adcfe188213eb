package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/magbay/LAN-Chat/domain/chat"
)

// APIError is a non-2xx answer from the server's HTTP API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// HTTPClient calls the server's HTTP endpoints.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient creates a client for the server at baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload posts an image and returns the URL to share in a message.
func (c *HTTPClient) Upload(ctx context.Context, filename string, r io.Reader) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// RandomNickname asks the server for a generated nickname.
func (c *HTTPClient) RandomNickname(ctx context.Context) (string, error) {
	var resp struct {
		Nickname string `json:"nickname"`
	}
	if err := c.get(ctx, "/api/v1/nickname", &resp); err != nil {
		return "", err
	}
	return resp.Nickname, nil
}

// Roster returns who is currently in the room.
func (c *HTTPClient) Roster(ctx context.Context) (chat.RosterSnapshot, error) {
	var resp struct {
		Nicknames []string `json:"nicknames"`
	}
	if err := c.get(ctx, "/api/v1/roster", &resp); err != nil {
		return chat.RosterSnapshot{}, err
	}
	return chat.NewRosterSnapshot(resp.Nicknames), nil
}

// Stats returns the server's room statistics as decoded JSON.
func (c *HTTPClient) Stats(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	if err := c.get(ctx, "/api/v1/stats", &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
