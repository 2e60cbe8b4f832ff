package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bnema/lobbymatch/internal/adapters/gateway"
	"github.com/bnema/lobbymatch/internal/domain"
	"github.com/bnema/lobbymatch/internal/ports"
)

var (
	ErrGatewayRejected = errors.New("gateway rejected request")
	ErrUnexpectedReply = errors.New("unexpected gateway reply")
)

// Client talks to a running gateway the same way a station does.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ ports.SnapshotSource = (*Client)(nil)

type reply struct {
	Status  *string `json:"status"`
	Message string  `json:"message"`
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) ReportSession(ctx context.Context, station domain.Station, sessionID domain.SessionID) (domain.Verdict, error) {
	payload := map[string]any{"pc": string(station), "lobby_id": nil}
	if sessionID.Present() {
		payload["lobby_id"] = string(sessionID)
	}

	var out reply
	if err := c.postJSON(ctx, "/lobby_id", payload, &out); err != nil {
		return "", err
	}
	if out.Status == nil {
		return domain.VerdictNoMatch, nil
	}

	switch *out.Status {
	case string(domain.VerdictAccepted):
		return domain.VerdictAccepted, nil
	case string(domain.VerdictSearchAgain):
		return domain.VerdictSearchAgain, nil
	case "error":
		return "", fmt.Errorf("%w: %s", ErrGatewayRejected, out.Message)
	default:
		return "", fmt.Errorf("%w: status %q", ErrUnexpectedReply, *out.Status)
	}
}

func (c *Client) CompleteSession(ctx context.Context, station domain.Station) error {
	var out reply
	if err := c.postJSON(ctx, "/game_end", map[string]string{"pc": string(station)}, &out); err != nil {
		return err
	}
	if out.Status == nil {
		return fmt.Errorf("%w: missing status", ErrUnexpectedReply)
	}
	if *out.Status == "error" {
		return fmt.Errorf("%w: %s", ErrGatewayRejected, out.Message)
	}

	return nil
}

func (c *Client) Reset(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/reset", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) Snapshot(ctx context.Context) (domain.StatusView, error) {
	resp, err := c.do(ctx, http.MethodGet, "/status.json", nil)
	if err != nil {
		return domain.StatusView{}, err
	}
	defer resp.Body.Close()

	var payload gateway.StatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.StatusView{}, fmt.Errorf("decode status: %w", err)
	}

	return payload.View()
}

func (c *Client) postJSON(ctx context.Context, path string, in any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s reply: %w", path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotFound {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s %s returned %d: %s", ErrUnexpectedReply, method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	return resp, nil
}
