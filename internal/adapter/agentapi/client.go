package agentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	portagentapi "github.com/alanyang/agent-market/internal/port/agentapi"
)

var _ portagentapi.Client = (*Client)(nil)

// maxResponseBytes is the largest agent reply relayed back; larger replies fail the call.
const maxResponseBytes = 1 << 20

// Client calls external agent APIs. Each agent authenticates with its own key,
// sent as a bearer token.
type Client struct {
	base    http.RoundTripper
	timeout time.Duration
}

func New(timeout time.Duration) *Client {
	return &Client{base: http.DefaultTransport, timeout: timeout}
}

func (c *Client) httpClient(apiKey string) *http.Client {
	if apiKey == "" {
		return &http.Client{Transport: c.base, Timeout: c.timeout}
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: c.base},
		Timeout:   c.timeout,
	}
}

// Contact POSTs req.Input as JSON. Non-2xx replies are returned as a Response,
// not an error; only transport failures are errors.
func (c *Client) Contact(ctx context.Context, req portagentapi.Request) (portagentapi.Response, error) {
	input := req.Input
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(input))
	if err != nil {
		return portagentapi.Response{}, fmt.Errorf("building agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient(req.APIKey).Do(httpReq)
	if err != nil {
		return portagentapi.Response{Latency: time.Since(start)}, fmt.Errorf("calling agent: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	latency := time.Since(start)
	if err != nil {
		return portagentapi.Response{StatusCode: resp.StatusCode, Latency: latency}, fmt.Errorf("reading agent response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return portagentapi.Response{StatusCode: resp.StatusCode, Latency: latency},
			fmt.Errorf("reading agent response: %w (over %d bytes)", portagentapi.ErrResponseTooLarge, maxResponseBytes)
	}

	out := portagentapi.Response{StatusCode: resp.StatusCode, Latency: latency}
	if json.Valid(body) {
		out.Body = body
	} else {
		// Plain-text replies are wrapped so callers always relay JSON.
		wrapped, _ := json.Marshal(map[string]string{"output": string(body)})
		out.Body = wrapped
	}
	return out, nil
}

func (c *Client) Probe(ctx context.Context, endpoint, apiKey string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building probe request: %w", err)
	}
	resp, err := c.httpClient(apiKey).Do(req)
	if err != nil {
		return fmt.Errorf("probing agent: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("probing agent: endpoint answered %d", resp.StatusCode)
	}
	return nil
}
