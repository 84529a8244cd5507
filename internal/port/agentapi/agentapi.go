package agentapi

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrResponseTooLarge is returned when an agent's reply exceeds the relay limit.
// The reply is discarded rather than cut short.
var ErrResponseTooLarge = errors.New("agent response too large")

// Request is one call to an external agent's HTTP API.
type Request struct {
	Endpoint string
	APIKey   string
	Input    json.RawMessage
}

type Response struct {
	StatusCode int
	Body       json.RawMessage
	Latency    time.Duration
}

// Client reaches agents hosted outside this service.
type Client interface {
	Contact(ctx context.Context, req Request) (Response, error)
	// Probe checks that endpoint answers at all; used before activating a deployment.
	Probe(ctx context.Context, endpoint, apiKey string) error
}
