// Package reconcile is the client side of the trip lifecycle: a bearer-token
// API client, cancellable polling loops that mirror the server's authoritative
// state into a local view, and the rating gate that decides whether to prompt
// a participant after completion.
//
// The server never pushes; near-real-time visibility comes from periodic
// polling (5s for a trip detail view, 10s for a sailor's availability list).
// All loops are restartable, cancellable, and apply responses strictly in
// receipt order.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jpsantos/boatline/backend/internal/domain"
)

// Client is a minimal HTTP client for the Boatline API, authenticated with a
// bearer token. It implements the fetcher interfaces the pollers and the
// rating gate consume.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client for the API at baseURL (no trailing slash)
// using the given bearer token. httpClient may be nil, in which case a client
// with a 10-second timeout is used.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, token: token, http: httpClient}
}

// GetTrip fetches one trip's authoritative state.
func (c *Client) GetTrip(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/trips/%s", tripID), nil, &trip)
	if err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// ListAvailable fetches the sailor's current availability pool.
func (c *Client) ListAvailable(ctx context.Context) ([]domain.Trip, error) {
	var trips []domain.Trip
	if err := c.do(ctx, http.MethodGet, "/api/sailor/trips/available", nil, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// HasRated asks the server whether the caller already rated the trip.
func (c *Client) HasRated(ctx context.Context, tripID uuid.UUID) (bool, error) {
	var out struct {
		Rated bool `json:"rated"`
	}
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/trips/%s/ratings/check", tripID), nil, &out)
	if err != nil {
		return false, err
	}
	return out.Rated, nil
}

// SubmitRating submits the caller's rating of the other trip participant.
func (c *Client) SubmitRating(ctx context.Context, tripID uuid.UUID, score float64, comment string) (domain.Rating, error) {
	body := map[string]any{"score": score, "comment": comment}
	var rating domain.Rating
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/trips/%s/ratings", tripID), body, &rating)
	if err != nil {
		return domain.Rating{}, err
	}
	return rating, nil
}

// APIError is a non-2xx response from the server, carrying the decoded error
// envelope when one was present.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.StatusCode)
}

// NotFound reports whether the server said the resource does not exist or is
// no longer visible to the caller. The pollers treat this as the
// vanished-resource condition, not a failure.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusForbidden
}

// do performs one request/response cycle: marshal the optional body, attach
// the bearer token, decode into out on 2xx, decode the error envelope otherwise.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("reconcile.Client: marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("reconcile.Client: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("reconcile.Client: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("reconcile.Client: decode response: %w", err)
		}
	}
	return nil
}
