package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/cell-commander/internal/handlers"
	"github.com/jwebster45206/cell-commander/pkg/engine"
)

const (
	// PollInterval is how often to check a session while waiting for a timer
	PollInterval = 100 * time.Millisecond
	// WaitTimeout is max time to wait for a timer-driven change
	WaitTimeout = 30 * time.Second
)

// IntentResponse is the outcome of posting an intent. View is the session
// view for accepted and refused intents; Error is set for everything but 200.
type IntentResponse struct {
	Status int
	View   *engine.View
	Error  string
}

// CreateSession starts a new session and returns its id and first view
func CreateSession(ctx context.Context, client *http.Client, baseURL string) (uuid.UUID, *engine.View, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/sessions", nil)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return uuid.Nil, nil, fmt.Errorf("create session returned %d: %s", resp.StatusCode, string(body))
	}

	var created handlers.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return uuid.Nil, nil, fmt.Errorf("failed to decode created session: %w", err)
	}
	id, err := uuid.Parse(created.ID)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("created session has invalid id %q: %w", created.ID, err)
	}
	return id, &created.View, nil
}

// PostIntent applies one intent. Refusals are not errors; they come back in
// the response with their status.
func PostIntent(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, in engine.Intent) (*IntentResponse, error) {
	reqBody, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intent: %w", err)
	}

	url := fmt.Sprintf("%s/v1/sessions/%s/intents", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create intent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send intent request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read intent response: %w", err)
	}

	out := &IntentResponse{Status: resp.StatusCode}
	if resp.StatusCode == http.StatusOK {
		var ok handlers.SessionResponse
		if err := json.Unmarshal(body, &ok); err != nil {
			return nil, fmt.Errorf("failed to decode intent response: %w", err)
		}
		out.View = &ok.View
		return out, nil
	}

	var failed handlers.ErrorResponse
	if err := json.Unmarshal(body, &failed); err != nil {
		return nil, fmt.Errorf("intent returned %d with unreadable body: %s", resp.StatusCode, string(body))
	}
	out.Error = failed.Error
	out.View = failed.View
	return out, nil
}

// GetSession retrieves the current view of a session
func GetSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) (*engine.View, error) {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send session request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("session endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var got handlers.SessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &got.View, nil
}

// DeleteSession ends a session. A session that is already gone is not an error.
func DeleteSession(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID) error {
	url := fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create delete request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send delete request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete session returned %d: %s", resp.StatusCode, string(body))
	}
}

// PollForView polls the session until check accepts its view.
// On timeout the last mismatch is returned.
func PollForView(ctx context.Context, client *http.Client, baseURL string, sessionID uuid.UUID, interval, timeout time.Duration, check func(*engine.View) error) (*engine.View, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastErr := fmt.Errorf("no poll completed")
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, fmt.Errorf("timeout waiting for session (waited %v): %w", timeout, lastErr)
		case <-ticker.C:
			view, err := GetSession(ctx, client, baseURL, sessionID)
			if err != nil {
				lastErr = err
				continue
			}
			if err := check(view); err != nil {
				lastErr = err
				continue
			}
			return view, nil
		}
	}
}
