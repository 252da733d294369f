// Package recordstore talks to the external tabular record store.
package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chaski/registry/internal/model"
)

// ErrNotConfigured is returned when the record store has no credentials.
var ErrNotConfigured = errors.New("record store not configured")

// Store is the set of record operations the gateway relays.
type Store interface {
	Create(ctx context.Context, table string, fields map[string]any) (*model.Record, error)
	List(ctx context.Context, table string) ([]model.Record, error)
	Update(ctx context.Context, table, id string, fields map[string]any) (*model.Record, error)
	Delete(ctx context.Context, table, id string) error
}

// APIError is a non-2xx answer from the record store. Body holds the upstream
// JSON untouched so callers can pass it through.
type APIError struct {
	StatusCode int
	Body       json.RawMessage
	// Message is error.message from the body, when the store sent one.
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record store returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("record store returned %d", e.StatusCode)
}

// newAPIError parses the store's error body. Airtable sends either
// {"error": {"type": ..., "message": ...}} or {"error": "NOT_FOUND"}.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if json.Valid(body) {
		apiErr.Body = json.RawMessage(body)
	} else if len(body) > 0 {
		quoted, _ := json.Marshal(string(body))
		apiErr.Body = quoted
	}

	var parsed struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Error) == 0 {
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(parsed.Error, &detail); err == nil {
		apiErr.Message = detail.Message
		if apiErr.Message == "" {
			apiErr.Message = detail.Type
		}
		return apiErr
	}

	var code string
	if err := json.Unmarshal(parsed.Error, &code); err == nil {
		apiErr.Message = code
	}
	return apiErr
}
