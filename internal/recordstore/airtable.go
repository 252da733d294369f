package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chaski/registry/internal/model"
)

// DefaultAirtableURL is the Airtable REST API root.
const DefaultAirtableURL = "https://api.airtable.com/v0"

// maxErrorBody bounds how much of an upstream error body is kept.
const maxErrorBody = 1 << 20

// Airtable is a Store backed by the Airtable REST API.
type Airtable struct {
	baseURL    string
	baseID     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewAirtable creates a client for one Airtable base.
// apiURL may be empty for the public API; httpClient may be nil.
func NewAirtable(apiURL, baseID, apiKey string, httpClient *http.Client, logger *slog.Logger) *Airtable {
	if apiURL == "" {
		apiURL = DefaultAirtableURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Airtable{
		baseURL:    strings.TrimRight(apiURL, "/"),
		baseID:     baseID,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger.With(slog.String("component", "airtable_client")),
	}
}

type fieldsBody struct {
	Fields map[string]any `json:"fields"`
}

type listBody struct {
	Records []model.Record `json:"records"`
	Offset  string         `json:"offset,omitempty"`
}

// Create inserts one record and returns it as stored.
func (a *Airtable) Create(ctx context.Context, table string, fields map[string]any) (*model.Record, error) {
	var rec model.Record
	if err := a.do(ctx, http.MethodPost, a.tableURL(table), fieldsBody{Fields: fields}, &rec); err != nil {
		return nil, fmt.Errorf("create record in %s: %w", table, err)
	}
	return &rec, nil
}

// List returns the first page of records; the offset cursor is not followed.
func (a *Airtable) List(ctx context.Context, table string) ([]model.Record, error) {
	var body listBody
	if err := a.do(ctx, http.MethodGet, a.tableURL(table), nil, &body); err != nil {
		return nil, fmt.Errorf("list records in %s: %w", table, err)
	}
	if body.Offset != "" {
		a.logger.Debug("record list truncated at first page",
			slog.String("table", table),
			slog.Int("records", len(body.Records)),
		)
	}
	if body.Records == nil {
		body.Records = []model.Record{}
	}
	return body.Records, nil
}

// Update patches the given fields of one record.
func (a *Airtable) Update(ctx context.Context, table, id string, fields map[string]any) (*model.Record, error) {
	var rec model.Record
	if err := a.do(ctx, http.MethodPatch, a.recordURL(table, id), fieldsBody{Fields: fields}, &rec); err != nil {
		return nil, fmt.Errorf("update record %s in %s: %w", id, table, err)
	}
	return &rec, nil
}

// Delete removes one record.
func (a *Airtable) Delete(ctx context.Context, table, id string) error {
	if err := a.do(ctx, http.MethodDelete, a.recordURL(table, id), nil, nil); err != nil {
		return fmt.Errorf("delete record %s in %s: %w", id, table, err)
	}
	return nil
}

func (a *Airtable) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", a.baseURL, url.PathEscape(a.baseID), url.PathEscape(table))
}

func (a *Airtable) recordURL(table, id string) string {
	return a.tableURL(table) + "/" + url.PathEscape(id)
}

func (a *Airtable) do(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := newAPIError(resp.StatusCode, raw)
		a.logger.Warn("record store error",
			slog.String("method", method),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
