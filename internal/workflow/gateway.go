// Package workflow drives the registry forms: it validates the entered
// values, uploads the optional image through the upload gateway and saves the
// record through the record gateway.
package workflow

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

	"github.com/chaski/registry/internal/model"
)

// Gateway is the pair of server endpoints a form talks to.
type Gateway interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	Create(ctx context.Context, table model.Table, fields model.Fields) (*model.Record, error)
	List(ctx context.Context, table model.Table) ([]model.Record, error)
	Update(ctx context.Context, table model.Table, id string, fields model.Fields) (*model.Record, error)
	Delete(ctx context.Context, table model.Table, id string) error
}

// ErrorBody is the error payload both gateways answer with.
type ErrorBody struct {
	Error         string          `json:"error"`
	Details       json.RawMessage `json:"details,omitempty"`
	AirtableError string          `json:"airtable_error,omitempty"`
}

// GatewayError is a non-2xx answer from a gateway.
type GatewayError struct {
	StatusCode int
	Body       ErrorBody
}

func (e *GatewayError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body.Error)
	}
	return fmt.Sprintf("gateway returned %d", e.StatusCode)
}

// Client is a Gateway over HTTP.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a gateway client for the server at baseURL. token is sent
// as a bearer token when non-empty; httpClient may be nil.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// Upload sends r as the imagen field of a multipart form and returns the
// public URL issued for it.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("imagen", name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("copy image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out model.UploadResult
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

type saveRequest struct {
	Table  model.Table  `json:"table"`
	Data   model.Fields `json:"data,omitempty"`
	Action string       `json:"action,omitempty"`
	ID     string       `json:"id,omitempty"`
}

// Create saves a new record.
func (c *Client) Create(ctx context.Context, table model.Table, fields model.Fields) (*model.Record, error) {
	var rec model.Record
	if err := c.save(ctx, saveRequest{Table: table, Data: fields}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the first page of records of table.
func (c *Client) List(ctx context.Context, table model.Table) ([]model.Record, error) {
	var out struct {
		Records []model.Record `json:"records"`
	}
	if err := c.save(ctx, saveRequest{Table: table, Action: model.ActionList}, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Update patches fields of record id.
func (c *Client) Update(ctx context.Context, table model.Table, id string, fields model.Fields) (*model.Record, error) {
	var rec model.Record
	req := saveRequest{Table: table, Action: model.ActionUpdate, ID: id, Data: fields}
	if err := c.save(ctx, req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, table model.Table, id string) error {
	return c.save(ctx, saveRequest{Table: table, Action: model.ActionDelete, ID: id}, nil)
}

// Login exchanges the admin password for a session token.
func (c *Client) Login(ctx context.Context, password string) (string, error) {
	payload, err := json.Marshal(map[string]string{"password": password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/admin/session", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) save(ctx context.Context, body saveRequest, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/saveAirtable", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err := json.Unmarshal(raw, &gwErr.Body); err != nil {
			gwErr.Body.Error = strings.TrimSpace(string(raw))
		}
		return gwErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
