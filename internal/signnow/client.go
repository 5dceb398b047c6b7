// Package signnow is the e-signature provider client (SignNow-compatible
// REST API): document upload and download, signature field registration,
// invites in three delivery modes, and event subscriptions.
package signnow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bondpacket/internal/common/config"
	commonhttp "bondpacket/internal/common/http"
	"bondpacket/internal/common/logger"
	"bondpacket/internal/models"
)

type Client struct {
	cfg  config.ProviderConfig
	http *commonhttp.Client
	log  logger.Logger
}

func NewClient(cfg config.ProviderConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: commonhttp.NewClient(timeout),
		log:  log,
	}
}

// APIError is a non-2xx provider response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider API error: status=%d body=%s", e.Status, e.Body)
}

// IsInviteConflict reports whether the error means the document already
// has an active invite, which must be cancelled before a new one can be
// created.
func (e *APIError) IsInviteConflict() bool {
	if e.Status == http.StatusConflict {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "invite already exists") ||
		strings.Contains(body, "has a pending invite")
}

// Document is the provider's view of an uploaded document.
type Document struct {
	ID           string        `json:"id"`
	DocumentName string        `json:"document_name"`
	Signatures   []Signature   `json:"signatures"`
	FieldInvites []FieldInvite `json:"field_invites"`
}

type Signature struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type FieldInvite struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// InviteStatusFulfilled is the provider's status for a field invite
// whose signer has signed.
const InviteStatusFulfilled = "fulfilled"

// Upload posts the PDF at path under the given document name and
// returns the provider document id.
func (c *Client) Upload(ctx context.Context, path, documentName string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("signnow: open upload file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", documentName+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("signnow: build multipart: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("signnow: read upload file: %w", err)
	}
	if err := mw.WriteField("name", documentName); err != nil {
		return "", fmt.Errorf("signnow: build multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("signnow: build multipart: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.cfg.BaseURL+"/document", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	var out struct {
		ID string `json:"id"`
	}
	if err := c.send(ctx, req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// RegisterFields writes the absolute signature field layout onto an
// uploaded document.
func (c *Client) RegisterFields(ctx context.Context, documentID string, fields []models.SignatureField) error {
	body := struct {
		Fields []models.SignatureField `json:"fields"`
	}{Fields: fields}
	return c.doJSON(ctx, http.MethodPut, "/document/"+documentID, body, nil)
}

// GetDocument fetches the provider's current state for a document.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, "/document/"+documentID, nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Download retrieves the collapsed (signatures flattened) PDF.
func (c *Client) Download(ctx context.Context, documentID string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.cfg.BaseURL+"/document/"+documentID+"/download?type=collapsed", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("signnow: download: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("signnow: read download: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// CancelInvites cancels every outstanding field invite on a document.
func (c *Client) CancelInvites(ctx context.Context, documentID string) error {
	return c.doJSON(ctx, http.MethodPut, "/document/"+documentID+"/fieldinvitecancel", nil, nil)
}

// doJSON sends a JSON request and decodes the JSON response into out
// when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("signnow: encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	return c.send(ctx, req, out)
}

func (c *Client) send(ctx context.Context, req *http.Request, out interface{}) error {
	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("signnow: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("signnow: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("signnow: decode response: %w", err)
		}
	}
	return nil
}
