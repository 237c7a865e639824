// Package translate is the HTTP client for the external translation and
// AI-import collaborator. Recoverable failures (no usable result) come
// back as ok=false with a nil error; only transport and protocol
// failures are errors, so callers can tell "skip this field" apart from
// "abort the batch".
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"curricore/pkg/domain"
)

// Client talks to the collaborator service. It satisfies core.Translator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithAPIKey sets the bearer token sent with each request.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = timeout }
}

// NewClient constructs a client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromEnv constructs a client from process environment.
//
//	CURRICORE_TRANSLATE_URL     collaborator base URL (required)
//	CURRICORE_TRANSLATE_API_KEY bearer token (optional)
func NewClientFromEnv() (*Client, error) {
	baseURL := os.Getenv("CURRICORE_TRANSLATE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("CURRICORE_TRANSLATE_URL required")
	}
	return NewClient(baseURL, WithAPIKey(os.Getenv("CURRICORE_TRANSLATE_API_KEY"))), nil
}

type translateRequest struct {
	Text string `json:"text"`
	From string `json:"from"`
	To   string `json:"to"`
}

type translateResponse struct {
	Result *string `json:"result"`
}

// Translate asks the collaborator for a translation. A null result in
// the response means the collaborator had nothing usable; the caller
// must leave the field unchanged.
func (c *Client) Translate(ctx context.Context, text string, from, to domain.Language) (string, bool, error) {
	var resp translateResponse
	err := c.post(ctx, "/translate", translateRequest{Text: text, From: string(from), To: string(to)}, &resp)
	if err != nil {
		return "", false, err
	}
	if resp.Result == nil || *resp.Result == "" {
		return "", false, nil
	}
	return *resp.Result, true, nil
}

// CourseDraft is the partial course the PDF importer extracts. Zero
// fields mean "not extracted" and must not clear existing data.
type CourseDraft struct {
	Code        string               `json:"code"`
	Name        domain.LocalizedText `json:"name"`
	Credits     int                  `json:"credits"`
	Semester    int                  `json:"semester"`
	Description domain.LocalizedText `json:"description"`
	CLOs        domain.CLOSet        `json:"clos"`
}

func (d CourseDraft) isEmpty() bool {
	return d.Code == "" && d.Name == (domain.LocalizedText{}) && d.Credits == 0 &&
		d.Semester == 0 && d.Description == (domain.LocalizedText{}) &&
		len(d.CLOs.VI) == 0 && len(d.CLOs.EN) == 0
}

type importRequest struct {
	PDFBase64 string `json:"pdf_base64"`
}

type importResponse struct {
	Course *CourseDraft `json:"course"`
}

// ImportCourseDraft sends a base64 PDF to the collaborator and returns
// the extracted draft. ok=false means the extraction came back empty.
func (c *Client) ImportCourseDraft(ctx context.Context, pdfBase64 string) (CourseDraft, bool, error) {
	var resp importResponse
	if err := c.post(ctx, "/import", importRequest{PDFBase64: pdfBase64}, &resp); err != nil {
		return CourseDraft{}, false, err
	}
	if resp.Course == nil || resp.Course.isEmpty() {
		return CourseDraft{}, false, nil
	}
	return *resp.Course, true, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("translate service %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
