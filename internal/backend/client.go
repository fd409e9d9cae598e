// Package backend is the HTTP client for the interview backend, which owns
// resume parsing, question generation, scoring and report synthesis. This
// application never interprets those results beyond rendering them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mockmate/webapp/internal/model/interview"
)

// Client talks to the interview backend over its fixed REST surface.
type Client struct {
	baseURL string
	client  *http.Client
}

// New builds a client for the given base URL. Timeout covers whole requests;
// the backend can take tens of seconds on a cold start, so callers pick it.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	Message   string              `json:"message"`
	ATSReport interview.ATSReport `json:"ats_report"`
}

// Upload posts a resume as multipart field "file" and returns the ATS
// analysis the backend produced for it.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (interview.ATSReport, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return interview.ATSReport{}, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return interview.ATSReport{}, fmt.Errorf("copy resume into request: %w", err)
	}
	if err := form.Close(); err != nil {
		return interview.ATSReport{}, fmt.Errorf("finalize multipart body: %w", err)
	}

	var resp uploadResponse
	if err := c.post(ctx, "/upload", form.FormDataContentType(), &body, &resp); err != nil {
		return interview.ATSReport{}, err
	}
	return resp.ATSReport, nil
}

type chatResponse struct {
	Response string `json:"response"`
}

// Chat submits the latest question as multipart field "question". Only the
// latest question is sent; the backend holds the conversation context, and
// that contract is preserved here as-is.
func (c *Client) Chat(ctx context.Context, question string) (string, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("question", question); err != nil {
		return "", fmt.Errorf("write question field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalize multipart body: %w", err)
	}

	var resp chatResponse
	if err := c.post(ctx, "/chat", form.FormDataContentType(), &body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// Dashboard fetches past interview records. A non-array body is treated as
// an empty history rather than an error.
func (c *Client) Dashboard(ctx context.Context) ([]interview.Record, error) {
	data, err := c.get(ctx, "/dashboard")
	if err != nil {
		return nil, err
	}

	var records []interview.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil
	}
	return records, nil
}

// GenerateReport asks the backend to score the accumulated session. It takes
// no parameters; the report is derived server-side.
func (c *Client) GenerateReport(ctx context.Context) (interview.ReportCard, error) {
	data, err := c.get(ctx, "/generate_report")
	if err != nil {
		return interview.ReportCard{}, err
	}

	var card interview.ReportCard
	if err := json.Unmarshal(data, &card); err != nil {
		return interview.ReportCard{}, fmt.Errorf("decode report: %w", err)
	}
	return card, nil
}

func (c *Client) post(ctx context.Context, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("backend %s returned status %d", path, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
