// Package extraction calls the external document extraction oracle. The
// oracle is a black box returning structured fields plus a confidence score;
// this package makes exactly one bounded attempt per call and never retries.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"certiva/pkg/apperrors"
)

const defaultTimeout = 15 * time.Second

// Result is the oracle's answer for one document. Fields carries the
// free-form extracted values (student name, certificate number, ...).
type Result struct {
	Confidence       float64
	ValidationPassed bool
	Fields           map[string]any
}

// Client is the HTTP client for the extraction oracle.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (for tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient builds a client for the oracle at baseURL. The timeout bounds the
// whole call; the oracle is outside this system's control so an unbounded
// wait is never acceptable.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type extractRequest struct {
	FileURL string `json:"file_url"`
}

// Extract submits a file reference to the oracle and decodes its response.
// A missing confidence field decodes to 0, which callers must treat as
// "no signal" rather than an error.
func (c *Client) Extract(ctx context.Context, fileRef string) (*Result, error) {
	body, err := json.Marshal(extractRequest{FileURL: fileRef})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode extraction request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build extraction request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "extraction service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Newf(apperrors.CodeUpstream, "extraction service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "failed to read extraction response")
	}

	result, err := decodeResult(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstream, "malformed extraction response")
	}
	return result, nil
}

// decodeResult splits the well-known signal fields from the free-form rest.
func decodeResult(raw []byte) (*Result, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode extraction body: %w", err)
	}

	result := &Result{Fields: fields}
	if v, ok := fields["confidence"].(float64); ok {
		result.Confidence = v
	}
	if v, ok := fields["validation_passed"].(bool); ok {
		result.ValidationPassed = v
	}
	delete(fields, "confidence")
	delete(fields, "validation_passed")
	return result, nil
}
