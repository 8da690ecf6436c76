package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// renderer turns an HTML document into paginated PDF bytes. The production
// implementation calls a headless browser service; tests substitute stubs that
// fail or stall to exercise the fallback path.
type renderer interface {
	renderPDF(ctx context.Context, html string) ([]byte, error)
}

// httpRenderer talks to a headless render service over HTTP. Uses raw net/http
// rather than a vendor SDK, same as the rest of our external HTTP calls.
//
// Two timeout mechanisms are enforced on purpose: the caller's context deadline
// (cancellable — a client navigating away aborts the render) and the transport
// client timeout (covers a stalled connection even if the caller never cancels).
// Whichever fires first aborts the request.
type httpRenderer struct {
	baseURL string
	timeout time.Duration
}

// renderRequest is the request body for the render service's /convert/html
// endpoint.
type renderRequest struct {
	HTML string `json:"html"`
}

func (r *httpRenderer) renderPDF(ctx context.Context, html string) ([]byte, error) {
	if r.baseURL == "" {
		return nil, fmt.Errorf("RENDERER_URL not set")
	}

	body, err := json.Marshal(renderRequest{HTML: html})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/convert/html", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	client := &http.Client{Timeout: r.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	// The response body is the render process handle on our side of the wire —
	// it must be released on every exit path.
	defer resp.Body.Close()

	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned status %d: %s", resp.StatusCode, string(pdf))
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("renderer returned an empty document")
	}

	return pdf, nil
}
