package readinglog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"

	"github.com/zombar/readinglog/models"
)

// Fetcher retrieves raw page bytes for a URL under timeout and size limits.
// It performs no retries; retry policy belongs to the pipeline.
type Fetcher struct {
	config Config
	client *http.Client
}

// NewFetcher creates a Fetcher. The HTTP client is wrapped with
// otelhttp.Transport so trace context propagates to fetched origins.
func NewFetcher(config Config) *Fetcher {
	return &Fetcher{
		config: config,
		client: &http.Client{
			Timeout:   config.HTTPTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Fetch downloads and charset-decodes the page at rawURL.
//
// Failures are classified: syntactically bad or non-http(s) URLs are
// KindInvalidURL, bodies over the byte cap are KindContentTooLarge (the body
// is never silently truncated), and everything network-shaped is
// KindUnreachable, marked transient for 429/5xx and transport errors.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.RawPage, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, &IngestError{Kind: KindInvalidURL, Stage: "fetch", Err: err}
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &IngestError{Kind: KindInvalidURL, Stage: "fetch",
			Err: fmt.Errorf("URL must be absolute http or https: %q", rawURL)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &IngestError{Kind: KindInvalidURL, Stage: "fetch", Err: err}
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html, application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		// DNS, connection refused, TLS failure, timeout.
		return nil, &IngestError{Kind: KindUnreachable, Stage: "fetch", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &IngestError{
			Kind:      KindUnreachable,
			Stage:     "fetch",
			Transient: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:       fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status),
		}
	}

	if resp.ContentLength > f.config.MaxBodyBytes {
		return nil, &IngestError{Kind: KindContentTooLarge, Stage: "fetch",
			Err: fmt.Errorf("response is %d bytes (max %d)", resp.ContentLength, f.config.MaxBodyBytes)}
	}

	// Read one byte past the cap so an oversized body is detected rather
	// than truncated; a clipped body would corrupt downstream word counts.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes+1))
	if err != nil {
		return nil, &IngestError{Kind: KindUnreachable, Stage: "fetch", Transient: true, Err: err}
	}
	if int64(len(raw)) > f.config.MaxBodyBytes {
		return nil, &IngestError{Kind: KindContentTooLarge, Stage: "fetch",
			Err: fmt.Errorf("response body exceeds %d bytes", f.config.MaxBodyBytes)}
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(raw, contentType)
	if err != nil {
		// Undecodable charset: keep the raw bytes, the parser is lenient.
		body = raw
	}

	return &models.RawPage{
		URL:         rawURL,
		Body:        body,
		ContentType: contentType,
		FetchedAt:   time.Now(),
	}, nil
}

// decodeBody converts the body to UTF-8 based on the Content-Type header and
// in-document hints.
func decodeBody(raw []byte, contentType string) ([]byte, error) {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(reader)
}
