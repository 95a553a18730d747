package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrTimeout indicates the rendering request exceeded its deadline.
	ErrTimeout = errors.New("report: gotenberg timeout")
	// ErrInvalidResponse indicates Gotenberg answered with a non-success status.
	ErrInvalidResponse = errors.New("report: gotenberg invalid response")
	// ErrEmptyDocument indicates the returned PDF was implausibly small.
	ErrEmptyDocument = errors.New("report: pdf below minimum size")
)

const (
	defaultRetries  = 2
	defaultTimeout  = 20 * time.Second
	defaultMinBytes = 512
)

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	minBytes   int
}

// NewClient constructs a new client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		retries:    defaultRetries,
		minBytes:   defaultMinBytes,
	}
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	}
	return nil
}

// RenderHTML converts raw HTML into a PDF document. Server errors and
// transport failures are retried; client errors are not.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	payload := body.Bytes()
	contentType := writer.FormDataContentType()

	attempts := c.retries + 1
	var lastErr error
	for i := 0; i < attempts; i++ {
		data, retry, err := c.post(ctx, payload, contentType)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("report: render pdf: %w", lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte, contentType string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/chromium/convert/html", bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, true, ErrTimeout
		}
		return nil, true, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	data, readErr := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, true, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return nil, false, fmt.Errorf("%w: status %d", ErrInvalidResponse, resp.StatusCode)
	case readErr != nil:
		return nil, true, readErr
	case len(data) < c.minBytes:
		return nil, true, ErrEmptyDocument
	}
	return data, false, nil
}
