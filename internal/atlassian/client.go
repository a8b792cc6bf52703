package atlassian

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"log/slog"

	"gitlab.com/your-org/jira-mcp/internal/auth"
	"gitlab.com/your-org/jira-mcp/internal/config"
)

// Client handles the byte-level Jira traffic the JSON SDK path does not cover:
// attachment content downloads and multipart uploads. Authentication comes
// from the wrapped auth.Transport, including per-request token overrides
// carried in the context.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Client for the configured site.
func NewClient(settings config.JiraSettings, logger *slog.Logger) (*Client, error) {
	base := strings.TrimSpace(settings.URL)
	if base == "" {
		return nil, fmt.Errorf("atlassian: base URL required")
	}

	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	parsed, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("atlassian: parse base url: %w", err)
	}

	transport, err := NewTransport(settings)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Timeout:   defaultTimeout,
		Transport: auth.NewTransport(transport, settings),
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// BaseURL returns the site base URL.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Download streams the resource at rawURL into w and returns the byte count.
// rawURL may be site-relative or absolute; absolute URLs must stay on the
// configured host so credentials are never sent elsewhere.
func (c *Client) Download(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	target, err := c.resolve(rawURL)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "*/*")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return 0, parseError(res)
	}

	n, err := io.Copy(w, res.Body)
	if err != nil {
		return n, fmt.Errorf("atlassian: download: %w", err)
	}

	return n, nil
}

// UploadMultipart posts r as a multipart form file to the given site-relative
// path and decodes the JSON response into out if provided. Jira requires the
// XSRF check to be disabled for attachment uploads.
func (c *Client) UploadMultipart(ctx context.Context, path, filename string, r io.Reader, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return err
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return parseError(res)
	}

	if out == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	return decodeJSON(res.Body, out)
}

func (c *Client) resolve(rawURL string) (*url.URL, error) {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		parsed, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("atlassian: parse url: %w", err)
		}
		if parsed.Host != c.baseURL.Host {
			return nil, fmt.Errorf("atlassian: refusing request to foreign host %q", parsed.Host)
		}
		return parsed, nil
	}

	ref := rawURL
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}

	resolved := *c.baseURL
	resolved.Path = strings.TrimRight(c.baseURL.Path, "/") + ref
	if idx := strings.IndexByte(resolved.Path, '?'); idx >= 0 {
		resolved.RawQuery = resolved.Path[idx+1:]
		resolved.Path = resolved.Path[:idx]
	}

	return &resolved, nil
}

func decodeJSON(r io.Reader, out any) error {
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return fmt.Errorf("atlassian: decode response: %w", err)
	}
	return nil
}

// SetTransport overrides the underlying HTTP transport. Useful for testing.
func (c *Client) SetTransport(rt http.RoundTripper) {
	if rt == nil {
		return
	}
	c.httpClient.Transport = rt
}
