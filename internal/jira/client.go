package jira

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	jiraapi "github.com/ctreminiom/go-atlassian/v2/jira/v2"
	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"gitlab.com/your-org/jira-mcp/internal/atlassian"
	"gitlab.com/your-org/jira-mcp/internal/config"
)

const (
	userAgent = "jira-mcp"

	// maxPages bounds cursor pagination so a server that keeps returning
	// tokens cannot loop us forever.
	maxPages = 100
)

// ErrPagedCloudOnly is returned when cursor pagination is requested against
// a Server/Data Center deployment.
var ErrPagedCloudOnly = errors.New("jira: paged requests are only available for Jira Cloud")

// Connector is the request plumbing surface of the underlying Jira client.
// It builds authenticated requests against the configured site and decodes
// responses.
type Connector interface {
	NewRequest(ctx context.Context, method, apiEndpoint, contentType string, payload interface{}) (*http.Request, error)
	Call(request *http.Request, structure interface{}) (*models.ResponseScheme, error)
}

// Client wraps a Jira REST connector with site-aware helpers. The default
// connector is built lazily from the configured credentials; calls carrying
// a request-scoped personal access token get a transient connector instead.
type Client struct {
	settings config.JiraSettings
	logger   *slog.Logger
	raw      *atlassian.Client

	mu  sync.Mutex
	sdk Connector

	fieldMu    sync.RWMutex
	fieldCache []Field

	newConnector func(bearer string) (Connector, error)
}

// NewClient builds a client from validated settings.
func NewClient(settings config.JiraSettings, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(settings.URL) == "" {
		return nil, errors.New("jira: url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := atlassian.NewClient(settings, logger)
	if err != nil {
		return nil, err
	}
	c := &Client{
		settings: settings,
		logger:   logger,
		raw:      raw,
	}
	c.newConnector = c.newSDKClient
	return c, nil
}

// Settings returns the configuration the client was built from.
func (c *Client) Settings() config.JiraSettings {
	return c.settings
}

// IsCloud reports whether the configured site is a Jira Cloud deployment.
func (c *Client) IsCloud() bool {
	return c.settings.IsCloud()
}

// connector returns the connector for a single call. An empty pat yields the
// shared default connector; a pat yields a transient one scoped to the call
// so the token never outlives the request.
func (c *Client) connector(pat string) (Connector, error) {
	if pat != "" {
		c.logger.Debug("using request-scoped token for Jira call")
		return c.newConnector(pat)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk == nil {
		conn, err := c.newConnector("")
		if err != nil {
			return nil, err
		}
		c.sdk = conn
	}
	return c.sdk, nil
}

func (c *Client) newSDKClient(bearer string) (Connector, error) {
	httpClient, err := atlassian.NewHTTPClient(c.settings)
	if err != nil {
		return nil, err
	}
	client, err := jiraapi.New(httpClient, normalizeSite(c.settings.URL))
	if err != nil {
		return nil, fmt.Errorf("jira: create client: %w", err)
	}
	client.Auth.SetUserAgent(userAgent)
	switch {
	case bearer != "":
		client.Auth.SetBearerToken(bearer)
	case c.settings.PersonalToken != "":
		client.Auth.SetBearerToken(c.settings.PersonalToken)
	case c.settings.Username != "" && c.settings.APIToken != "":
		client.Auth.SetBasicAuth(c.settings.Username, c.settings.APIToken)
	default:
		return nil, errors.New("jira: insufficient credentials: set a personal token or username and api token")
	}
	return client, nil
}

// call performs one request against the Jira REST API and decodes the JSON
// response into out. Error responses are shaped into *atlassian.Error.
func (c *Client) call(ctx context.Context, pat, method, endpoint string, payload, out any) error {
	conn, err := c.connector(pat)
	if err != nil {
		return err
	}
	req, err := conn.NewRequest(ctx, method, endpoint, "", payload)
	if err != nil {
		return fmt.Errorf("jira: build request %s %s: %w", method, endpoint, err)
	}
	res, err := conn.Call(req, out)
	if err != nil {
		if res != nil && res.Code >= http.StatusBadRequest {
			return atlassian.NewError(res.Code, res.Bytes.Bytes())
		}
		return fmt.Errorf("jira: %s %s: %w", method, endpoint, err)
	}
	return nil
}

// GetPaged fetches every page of a cursor-paginated Cloud endpoint, following
// nextPageToken until the server stops returning one. For GET requests the
// token travels as a query parameter, for POST in the request body. The
// params map passed in is never mutated. Returns the raw page payloads in
// order.
func (c *Client) GetPaged(ctx context.Context, method, endpoint string, params map[string]any, pat string) ([]map[string]any, error) {
	var pages []map[string]any
	err := c.eachPage(ctx, method, endpoint, params, pat, func(page map[string]any) (bool, error) {
		pages = append(pages, page)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// eachPage walks a cursor-paginated Cloud endpoint, invoking fn with each raw
// page payload. fn returns false to stop before the server runs out of pages,
// so callers with a result cap do not over-fetch.
func (c *Client) eachPage(ctx context.Context, method, endpoint string, params map[string]any, pat string, fn func(page map[string]any) (bool, error)) error {
	if !c.IsCloud() {
		return ErrPagedCloudOnly
	}
	method = strings.ToUpper(method)
	if method != http.MethodGet && method != http.MethodPost {
		return fmt.Errorf("jira: paged requests support GET and POST, got %s", method)
	}

	current := make(map[string]any, len(params)+1)
	for k, v := range params {
		current[k] = v
	}

	for n := 0; n < maxPages; n++ {
		page := map[string]any{}
		var err error
		if method == http.MethodGet {
			err = c.call(ctx, pat, method, withQuery(endpoint, current), nil, &page)
		} else {
			err = c.call(ctx, pat, method, endpoint, current, &page)
		}
		if err != nil {
			return err
		}
		more, err := fn(page)
		if err != nil {
			return err
		}
		token, ok := page["nextPageToken"].(string)
		if !more || !ok || token == "" {
			return nil
		}
		next := make(map[string]any, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next["nextPageToken"] = token
		current = next
	}
	return fmt.Errorf("jira: pagination exceeded %d pages for %s", maxPages, endpoint)
}

// apiVersion is 3 on Cloud and 2 on Server/DC.
func (c *Client) apiVersion() string {
	if c.IsCloud() {
		return "3"
	}
	return "2"
}

// api joins path segments under the versioned REST prefix, for example
// api("issue", "KEY-1") becomes "rest/api/2/issue/KEY-1" on Server.
func (c *Client) api(parts ...string) string {
	return joinPath("rest/api/"+c.apiVersion(), parts)
}

// agilePath joins path segments under the agile REST prefix.
func agilePath(parts ...string) string {
	return joinPath("rest/agile/1.0", parts)
}

func joinPath(prefix string, parts []string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}

// withQuery appends encoded params to an endpoint path.
func withQuery(endpoint string, params map[string]any) string {
	if len(params) == 0 {
		return endpoint
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, fmt.Sprintf("%v", v))
	}
	return endpoint + "?" + values.Encode()
}

// normalizeSite strips REST suffixes sometimes pasted into site URLs and
// guarantees an https scheme.
func normalizeSite(site string) string {
	site = strings.TrimSpace(site)
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	for _, suffix := range []string{"/rest/api/3", "/rest/api/2", "/rest/api"} {
		if idx := strings.Index(site, suffix); idx > 0 {
			site = site[:idx]
			break
		}
	}
	return strings.TrimRight(site, "/")
}
