package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"gitlab.com/your-org/jira-mcp/internal/config"
)

type contextKey struct{}

// WithRequestToken returns a context carrying a per-request Personal Access
// Token. Requests issued with this context authenticate with the token instead
// of the transport's default credentials.
func WithRequestToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, token)
}

// RequestToken extracts a per-request token from the context, if any.
func RequestToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKey{}).(string)
	return token, ok && token != ""
}

// Transport injects Jira authentication headers into outbound requests.
type Transport struct {
	base       http.RoundTripper
	authHeader string
	once       sync.Once
	initErr    error
	settings   config.JiraSettings
}

// NewTransport creates a new auth transport wrapping the provided RoundTripper.
func NewTransport(base http.RoundTripper, settings config.JiraSettings) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base, settings: settings}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	header, err := t.headerFor(req.Context())
	if err != nil {
		return nil, err
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", header)
	if clone.Header.Get("Accept") == "" {
		clone.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(clone)
}

func (t *Transport) headerFor(ctx context.Context) (string, error) {
	if token, ok := RequestToken(ctx); ok {
		return "Bearer " + token, nil
	}

	if err := t.initialize(); err != nil {
		return "", err
	}
	return t.authHeader, nil
}

func (t *Transport) initialize() error {
	t.once.Do(func() {
		s := t.settings
		switch {
		case s.PersonalToken != "":
			t.authHeader = "Bearer " + s.PersonalToken
		case s.Username != "" && s.APIToken != "":
			token := base64.StdEncoding.EncodeToString([]byte(s.Username + ":" + s.APIToken))
			t.authHeader = "Basic " + token
		default:
			t.initErr = fmt.Errorf("auth: insufficient credentials")
		}
	})
	return t.initErr
}
