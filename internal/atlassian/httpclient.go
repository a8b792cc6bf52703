package atlassian

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/proxy"

	"gitlab.com/your-org/jira-mcp/internal/config"
)

const defaultTimeout = 30 * time.Second

// NewHTTPClient builds an http.Client honoring the deployment's SSL and proxy
// settings. TLS verification is on unless jira.ssl_verify disables it;
// http/https proxies follow NO_PROXY exclusions; a SOCKS proxy, when set,
// replaces the dialer entirely.
func NewHTTPClient(settings config.JiraSettings) (*http.Client, error) {
	transport, err := NewTransport(settings)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: transport,
	}, nil
}

// NewTransport builds the underlying *http.Transport for NewHTTPClient.
// Exposed so callers can wrap it with additional RoundTrippers.
func NewTransport(settings config.JiraSettings) (*http.Transport, error) {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		base = &http.Transport{}
	}
	transport := base.Clone()

	if !settings.SSLVerify {
		if transport.TLSClientConfig == nil {
			transport.TLSClientConfig = &tls.Config{}
		}
		transport.TLSClientConfig.InsecureSkipVerify = true
	}

	if settings.HTTPProxy != "" || settings.HTTPSProxy != "" || settings.NoProxy != "" {
		cfg := &httpproxy.Config{
			HTTPProxy:  settings.HTTPProxy,
			HTTPSProxy: settings.HTTPSProxy,
			NoProxy:    settings.NoProxy,
		}
		proxyFunc := cfg.ProxyFunc()
		transport.Proxy = func(req *http.Request) (*url.URL, error) {
			return proxyFunc(req.URL)
		}
	}

	if settings.SOCKSProxy != "" {
		dialer, err := socksDialer(settings.SOCKSProxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = nil
		transport.DialContext = dialer.DialContext
	}

	return transport, nil
}

func socksDialer(socksURL string) (proxy.ContextDialer, error) {
	parsed, err := url.Parse(socksURL)
	if err != nil {
		return nil, fmt.Errorf("atlassian: parse socks proxy: %w", err)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("atlassian: socks proxy %q has no host", socksURL)
	}

	var creds *proxy.Auth
	if user := parsed.User; user != nil {
		password, _ := user.Password()
		creds = &proxy.Auth{User: user.Username(), Password: password}
	}

	dialer, err := proxy.SOCKS5("tcp", parsed.Host, creds, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("atlassian: socks proxy: %w", err)
	}

	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("atlassian: socks dialer does not support context")
	}

	return contextDialer, nil
}
