package integration

import (
	"os"
	"strings"
	"testing"

	"gitlab.com/your-org/jira-mcp/internal/config"
	"gitlab.com/your-org/jira-mcp/internal/jira"
	"gitlab.com/your-org/jira-mcp/pkg/logging"
)

// requireIntegration skips the test if MCP_INTEGRATION is not set.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("MCP_INTEGRATION") == "" {
		t.Skip("MCP_INTEGRATION not set; skipping integration tests")
	}
}

// resolveEnv returns the first non-empty environment variable value from the
// provided keys.
func resolveEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

// setupJiraClient builds a live Jira client from environment variables and
// skips the test when credentials are missing.
func setupJiraClient(t *testing.T) (*jira.Client, string) {
	t.Helper()

	site := resolveEnv("JIRA_URL", "JIRA_SITE")
	if site == "" {
		t.Skip("JIRA_URL not set; skipping Jira integration tests")
	}

	settings := config.JiraSettings{
		URL:           site,
		PersonalToken: resolveEnv("JIRA_PERSONAL_TOKEN"),
		Username:      resolveEnv("JIRA_USERNAME", "JIRA_EMAIL"),
		APIToken:      resolveEnv("JIRA_API_TOKEN"),
		SSLVerify:     true,
	}
	if settings.PersonalToken == "" && (settings.Username == "" || settings.APIToken == "") {
		t.Skip("no Jira credentials in environment; skipping")
	}

	logger, err := logging.New("debug", "text")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	client, err := jira.NewClient(settings, logger)
	if err != nil {
		t.Fatalf("jira.NewClient: %v", err)
	}
	return client, site
}

// skipIfEmpty skips the test when a live lookup returned nothing to work
// with.
func skipIfEmpty[T any](t *testing.T, items []T, what string) {
	t.Helper()
	if len(items) == 0 {
		t.Skipf("no %s available on this site", what)
	}
}
