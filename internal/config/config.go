package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Auth modes supported by the Jira client.
const (
	AuthBasic = "basic"
	AuthPAT   = "pat"
)

// Config represents the full application configuration loaded from file/env.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Jira   JiraSettings `mapstructure:"jira"`
}

// ServerConfig holds server-specific options.
type ServerConfig struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// JiraSettings describes the Jira deployment and default credentials.
type JiraSettings struct {
	URL           string `mapstructure:"url"`
	AuthType      string `mapstructure:"auth_type"`
	Username      string `mapstructure:"username"`
	APIToken      string `mapstructure:"api_token"`
	PersonalToken string `mapstructure:"personal_token"`

	// Cloud accepts "true"/"false"; empty means detect from the URL host.
	Cloud     string `mapstructure:"cloud"`
	SSLVerify bool   `mapstructure:"ssl_verify"`

	HTTPProxy  string `mapstructure:"http_proxy"`
	HTTPSProxy string `mapstructure:"https_proxy"`
	SOCKSProxy string `mapstructure:"socks_proxy"`
	NoProxy    string `mapstructure:"no_proxy"`

	ProjectsFilter string `mapstructure:"projects_filter"`
	ReadOnly       bool   `mapstructure:"read_only"`
}

// envBindings maps config keys to the environment variables the original
// deployment contract uses, so existing JIRA_* environments keep working.
var envBindings = map[string][]string{
	"server.log_level":     {"JIRA_MCP_LOG_LEVEL"},
	"server.log_format":    {"JIRA_MCP_LOG_FORMAT"},
	"jira.url":             {"JIRA_URL"},
	"jira.auth_type":       {"JIRA_AUTH_TYPE"},
	"jira.username":        {"JIRA_USERNAME"},
	"jira.api_token":       {"JIRA_API_TOKEN"},
	"jira.personal_token":  {"JIRA_PERSONAL_TOKEN"},
	"jira.cloud":           {"JIRA_CLOUD"},
	"jira.ssl_verify":      {"JIRA_SSL_VERIFY"},
	"jira.http_proxy":      {"JIRA_HTTP_PROXY", "HTTP_PROXY"},
	"jira.https_proxy":     {"JIRA_HTTPS_PROXY", "HTTPS_PROXY"},
	"jira.socks_proxy":     {"JIRA_SOCKS_PROXY", "SOCKS_PROXY"},
	"jira.no_proxy":        {"JIRA_NO_PROXY", "NO_PROXY"},
	"jira.projects_filter": {"JIRA_PROJECTS_FILTER"},
	"jira.read_only":       {"JIRA_READ_ONLY"},
}

// Load reads configuration from the provided directory or file and environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if path != "" {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			v.AddConfigPath(path)
		} else {
			v.SetConfigFile(path)
		}
	} else {
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("jira_mcp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range envBindings {
		keys := append([]string{key}, names...)
		if err := v.BindEnv(keys...); err != nil {
			return nil, fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}

	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("jira.ssl_verify", true)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.applyNetrcDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and fills derivable defaults.
func (c *Config) Validate() error {
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	return c.Jira.validate()
}

func (s *JiraSettings) validate() error {
	if strings.TrimSpace(s.URL) == "" {
		return fmt.Errorf("config: jira.url is required")
	}

	if s.AuthType == "" {
		if s.PersonalToken != "" {
			s.AuthType = AuthPAT
		} else {
			s.AuthType = AuthBasic
		}
	}

	switch s.AuthType {
	case AuthBasic:
		if s.Username == "" || s.APIToken == "" {
			return fmt.Errorf("config: basic auth requires jira.username and jira.api_token")
		}
	case AuthPAT:
		if s.PersonalToken == "" {
			return fmt.Errorf("config: pat auth requires jira.personal_token")
		}
	default:
		return fmt.Errorf("config: unknown jira.auth_type %q", s.AuthType)
	}

	switch strings.ToLower(strings.TrimSpace(s.Cloud)) {
	case "", "auto", "true", "false":
	default:
		return fmt.Errorf("config: jira.cloud must be true, false or empty, got %q", s.Cloud)
	}

	return nil
}

// IsCloud reports whether the configured deployment is Jira Cloud. An explicit
// setting wins; otherwise the *.atlassian.net host convention decides.
func (s JiraSettings) IsCloud() bool {
	switch strings.ToLower(strings.TrimSpace(s.Cloud)) {
	case "true":
		return true
	case "false":
		return false
	}

	host := strings.TrimSpace(s.URL)
	if parsed, err := url.Parse(host); err == nil && parsed.Hostname() != "" {
		host = parsed.Hostname()
	} else {
		host = strings.Split(host, "/")[0]
	}

	return strings.HasSuffix(strings.ToLower(host), ".atlassian.net")
}

// ProjectFilterKeys returns the configured project keys, trimmed, or nil.
func (s JiraSettings) ProjectFilterKeys() []string {
	if strings.TrimSpace(s.ProjectsFilter) == "" {
		return nil
	}

	parts := strings.Split(s.ProjectsFilter, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			keys = append(keys, trimmed)
		}
	}
	return keys
}
