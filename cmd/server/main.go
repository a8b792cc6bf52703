package main

import (
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"gitlab.com/your-org/jira-mcp/internal/config"
	"gitlab.com/your-org/jira-mcp/internal/jira"
	mcpserver "gitlab.com/your-org/jira-mcp/internal/mcp"
	"gitlab.com/your-org/jira-mcp/internal/state"
	"gitlab.com/your-org/jira-mcp/pkg/logging"
)

const cacheTTL = 5 * time.Minute

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:          "jira-mcp",
		Short:        "MCP server exposing Jira tools over stdio",
		Long:         "jira-mcp speaks the Model Context Protocol on stdin/stdout and turns tool calls into Jira REST requests. Configuration comes from a config file or JIRA_* environment variables.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to configuration directory or file")
	return cmd
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	if err != nil {
		return err
	}

	client, err := jira.NewClient(cfg.Jira, logger)
	if err != nil {
		return fmt.Errorf("create jira client: %w", err)
	}

	srv := mcpserver.NewServer(mcpserver.Dependencies{
		Client:   client,
		Cache:    state.NewCache(cacheTTL),
		Logger:   logger,
		ReadOnly: cfg.Jira.ReadOnly,
	})

	logger.Info("starting MCP server",
		"site", cfg.Jira.URL,
		"cloud", cfg.Jira.IsCloud(),
		"auth_type", cfg.Jira.AuthType,
		"read_only", cfg.Jira.ReadOnly,
	)
	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("serve stdio: %w", err)
	}
	return nil
}
