package main

import "testing"

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := newRootCommand()
	if cmd.Use != "jira-mcp" {
		t.Fatalf("Use = %q", cmd.Use)
	}
	flag := cmd.Flags().Lookup("config")
	if flag == nil {
		t.Fatal("config flag not registered")
	}
	if flag.Shorthand != "c" {
		t.Fatalf("config shorthand = %q", flag.Shorthand)
	}
}
