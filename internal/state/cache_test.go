package state

import (
	"testing"
	"time"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

func TestCacheProjects(t *testing.T) {
	t.Parallel()

	c := NewCache(time.Minute)
	if _, ok := c.Projects(); ok {
		t.Fatal("empty cache reported fresh projects")
	}

	c.SetProjects([]jira.Project{{Key: "OPS", Name: "Operations"}})
	projects, ok := c.Projects()
	if !ok || len(projects) != 1 || projects[0].Key != "OPS" {
		t.Fatalf("Projects() = %v, %v", projects, ok)
	}
}

func TestCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }

	c.SetBoards([]jira.Board{{ID: 1, Name: "Board"}})
	if _, ok := c.Boards(); !ok {
		t.Fatal("fresh boards reported stale")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Boards(); ok {
		t.Fatal("expired boards reported fresh")
	}
}

func TestCacheLastJQL(t *testing.T) {
	t.Parallel()

	c := NewCache(0)
	c.SetLastJQL("project = OPS")
	if got := c.LastJQL(); got != "project = OPS" {
		t.Fatalf("LastJQL() = %q", got)
	}
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c := NewCache(time.Minute)
	c.SetProjects([]jira.Project{{Key: "OPS"}})
	c.SetBoards([]jira.Board{{ID: 1}})
	c.SetLastJQL("x")
	c.Clear()

	if _, ok := c.Projects(); ok {
		t.Fatal("Clear() left projects")
	}
	if _, ok := c.Boards(); ok {
		t.Fatal("Clear() left boards")
	}
	if c.LastJQL() != "" {
		t.Fatal("Clear() left last jql")
	}
}
