// Package state keeps small per-session caches so repeated tool calls do
// not refetch slow-moving catalog data.
package state

import (
	"sync"
	"time"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

const defaultTTL = 5 * time.Minute

type entry[T any] struct {
	value   T
	stored  time.Time
	present bool
}

// Cache holds recently listed projects and boards plus the last search a
// session ran. All methods are safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	projects entry[[]jira.Project]
	boards   entry[[]jira.Board]
	lastJQL  string
}

// NewCache builds a cache with the given entry lifetime. A non-positive ttl
// falls back to the default.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{ttl: ttl, now: time.Now}
}

func fresh[T any](c *Cache, e entry[T]) (T, bool) {
	var zero T
	if !e.present || c.now().Sub(e.stored) > c.ttl {
		return zero, false
	}
	return e.value, true
}

// Projects returns the cached project list, if still fresh.
func (c *Cache) Projects() ([]jira.Project, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fresh(c, c.projects)
}

// SetProjects stores the project list.
func (c *Cache) SetProjects(projects []jira.Project) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = entry[[]jira.Project]{value: projects, stored: c.now(), present: true}
}

// Boards returns the cached board list, if still fresh.
func (c *Cache) Boards() ([]jira.Board, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fresh(c, c.boards)
}

// SetBoards stores the board list.
func (c *Cache) SetBoards(boards []jira.Board) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.boards = entry[[]jira.Board]{value: boards, stored: c.now(), present: true}
}

// LastJQL returns the most recent search query of the session.
func (c *Cache) LastJQL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastJQL
}

// SetLastJQL records a search query.
func (c *Cache) SetLastJQL(jql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastJQL = jql
}

// Clear drops every cached value.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects = entry[[]jira.Project]{}
	c.boards = entry[[]jira.Board]{}
	c.lastJQL = ""
}
