package jira

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListProjects returns the projects visible to the authenticated user,
// restricted to the configured projects filter when one is set. Cloud pages
// through /project/search, Server/DC returns the full list in one call.
func (c *Client) ListProjects(ctx context.Context, limit int, pat string) ([]Project, error) {
	if limit <= 0 {
		limit = 50
	}

	var projects []Project
	if c.IsCloud() {
		params := url.Values{}
		params.Set("maxResults", strconv.Itoa(limit))
		var page struct {
			Values []Project `json:"values"`
		}
		endpoint := c.api("project", "search") + "?" + params.Encode()
		if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		projects = page.Values
	} else {
		if err := c.call(ctx, pat, http.MethodGet, c.api("project"), nil, &projects); err != nil {
			return nil, err
		}
		if len(projects) > limit {
			projects = projects[:limit]
		}
	}

	allowed := c.settings.ProjectFilterKeys()
	if len(allowed) == 0 {
		return projects, nil
	}
	keep := make(map[string]bool, len(allowed))
	for _, key := range allowed {
		keep[key] = true
	}
	filtered := projects[:0]
	for _, p := range projects {
		if keep[p.Key] {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
