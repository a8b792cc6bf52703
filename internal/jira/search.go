package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const defaultSearchLimit = 50

// SearchIssues runs a JQL search. On Cloud the enhanced cursor-paginated
// search endpoint is used and pages are followed until the requested limit
// is filled; on Server/DC the classic offset search is used.
func (c *Client) SearchIssues(ctx context.Context, req SearchRequest, pat string) (*SearchResult, error) {
	jql := strings.TrimSpace(req.JQL)
	if jql == "" {
		return nil, errors.New("jira: jql is required")
	}

	filter := req.ProjectsFilter
	if len(filter) == 0 {
		filter = c.settings.ProjectFilterKeys()
	}
	jql = applyProjectsFilter(jql, filter)

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	fields := normalizeFields(req.Fields)

	if c.IsCloud() {
		return c.searchCloud(ctx, jql, fields, limit, req.Expand, pat)
	}
	return c.searchServer(ctx, jql, fields, limit, req.StartAt, req.Expand, pat)
}

func (c *Client) searchCloud(ctx context.Context, jql string, fields []string, limit int, expand, pat string) (*SearchResult, error) {
	pageSize := limit
	if pageSize > 100 {
		pageSize = 100
	}
	params := map[string]any{
		"jql":        jql,
		"maxResults": pageSize,
		"fields":     fields,
	}
	if expand != "" {
		params["expand"] = expand
	}

	result := &SearchResult{MaxResults: limit}
	err := c.eachPage(ctx, http.MethodPost, c.api("search", "jql"), params, pat, func(page map[string]any) (bool, error) {
		var chunk struct {
			Issues []Issue `json:"issues"`
		}
		if err := remarshal(page, &chunk); err != nil {
			return false, fmt.Errorf("jira: decode search page: %w", err)
		}
		result.Issues = append(result.Issues, chunk.Issues...)
		if len(result.Issues) >= limit {
			result.Issues = result.Issues[:limit]
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	result.Total = len(result.Issues)
	return result, nil
}

func (c *Client) searchServer(ctx context.Context, jql string, fields []string, limit, startAt int, expand, pat string) (*SearchResult, error) {
	body := map[string]any{
		"jql":        jql,
		"startAt":    startAt,
		"maxResults": limit,
		"fields":     fields,
	}
	if expand != "" {
		body["expand"] = strings.Split(expand, ",")
	}

	var result SearchResult
	if err := c.call(ctx, pat, http.MethodPost, c.api("search"), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProjectIssues returns issues of a project ordered by creation date,
// newest first.
func (c *Client) GetProjectIssues(ctx context.Context, projectKey string, startAt, limit int, pat string) (*SearchResult, error) {
	projectKey = strings.TrimSpace(projectKey)
	if projectKey == "" {
		return nil, errors.New("jira: project key is required")
	}
	return c.SearchIssues(ctx, SearchRequest{
		JQL:     fmt.Sprintf("project = %s ORDER BY created DESC", projectKey),
		StartAt: startAt,
		Limit:   limit,
		// Project is already pinned by the query itself.
		ProjectsFilter: []string{projectKey},
	}, pat)
}

// applyProjectsFilter clamps a query to the allowed projects. Any ORDER BY
// clause is kept at the end where JQL requires it.
func applyProjectsFilter(jql string, keys []string) string {
	if len(keys) == 0 {
		return jql
	}
	clause := "project IN (" + strings.Join(keys, ", ") + ")"
	where, order := splitOrderBy(jql)
	out := clause
	if where != "" {
		out = "(" + where + ") AND " + clause
	}
	if order != "" {
		out += " " + order
	}
	return out
}

func splitOrderBy(jql string) (where, order string) {
	idx := strings.Index(strings.ToUpper(jql), "ORDER BY")
	if idx < 0 {
		return strings.TrimSpace(jql), ""
	}
	return strings.TrimSpace(jql[:idx]), strings.TrimSpace(jql[idx:])
}
