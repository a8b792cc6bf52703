package jira

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// GetWorklogs returns the worklog entries of an issue.
func (c *Client) GetWorklogs(ctx context.Context, key string, pat string) ([]Worklog, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}

	var page struct {
		Worklogs []Worklog `json:"worklogs"`
	}
	endpoint := c.api("issue", url.PathEscape(key), "worklog")
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Worklogs, nil
}

// AddWorklog records time spent on an issue. TimeSpent uses Jira duration
// syntax such as "2h 30m"; Started, when set, must be an ISO 8601 timestamp.
func (c *Client) AddWorklog(ctx context.Context, key string, input WorklogInput, pat string) (*Worklog, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	if strings.TrimSpace(input.TimeSpent) == "" {
		return nil, errors.New("jira: timeSpent is required")
	}

	payload := map[string]any{"timeSpent": input.TimeSpent}
	if input.Comment != nil {
		payload["comment"] = c.document(input.Comment)
	}
	if input.Started != "" {
		payload["started"] = input.Started
	}

	var worklog Worklog
	endpoint := c.api("issue", url.PathEscape(key), "worklog")
	if err := c.call(ctx, pat, http.MethodPost, endpoint, payload, &worklog); err != nil {
		return nil, err
	}
	return &worklog, nil
}
