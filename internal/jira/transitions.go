package jira

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// GetTransitions lists the workflow transitions currently available to an
// issue.
func (c *Client) GetTransitions(ctx context.Context, key string, pat string) ([]Transition, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}

	var page struct {
		Transitions []Transition `json:"transitions"`
	}
	endpoint := c.api("issue", url.PathEscape(key), "transitions")
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Transitions, nil
}

// TransitionIssue moves an issue through a workflow transition, optionally
// updating fields and adding a comment in the same request. The updated
// issue is returned.
func (c *Client) TransitionIssue(ctx context.Context, key, transitionID string, fields map[string]any, comment any, pat string) (*Issue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	if strings.TrimSpace(transitionID) == "" {
		return nil, errors.New("jira: transition id is required")
	}

	payload := map[string]any{
		"transition": map[string]any{"id": transitionID},
	}
	if len(fields) > 0 {
		shaped := make(map[string]any, len(fields))
		for name, value := range fields {
			if name == "description" {
				value = c.document(value)
			}
			shaped[name] = value
		}
		payload["fields"] = shaped
	}
	if comment != nil {
		payload["update"] = map[string]any{
			"comment": []any{
				map[string]any{"add": map[string]any{"body": c.document(comment)}},
			},
		}
	}

	endpoint := c.api("issue", url.PathEscape(key), "transitions")
	if err := c.call(ctx, pat, http.MethodPost, endpoint, payload, nil); err != nil {
		return nil, err
	}
	return c.GetIssue(ctx, key, GetIssueOptions{}, pat)
}
