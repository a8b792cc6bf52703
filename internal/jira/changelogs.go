package jira

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// BatchGetChangelogs fetches the change history of several issues in one
// pass via the Cloud bulk endpoint, following pagination until every entry
// is retrieved. limit, when positive, caps the entries kept per issue.
// Server/DC does not offer the bulk endpoint.
func (c *Client) BatchGetChangelogs(ctx context.Context, issueKeys []string, fields []string, limit int, pat string) ([]IssueChangelogs, error) {
	if len(issueKeys) == 0 {
		return nil, errors.New("jira: issue keys are required")
	}
	if !c.IsCloud() {
		return nil, errors.New("jira: bulk changelog fetch is only available for Jira Cloud")
	}

	params := map[string]any{"issueIdsOrKeys": issueKeys}
	if len(fields) > 0 {
		params["fieldIds"] = fields
	}

	pages, err := c.GetPaged(ctx, http.MethodPost, c.api("changelog", "bulkfetch"), params, pat)
	if err != nil {
		return nil, err
	}

	// Collate pages per issue, preserving the order issues first appear.
	var order []string
	byIssue := map[string]*IssueChangelogs{}
	for _, page := range pages {
		var chunk struct {
			IssueChangeLogs []struct {
				IssueID         string      `json:"issueId"`
				ChangeHistories []Changelog `json:"changeHistories"`
			} `json:"issueChangeLogs"`
		}
		if err := remarshal(page, &chunk); err != nil {
			return nil, fmt.Errorf("jira: decode changelog page: %w", err)
		}
		for _, entry := range chunk.IssueChangeLogs {
			group, ok := byIssue[entry.IssueID]
			if !ok {
				group = &IssueChangelogs{IssueID: entry.IssueID}
				byIssue[entry.IssueID] = group
				order = append(order, entry.IssueID)
			}
			group.Changelogs = append(group.Changelogs, entry.ChangeHistories...)
		}
	}

	out := make([]IssueChangelogs, 0, len(order))
	for _, id := range order {
		group := byIssue[id]
		if limit > 0 && len(group.Changelogs) > limit {
			group.Changelogs = group.Changelogs[:limit]
		}
		out = append(out, *group)
	}
	return out, nil
}
