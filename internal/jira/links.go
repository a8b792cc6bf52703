package jira

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// GetIssueLinkTypes lists the link relations the instance supports.
func (c *Client) GetIssueLinkTypes(ctx context.Context, pat string) ([]IssueLinkType, error) {
	var page struct {
		IssueLinkTypes []IssueLinkType `json:"issueLinkTypes"`
	}
	if err := c.call(ctx, pat, http.MethodGet, c.api("issueLinkType"), nil, &page); err != nil {
		return nil, err
	}
	return page.IssueLinkTypes, nil
}

// CreateIssueLink links two issues with the named relation, optionally
// adding a comment to the inward issue.
func (c *Client) CreateIssueLink(ctx context.Context, input LinkInput, pat string) error {
	if strings.TrimSpace(input.TypeName) == "" {
		return errors.New("jira: link type name is required")
	}
	if strings.TrimSpace(input.InwardKey) == "" || strings.TrimSpace(input.OutwardKey) == "" {
		return errors.New("jira: inward and outward issue keys are required")
	}

	payload := map[string]any{
		"type":         map[string]any{"name": input.TypeName},
		"inwardIssue":  map[string]any{"key": input.InwardKey},
		"outwardIssue": map[string]any{"key": input.OutwardKey},
	}
	if input.Comment != nil {
		payload["comment"] = map[string]any{"body": c.document(input.Comment)}
	}
	return c.call(ctx, pat, http.MethodPost, c.api("issueLink"), payload, nil)
}
