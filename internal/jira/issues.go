package jira

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// batchCreateConcurrency bounds parallel issue creation.
const batchCreateConcurrency = 4

// GetIssueOptions control the shape of a fetched issue.
type GetIssueOptions struct {
	// Fields selects the issue fields to return. Empty means
	// DefaultReadFields; a single "*all" entry returns everything.
	Fields []string
	// Expand is passed through to the REST API, for example "changelog"
	// or "transitions".
	Expand string
	// Properties selects issue properties to include.
	Properties []string
	// CommentLimit, when positive, fetches up to that many comments and
	// attaches them to the result.
	CommentLimit int
	// UpdateHistory records the view in the caller's issue history.
	UpdateHistory bool
}

// GetIssue fetches a single issue by key or ID.
func (c *Client) GetIssue(ctx context.Context, key string, opts GetIssueOptions, pat string) (*Issue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}

	params := url.Values{}
	params.Set("fields", strings.Join(normalizeFields(opts.Fields), ","))
	if opts.Expand != "" {
		params.Set("expand", opts.Expand)
	}
	if len(opts.Properties) > 0 {
		params.Set("properties", strings.Join(opts.Properties, ","))
	}
	params.Set("updateHistory", strconv.FormatBool(opts.UpdateHistory))

	var issue Issue
	endpoint := c.api("issue", url.PathEscape(key)) + "?" + params.Encode()
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &issue); err != nil {
		return nil, err
	}

	if opts.CommentLimit > 0 {
		comments, err := c.issueComments(ctx, key, opts.CommentLimit, pat)
		if err != nil {
			return nil, err
		}
		issue.Fields.Comment = comments
	}
	return &issue, nil
}

func (c *Client) issueComments(ctx context.Context, key string, limit int, pat string) (*CommentPage, error) {
	params := url.Values{}
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("orderBy", "-created")

	var page CommentPage
	endpoint := c.api("issue", url.PathEscape(key), "comment") + "?" + params.Encode()
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateIssue creates a new issue and returns it with the default read
// fields populated.
func (c *Client) CreateIssue(ctx context.Context, input IssueInput, pat string) (*Issue, error) {
	if strings.TrimSpace(input.ProjectKey) == "" {
		return nil, errors.New("jira: project key is required")
	}
	if strings.TrimSpace(input.Summary) == "" {
		return nil, errors.New("jira: summary is required")
	}
	if strings.TrimSpace(input.IssueType) == "" {
		return nil, errors.New("jira: issue type is required")
	}

	fields := map[string]any{
		"project":   map[string]any{"key": input.ProjectKey},
		"summary":   input.Summary,
		"issuetype": map[string]any{"name": input.IssueType},
	}
	if input.Description != nil {
		fields["description"] = c.document(input.Description)
	}
	if input.ParentKey != "" {
		fields["parent"] = map[string]any{"key": input.ParentKey}
	}
	if input.AssigneeID != "" {
		fields["assignee"] = c.userReference(input.AssigneeID)
	}
	if input.ReporterID != "" {
		fields["reporter"] = c.userReference(input.ReporterID)
	}
	if input.PriorityName != "" {
		fields["priority"] = map[string]any{"name": input.PriorityName}
	}
	if len(input.Labels) > 0 {
		fields["labels"] = input.Labels
	}
	if input.DueDate != "" {
		fields["duedate"] = input.DueDate
	}
	for id, value := range input.CustomFields {
		fields[id] = value
	}

	var created Issue
	if err := c.call(ctx, pat, http.MethodPost, c.api("issue"), map[string]any{"fields": fields}, &created); err != nil {
		return nil, err
	}
	return c.GetIssue(ctx, created.Key, GetIssueOptions{}, pat)
}

// BatchCreateResult reports the outcome of a single item in a batch create.
type BatchCreateResult struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
	Error string `json:"error,omitempty"`
}

// BatchCreateIssues creates multiple issues concurrently. Individual
// failures are reported per item instead of aborting the batch.
func (c *Client) BatchCreateIssues(ctx context.Context, inputs []IssueInput, pat string) ([]BatchCreateResult, error) {
	if len(inputs) == 0 {
		return nil, errors.New("jira: no issues to create")
	}

	results := make([]BatchCreateResult, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchCreateConcurrency)
	for i, input := range inputs {
		g.Go(func() error {
			issue, err := c.CreateIssue(gctx, input, pat)
			if err != nil {
				results[i] = BatchCreateResult{Index: i, Error: err.Error()}
				return nil
			}
			results[i] = BatchCreateResult{Index: i, ID: issue.ID, Key: issue.Key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateIssue applies a partial field update to an issue. Description and
// comment-like values are passed through untouched, the caller is expected
// to provide API-shaped fields.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any, pat string) (*Issue, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	if len(fields) == 0 {
		return nil, errors.New("jira: no fields to update")
	}

	payload := make(map[string]any, len(fields))
	for name, value := range fields {
		if name == "description" {
			value = c.document(value)
		}
		payload[name] = value
	}

	endpoint := c.api("issue", url.PathEscape(key))
	if err := c.call(ctx, pat, http.MethodPut, endpoint, map[string]any{"fields": payload}, nil); err != nil {
		return nil, err
	}
	return c.GetIssue(ctx, key, GetIssueOptions{}, pat)
}

// DeleteIssue removes an issue. Subtasks are deleted along with it when
// deleteSubtasks is true.
func (c *Client) DeleteIssue(ctx context.Context, key string, deleteSubtasks bool, pat string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("jira: issue key is required")
	}
	endpoint := c.api("issue", url.PathEscape(key)) + "?deleteSubtasks=" + strconv.FormatBool(deleteSubtasks)
	return c.call(ctx, pat, http.MethodDelete, endpoint, nil, nil)
}

// AddComment adds a comment to an issue.
func (c *Client) AddComment(ctx context.Context, key string, body any, pat string) (*Comment, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	if body == nil {
		return nil, errors.New("jira: comment body is required")
	}

	var comment Comment
	endpoint := c.api("issue", url.PathEscape(key), "comment")
	payload := map[string]any{"body": c.document(body)}
	if err := c.call(ctx, pat, http.MethodPost, endpoint, payload, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// document adapts plain text bodies to the platform's rich text format.
// Cloud (API v3) requires Atlassian Document Format, Server accepts text.
// Non-string values are assumed to already be API-shaped.
func (c *Client) document(body any) any {
	text, ok := body.(string)
	if !ok || !c.IsCloud() || text == "" {
		return body
	}
	return map[string]any{
		"type":    "doc",
		"version": 1,
		"content": []any{
			map[string]any{
				"type": "paragraph",
				"content": []any{
					map[string]any{"type": "text", "text": text},
				},
			},
		},
	}
}

// userReference builds the platform-specific user identifier payload.
func (c *Client) userReference(id string) map[string]any {
	if c.IsCloud() {
		return map[string]any{"accountId": id}
	}
	return map[string]any{"name": id}
}

// normalizeFields applies the default read field set and flattens the
// "*all" wildcard.
func normalizeFields(fields []string) []string {
	if len(fields) == 0 {
		return DefaultReadFields
	}
	for _, f := range fields {
		if strings.TrimSpace(f) == "*all" {
			return []string{"*all"}
		}
	}
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return DefaultReadFields
	}
	return out
}
