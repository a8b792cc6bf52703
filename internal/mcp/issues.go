package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

func (t *Tools) registerIssueTools(s *server.MCPServer, readOnly bool) {
	s.AddTool(
		mcp.NewTool(
			"jira.get_issue",
			mcp.WithDescription("Get a Jira issue by key, including selected fields, comments and expansions"),
			mcp.WithInputSchema[GetIssueArgs](),
			mcp.WithOutputSchema[IssueDetail](),
		),
		mcp.NewTypedToolHandler(t.handleGetIssue),
	)

	if readOnly {
		return
	}

	s.AddTool(
		mcp.NewTool(
			"jira.create_issue",
			mcp.WithDescription("Create a new Jira issue in the specified project"),
			mcp.WithInputSchema[CreateIssueArgs](),
			mcp.WithOutputSchema[IssueRef](),
		),
		mcp.NewTypedToolHandler(t.handleCreateIssue),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.batch_create_issues",
			mcp.WithDescription("Create multiple Jira issues in one call, reporting success or failure per item"),
			mcp.WithInputSchema[BatchCreateIssuesArgs](),
			mcp.WithOutputSchema[BatchCreateIssuesResult](),
		),
		mcp.NewTypedToolHandler(t.handleBatchCreateIssues),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.update_issue",
			mcp.WithDescription("Update fields on an existing Jira issue"),
			mcp.WithInputSchema[UpdateIssueArgs](),
			mcp.WithOutputSchema[IssueDetail](),
		),
		mcp.NewTypedToolHandler(t.handleUpdateIssue),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.delete_issue",
			mcp.WithDescription("Delete a Jira issue, optionally with its subtasks"),
			mcp.WithInputSchema[DeleteIssueArgs](),
			mcp.WithOutputSchema[OperationStatus](),
		),
		mcp.NewTypedToolHandler(t.handleDeleteIssue),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.add_comment",
			mcp.WithDescription("Add a comment to an existing Jira issue"),
			mcp.WithInputSchema[AddCommentArgs](),
			mcp.WithOutputSchema[CommentResult](),
		),
		mcp.NewTypedToolHandler(t.handleAddComment),
	)
}

// GetIssueArgs parameters for fetching a single issue.
type GetIssueArgs struct {
	Key           string   `json:"key" jsonschema:"required" jsonschema_description:"Issue key, for example PROJ-123"`
	Fields        []string `json:"fields,omitempty" jsonschema_description:"Fields to return; defaults to a compact set, use [\"*all\"] for everything"`
	Expand        string   `json:"expand,omitempty" jsonschema_description:"Comma-separated expansions such as changelog or transitions"`
	Properties    []string `json:"properties,omitempty" jsonschema_description:"Issue properties to include"`
	CommentLimit  int      `json:"commentLimit,omitempty" jsonschema_description:"Number of most recent comments to include" jsonschema:"minimum=0,maximum=100"`
	UpdateHistory bool     `json:"updateHistory,omitempty" jsonschema_description:"Record this view in the issue history"`
	PAT           string   `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// IssueDetail is the issue payload returned to clients.
type IssueDetail struct {
	ID          string            `json:"id"`
	Key         string            `json:"key"`
	Summary     string            `json:"summary"`
	Status      string            `json:"status,omitempty"`
	IssueType   string            `json:"issueType,omitempty"`
	Priority    string            `json:"priority,omitempty"`
	Assignee    string            `json:"assignee,omitempty"`
	Reporter    string            `json:"reporter,omitempty"`
	Labels      []string          `json:"labels,omitempty"`
	Created     string            `json:"created,omitempty"`
	Updated     string            `json:"updated,omitempty"`
	DueDate     string            `json:"dueDate,omitempty"`
	Description any               `json:"description,omitempty"`
	Comments    []CommentResult   `json:"comments,omitempty"`
	Changelog   []ChangelogEntry  `json:"changelog,omitempty"`
	Transitions []TransitionEntry `json:"transitions,omitempty"`
	URL         string            `json:"url"`
}

// CommentResult describes one comment.
type CommentResult struct {
	ID      string `json:"id"`
	Author  string `json:"author,omitempty"`
	Body    any    `json:"body,omitempty"`
	Created string `json:"created,omitempty"`
}

// IssueRef identifies a created issue.
type IssueRef struct {
	ID  string `json:"id"`
	Key string `json:"key"`
	URL string `json:"url"`
}

// OperationStatus acknowledges a state-changing operation.
type OperationStatus struct {
	Message string `json:"message"`
}

func (t *Tools) issueDetail(issue *jira.Issue) IssueDetail {
	detail := IssueDetail{
		ID:          issue.ID,
		Key:         issue.Key,
		Summary:     issue.Fields.Summary,
		Status:      issue.Fields.Status.Name,
		IssueType:   issue.Fields.IssueType.Name,
		Priority:    issue.Fields.Priority.Name,
		Labels:      issue.Fields.Labels,
		Created:     issue.Fields.Created,
		Updated:     issue.Fields.Updated,
		DueDate:     issue.Fields.DueDate,
		Description: plainText(issue.Fields.Description),
		URL:         t.browseURL(issue.Key),
	}
	if issue.Fields.Assignee != nil {
		detail.Assignee = issue.Fields.Assignee.DisplayName
	}
	if issue.Fields.Reporter != nil {
		detail.Reporter = issue.Fields.Reporter.DisplayName
	}
	if issue.Fields.Comment != nil {
		detail.Comments = make([]CommentResult, 0, len(issue.Fields.Comment.Comments))
		for _, c := range issue.Fields.Comment.Comments {
			detail.Comments = append(detail.Comments, commentResult(c))
		}
	}
	if issue.Changelog != nil {
		detail.Changelog = changelogEntries(issue.Changelog.Histories)
	}
	for _, tr := range issue.Transitions {
		detail.Transitions = append(detail.Transitions, TransitionEntry{ID: tr.ID, Name: tr.Name, To: tr.To.Name})
	}
	return detail
}

func commentResult(c jira.Comment) CommentResult {
	out := CommentResult{ID: c.ID, Body: plainText(c.Body), Created: c.Created}
	if c.Author != nil {
		out.Author = c.Author.DisplayName
	}
	return out
}

// plainText strips markup from string payloads. Atlassian document bodies
// pass through untouched so clients keep the structured form.
func plainText(v any) any {
	if s, ok := v.(string); ok {
		return jira.CleanText(s)
	}
	return v
}

func (t *Tools) handleGetIssue(ctx context.Context, _ mcp.CallToolRequest, args GetIssueArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_issue")

	issue, err := t.client.GetIssue(ctx, args.Key, jira.GetIssueOptions{
		Fields:        args.Fields,
		Expand:        args.Expand,
		Properties:    args.Properties,
		CommentLimit:  args.CommentLimit,
		UpdateHistory: args.UpdateHistory,
	}, args.PAT)
	if err != nil {
		log.Error("get issue failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get issue failed", err), nil
	}

	log.Info("fetched issue", "key", issue.Key)
	detail := t.issueDetail(issue)
	return mcp.NewToolResultStructured(detail, fmt.Sprintf("Fetched Jira issue %s", issue.Key)), nil
}

// CreateIssueArgs define creation parameters.
type CreateIssueArgs struct {
	ProjectKey   string         `json:"projectKey" jsonschema:"required" jsonschema_description:"Project key"`
	IssueType    string         `json:"issueType" jsonschema:"required" jsonschema_description:"Issue type name, for example Task or Bug"`
	Summary      string         `json:"summary" jsonschema:"required" jsonschema_description:"Issue summary"`
	Description  any            `json:"description,omitempty" jsonschema_description:"Issue description, plain text or Atlassian document"`
	ParentKey    string         `json:"parentKey,omitempty" jsonschema_description:"Parent issue key for subtasks"`
	Assignee     string         `json:"assignee,omitempty" jsonschema_description:"Assignee account id (Cloud) or username (Server)"`
	Priority     string         `json:"priority,omitempty" jsonschema_description:"Priority name"`
	Labels       []string       `json:"labels,omitempty" jsonschema_description:"Labels to apply"`
	DueDate      string         `json:"dueDate,omitempty" jsonschema_description:"Due date as YYYY-MM-DD"`
	CustomFields map[string]any `json:"customFields,omitempty" jsonschema_description:"Additional fields keyed by field id"`
	PAT          string         `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleCreateIssue(ctx context.Context, _ mcp.CallToolRequest, args CreateIssueArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.create_issue")

	issue, err := t.client.CreateIssue(ctx, jira.IssueInput{
		ProjectKey:   args.ProjectKey,
		IssueType:    args.IssueType,
		Summary:      args.Summary,
		Description:  args.Description,
		ParentKey:    args.ParentKey,
		AssigneeID:   args.Assignee,
		PriorityName: args.Priority,
		Labels:       args.Labels,
		DueDate:      args.DueDate,
		CustomFields: args.CustomFields,
	}, args.PAT)
	if err != nil {
		log.Error("create issue failed", "project", args.ProjectKey, "error", err)
		return mcp.NewToolResultErrorFromErr("jira create issue failed", err), nil
	}

	log.Info("created issue", "key", issue.Key)
	result := IssueRef{ID: issue.ID, Key: issue.Key, URL: t.browseURL(issue.Key)}
	return mcp.NewToolResultStructured(result, fmt.Sprintf("Created Jira issue %s", issue.Key)), nil
}

// BatchCreateIssuesArgs define a batch of issues to create.
type BatchCreateIssuesArgs struct {
	Issues []CreateIssueArgs `json:"issues" jsonschema:"required" jsonschema_description:"Issues to create"`
	PAT    string            `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// BatchCreateItem is the outcome of one batch entry.
type BatchCreateItem struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Key   string `json:"key,omitempty"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// BatchCreateIssuesResult reports the whole batch.
type BatchCreateIssuesResult struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Items   []BatchCreateItem `json:"items"`
}

func (t *Tools) handleBatchCreateIssues(ctx context.Context, _ mcp.CallToolRequest, args BatchCreateIssuesArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.batch_create_issues")
	if len(args.Issues) == 0 {
		return mcp.NewToolResultError("issues must not be empty"), nil
	}

	inputs := make([]jira.IssueInput, 0, len(args.Issues))
	for _, a := range args.Issues {
		inputs = append(inputs, jira.IssueInput{
			ProjectKey:   a.ProjectKey,
			IssueType:    a.IssueType,
			Summary:      a.Summary,
			Description:  a.Description,
			ParentKey:    a.ParentKey,
			AssigneeID:   a.Assignee,
			PriorityName: a.Priority,
			Labels:       a.Labels,
			DueDate:      a.DueDate,
			CustomFields: a.CustomFields,
		})
	}

	results, err := t.client.BatchCreateIssues(ctx, inputs, args.PAT)
	if err != nil {
		log.Error("batch create failed", "count", len(inputs), "error", err)
		return mcp.NewToolResultErrorFromErr("jira batch create issues failed", err), nil
	}

	out := BatchCreateIssuesResult{Items: make([]BatchCreateItem, 0, len(results))}
	for _, r := range results {
		item := BatchCreateItem{Index: r.Index, ID: r.ID, Key: r.Key, Error: r.Error}
		if r.Key != "" {
			item.URL = t.browseURL(r.Key)
			out.Created++
		} else {
			out.Failed++
		}
		out.Items = append(out.Items, item)
	}

	log.Info("batch create finished", "created", out.Created, "failed", out.Failed)
	fallback := fmt.Sprintf("Created %d of %d issues", out.Created, len(args.Issues))
	return mcp.NewToolResultStructured(out, fallback), nil
}

// UpdateIssueArgs define fields for updates.
type UpdateIssueArgs struct {
	Key         string         `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	Summary     *string        `json:"summary,omitempty" jsonschema_description:"New summary"`
	Description any            `json:"description,omitempty" jsonschema_description:"New description"`
	Fields      map[string]any `json:"fields,omitempty" jsonschema_description:"Additional field updates keyed by field id"`
	PAT         string         `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleUpdateIssue(ctx context.Context, _ mcp.CallToolRequest, args UpdateIssueArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.update_issue")

	updates := map[string]any{}
	for k, v := range args.Fields {
		updates[k] = v
	}
	if args.Summary != nil {
		updates["summary"] = *args.Summary
	}
	if args.Description != nil {
		updates["description"] = args.Description
	}
	if len(updates) == 0 {
		return mcp.NewToolResultError("no updates provided"), nil
	}

	issue, err := t.client.UpdateIssue(ctx, args.Key, updates, args.PAT)
	if err != nil {
		log.Error("update issue failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira update issue failed", err), nil
	}

	log.Info("updated issue", "key", issue.Key)
	return mcp.NewToolResultStructured(t.issueDetail(issue), fmt.Sprintf("Updated Jira issue %s", issue.Key)), nil
}

// DeleteIssueArgs parameters for deleting an issue.
type DeleteIssueArgs struct {
	Key            string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	DeleteSubtasks bool   `json:"deleteSubtasks,omitempty" jsonschema_description:"Also delete subtasks of the issue"`
	PAT            string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleDeleteIssue(ctx context.Context, _ mcp.CallToolRequest, args DeleteIssueArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.delete_issue")

	if err := t.client.DeleteIssue(ctx, args.Key, args.DeleteSubtasks, args.PAT); err != nil {
		log.Error("delete issue failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira delete issue failed", err), nil
	}

	log.Info("deleted issue", "key", args.Key)
	msg := fmt.Sprintf("Deleted Jira issue %s", args.Key)
	return mcp.NewToolResultStructured(OperationStatus{Message: msg}, msg), nil
}

// AddCommentArgs parameters for commenting.
type AddCommentArgs struct {
	Key  string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	Body any    `json:"body" jsonschema:"required" jsonschema_description:"Comment body as plain text or Atlassian document"`
	PAT  string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleAddComment(ctx context.Context, _ mcp.CallToolRequest, args AddCommentArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.add_comment")

	if text, ok := args.Body.(string); ok && strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("comment body must not be empty"), nil
	}

	comment, err := t.client.AddComment(ctx, args.Key, args.Body, args.PAT)
	if err != nil {
		log.Error("add comment failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira add comment failed", err), nil
	}

	log.Info("added comment", "key", args.Key, "comment", comment.ID)
	fallback := fmt.Sprintf("Added comment to Jira issue %s", args.Key)
	return mcp.NewToolResultStructured(commentResult(*comment), fallback), nil
}
