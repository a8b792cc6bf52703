package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

func (t *Tools) registerWorkflowTools(s *server.MCPServer, readOnly bool) {
	s.AddTool(
		mcp.NewTool(
			"jira.get_transitions",
			mcp.WithDescription("List available workflow transitions for an issue"),
			mcp.WithInputSchema[GetTransitionsArgs](),
			mcp.WithOutputSchema[TransitionsResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetTransitions),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_worklogs",
			mcp.WithDescription("List worklog entries of an issue"),
			mcp.WithInputSchema[GetWorklogsArgs](),
			mcp.WithOutputSchema[WorklogsResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetWorklogs),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_link_types",
			mcp.WithDescription("List the issue link relations this Jira instance supports"),
			mcp.WithInputSchema[GetLinkTypesArgs](),
			mcp.WithOutputSchema[LinkTypesResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetLinkTypes),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_user_profile",
			mcp.WithDescription("Resolve a Jira user by email, display name, account id or username"),
			mcp.WithInputSchema[GetUserProfileArgs](),
			mcp.WithOutputSchema[UserProfile](),
		),
		mcp.NewTypedToolHandler(t.handleGetUserProfile),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.batch_get_changelogs",
			mcp.WithDescription("Fetch change histories for several issues at once (Jira Cloud only)"),
			mcp.WithInputSchema[BatchChangelogsArgs](),
			mcp.WithOutputSchema[BatchChangelogsResult](),
		),
		mcp.NewTypedToolHandler(t.handleBatchGetChangelogs),
	)

	if readOnly {
		return
	}

	s.AddTool(
		mcp.NewTool(
			"jira.transition_issue",
			mcp.WithDescription("Move an issue through a workflow transition, optionally updating fields and commenting"),
			mcp.WithInputSchema[TransitionIssueArgs](),
			mcp.WithOutputSchema[IssueDetail](),
		),
		mcp.NewTypedToolHandler(t.handleTransitionIssue),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.add_worklog",
			mcp.WithDescription("Record time spent on an issue"),
			mcp.WithInputSchema[AddWorklogArgs](),
			mcp.WithOutputSchema[WorklogEntry](),
		),
		mcp.NewTypedToolHandler(t.handleAddWorklog),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.create_issue_link",
			mcp.WithDescription("Link two issues with a named relation such as Blocks or Relates"),
			mcp.WithInputSchema[CreateIssueLinkArgs](),
			mcp.WithOutputSchema[OperationStatus](),
		),
		mcp.NewTypedToolHandler(t.handleCreateIssueLink),
	)
}

// GetTransitionsArgs parameters for listing transitions.
type GetTransitionsArgs struct {
	Key string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	PAT string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// TransitionEntry describes one available workflow step.
type TransitionEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   string `json:"to,omitempty"`
}

// TransitionsResult wraps transition responses.
type TransitionsResult struct {
	Transitions []TransitionEntry `json:"transitions"`
}

func (t *Tools) handleGetTransitions(ctx context.Context, _ mcp.CallToolRequest, args GetTransitionsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_transitions")

	transitions, err := t.client.GetTransitions(ctx, args.Key, args.PAT)
	if err != nil {
		log.Error("get transitions failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get transitions failed", err), nil
	}

	result := TransitionsResult{Transitions: make([]TransitionEntry, 0, len(transitions))}
	for _, tr := range transitions {
		result.Transitions = append(result.Transitions, TransitionEntry{ID: tr.ID, Name: tr.Name, To: tr.To.Name})
	}

	log.Info("transitions listed", "key", args.Key, "count", len(result.Transitions))
	fallback := fmt.Sprintf("Found %d transitions for %s", len(result.Transitions), args.Key)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// TransitionIssueArgs parameters for executing a transition.
type TransitionIssueArgs struct {
	Key          string         `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	TransitionID string         `json:"transitionId" jsonschema:"required" jsonschema_description:"Workflow transition id"`
	Fields       map[string]any `json:"fields,omitempty" jsonschema_description:"Field updates applied during the transition"`
	Comment      any            `json:"comment,omitempty" jsonschema_description:"Comment to add while transitioning"`
	PAT          string         `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleTransitionIssue(ctx context.Context, _ mcp.CallToolRequest, args TransitionIssueArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.transition_issue")

	issue, err := t.client.TransitionIssue(ctx, args.Key, args.TransitionID, args.Fields, args.Comment, args.PAT)
	if err != nil {
		log.Error("transition failed", "key", args.Key, "transition", args.TransitionID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira transition issue failed", err), nil
	}

	log.Info("issue transitioned", "key", args.Key, "status", issue.Fields.Status.Name)
	fallback := fmt.Sprintf("Transitioned %s to %s", args.Key, issue.Fields.Status.Name)
	return mcp.NewToolResultStructured(t.issueDetail(issue), fallback), nil
}

// GetWorklogsArgs parameters for listing worklogs.
type GetWorklogsArgs struct {
	Key string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	PAT string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// WorklogEntry describes one worklog record.
type WorklogEntry struct {
	ID               string `json:"id"`
	Author           string `json:"author,omitempty"`
	Comment          any    `json:"comment,omitempty"`
	Started          string `json:"started,omitempty"`
	TimeSpent        string `json:"timeSpent,omitempty"`
	TimeSpentSeconds int    `json:"timeSpentSeconds,omitempty"`
}

// WorklogsResult wraps worklog responses.
type WorklogsResult struct {
	Worklogs []WorklogEntry `json:"worklogs"`
}

func worklogEntry(w jira.Worklog) WorklogEntry {
	out := WorklogEntry{
		ID:               w.ID,
		Comment:          w.Comment,
		Started:          w.Started,
		TimeSpent:        w.TimeSpent,
		TimeSpentSeconds: w.TimeSpentSeconds,
	}
	if w.Author != nil {
		out.Author = w.Author.DisplayName
	}
	return out
}

func (t *Tools) handleGetWorklogs(ctx context.Context, _ mcp.CallToolRequest, args GetWorklogsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_worklogs")

	worklogs, err := t.client.GetWorklogs(ctx, args.Key, args.PAT)
	if err != nil {
		log.Error("get worklogs failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get worklogs failed", err), nil
	}

	result := WorklogsResult{Worklogs: make([]WorklogEntry, 0, len(worklogs))}
	for _, w := range worklogs {
		result.Worklogs = append(result.Worklogs, worklogEntry(w))
	}

	log.Info("worklogs listed", "key", args.Key, "count", len(result.Worklogs))
	fallback := fmt.Sprintf("Found %d worklogs on %s", len(result.Worklogs), args.Key)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// AddWorklogArgs parameters for recording time.
type AddWorklogArgs struct {
	Key       string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	TimeSpent string `json:"timeSpent" jsonschema:"required" jsonschema_description:"Time spent in Jira duration syntax, for example 2h 30m"`
	Comment   any    `json:"comment,omitempty" jsonschema_description:"Worklog comment"`
	Started   string `json:"started,omitempty" jsonschema_description:"When the work started, ISO 8601 timestamp"`
	PAT       string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleAddWorklog(ctx context.Context, _ mcp.CallToolRequest, args AddWorklogArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.add_worklog")

	worklog, err := t.client.AddWorklog(ctx, args.Key, jira.WorklogInput{
		TimeSpent: args.TimeSpent,
		Comment:   args.Comment,
		Started:   args.Started,
	}, args.PAT)
	if err != nil {
		log.Error("add worklog failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira add worklog failed", err), nil
	}

	log.Info("worklog added", "key", args.Key, "worklog", worklog.ID)
	fallback := fmt.Sprintf("Logged %s on %s", args.TimeSpent, args.Key)
	return mcp.NewToolResultStructured(worklogEntry(*worklog), fallback), nil
}

// GetLinkTypesArgs parameters for listing link types.
type GetLinkTypesArgs struct {
	PAT string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// LinkTypeInfo describes one issue link relation.
type LinkTypeInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// LinkTypesResult wraps link type responses.
type LinkTypesResult struct {
	LinkTypes []LinkTypeInfo `json:"linkTypes"`
}

func (t *Tools) handleGetLinkTypes(ctx context.Context, _ mcp.CallToolRequest, args GetLinkTypesArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_link_types")

	types, err := t.client.GetIssueLinkTypes(ctx, args.PAT)
	if err != nil {
		log.Error("get link types failed", "error", err)
		return mcp.NewToolResultErrorFromErr("jira get link types failed", err), nil
	}

	result := LinkTypesResult{LinkTypes: make([]LinkTypeInfo, 0, len(types))}
	for _, lt := range types {
		result.LinkTypes = append(result.LinkTypes, LinkTypeInfo{ID: lt.ID, Name: lt.Name, Inward: lt.Inward, Outward: lt.Outward})
	}

	log.Info("link types listed", "count", len(result.LinkTypes))
	fallback := fmt.Sprintf("Found %d link types", len(result.LinkTypes))
	return mcp.NewToolResultStructured(result, fallback), nil
}

// CreateIssueLinkArgs parameters for linking issues.
type CreateIssueLinkArgs struct {
	TypeName   string `json:"typeName" jsonschema:"required" jsonschema_description:"Link type name, for example Blocks"`
	InwardKey  string `json:"inwardKey" jsonschema:"required" jsonschema_description:"Issue on the inward side, for example the blocked issue"`
	OutwardKey string `json:"outwardKey" jsonschema:"required" jsonschema_description:"Issue on the outward side, for example the blocking issue"`
	Comment    any    `json:"comment,omitempty" jsonschema_description:"Comment added with the link"`
	PAT        string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleCreateIssueLink(ctx context.Context, _ mcp.CallToolRequest, args CreateIssueLinkArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.create_issue_link")

	err := t.client.CreateIssueLink(ctx, jira.LinkInput{
		TypeName:   args.TypeName,
		InwardKey:  args.InwardKey,
		OutwardKey: args.OutwardKey,
		Comment:    args.Comment,
	}, args.PAT)
	if err != nil {
		log.Error("create link failed", "inward", args.InwardKey, "outward", args.OutwardKey, "error", err)
		return mcp.NewToolResultErrorFromErr("jira create issue link failed", err), nil
	}

	log.Info("issues linked", "inward", args.InwardKey, "outward", args.OutwardKey, "type", args.TypeName)
	msg := fmt.Sprintf("Linked %s %s %s", args.OutwardKey, args.TypeName, args.InwardKey)
	return mcp.NewToolResultStructured(OperationStatus{Message: msg}, msg), nil
}

// GetUserProfileArgs parameters for user lookup.
type GetUserProfileArgs struct {
	Identifier string `json:"identifier" jsonschema:"required" jsonschema_description:"Email, display name, accountid:<id> (Cloud) or username (Server)"`
	PAT        string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// UserProfile is the resolved user.
type UserProfile struct {
	AccountID   string `json:"accountId,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Active      bool   `json:"active"`
	TimeZone    string `json:"timeZone,omitempty"`
}

func (t *Tools) handleGetUserProfile(ctx context.Context, _ mcp.CallToolRequest, args GetUserProfileArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_user_profile")

	user, err := t.client.GetUserProfile(ctx, args.Identifier, args.PAT)
	if err != nil {
		log.Error("user lookup failed", "error", err)
		return mcp.NewToolResultErrorFromErr("jira get user profile failed", err), nil
	}

	profile := UserProfile{
		AccountID:   user.AccountID,
		Username:    user.Name,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Active:      user.Active,
		TimeZone:    user.TimeZone,
	}

	log.Info("user resolved", "display_name", profile.DisplayName)
	fallback := fmt.Sprintf("Resolved user %s", profile.DisplayName)
	return mcp.NewToolResultStructured(profile, fallback), nil
}

// BatchChangelogsArgs parameters for bulk changelog fetches.
type BatchChangelogsArgs struct {
	IssueKeys []string `json:"issueKeys" jsonschema:"required" jsonschema_description:"Issue keys or ids to fetch history for"`
	Fields    []string `json:"fields,omitempty" jsonschema_description:"Restrict history to changes of these field ids"`
	Limit     int      `json:"limit,omitempty" jsonschema_description:"Maximum history entries kept per issue, 0 keeps all" jsonschema:"minimum=0"`
	PAT       string   `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// ChangeItemEntry is one field change.
type ChangeItemEntry struct {
	Field string `json:"field"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
}

// ChangelogEntry is one history record.
type ChangelogEntry struct {
	ID      string            `json:"id,omitempty"`
	Author  string            `json:"author,omitempty"`
	Created string            `json:"created,omitempty"`
	Items   []ChangeItemEntry `json:"items,omitempty"`
}

// IssueChangelogGroup holds the history of one issue.
type IssueChangelogGroup struct {
	IssueID    string           `json:"issueId"`
	Changelogs []ChangelogEntry `json:"changelogs"`
}

// BatchChangelogsResult wraps the bulk response.
type BatchChangelogsResult struct {
	Issues []IssueChangelogGroup `json:"issues"`
}

func changelogEntries(histories []jira.Changelog) []ChangelogEntry {
	out := make([]ChangelogEntry, 0, len(histories))
	for _, h := range histories {
		entry := ChangelogEntry{ID: h.ID, Created: h.Created}
		if h.Author != nil {
			entry.Author = h.Author.DisplayName
		}
		for _, item := range h.Items {
			entry.Items = append(entry.Items, ChangeItemEntry{Field: item.Field, From: item.FromString, To: item.ToString})
		}
		out = append(out, entry)
	}
	return out
}

func (t *Tools) handleBatchGetChangelogs(ctx context.Context, _ mcp.CallToolRequest, args BatchChangelogsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.batch_get_changelogs")
	if len(args.IssueKeys) == 0 {
		return mcp.NewToolResultError("issueKeys must not be empty"), nil
	}

	groups, err := t.client.BatchGetChangelogs(ctx, args.IssueKeys, args.Fields, args.Limit, args.PAT)
	if err != nil {
		log.Error("batch changelogs failed", "error", err)
		return mcp.NewToolResultErrorFromErr("jira batch get changelogs failed", err), nil
	}

	result := BatchChangelogsResult{Issues: make([]IssueChangelogGroup, 0, len(groups))}
	for _, g := range groups {
		result.Issues = append(result.Issues, IssueChangelogGroup{
			IssueID:    g.IssueID,
			Changelogs: changelogEntries(g.Changelogs),
		})
	}

	log.Info("changelogs fetched", "issues", len(result.Issues))
	fallback := fmt.Sprintf("Fetched changelogs for %d issues", len(result.Issues))
	return mcp.NewToolResultStructured(result, fallback), nil
}
