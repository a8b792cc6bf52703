package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

func (t *Tools) registerSearchTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool(
			"jira.search",
			mcp.WithDescription("Execute a JQL search and return matching issues; an empty query reruns the session's previous search"),
			mcp.WithInputSchema[SearchArgs](),
			mcp.WithOutputSchema[SearchResult](),
		),
		mcp.NewTypedToolHandler(t.handleSearch),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.search_fields",
			mcp.WithDescription("Fuzzily search the Jira field catalog, useful for finding custom field ids"),
			mcp.WithInputSchema[SearchFieldsArgs](),
			mcp.WithOutputSchema[SearchFieldsResult](),
		),
		mcp.NewTypedToolHandler(t.handleSearchFields),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_project_issues",
			mcp.WithDescription("List issues of a project, newest first"),
			mcp.WithInputSchema[ProjectIssuesArgs](),
			mcp.WithOutputSchema[SearchResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetProjectIssues),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.list_projects",
			mcp.WithDescription("List Jira projects accessible to the configured account"),
			mcp.WithInputSchema[ListProjectsArgs](),
			mcp.WithOutputSchema[ProjectListResult](),
		),
		mcp.NewTypedToolHandler(t.handleListProjects),
	)
}

// SearchArgs parameters for JQL searches.
type SearchArgs struct {
	JQL      string   `json:"jql,omitempty" jsonschema_description:"JQL query string; empty reruns the session's previous query"`
	Fields   []string `json:"fields,omitempty" jsonschema_description:"Fields to return per issue"`
	Limit    int      `json:"limit,omitempty" jsonschema_description:"Maximum number of issues to return" jsonschema:"minimum=1,maximum=100"`
	StartAt  int      `json:"startAt,omitempty" jsonschema_description:"Pagination offset, Server/Data Center only" jsonschema:"minimum=0"`
	Expand   string   `json:"expand,omitempty" jsonschema_description:"Comma-separated expansions"`
	Projects []string `json:"projects,omitempty" jsonschema_description:"Restrict results to these project keys"`
	PAT      string   `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// IssueSummary is a compact issue representation for lists.
type IssueSummary struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Summary  string `json:"summary"`
	Status   string `json:"status,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	Priority string `json:"priority,omitempty"`
	URL      string `json:"url"`
}

// SearchResult is a page of matching issues.
type SearchResult struct {
	Total   int            `json:"total"`
	StartAt int            `json:"startAt"`
	Issues  []IssueSummary `json:"issues"`
}

func (t *Tools) searchResult(result *jira.SearchResult) SearchResult {
	out := SearchResult{
		Total:   result.Total,
		StartAt: result.StartAt,
		Issues:  make([]IssueSummary, 0, len(result.Issues)),
	}
	for _, issue := range result.Issues {
		summary := IssueSummary{
			ID:       issue.ID,
			Key:      issue.Key,
			Summary:  issue.Fields.Summary,
			Status:   issue.Fields.Status.Name,
			Priority: issue.Fields.Priority.Name,
			URL:      t.browseURL(issue.Key),
		}
		if issue.Fields.Assignee != nil {
			summary.Assignee = issue.Fields.Assignee.DisplayName
		}
		out.Issues = append(out.Issues, summary)
	}
	return out
}

func (t *Tools) handleSearch(ctx context.Context, _ mcp.CallToolRequest, args SearchArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.search")
	jql := strings.TrimSpace(args.JQL)
	if jql == "" {
		// An omitted query repeats the last search of the session, for
		// example to page further or fetch more fields.
		jql = t.cache.LastJQL()
	}
	if jql == "" {
		return mcp.NewToolResultError("jql must not be empty"), nil
	}

	result, err := t.client.SearchIssues(ctx, jira.SearchRequest{
		JQL:            jql,
		Fields:         args.Fields,
		Limit:          args.Limit,
		StartAt:        args.StartAt,
		Expand:         args.Expand,
		ProjectsFilter: args.Projects,
	}, args.PAT)
	if err != nil {
		log.Error("search failed", "error", err)
		return mcp.NewToolResultErrorFromErr("jira search failed", err), nil
	}

	t.cache.SetLastJQL(jql)
	log.Info("search finished", "matches", len(result.Issues))

	out := t.searchResult(result)
	fallback := fmt.Sprintf("Found %d issues for JQL", len(out.Issues))
	return mcp.NewToolResultStructured(out, fallback), nil
}

// SearchFieldsArgs parameters for field catalog lookups.
type SearchFieldsArgs struct {
	Keyword string `json:"keyword,omitempty" jsonschema_description:"Keyword to match against field names and ids; empty lists the first fields"`
	Limit   int    `json:"limit,omitempty" jsonschema_description:"Maximum number of fields to return" jsonschema:"minimum=1,maximum=50"`
	Refresh bool   `json:"refresh,omitempty" jsonschema_description:"Bypass the cached field catalog"`
	PAT     string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// FieldInfo describes one field definition.
type FieldInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Custom bool   `json:"custom"`
	Type   string `json:"type,omitempty"`
}

// SearchFieldsResult wraps matched fields.
type SearchFieldsResult struct {
	Fields []FieldInfo `json:"fields"`
}

func (t *Tools) handleSearchFields(ctx context.Context, _ mcp.CallToolRequest, args SearchFieldsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.search_fields")

	fields, err := t.client.SearchFields(ctx, args.Keyword, args.Limit, args.Refresh, args.PAT)
	if err != nil {
		log.Error("search fields failed", "error", err)
		return mcp.NewToolResultErrorFromErr("jira search fields failed", err), nil
	}

	result := SearchFieldsResult{Fields: make([]FieldInfo, 0, len(fields))}
	for _, f := range fields {
		info := FieldInfo{ID: f.ID, Name: f.Name, Custom: f.Custom}
		if f.Schema != nil {
			info.Type = f.Schema.Type
		}
		result.Fields = append(result.Fields, info)
	}

	log.Info("field search finished", "matches", len(result.Fields))
	fallback := fmt.Sprintf("Found %d matching fields", len(result.Fields))
	return mcp.NewToolResultStructured(result, fallback), nil
}

// ProjectIssuesArgs parameters for listing project issues.
type ProjectIssuesArgs struct {
	ProjectKey string `json:"projectKey" jsonschema:"required" jsonschema_description:"Project key"`
	StartAt    int    `json:"startAt,omitempty" jsonschema_description:"Pagination offset" jsonschema:"minimum=0"`
	Limit      int    `json:"limit,omitempty" jsonschema_description:"Maximum number of issues to return" jsonschema:"minimum=1,maximum=100"`
	PAT        string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleGetProjectIssues(ctx context.Context, _ mcp.CallToolRequest, args ProjectIssuesArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_project_issues")

	result, err := t.client.GetProjectIssues(ctx, args.ProjectKey, args.StartAt, args.Limit, args.PAT)
	if err != nil {
		log.Error("project issues failed", "project", args.ProjectKey, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get project issues failed", err), nil
	}

	log.Info("project issues fetched", "project", args.ProjectKey, "matches", len(result.Issues))
	out := t.searchResult(result)
	fallback := fmt.Sprintf("Found %d issues in %s", len(out.Issues), args.ProjectKey)
	return mcp.NewToolResultStructured(out, fallback), nil
}

// ListProjectsArgs parameters for listing projects.
type ListProjectsArgs struct {
	Limit   int    `json:"limit,omitempty" jsonschema_description:"Maximum number of projects to return" jsonschema:"minimum=1,maximum=100"`
	Refresh bool   `json:"refresh,omitempty" jsonschema_description:"Bypass the cached project list"`
	PAT     string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// ProjectInfo is one project entry.
type ProjectInfo struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProjectListResult wraps the project list.
type ProjectListResult struct {
	Projects []ProjectInfo `json:"projects"`
}

func (t *Tools) handleListProjects(ctx context.Context, _ mcp.CallToolRequest, args ListProjectsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.list_projects")

	var projects []jira.Project
	if cached, ok := t.cache.Projects(); ok && !args.Refresh && args.PAT == "" {
		projects = cached
	} else {
		var err error
		projects, err = t.client.ListProjects(ctx, args.Limit, args.PAT)
		if err != nil {
			log.Error("list projects failed", "error", err)
			return mcp.NewToolResultErrorFromErr("jira list projects failed", err), nil
		}
		if args.PAT == "" {
			t.cache.SetProjects(projects)
		}
	}

	result := ProjectListResult{Projects: make([]ProjectInfo, 0, len(projects))}
	for _, p := range projects {
		result.Projects = append(result.Projects, ProjectInfo{
			ID:   p.ID,
			Key:  p.Key,
			Name: p.Name,
			URL:  fmt.Sprintf("%s/browse/%s", t.siteURL, p.Key),
		})
	}

	log.Info("projects listed", "count", len(result.Projects))
	fallback := fmt.Sprintf("Found %d Jira projects", len(result.Projects))
	return mcp.NewToolResultStructured(result, fallback), nil
}
