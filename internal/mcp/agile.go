package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"gitlab.com/your-org/jira-mcp/internal/jira"
)

func (t *Tools) registerAgileTools(s *server.MCPServer, readOnly bool) {
	s.AddTool(
		mcp.NewTool(
			"jira.get_agile_boards",
			mcp.WithDescription("List agile boards, optionally filtered by fuzzy name, project or type"),
			mcp.WithInputSchema[AgileBoardsArgs](),
			mcp.WithOutputSchema[BoardListResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetAgileBoards),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_board_issues",
			mcp.WithDescription("List issues on an agile board, optionally narrowed by JQL"),
			mcp.WithInputSchema[BoardIssuesArgs](),
			mcp.WithOutputSchema[SearchResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetBoardIssues),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_sprints_from_board",
			mcp.WithDescription("List sprints of a board, optionally filtered by state"),
			mcp.WithInputSchema[BoardSprintsArgs](),
			mcp.WithOutputSchema[SprintListResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetSprintsFromBoard),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.get_sprint_issues",
			mcp.WithDescription("List issues in a sprint"),
			mcp.WithInputSchema[SprintIssuesArgs](),
			mcp.WithOutputSchema[SearchResult](),
		),
		mcp.NewTypedToolHandler(t.handleGetSprintIssues),
	)

	if readOnly {
		return
	}

	s.AddTool(
		mcp.NewTool(
			"jira.create_sprint",
			mcp.WithDescription("Create a new sprint on a board"),
			mcp.WithInputSchema[CreateSprintArgs](),
			mcp.WithOutputSchema[SprintInfo](),
		),
		mcp.NewTypedToolHandler(t.handleCreateSprint),
	)

	s.AddTool(
		mcp.NewTool(
			"jira.update_sprint",
			mcp.WithDescription("Update sprint details or state, closing a sprint completes it"),
			mcp.WithInputSchema[UpdateSprintArgs](),
			mcp.WithOutputSchema[SprintInfo](),
		),
		mcp.NewTypedToolHandler(t.handleUpdateSprint),
	)
}

// AgileBoardsArgs filter the board listing.
type AgileBoardsArgs struct {
	Name       string `json:"name,omitempty" jsonschema_description:"Fuzzy board name to match"`
	ProjectKey string `json:"projectKey,omitempty" jsonschema_description:"Restrict boards to one project"`
	Type       string `json:"type,omitempty" jsonschema_description:"Board type, scrum or kanban"`
	StartAt    int    `json:"startAt,omitempty" jsonschema_description:"Pagination offset" jsonschema:"minimum=0"`
	Limit      int    `json:"limit,omitempty" jsonschema_description:"Maximum number of boards to return" jsonschema:"minimum=1,maximum=100"`
	PAT        string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// BoardInfo is one agile board entry.
type BoardInfo struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Project string `json:"project,omitempty"`
}

// BoardListResult wraps the board list.
type BoardListResult struct {
	Boards []BoardInfo `json:"boards"`
}

func (t *Tools) handleGetAgileBoards(ctx context.Context, _ mcp.CallToolRequest, args AgileBoardsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_agile_boards")

	// Only the default first-page listing is cacheable; filters, pagination
	// and request-scoped tokens all change what comes back.
	cacheable := args.PAT == "" && args.Name == "" && args.ProjectKey == "" &&
		args.Type == "" && args.StartAt == 0 && args.Limit == 0

	var boards []jira.Board
	hit := false
	if cacheable {
		boards, hit = t.cache.Boards()
	}
	if !hit {
		opts := jira.BoardsOptions{Name: args.Name, ProjectKey: args.ProjectKey, Type: args.Type}
		var err error
		boards, err = t.client.GetAgileBoards(ctx, opts, args.StartAt, args.Limit, args.PAT)
		if err != nil {
			log.Error("list boards failed", "error", err)
			return mcp.NewToolResultErrorFromErr("jira get agile boards failed", err), nil
		}
		if cacheable {
			t.cache.SetBoards(boards)
		}
	}

	result := BoardListResult{Boards: make([]BoardInfo, 0, len(boards))}
	for _, b := range boards {
		info := BoardInfo{ID: b.ID, Name: b.Name, Type: b.Type}
		if b.Location != nil {
			info.Project = b.Location.ProjectKey
		}
		result.Boards = append(result.Boards, info)
	}

	log.Info("boards listed", "count", len(result.Boards))
	fallback := fmt.Sprintf("Found %d agile boards", len(result.Boards))
	return mcp.NewToolResultStructured(result, fallback), nil
}

// BoardIssuesArgs parameters for listing board issues.
type BoardIssuesArgs struct {
	BoardID int      `json:"boardId" jsonschema:"required" jsonschema_description:"Agile board id"`
	JQL     string   `json:"jql,omitempty" jsonschema_description:"Optional JQL to narrow the board issues"`
	Fields  []string `json:"fields,omitempty" jsonschema_description:"Fields to return per issue"`
	StartAt int      `json:"startAt,omitempty" jsonschema_description:"Pagination offset" jsonschema:"minimum=0"`
	Limit   int      `json:"limit,omitempty" jsonschema_description:"Maximum number of issues to return" jsonschema:"minimum=1,maximum=100"`
	Expand  string   `json:"expand,omitempty" jsonschema_description:"Comma-separated expansions"`
	PAT     string   `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleGetBoardIssues(ctx context.Context, _ mcp.CallToolRequest, args BoardIssuesArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_board_issues")

	result, err := t.client.GetBoardIssues(ctx, args.BoardID, args.JQL, args.Fields, args.StartAt, args.Limit, args.Expand, args.PAT)
	if err != nil {
		log.Error("board issues failed", "board", args.BoardID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get board issues failed", err), nil
	}

	log.Info("board issues fetched", "board", args.BoardID, "matches", len(result.Issues))
	out := t.searchResult(result)
	fallback := fmt.Sprintf("Found %d issues on board %d", len(out.Issues), args.BoardID)
	return mcp.NewToolResultStructured(out, fallback), nil
}

// BoardSprintsArgs parameters for listing sprints.
type BoardSprintsArgs struct {
	BoardID int    `json:"boardId" jsonschema:"required" jsonschema_description:"Agile board id"`
	State   string `json:"state,omitempty" jsonschema_description:"Sprint state filter: active, future or closed"`
	StartAt int    `json:"startAt,omitempty" jsonschema_description:"Pagination offset" jsonschema:"minimum=0"`
	Limit   int    `json:"limit,omitempty" jsonschema_description:"Maximum number of sprints to return" jsonschema:"minimum=1,maximum=100"`
	PAT     string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// SprintInfo is one sprint entry.
type SprintInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	State     string `json:"state,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	Goal      string `json:"goal,omitempty"`
	BoardID   int    `json:"boardId,omitempty"`
}

// SprintListResult wraps the sprint list.
type SprintListResult struct {
	Sprints []SprintInfo `json:"sprints"`
}

func sprintInfo(s jira.Sprint) SprintInfo {
	return SprintInfo{
		ID:        s.ID,
		Name:      s.Name,
		State:     s.State,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		Goal:      s.Goal,
		BoardID:   s.OriginBoardID,
	}
}

func (t *Tools) handleGetSprintsFromBoard(ctx context.Context, _ mcp.CallToolRequest, args BoardSprintsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_sprints_from_board")

	sprints, err := t.client.GetSprintsFromBoard(ctx, args.BoardID, args.State, args.StartAt, args.Limit, args.PAT)
	if err != nil {
		log.Error("list sprints failed", "board", args.BoardID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get sprints failed", err), nil
	}

	result := SprintListResult{Sprints: make([]SprintInfo, 0, len(sprints))}
	for _, s := range sprints {
		result.Sprints = append(result.Sprints, sprintInfo(s))
	}

	log.Info("sprints listed", "board", args.BoardID, "count", len(result.Sprints))
	fallback := fmt.Sprintf("Found %d sprints on board %d", len(result.Sprints), args.BoardID)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// SprintIssuesArgs parameters for listing sprint issues.
type SprintIssuesArgs struct {
	SprintID int      `json:"sprintId" jsonschema:"required" jsonschema_description:"Sprint id"`
	Fields   []string `json:"fields,omitempty" jsonschema_description:"Fields to return per issue"`
	StartAt  int      `json:"startAt,omitempty" jsonschema_description:"Pagination offset" jsonschema:"minimum=0"`
	Limit    int      `json:"limit,omitempty" jsonschema_description:"Maximum number of issues to return" jsonschema:"minimum=1,maximum=100"`
	PAT      string   `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleGetSprintIssues(ctx context.Context, _ mcp.CallToolRequest, args SprintIssuesArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.get_sprint_issues")

	result, err := t.client.GetSprintIssues(ctx, args.SprintID, args.Fields, args.StartAt, args.Limit, args.PAT)
	if err != nil {
		log.Error("sprint issues failed", "sprint", args.SprintID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira get sprint issues failed", err), nil
	}

	log.Info("sprint issues fetched", "sprint", args.SprintID, "matches", len(result.Issues))
	out := t.searchResult(result)
	fallback := fmt.Sprintf("Found %d issues in sprint %d", len(out.Issues), args.SprintID)
	return mcp.NewToolResultStructured(out, fallback), nil
}

// CreateSprintArgs parameters for creating a sprint.
type CreateSprintArgs struct {
	BoardID   int    `json:"boardId" jsonschema:"required" jsonschema_description:"Board the sprint belongs to"`
	Name      string `json:"name" jsonschema:"required" jsonschema_description:"Sprint name"`
	StartDate string `json:"startDate,omitempty" jsonschema_description:"Planned start as ISO 8601 timestamp"`
	EndDate   string `json:"endDate,omitempty" jsonschema_description:"Planned end as ISO 8601 timestamp"`
	Goal      string `json:"goal,omitempty" jsonschema_description:"Sprint goal"`
	PAT       string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleCreateSprint(ctx context.Context, _ mcp.CallToolRequest, args CreateSprintArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.create_sprint")

	sprint, err := t.client.CreateSprint(ctx, jira.SprintInput{
		Name:          args.Name,
		OriginBoardID: args.BoardID,
		StartDate:     args.StartDate,
		EndDate:       args.EndDate,
		Goal:          args.Goal,
	}, args.PAT)
	if err != nil {
		log.Error("create sprint failed", "board", args.BoardID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira create sprint failed", err), nil
	}

	log.Info("sprint created", "sprint", sprint.ID, "board", args.BoardID)
	fallback := fmt.Sprintf("Created sprint %q on board %d", sprint.Name, args.BoardID)
	return mcp.NewToolResultStructured(sprintInfo(*sprint), fallback), nil
}

// UpdateSprintArgs parameters for updating a sprint.
type UpdateSprintArgs struct {
	SprintID  int     `json:"sprintId" jsonschema:"required" jsonschema_description:"Sprint id"`
	Name      *string `json:"name,omitempty" jsonschema_description:"New sprint name"`
	State     *string `json:"state,omitempty" jsonschema_description:"New state: active, future or closed"`
	StartDate *string `json:"startDate,omitempty" jsonschema_description:"New start as ISO 8601 timestamp"`
	EndDate   *string `json:"endDate,omitempty" jsonschema_description:"New end as ISO 8601 timestamp"`
	Goal      *string `json:"goal,omitempty" jsonschema_description:"New sprint goal"`
	PAT       string  `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

func (t *Tools) handleUpdateSprint(ctx context.Context, _ mcp.CallToolRequest, args UpdateSprintArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.update_sprint")

	updates := map[string]any{}
	if args.Name != nil {
		updates["name"] = *args.Name
	}
	if args.State != nil {
		updates["state"] = *args.State
	}
	if args.StartDate != nil {
		updates["startDate"] = *args.StartDate
	}
	if args.EndDate != nil {
		updates["endDate"] = *args.EndDate
	}
	if args.Goal != nil {
		updates["goal"] = *args.Goal
	}
	if len(updates) == 0 {
		return mcp.NewToolResultError("no sprint updates provided"), nil
	}

	sprint, err := t.client.UpdateSprint(ctx, args.SprintID, updates, args.PAT)
	if err != nil {
		log.Error("update sprint failed", "sprint", args.SprintID, "error", err)
		return mcp.NewToolResultErrorFromErr("jira update sprint failed", err), nil
	}

	log.Info("sprint updated", "sprint", sprint.ID)
	fallback := fmt.Sprintf("Updated sprint %d", sprint.ID)
	return mcp.NewToolResultStructured(sprintInfo(*sprint), fallback), nil
}
