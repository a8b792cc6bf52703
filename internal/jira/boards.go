package jira

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// BoardsOptions filter the agile board listing.
type BoardsOptions struct {
	// Name fuzzily matches board names client-side.
	Name string
	// ProjectKey restricts boards to one project.
	ProjectKey string
	// Type restricts by board type, "scrum" or "kanban".
	Type string
}

type boardPage struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Values     []Board `json:"values"`
}

// GetAgileBoards lists agile boards. When a name is given a wider page is
// fetched and ranked fuzzily so near-matches still surface.
func (c *Client) GetAgileBoards(ctx context.Context, opts BoardsOptions, startAt, limit int, pat string) ([]Board, error) {
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	if opts.ProjectKey != "" {
		params.Set("projectKeyOrId", opts.ProjectKey)
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.Name == "" {
		params.Set("startAt", strconv.Itoa(startAt))
		params.Set("maxResults", strconv.Itoa(limit))
	} else {
		params.Set("startAt", "0")
		params.Set("maxResults", "100")
	}

	var page boardPage
	endpoint := agilePath("board") + "?" + params.Encode()
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	if opts.Name == "" {
		return page.Values, nil
	}

	names := make([]string, len(page.Values))
	for i, b := range page.Values {
		names[i] = b.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(opts.Name, names)
	sort.Sort(ranks)

	matched := make([]Board, 0, limit)
	for _, r := range ranks {
		matched = append(matched, page.Values[r.OriginalIndex])
		if len(matched) == limit {
			break
		}
	}
	return matched, nil
}

// GetBoardIssues returns issues on a board, optionally narrowed by JQL.
func (c *Client) GetBoardIssues(ctx context.Context, boardID int, jql string, fields []string, startAt, limit int, expand, pat string) (*SearchResult, error) {
	if boardID <= 0 {
		return nil, errors.New("jira: board id is required")
	}
	endpoint := agilePath("board", strconv.Itoa(boardID), "issue")
	return c.agileIssues(ctx, endpoint, jql, fields, startAt, limit, expand, pat)
}

// GetSprintsFromBoard lists the sprints of a board, optionally filtered by
// state ("active", "future" or "closed").
func (c *Client) GetSprintsFromBoard(ctx context.Context, boardID int, state string, startAt, limit int, pat string) ([]Sprint, error) {
	if boardID <= 0 {
		return nil, errors.New("jira: board id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(limit))
	if state = strings.TrimSpace(state); state != "" {
		params.Set("state", strings.ToLower(state))
	}

	var page struct {
		Values []Sprint `json:"values"`
	}
	endpoint := agilePath("board", strconv.Itoa(boardID), "sprint") + "?" + params.Encode()
	if err := c.call(ctx, pat, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Values, nil
}

// GetSprintIssues returns the issues of one sprint.
func (c *Client) GetSprintIssues(ctx context.Context, sprintID int, fields []string, startAt, limit int, pat string) (*SearchResult, error) {
	if sprintID <= 0 {
		return nil, errors.New("jira: sprint id is required")
	}
	endpoint := agilePath("sprint", strconv.Itoa(sprintID), "issue")
	return c.agileIssues(ctx, endpoint, "", fields, startAt, limit, "", pat)
}

func (c *Client) agileIssues(ctx context.Context, endpoint, jql string, fields []string, startAt, limit int, expand, pat string) (*SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}
	params := url.Values{}
	params.Set("startAt", strconv.Itoa(startAt))
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("fields", strings.Join(normalizeFields(fields), ","))
	if jql != "" {
		params.Set("jql", jql)
	}
	if expand != "" {
		params.Set("expand", expand)
	}

	var result SearchResult
	if err := c.call(ctx, pat, http.MethodGet, endpoint+"?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSprint creates a future sprint on a board.
func (c *Client) CreateSprint(ctx context.Context, input SprintInput, pat string) (*Sprint, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, errors.New("jira: sprint name is required")
	}
	if input.OriginBoardID <= 0 {
		return nil, errors.New("jira: origin board id is required")
	}

	var sprint Sprint
	if err := c.call(ctx, pat, http.MethodPost, agilePath("sprint"), input, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// UpdateSprint partially updates a sprint. Only the provided fields change;
// moving State to "closed" completes the sprint.
func (c *Client) UpdateSprint(ctx context.Context, sprintID int, updates map[string]any, pat string) (*Sprint, error) {
	if sprintID <= 0 {
		return nil, errors.New("jira: sprint id is required")
	}
	if len(updates) == 0 {
		return nil, errors.New("jira: no sprint fields to update")
	}

	var sprint Sprint
	endpoint := agilePath("sprint", strconv.Itoa(sprintID))
	if err := c.call(ctx, pat, http.MethodPost, endpoint, updates, &sprint); err != nil {
		return nil, err
	}
	return &sprint, nil
}
