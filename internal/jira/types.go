package jira

import "encoding/json"

// DefaultReadFields is the field set returned by read operations when the
// caller does not ask for specific fields.
var DefaultReadFields = []string{
	"summary",
	"description",
	"status",
	"assignee",
	"reporter",
	"labels",
	"priority",
	"created",
	"updated",
	"issuetype",
}

// User represents a Jira user. Cloud identifies users by account ID,
// Server/DC by username (the name field).
type User struct {
	AccountID   string `json:"accountId,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"emailAddress,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Active      bool   `json:"active,omitempty"`
	TimeZone    string `json:"timeZone,omitempty"`
}

// Status is a workflow status reference.
type Status struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// IssueType identifies the type of an issue.
type IssueType struct {
	Name    string `json:"name,omitempty"`
	Subtask bool   `json:"subtask,omitempty"`
}

// Priority is an issue priority reference.
type Priority struct {
	Name string `json:"name,omitempty"`
}

// Project represents a simplified Jira project.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Issue represents a simplified Jira issue payload.
type Issue struct {
	ID          string       `json:"id"`
	Key         string       `json:"key"`
	Fields      IssueFields  `json:"fields"`
	Changelog   *Changelogs  `json:"changelog,omitempty"`
	Transitions []Transition `json:"transitions,omitempty"`
}

// IssueFields reflect the subset of issue fields we surface.
type IssueFields struct {
	Summary     string       `json:"summary,omitempty"`
	Description any          `json:"description,omitempty"`
	Status      Status       `json:"status,omitempty"`
	IssueType   IssueType    `json:"issuetype,omitempty"`
	Priority    Priority     `json:"priority,omitempty"`
	Assignee    *User        `json:"assignee,omitempty"`
	Reporter    *User        `json:"reporter,omitempty"`
	Labels      []string     `json:"labels,omitempty"`
	Created     string       `json:"created,omitempty"`
	Updated     string       `json:"updated,omitempty"`
	DueDate     string       `json:"duedate,omitempty"`
	Project     *Project     `json:"project,omitempty"`
	Comment     *CommentPage `json:"comment,omitempty"`
	Attachment  []Attachment `json:"attachment,omitempty"`
}

// Comment is a single issue comment.
type Comment struct {
	ID      string `json:"id,omitempty"`
	Author  *User  `json:"author,omitempty"`
	Body    any    `json:"body,omitempty"`
	Created string `json:"created,omitempty"`
}

// CommentPage is a page of issue comments.
type CommentPage struct {
	StartAt    int       `json:"startAt"`
	MaxResults int       `json:"maxResults"`
	Total      int       `json:"total"`
	Comments   []Comment `json:"comments"`
}

// IssueInput represents fields for creating a new issue.
type IssueInput struct {
	ProjectKey   string         `json:"projectKey"`
	IssueType    string         `json:"issueType"`
	Summary      string         `json:"summary"`
	Description  any            `json:"description,omitempty"`
	ParentKey    string         `json:"parentKey,omitempty"`
	AssigneeID   string         `json:"assigneeId,omitempty"`
	ReporterID   string         `json:"reporterId,omitempty"`
	PriorityName string         `json:"priorityName,omitempty"`
	Labels       []string       `json:"labels,omitempty"`
	DueDate      string         `json:"dueDate,omitempty"`
	CustomFields map[string]any `json:"customFields,omitempty"`
}

// SearchRequest defines parameters for JQL searches.
type SearchRequest struct {
	JQL            string
	Fields         []string
	Limit          int
	StartAt        int
	Expand         string
	ProjectsFilter []string
}

// SearchResult represents a page of matching issues.
type SearchResult struct {
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Issues     []Issue `json:"issues"`
}

// Transition represents a workflow transition available to an issue.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	To   Status `json:"to"`
}

// Board represents an agile board.
type Board struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Location *BoardLocation `json:"location,omitempty"`
}

// BoardLocation ties a board to its project.
type BoardLocation struct {
	ProjectKey  string `json:"projectKey,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Sprint represents an agile sprint.
type Sprint struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	State         string `json:"state,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	CompleteDate  string `json:"completeDate,omitempty"`
	Goal          string `json:"goal,omitempty"`
	OriginBoardID int    `json:"originBoardId,omitempty"`
}

// SprintInput holds fields for creating a sprint.
type SprintInput struct {
	Name          string `json:"name"`
	OriginBoardID int    `json:"originBoardId"`
	StartDate     string `json:"startDate,omitempty"`
	EndDate       string `json:"endDate,omitempty"`
	Goal          string `json:"goal,omitempty"`
}

// Worklog is a single worklog entry on an issue.
type Worklog struct {
	ID               string `json:"id,omitempty"`
	Author           *User  `json:"author,omitempty"`
	Comment          any    `json:"comment,omitempty"`
	Started          string `json:"started,omitempty"`
	TimeSpent        string `json:"timeSpent,omitempty"`
	TimeSpentSeconds int    `json:"timeSpentSeconds,omitempty"`
}

// WorklogInput holds fields for adding a worklog entry.
type WorklogInput struct {
	TimeSpent string `json:"timeSpent"`
	Comment   any    `json:"comment,omitempty"`
	Started   string `json:"started,omitempty"`
}

// Attachment describes a file attached to an issue. Content is the URL the
// attachment bytes can be fetched from.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	Filename string `json:"filename"`
	Author   *User  `json:"author,omitempty"`
	Created  string `json:"created,omitempty"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Field describes a field definition from the Jira field catalog.
type Field struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Custom bool         `json:"custom,omitempty"`
	Schema *FieldSchema `json:"schema,omitempty"`
}

// FieldSchema describes the value type of a field.
type FieldSchema struct {
	Type   string `json:"type,omitempty"`
	Custom string `json:"custom,omitempty"`
}

// IssueLinkType describes a link relation between issues.
type IssueLinkType struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

// LinkInput holds fields for linking two issues.
type LinkInput struct {
	TypeName   string `json:"typeName"`
	InwardKey  string `json:"inwardKey"`
	OutwardKey string `json:"outwardKey"`
	Comment    any    `json:"comment,omitempty"`
}

// ChangeItem is a single field change within a changelog entry.
type ChangeItem struct {
	Field      string `json:"field"`
	FromString string `json:"fromString,omitempty"`
	ToString   string `json:"toString,omitempty"`
}

// Changelog is one history entry on an issue.
type Changelog struct {
	ID      string       `json:"id,omitempty"`
	Author  *User        `json:"author,omitempty"`
	Created string       `json:"created,omitempty"`
	Items   []ChangeItem `json:"items,omitempty"`
}

// Changelogs is a page of history entries embedded in an issue payload.
type Changelogs struct {
	StartAt    int         `json:"startAt"`
	MaxResults int         `json:"maxResults"`
	Total      int         `json:"total"`
	Histories  []Changelog `json:"histories"`
}

// IssueChangelogs groups changelog entries for one issue in a batch fetch.
type IssueChangelogs struct {
	IssueID    string      `json:"issueId"`
	Changelogs []Changelog `json:"changelogs"`
}

// remarshal converts loosely decoded JSON values into typed structures.
func remarshal(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
