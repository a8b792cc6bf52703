package jira

import (
	"context"
	"strings"
	"testing"
)

func TestGetAgileBoardsPassesFilters(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"values":[{"id":1,"name":"OPS board","type":"scrum"}]}`},
	}

	boards, err := client.GetAgileBoards(context.Background(), BoardsOptions{ProjectKey: "OPS", Type: "scrum"}, 0, 10, "")
	if err != nil {
		t.Fatalf("GetAgileBoards() error = %v", err)
	}
	if len(boards) != 1 || boards[0].ID != 1 {
		t.Fatalf("GetAgileBoards() = %+v", boards)
	}
	endpoint := fake.calls[0].endpoint
	for _, part := range []string{"rest/agile/1.0/board?", "projectKeyOrId=OPS", "type=scrum", "maxResults=10"} {
		if !strings.Contains(endpoint, part) {
			t.Fatalf("endpoint %q missing %q", endpoint, part)
		}
	}
}

func TestGetAgileBoardsFuzzyName(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"values":[
			{"id":1,"name":"Payments board"},
			{"id":2,"name":"Platform Ops"},
			{"id":3,"name":"Design"}
		]}`},
	}

	boards, err := client.GetAgileBoards(context.Background(), BoardsOptions{Name: "payments"}, 0, 5, "")
	if err != nil {
		t.Fatalf("GetAgileBoards() error = %v", err)
	}
	if len(boards) == 0 || boards[0].ID != 1 {
		t.Fatalf("GetAgileBoards() = %+v, want Payments board first", boards)
	}
	if !strings.Contains(fake.calls[0].endpoint, "maxResults=100") {
		t.Fatalf("fuzzy lookup should fetch a wide page, endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestGetBoardIssues(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"total":1,"issues":[{"key":"OPS-1"}]}`},
	}

	result, err := client.GetBoardIssues(context.Background(), 7, "status = Open", nil, 0, 25, "", "")
	if err != nil {
		t.Fatalf("GetBoardIssues() error = %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("GetBoardIssues() = %+v", result)
	}
	endpoint := fake.calls[0].endpoint
	if !strings.HasPrefix(endpoint, "rest/agile/1.0/board/7/issue?") {
		t.Fatalf("endpoint = %q", endpoint)
	}
	if !strings.Contains(endpoint, "jql=status+%3D+Open") {
		t.Fatalf("endpoint %q missing jql", endpoint)
	}
}

func TestGetSprintsFromBoardState(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"values":[{"id":11,"name":"Sprint 4","state":"active"}]}`},
	}

	sprints, err := client.GetSprintsFromBoard(context.Background(), 7, "Active", 0, 10, "")
	if err != nil {
		t.Fatalf("GetSprintsFromBoard() error = %v", err)
	}
	if len(sprints) != 1 || sprints[0].ID != 11 {
		t.Fatalf("GetSprintsFromBoard() = %+v", sprints)
	}
	if !strings.Contains(fake.calls[0].endpoint, "state=active") {
		t.Fatalf("endpoint %q missing lowercased state", fake.calls[0].endpoint)
	}
}

func TestGetSprintIssues(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"total":2,"issues":[{"key":"OPS-1"},{"key":"OPS-2"}]}`},
	}

	result, err := client.GetSprintIssues(context.Background(), 11, nil, 0, 50, "")
	if err != nil {
		t.Fatalf("GetSprintIssues() error = %v", err)
	}
	if len(result.Issues) != 2 {
		t.Fatalf("GetSprintIssues() = %+v", result)
	}
	if !strings.HasPrefix(fake.calls[0].endpoint, "rest/agile/1.0/sprint/11/issue?") {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestCreateSprint(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":12,"name":"Sprint 5","state":"future","originBoardId":7}`},
	}

	sprint, err := client.CreateSprint(context.Background(), SprintInput{Name: "Sprint 5", OriginBoardID: 7}, "")
	if err != nil {
		t.Fatalf("CreateSprint() error = %v", err)
	}
	if sprint.ID != 12 || sprint.State != "future" {
		t.Fatalf("CreateSprint() = %+v", sprint)
	}
	if fake.calls[0].endpoint != "rest/agile/1.0/sprint" {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestCreateSprintValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.CreateSprint(context.Background(), SprintInput{Name: "X"}, ""); err == nil {
		t.Fatal("CreateSprint() expected error for missing board")
	}
	if _, err := client.CreateSprint(context.Background(), SprintInput{OriginBoardID: 7}, ""); err == nil {
		t.Fatal("CreateSprint() expected error for missing name")
	}
}

func TestUpdateSprint(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"id":12,"name":"Sprint 5","state":"closed"}`},
	}

	sprint, err := client.UpdateSprint(context.Background(), 12, map[string]any{"state": "closed"}, "")
	if err != nil {
		t.Fatalf("UpdateSprint() error = %v", err)
	}
	if sprint.State != "closed" {
		t.Fatalf("UpdateSprint() = %+v", sprint)
	}
	if fake.calls[0].endpoint != "rest/agile/1.0/sprint/12" {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
	if _, err := client.UpdateSprint(context.Background(), 12, nil, ""); err == nil {
		t.Fatal("UpdateSprint() expected error for empty updates")
	}
}
