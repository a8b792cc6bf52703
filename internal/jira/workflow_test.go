package jira

import (
	"context"
	"strings"
	"testing"
)

func TestGetTransitions(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"transitions":[{"id":"31","name":"Done","to":{"id":"5","name":"Done"}}]}`},
	}

	transitions, err := client.GetTransitions(context.Background(), "PROJ-1", "")
	if err != nil {
		t.Fatalf("GetTransitions() error = %v", err)
	}
	if len(transitions) != 1 || transitions[0].ID != "31" || transitions[0].To.Name != "Done" {
		t.Fatalf("GetTransitions() = %+v", transitions)
	}
	if fake.calls[0].endpoint != "rest/api/3/issue/PROJ-1/transitions" {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestTransitionIssue(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 204, body: ``},
		{status: 200, body: `{"key":"PROJ-1","fields":{"status":{"name":"Done"}}}`},
	}

	issue, err := client.TransitionIssue(context.Background(), "PROJ-1", "31",
		map[string]any{"resolution": map[string]any{"name": "Fixed"}}, "closing out", "")
	if err != nil {
		t.Fatalf("TransitionIssue() error = %v", err)
	}
	if issue.Fields.Status.Name != "Done" {
		t.Fatalf("TransitionIssue() = %+v", issue)
	}

	payload := fake.calls[0].payload.(map[string]any)
	transition := payload["transition"].(map[string]any)
	if transition["id"] != "31" {
		t.Fatalf("transition = %v", transition)
	}
	if _, ok := payload["fields"]; !ok {
		t.Fatal("payload missing fields")
	}
	update := payload["update"].(map[string]any)
	if _, ok := update["comment"]; !ok {
		t.Fatal("payload missing comment update")
	}
}

func TestTransitionIssueValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.TransitionIssue(context.Background(), "", "31", nil, nil, ""); err == nil {
		t.Fatal("TransitionIssue() expected error for blank key")
	}
	if _, err := client.TransitionIssue(context.Background(), "PROJ-1", "", nil, nil, ""); err == nil {
		t.Fatal("TransitionIssue() expected error for blank transition id")
	}
}

func TestGetWorklogs(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, serverSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"worklogs":[{"id":"100","timeSpent":"2h","timeSpentSeconds":7200}]}`},
	}

	worklogs, err := client.GetWorklogs(context.Background(), "PROJ-1", "")
	if err != nil {
		t.Fatalf("GetWorklogs() error = %v", err)
	}
	if len(worklogs) != 1 || worklogs[0].TimeSpentSeconds != 7200 {
		t.Fatalf("GetWorklogs() = %+v", worklogs)
	}
	if fake.calls[0].endpoint != "rest/api/2/issue/PROJ-1/worklog" {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestAddWorklog(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":"101","timeSpent":"30m"}`},
	}

	input := WorklogInput{TimeSpent: "30m", Comment: "standup", Started: "2026-08-30T09:00:00.000+0000"}
	worklog, err := client.AddWorklog(context.Background(), "PROJ-1", input, "")
	if err != nil {
		t.Fatalf("AddWorklog() error = %v", err)
	}
	if worklog.ID != "101" {
		t.Fatalf("AddWorklog() = %+v", worklog)
	}

	payload := fake.calls[0].payload.(map[string]any)
	if payload["timeSpent"] != "30m" || payload["started"] == nil {
		t.Fatalf("payload = %v", payload)
	}
	if _, ok := payload["comment"].(map[string]any); !ok {
		t.Fatalf("cloud worklog comment = %v, want document format", payload["comment"])
	}
}

func TestAddWorklogRequiresTimeSpent(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.AddWorklog(context.Background(), "PROJ-1", WorklogInput{}, ""); err == nil {
		t.Fatal("AddWorklog() expected error for missing timeSpent")
	}
}

func TestGetIssueLinkTypes(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"issueLinkTypes":[{"id":"10000","name":"Blocks","inward":"is blocked by","outward":"blocks"}]}`},
	}

	types, err := client.GetIssueLinkTypes(context.Background(), "")
	if err != nil {
		t.Fatalf("GetIssueLinkTypes() error = %v", err)
	}
	if len(types) != 1 || types[0].Outward != "blocks" {
		t.Fatalf("GetIssueLinkTypes() = %+v", types)
	}
	if fake.calls[0].endpoint != "rest/api/3/issueLinkType" {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestCreateIssueLink(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 201, body: ``}}

	input := LinkInput{TypeName: "Blocks", InwardKey: "PROJ-2", OutwardKey: "PROJ-1"}
	if err := client.CreateIssueLink(context.Background(), input, ""); err != nil {
		t.Fatalf("CreateIssueLink() error = %v", err)
	}

	payload := fake.calls[0].payload.(map[string]any)
	if payload["type"].(map[string]any)["name"] != "Blocks" {
		t.Fatalf("payload = %v", payload)
	}
	if payload["inwardIssue"].(map[string]any)["key"] != "PROJ-2" {
		t.Fatalf("payload = %v", payload)
	}
}

func TestCreateIssueLinkValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if err := client.CreateIssueLink(context.Background(), LinkInput{InwardKey: "A-1", OutwardKey: "B-1"}, ""); err == nil {
		t.Fatal("CreateIssueLink() expected error for missing type")
	}
	if err := client.CreateIssueLink(context.Background(), LinkInput{TypeName: "Blocks", InwardKey: "A-1"}, ""); err == nil {
		t.Fatal("CreateIssueLink() expected error for missing outward key")
	}
}

func TestGetUserProfileCloudSearch(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `[{"accountId":"abc123","displayName":"Dana Ops","emailAddress":"dana@example.com"}]`},
	}

	user, err := client.GetUserProfile(context.Background(), "dana@example.com", "")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if user.AccountID != "abc123" {
		t.Fatalf("GetUserProfile() = %+v", user)
	}
	if !strings.HasPrefix(fake.calls[0].endpoint, "rest/api/3/user/search?query=") {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestGetUserProfileCloudAccountID(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"accountId":"abc123","displayName":"Dana Ops"}`},
	}

	user, err := client.GetUserProfile(context.Background(), "accountid:abc123", "")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if user.AccountID != "abc123" {
		t.Fatalf("GetUserProfile() = %+v", user)
	}
	if !strings.Contains(fake.calls[0].endpoint, "user?accountId=abc123") {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestGetUserProfileCloudNotFound(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 200, body: `[]`}}

	if _, err := client.GetUserProfile(context.Background(), "nobody@example.com", ""); err == nil {
		t.Fatal("GetUserProfile() expected error for empty search result")
	}
}

func TestGetUserProfileServerUsername(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, serverSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"name":"dops","displayName":"Dana Ops"}`},
	}

	user, err := client.GetUserProfile(context.Background(), "dops", "")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if user.Name != "dops" {
		t.Fatalf("GetUserProfile() = %+v", user)
	}
	if !strings.Contains(fake.calls[0].endpoint, "rest/api/2/user?username=dops") {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}
