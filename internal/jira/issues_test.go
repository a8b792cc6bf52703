package jira

import (
	"context"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func TestGetIssueDefaultsFields(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"id":"10001","key":"PROJ-1","fields":{"summary":"Hello"}}`},
	}

	issue, err := client.GetIssue(context.Background(), "PROJ-1", GetIssueOptions{}, "")
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if issue.Key != "PROJ-1" || issue.Fields.Summary != "Hello" {
		t.Fatalf("GetIssue() = %+v", issue)
	}

	endpoint := fake.calls[0].endpoint
	if !strings.HasPrefix(endpoint, "rest/api/3/issue/PROJ-1?") {
		t.Fatalf("endpoint = %q", endpoint)
	}
	wantFields := url.QueryEscape(strings.Join(DefaultReadFields, ","))
	if !strings.Contains(endpoint, "fields="+wantFields) {
		t.Fatalf("endpoint %q missing default fields", endpoint)
	}
}

func TestGetIssueWildcardFields(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 200, body: `{"key":"PROJ-1"}`}}

	opts := GetIssueOptions{Fields: []string{"summary", "*all"}, Expand: "changelog"}
	if _, err := client.GetIssue(context.Background(), "PROJ-1", opts, ""); err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	endpoint := fake.calls[0].endpoint
	if !strings.Contains(endpoint, "fields="+url.QueryEscape("*all")) {
		t.Fatalf("endpoint %q missing *all", endpoint)
	}
	if !strings.Contains(endpoint, "expand=changelog") {
		t.Fatalf("endpoint %q missing expand", endpoint)
	}
}

func TestGetIssueWithComments(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"key":"PROJ-1","fields":{"summary":"Hello"}}`},
		{status: 200, body: `{"total":1,"comments":[{"id":"5","body":"first"}]}`},
	}

	issue, err := client.GetIssue(context.Background(), "PROJ-1", GetIssueOptions{CommentLimit: 5}, "")
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if issue.Fields.Comment == nil || len(issue.Fields.Comment.Comments) != 1 {
		t.Fatalf("comments not attached: %+v", issue.Fields.Comment)
	}
	if !strings.HasPrefix(fake.calls[1].endpoint, "rest/api/3/issue/PROJ-1/comment?") {
		t.Fatalf("comment endpoint = %q", fake.calls[1].endpoint)
	}
	if !strings.Contains(fake.calls[1].endpoint, "maxResults=5") {
		t.Fatalf("comment endpoint %q missing limit", fake.calls[1].endpoint)
	}
}

func TestGetIssueRequiresKey(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.GetIssue(context.Background(), "  ", GetIssueOptions{}, ""); err == nil {
		t.Fatal("GetIssue() expected error for blank key")
	}
}

func TestCreateIssueCloudWrapsDescription(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":"10002","key":"PROJ-2"}`},
		{status: 200, body: `{"id":"10002","key":"PROJ-2","fields":{"summary":"New"}}`},
	}

	input := IssueInput{
		ProjectKey:   "PROJ",
		IssueType:    "Task",
		Summary:      "New",
		Description:  "plain text",
		Labels:       []string{"infra"},
		CustomFields: map[string]any{"customfield_10020": 7},
	}
	issue, err := client.CreateIssue(context.Background(), input, "")
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if issue.Key != "PROJ-2" {
		t.Fatalf("CreateIssue() key = %q", issue.Key)
	}

	payload := fake.calls[0].payload.(map[string]any)
	fields := payload["fields"].(map[string]any)
	desc, ok := fields["description"].(map[string]any)
	if !ok || desc["type"] != "doc" {
		t.Fatalf("description = %v, want document format", fields["description"])
	}
	if fields["customfield_10020"] != 7 {
		t.Fatalf("custom field not passed through: %v", fields["customfield_10020"])
	}
}

func TestCreateIssueServerKeepsPlainDescription(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, serverSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":"1","key":"PROJ-3"}`},
		{status: 200, body: `{"id":"1","key":"PROJ-3"}`},
	}

	input := IssueInput{ProjectKey: "PROJ", IssueType: "Bug", Summary: "S", Description: "raw"}
	if _, err := client.CreateIssue(context.Background(), input, ""); err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	fields := fake.calls[0].payload.(map[string]any)["fields"].(map[string]any)
	if fields["description"] != "raw" {
		t.Fatalf("server description = %v, want raw string", fields["description"])
	}
}

func TestCreateIssueValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	tests := []IssueInput{
		{IssueType: "Task", Summary: "S"},
		{ProjectKey: "PROJ", Summary: "S"},
		{ProjectKey: "PROJ", IssueType: "Task"},
	}
	for _, input := range tests {
		if _, err := client.CreateIssue(context.Background(), input, ""); err == nil {
			t.Errorf("CreateIssue(%+v) expected error", input)
		}
	}
}

func TestBatchCreateIssuesReportsPerItem(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":"1","key":"PROJ-10"}`},
		{status: 200, body: `{"id":"1","key":"PROJ-10"}`},
	}

	inputs := []IssueInput{
		{ProjectKey: "PROJ", IssueType: "Task", Summary: "ok"},
		{ProjectKey: "PROJ", IssueType: "Task"},
	}
	results, err := client.BatchCreateIssues(context.Background(), inputs, "")
	if err != nil {
		t.Fatalf("BatchCreateIssues() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("BatchCreateIssues() returned %d results", len(results))
	}
	if results[0].Key != "PROJ-10" || results[0].Error != "" {
		t.Fatalf("first result = %+v", results[0])
	}
	if results[1].Error == "" {
		t.Fatalf("second result = %+v, want error", results[1])
	}
}

func TestUpdateIssueWrapsDescription(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 204, body: ``},
		{status: 200, body: `{"key":"PROJ-1","fields":{"summary":"Updated"}}`},
	}

	fields := map[string]any{"summary": "Updated", "description": "text"}
	issue, err := client.UpdateIssue(context.Background(), "PROJ-1", fields, "")
	if err != nil {
		t.Fatalf("UpdateIssue() error = %v", err)
	}
	if issue.Fields.Summary != "Updated" {
		t.Fatalf("UpdateIssue() = %+v", issue)
	}
	if fake.calls[0].method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", fake.calls[0].method)
	}
	sent := fake.calls[0].payload.(map[string]any)["fields"].(map[string]any)
	if _, ok := sent["description"].(map[string]any); !ok {
		t.Fatalf("description = %v, want document format", sent["description"])
	}
}

func TestDeleteIssue(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{{status: 204, body: ``}}

	if err := client.DeleteIssue(context.Background(), "PROJ-1", true, ""); err != nil {
		t.Fatalf("DeleteIssue() error = %v", err)
	}
	if fake.calls[0].method != http.MethodDelete {
		t.Fatalf("method = %s", fake.calls[0].method)
	}
	if !strings.Contains(fake.calls[0].endpoint, "deleteSubtasks=true") {
		t.Fatalf("endpoint = %q", fake.calls[0].endpoint)
	}
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, serverSettings())
	fake.responses = []fakeResponse{
		{status: 201, body: `{"id":"42","body":"note"}`},
	}

	comment, err := client.AddComment(context.Background(), "PROJ-1", "note", "")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.ID != "42" {
		t.Fatalf("AddComment() id = %q", comment.ID)
	}
	body := fake.calls[0].payload.(map[string]any)["body"]
	if body != "note" {
		t.Fatalf("server comment body = %v, want plain string", body)
	}
}

func TestNormalizeFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty uses defaults", nil, DefaultReadFields},
		{"wildcard wins", []string{"summary", "*all"}, []string{"*all"}},
		{"trims blanks", []string{" summary ", "", "status"}, []string{"summary", "status"}},
		{"all blank uses defaults", []string{"", "  "}, DefaultReadFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeFields(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("normalizeFields(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
