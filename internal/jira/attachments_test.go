package jira

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestDownloadIssueAttachments(t *testing.T) {
	t.Parallel()

	client, fake := newTestClient(t, cloudSettings())
	fake.responses = []fakeResponse{
		{status: 200, body: `{"key":"PROJ-1","fields":{"attachment":[
			{"id":"1","filename":"report.txt","size":11,"content":"https://test.atlassian.net/secure/attachment/1/report.txt"},
			{"id":"2","filename":"../escape.txt","content":"https://test.atlassian.net/secure/attachment/2/escape.txt"},
			{"id":"3","filename":"broken.txt","content":"https://test.atlassian.net/secure/attachment/3/broken.txt"}
		]}}`},
	}
	client.raw.SetTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.Path, "/1/"):
			return textResponse(200, "hello world"), nil
		case strings.Contains(req.URL.Path, "/2/"):
			return textResponse(200, "contained"), nil
		default:
			return textResponse(404, "gone"), nil
		}
	}))

	dir := t.TempDir()
	result, err := client.DownloadIssueAttachments(context.Background(), "PROJ-1", dir, "")
	if err != nil {
		t.Fatalf("DownloadIssueAttachments() error = %v", err)
	}
	if result.Total != 3 || len(result.Downloaded) != 2 || len(result.Failed) != 1 {
		t.Fatalf("result = %+v", result)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("file content = %q", data)
	}

	// The traversal attempt must land inside the target directory.
	if _, err := os.Stat(filepath.Join(dir, "escape.txt")); err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt")); err == nil {
		t.Fatal("attachment escaped the target directory")
	}
}

func TestDownloadIssueAttachmentsValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.DownloadIssueAttachments(context.Background(), "", t.TempDir(), ""); err == nil {
		t.Fatal("expected error for blank key")
	}
	if _, err := client.DownloadIssueAttachments(context.Background(), "PROJ-1", "", ""); err == nil {
		t.Fatal("expected error for blank target dir")
	}
}

func TestUploadAttachment(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())

	var gotPath, gotHeader string
	var gotBody []byte
	client.raw.SetTransport(roundTripFunc(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotHeader = req.Header.Get("X-Atlassian-Token")
		gotBody, _ = io.ReadAll(req.Body)
		return textResponse(200, `[{"id":"900","filename":"notes.md","size":5}]`), nil
	}))

	created, err := client.UploadAttachment(context.Background(), "PROJ-1", "notes.md", []byte("hello"), "")
	if err != nil {
		t.Fatalf("UploadAttachment() error = %v", err)
	}
	if len(created) != 1 || created[0].ID != "900" {
		t.Fatalf("UploadAttachment() = %+v", created)
	}
	if gotPath != "/rest/api/3/issue/PROJ-1/attachments" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotHeader != "no-check" {
		t.Fatalf("X-Atlassian-Token = %q", gotHeader)
	}
	if !bytes.Contains(gotBody, []byte("hello")) || !bytes.Contains(gotBody, []byte(`filename="notes.md"`)) {
		t.Fatalf("multipart body missing parts: %q", gotBody)
	}
}

func TestUploadAttachmentValidation(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, cloudSettings())
	if _, err := client.UploadAttachment(context.Background(), "", "f.txt", nil, ""); err == nil {
		t.Fatal("expected error for blank key")
	}
	if _, err := client.UploadAttachment(context.Background(), "PROJ-1", "  ", nil, ""); err == nil {
		t.Fatal("expected error for blank filename")
	}
}

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"report.txt", "report.txt"},
		{"../../etc/passwd", "passwd"},
		{"dir\\sub\\file.txt", "file.txt"},
		{" spaced.txt ", "spaced.txt"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
