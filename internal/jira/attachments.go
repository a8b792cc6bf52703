package jira

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"gitlab.com/your-org/jira-mcp/internal/auth"
)

// downloadConcurrency bounds parallel attachment downloads.
const downloadConcurrency = 4

// DownloadedAttachment reports a successfully saved attachment.
type DownloadedAttachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// FailedAttachment reports an attachment that could not be saved.
type FailedAttachment struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// DownloadResult summarizes a bulk attachment download.
type DownloadResult struct {
	IssueKey   string                 `json:"issueKey"`
	Total      int                    `json:"total"`
	Downloaded []DownloadedAttachment `json:"downloaded"`
	Failed     []FailedAttachment     `json:"failed,omitempty"`
}

// DownloadIssueAttachments saves every attachment of an issue into
// targetDir. Downloads run concurrently; per-file failures are collected
// instead of aborting the rest.
func (c *Client) DownloadIssueAttachments(ctx context.Context, key, targetDir, pat string) (*DownloadResult, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	if strings.TrimSpace(targetDir) == "" {
		return nil, errors.New("jira: target directory is required")
	}

	issue, err := c.GetIssue(ctx, key, GetIssueOptions{Fields: []string{"attachment"}}, pat)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("jira: create target directory: %w", err)
	}

	dlctx := ctx
	if pat != "" {
		dlctx = auth.WithRequestToken(ctx, pat)
	}

	result := &DownloadResult{IssueKey: issue.Key, Total: len(issue.Fields.Attachment)}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(dlctx)
	g.SetLimit(downloadConcurrency)
	for _, att := range issue.Fields.Attachment {
		g.Go(func() error {
			name := sanitizeFilename(att.Filename)
			path := filepath.Join(targetDir, name)
			n, err := c.saveAttachment(gctx, att.Content, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, FailedAttachment{Filename: att.Filename, Error: err.Error()})
				return nil
			}
			result.Downloaded = append(result.Downloaded, DownloadedAttachment{Filename: att.Filename, Path: path, Size: n})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) saveAttachment(ctx context.Context, contentURL, path string) (int64, error) {
	if contentURL == "" {
		return 0, errors.New("attachment has no content url")
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := c.raw.Download(ctx, contentURL, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, err
	}
	return n, nil
}

// UploadAttachment attaches a file to an issue and returns the created
// attachment metadata.
func (c *Client) UploadAttachment(ctx context.Context, key, filename string, data []byte, pat string) ([]Attachment, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("jira: issue key is required")
	}
	filename = sanitizeFilename(filename)
	if filename == "" || filename == "." {
		return nil, errors.New("jira: filename is required")
	}

	upctx := ctx
	if pat != "" {
		upctx = auth.WithRequestToken(ctx, pat)
	}

	var created []Attachment
	path := "/" + c.api("issue", url.PathEscape(key), "attachments")
	if err := c.raw.UploadMultipart(upctx, path, filename, bytes.NewReader(data), &created); err != nil {
		return nil, err
	}
	return created, nil
}

// sanitizeFilename strips directory components so attachment names cannot
// escape the target directory.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	return filepath.Base(strings.TrimSpace(name))
}
