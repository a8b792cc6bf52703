package mcp

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (t *Tools) registerAttachmentTools(s *server.MCPServer, readOnly bool) {
	s.AddTool(
		mcp.NewTool(
			"jira.download_attachments",
			mcp.WithDescription("Download all attachments of an issue into a local directory"),
			mcp.WithInputSchema[DownloadAttachmentsArgs](),
			mcp.WithOutputSchema[DownloadAttachmentsResult](),
		),
		mcp.NewTypedToolHandler(t.handleDownloadAttachments),
	)

	if readOnly {
		return
	}

	s.AddTool(
		mcp.NewTool(
			"jira.upload_attachment",
			mcp.WithDescription("Upload a file to a Jira issue"),
			mcp.WithInputSchema[UploadAttachmentArgs](),
			mcp.WithOutputSchema[UploadAttachmentResult](),
		),
		mcp.NewTypedToolHandler(t.handleUploadAttachment),
	)
}

// DownloadAttachmentsArgs parameters for bulk downloads.
type DownloadAttachmentsArgs struct {
	Key       string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	TargetDir string `json:"targetDir" jsonschema:"required" jsonschema_description:"Local directory to save attachments into, created if missing"`
	PAT       string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// DownloadedFile reports one saved attachment.
type DownloadedFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// FailedFile reports one attachment that could not be saved.
type FailedFile struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// DownloadAttachmentsResult summarizes the bulk download.
type DownloadAttachmentsResult struct {
	IssueKey   string           `json:"issueKey"`
	Total      int              `json:"total"`
	Downloaded []DownloadedFile `json:"downloaded"`
	Failed     []FailedFile     `json:"failed,omitempty"`
}

func (t *Tools) handleDownloadAttachments(ctx context.Context, _ mcp.CallToolRequest, args DownloadAttachmentsArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.download_attachments")

	res, err := t.client.DownloadIssueAttachments(ctx, args.Key, args.TargetDir, args.PAT)
	if err != nil {
		log.Error("download attachments failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira download attachments failed", err), nil
	}

	result := DownloadAttachmentsResult{IssueKey: res.IssueKey, Total: res.Total}
	for _, d := range res.Downloaded {
		result.Downloaded = append(result.Downloaded, DownloadedFile{Filename: d.Filename, Path: d.Path, Size: d.Size})
	}
	for _, f := range res.Failed {
		result.Failed = append(result.Failed, FailedFile{Filename: f.Filename, Error: f.Error})
	}

	log.Info("attachments downloaded", "key", args.Key, "saved", len(result.Downloaded), "failed", len(result.Failed))
	fallback := fmt.Sprintf("Saved %d of %d attachments from %s", len(result.Downloaded), result.Total, args.Key)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// UploadAttachmentArgs parameters for uploading a file.
type UploadAttachmentArgs struct {
	Key      string `json:"key" jsonschema:"required" jsonschema_description:"Issue key"`
	FileName string `json:"fileName" jsonschema:"required" jsonschema_description:"Attachment file name"`
	Data     string `json:"data" jsonschema:"required" jsonschema_description:"Base64-encoded file contents"`
	PAT      string `json:"pat,omitempty" jsonschema_description:"Personal access token to use for this request instead of the configured credentials"`
}

// UploadedAttachment describes one created attachment.
type UploadedAttachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Size     int64  `json:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// UploadAttachmentResult wraps the upload response.
type UploadAttachmentResult struct {
	Attachments []UploadedAttachment `json:"attachments"`
}

func (t *Tools) handleUploadAttachment(ctx context.Context, _ mcp.CallToolRequest, args UploadAttachmentArgs) (*mcp.CallToolResult, error) {
	log := t.logCall("jira.upload_attachment")

	data, err := base64.StdEncoding.DecodeString(args.Data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid base64 data: %v", err)), nil
	}

	created, err := t.client.UploadAttachment(ctx, args.Key, args.FileName, data, args.PAT)
	if err != nil {
		log.Error("upload attachment failed", "key", args.Key, "error", err)
		return mcp.NewToolResultErrorFromErr("jira upload attachment failed", err), nil
	}

	result := UploadAttachmentResult{Attachments: make([]UploadedAttachment, 0, len(created))}
	for _, a := range created {
		result.Attachments = append(result.Attachments, UploadedAttachment{
			ID:       a.ID,
			Filename: a.Filename,
			Size:     a.Size,
			MimeType: a.MimeType,
		})
	}

	log.Info("attachment uploaded", "key", args.Key, "file", args.FileName)
	fallback := fmt.Sprintf("Uploaded %s to %s", args.FileName, args.Key)
	return mcp.NewToolResultStructured(result, fallback), nil
}
