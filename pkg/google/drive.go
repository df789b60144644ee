package google

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// office types are missing from many system mime tables
var officeTypes = map[string]string{
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".txt":  "text/plain; charset=utf-8",
	".json": "application/json",
}

// ContentType guesses the mime type of a file from its extension.
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := officeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// DriveClient uploads files to Drive folders, shared drives included.
type DriveClient struct {
	svc    *drive.Service
	logger *zap.Logger
}

// NewDriveClient creates a DriveClient.
func NewDriveClient(ctx context.Context, logger *zap.Logger, opts ...option.ClientOption) (*DriveClient, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveClient{svc: svc, logger: logger}, nil
}

// Upload creates a new file in folderID with the content of path and returns
// the id of the created file.
func (c *DriveClient) Upload(ctx context.Context, folderID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	meta := &drive.File{Name: filepath.Base(path)}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	created, err := c.svc.Files.Create(meta).
		Media(f, googleapi.ContentType(ContentType(path))).
		SupportsAllDrives(true).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	c.logger.Debug("drive file created", zap.String("name", meta.Name), zap.String("id", created.Id))
	return created.Id, nil
}
