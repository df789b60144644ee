package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jhogstrom/ess-arbetsschema/internal/model"
	"github.com/jhogstrom/ess-arbetsschema/internal/repository"
)

// Uploader stores a local file in a remote folder and returns the remote id.
type Uploader interface {
	Upload(ctx context.Context, folderID, path string) (string, error)
}

// UploadResult counts the outcome of an upload run.
type UploadResult struct {
	Uploaded []string
	Skipped  []string
	Missing  []string
	Failed   []string
}

// UploadService uploads the generated files of a manifest.
type UploadService interface {
	UploadManifest(ctx context.Context, manifest *model.Manifest, force bool) (*UploadResult, error)
}

type uploadService struct {
	uploader Uploader
	history  repository.DispatchRepository
	logger   *zap.Logger
}

// NewUploadService creates an UploadService. history may be nil.
func NewUploadService(uploader Uploader, history repository.DispatchRepository, logger *zap.Logger) UploadService {
	return &uploadService{uploader: uploader, history: history, logger: logger}
}

// UploadManifest uploads every manifest file to its parent folder. Missing
// local files and failed uploads are logged and skipped. A file whose content
// was already uploaded is skipped unless force is set.
func (s *uploadService) UploadManifest(ctx context.Context, manifest *model.Manifest, force bool) (*UploadResult, error) {
	res := &UploadResult{}
	for _, date := range manifest.Dates() {
		for _, path := range manifest.Files[date] {
			sum, err := fileChecksum(path)
			if err != nil {
				s.logger.Error("file not found, not uploaded", zap.String("file", path), zap.Error(err))
				res.Missing = append(res.Missing, path)
				continue
			}

			if s.history != nil && !force {
				done, err := s.history.Exists(ctx, model.DispatchUpload, date, path, sum)
				if err != nil {
					return nil, fmt.Errorf("check upload history: %w", err)
				}
				if done {
					s.logger.Info("unchanged since last upload", zap.String("file", path))
					res.Skipped = append(res.Skipped, path)
					continue
				}
			}

			id, err := s.uploader.Upload(ctx, manifest.ParentFolderID, path)
			if err != nil {
				s.logger.Error("upload failed", zap.String("file", path), zap.Error(err))
				res.Failed = append(res.Failed, path)
				continue
			}
			s.logger.Info("file uploaded", zap.String("file", path), zap.String("id", id))
			res.Uploaded = append(res.Uploaded, path)

			if s.history != nil {
				d := &model.Dispatch{
					Kind:     model.DispatchUpload,
					Date:     date,
					Target:   path,
					RemoteID: id,
					Checksum: sum,
				}
				if err := s.history.Create(ctx, d); err != nil {
					s.logger.Error("record upload failed", zap.String("file", path), zap.Error(err))
				}
			}
		}
	}
	s.logger.Info("upload completed",
		zap.Int("uploaded", len(res.Uploaded)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("missing", len(res.Missing)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
