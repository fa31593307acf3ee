package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"astrobook/models"
)

// IllustrationSyncService downloads illustrations from Google Drive, optimizes them
// and saves them to a local directory that a LocalIllustrationSource can serve.
// Implements IllustrationSyncServiceInterface
type IllustrationSyncService struct {
	driveService DriveServiceInterface
	log          *zap.Logger
}

// NewIllustrationSyncService creates a new IllustrationSyncService instance
func NewIllustrationSyncService(driveService DriveServiceInterface, log *zap.Logger) *IllustrationSyncService {
	return &IllustrationSyncService{
		driveService: driveService,
		log:          log,
	}
}

// Ensure IllustrationSyncService implements IllustrationSyncServiceInterface
var _ IllustrationSyncServiceInterface = (*IllustrationSyncService)(nil)

// SyncAll mirrors every image of a Drive folder into dir as optimized JPEG.
// Files already present on disk are skipped. Per-file failures are collected
// in the result; only listing or directory failures abort the run.
func (s *IllustrationSyncService) SyncAll(ctx context.Context, folderID, dir string) (models.IllustrationSyncResult, error) {
	s.log.Info("📥 Starting illustration sync", zap.String("folderId", folderID), zap.String("dir", dir))

	var result models.IllustrationSyncResult

	if err := os.MkdirAll(dir, 0755); err != nil {
		return result, fmt.Errorf("failed to create illustrations directory: %w", err)
	}

	files, err := s.driveService.ListIllustrations(ctx, folderID)
	if err != nil {
		return result, fmt.Errorf("failed to list illustrations from Drive: %w", err)
	}
	result.Total = len(files)
	s.log.Info("📦 Found illustrations to sync", zap.Int("count", len(files)))

	// Track used file names to avoid duplicates
	usedFileNames := make(map[string]bool)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		base := illustrationBaseName(file.Name)
		if !validIllustrationName(base) {
			msg := fmt.Sprintf("rejected illustration name %q (%s)", file.Name, file.ID)
			s.log.Warn("⚠️  " + msg)
			result.Errors = append(result.Errors, msg)
			continue
		}
		fileName := base + ".jpg"
		filePath := filepath.Join(dir, fileName)

		if _, err := os.Stat(filePath); err == nil {
			s.log.Debug("⏭️  Skipping illustration (already exists on disk)", zap.String("file", fileName))
			result.Skipped++
			continue
		}

		if usedFileNames[fileName] {
			s.log.Debug("⏭️  Skipping illustration (duplicate filename in this run)", zap.String("file", fileName))
			result.Skipped++
			continue
		}
		usedFileNames[fileName] = true

		raw, err := s.driveService.DownloadFile(ctx, file.ID)
		if err != nil {
			msg := fmt.Sprintf("failed to download %s (%s): %v", fileName, file.ID, err)
			s.log.Error("❌ "+msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		optimized, err := OptimizeImage(s.log, raw, SizePage)
		if err != nil {
			msg := fmt.Sprintf("failed to optimize %s (%s): %v", fileName, file.ID, err)
			s.log.Error("❌ "+msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		if err := os.WriteFile(filePath, optimized, 0644); err != nil {
			msg := fmt.Sprintf("failed to save %s: %v", fileName, err)
			s.log.Error("❌ "+msg)
			result.Errors = append(result.Errors, msg)
			continue
		}

		s.log.Debug("✓ Illustration saved", zap.String("path", filePath))
		result.Downloaded++
	}

	s.log.Info("🎉 Illustration sync completed",
		zap.Int("downloaded", result.Downloaded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Errors)),
		zap.Int("total", result.Total))
	return result, nil
}
