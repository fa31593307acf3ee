package service

import (
	"context"

	"astrobook/models"
)

// DriveServiceInterface defines the contract for Google Drive operations
type DriveServiceInterface interface {
	ListIllustrations(ctx context.Context, folderID string) ([]models.IllustrationFile, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
