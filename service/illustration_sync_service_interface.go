package service

import (
	"context"

	"astrobook/models"
)

// IllustrationSyncServiceInterface defines the contract for mirroring Drive illustrations locally
type IllustrationSyncServiceInterface interface {
	SyncAll(ctx context.Context, folderID, dir string) (models.IllustrationSyncResult, error)
}
