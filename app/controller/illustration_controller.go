package controller

import (
	"net/http"

	"go.uber.org/zap"

	"astrobook/service"
)

// IllustrationController handles HTTP requests for illustration maintenance
type IllustrationController struct {
	syncService service.IllustrationSyncServiceInterface
	folderID    string
	dir         string
	log         *zap.Logger
}

// NewIllustrationController creates a new IllustrationController
func NewIllustrationController(syncService service.IllustrationSyncServiceInterface, folderID, dir string, log *zap.Logger) *IllustrationController {
	return &IllustrationController{
		syncService: syncService,
		folderID:    folderID,
		dir:         dir,
		log:         log,
	}
}

// Sync handles POST /admin/illustrations/sync
// Downloads every illustration of the Drive folder, optimizes it and saves it to the local directory
func (c *IllustrationController) Sync(w http.ResponseWriter, r *http.Request) {
	c.log.Info("📥 Illustration sync requested", zap.String("folderId", c.folderID))

	result, err := c.syncService.SyncAll(r.Context(), c.folderID, c.dir)
	if err != nil {
		c.log.Error("❌ Illustration sync failed", zap.Error(err))
		http.Error(w, "Failed to sync illustrations", http.StatusInternalServerError)
		return
	}

	writeJSON(w, c.log, http.StatusOK, map[string]interface{}{
		"status": "success",
		"result": result,
	})

	c.log.Info("✅ Illustration sync request completed",
		zap.Int("downloaded", result.Downloaded),
		zap.Int("total", result.Total))
}
