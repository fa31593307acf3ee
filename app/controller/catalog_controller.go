package controller

import (
	"net/http"

	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/repository"
)

// CatalogController handles HTTP requests about the page catalog
type CatalogController struct {
	catalog repository.TemplateCatalogInterface
	log     *zap.Logger
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalog repository.TemplateCatalogInterface, log *zap.Logger) *CatalogController {
	return &CatalogController{
		catalog: catalog,
		log:     log,
	}
}

// GetPages handles GET /pages[?scope=preview|1,5,41]
// Without a scope it returns the catalog summary; with one, the resolved page set.
func (c *CatalogController) GetPages(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("scope")
	if raw == "" {
		writeJSON(w, c.log, http.StatusOK, c.catalog.Summary())
		return
	}

	scope, err := models.ParseScope(raw)
	if err != nil {
		c.log.Warn("❌ GetPages: invalid scope", zap.String("scope", raw), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	set, err := c.catalog.GetAvailablePages(scope)
	if err != nil {
		writeError(w, c.log, "GetPages", err)
		return
	}

	writeJSON(w, c.log, http.StatusOK, map[string]interface{}{
		"scope": scope.String(),
		"pages": set,
		"total": len(set),
	})
}
