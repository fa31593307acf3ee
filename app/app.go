package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"astrobook/app/controller"
	"astrobook/app/router"
	"astrobook/config"
	"astrobook/db"
	"astrobook/renderer"
	"astrobook/repository"
	"astrobook/service"
	"astrobook/viewer"
)

// App holds the wired components of the service
type App struct {
	Config  *config.Config
	Catalog *repository.TemplateCatalog
	Books   *service.BookService
	// Users is nil when no database is configured
	Users repository.UserDataRepositoryInterface
	// Drive is nil when no Drive folder is configured
	Drive       *service.DriveService
	SyncService *service.IllustrationSyncService
	Sessions    *viewer.SessionStore

	conn *sql.DB
	log  *zap.Logger
}

// New initializes the application
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	a := &App{Config: cfg, log: log}

	catalog, err := repository.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load page catalog: %w", err)
	}
	a.Catalog = catalog

	registry, err := renderer.DefaultRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load page renderers: %w", err)
	}
	for _, id := range catalog.TemplateIDs() {
		if !registry.Has(id) {
			log.Warn("⚠️  Catalog template has no renderer, builds including it will fail", zap.String("templateId", id))
		}
	}

	if cfg.DatabaseConfigured() {
		conn, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.conn = conn
		a.Users = repository.NewUserDataRepository(conn, cfg.DBDriver, log)
	} else {
		log.Info("ℹ️  No database configured, books are built from inline user data only")
	}

	if cfg.DriveFolderID != "" {
		drive, err := service.NewDriveService(ctx, cfg.DriveCredentialsPath, log)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Drive = drive
		a.SyncService = service.NewIllustrationSyncService(drive, log)
	}

	var resolver service.IllustrationResolver
	switch {
	case cfg.IllustrationsDir != "":
		resolver = service.NewCachedIllustrationResolver(
			service.NewLocalIllustrationSource(cfg.IllustrationsDir), cfg.IllustrationCacheTTL, log)
		log.Info("🖼️  Illustrations served from directory", zap.String("dir", cfg.IllustrationsDir))
	case a.Drive != nil:
		resolver = service.NewCachedIllustrationResolver(
			service.NewDriveIllustrationSource(a.Drive, cfg.DriveFolderID, cfg.IllustrationCacheTTL, log), cfg.IllustrationCacheTTL, log)
		log.Info("🖼️  Illustrations served from Google Drive", zap.String("folderId", cfg.DriveFolderID))
	default:
		log.Warn("⚠️  No illustration source configured, pages render without illustrations")
	}

	loader := service.NewContentLoader(catalog, resolver, cfg.LoaderWorkers, log)
	pdf := service.NewPDFService(service.NewChromeBrowser(cfg.ChromePath, log), cfg.PDFTimeout, log)
	a.Books = service.NewBookService(catalog, loader, registry, pdf, log)
	a.Sessions = viewer.NewSessionStore(cfg.ViewerSessionTTL, viewer.DefaultDebounce, log)

	return a, nil
}

// Handler builds the HTTP handler
func (a *App) Handler() http.Handler {
	controllers := &router.Controllers{
		Catalog: controller.NewCatalogController(a.Catalog, a.log),
		Book:    controller.NewBookController(a.Books, a.Users, a.log),
		Viewer:  controller.NewViewerController(a.Books, a.Users, a.Sessions, a.log),
	}
	if a.SyncService != nil {
		dir := a.Config.IllustrationsDir
		if dir == "" {
			dir = "illustrations"
		}
		controllers.Illustration = controller.NewIllustrationController(a.SyncService, a.Config.DriveFolderID, dir, a.log)
	}
	return router.New(controllers, router.Options{PDFRateLimit: a.Config.PDFRateLimit}, a.log)
}

// Close releases the database connection
func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	if err := a.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	a.log.Info("✓ Database connection closed")
	return nil
}
