package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"astrobook/app/controller"
)

// Controllers groups the HTTP handlers. Illustration is nil when Drive is not configured.
type Controllers struct {
	Catalog      *controller.CatalogController
	Book         *controller.BookController
	Viewer       *controller.ViewerController
	Illustration *controller.IllustrationController
}

// Options tunes the router
type Options struct {
	// PDFRateLimit is the number of PDF requests allowed per client IP per minute
	PDFRateLimit int
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request with zap
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("🌐 HTTP request",
					zap.String("requestId", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// New builds the HTTP handler
func New(controllers *Controllers, opts Options, log *zap.Logger) http.Handler {
	if opts.PDFRateLimit < 1 {
		opts.PDFRateLimit = 10
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	// Ping endpoint
	r.Get("/ping", pingHandler)

	// Catalog
	r.Get("/pages", controllers.Catalog.GetPages)

	// PDF generation starts a browser per request
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(opts.PDFRateLimit, time.Minute))
		r.Post("/books/pdf", controllers.Book.GeneratePDF)
		r.Get("/users/{userID}/book.pdf", controllers.Book.GenerateUserPDF)
	})

	// Admin
	r.Route("/admin", func(r chi.Router) {
		r.Post("/books/preview", controllers.Book.Preview)
		if controllers.Illustration != nil {
			r.Post("/illustrations/sync", controllers.Illustration.Sync)
		}
	})

	// Viewer sessions
	r.Route("/viewer/sessions", func(r chi.Router) {
		r.Post("/", controllers.Viewer.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", controllers.Viewer.ShowSession)
			r.Delete("/", controllers.Viewer.CloseSession)
			r.Get("/state", controllers.Viewer.GetState)
			r.Post("/jump", controllers.Viewer.Jump)
			r.Post("/next", controllers.Viewer.Next)
			r.Post("/prev", controllers.Viewer.Prev)
			r.Post("/viewport", controllers.Viewer.ReportViewport)
		})
	})

	return r
}
