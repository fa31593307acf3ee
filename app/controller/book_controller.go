package controller

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/repository"
	"astrobook/service"
	"astrobook/viewer"
)

// BookController handles HTTP requests that build a whole book
type BookController struct {
	books service.BookServiceInterface
	users repository.UserDataRepositoryInterface
	log   *zap.Logger
}

// NewBookController creates a new BookController. users may be nil when no user store is configured.
func NewBookController(books service.BookServiceInterface, users repository.UserDataRepositoryInterface, log *zap.Logger) *BookController {
	return &BookController{
		books: books,
		users: users,
		log:   log,
	}
}

// GeneratePDF handles POST /books/pdf
// Body: {"scope": "all|preview|1,5,41", "pages": [1,5,41], "user": {...}} or {"userId": "..."}
func (c *BookController) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.log.Warn("❌ GeneratePDF: invalid request body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scope, err := req.ResolveScope()
	if err != nil {
		c.log.Warn("❌ GeneratePDF: invalid scope", zap.String("scope", req.Scope), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := resolveUser(r.Context(), c.users, req)
	if err != nil {
		writeError(w, c.log, "GeneratePDF", err)
		return
	}

	c.writePDF(w, r, scope, user)
}

// GenerateUserPDF handles GET /users/{userID}/book.pdf?scope=
func (c *BookController) GenerateUserPDF(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		http.Error(w, "userID is required", http.StatusBadRequest)
		return
	}

	scope, err := models.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		c.log.Warn("❌ GenerateUserPDF: invalid scope", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := resolveUser(r.Context(), c.users, models.BookRequest{UserID: userID})
	if err != nil {
		writeError(w, c.log, "GenerateUserPDF", err)
		return
	}

	c.writePDF(w, r, scope, user)
}

func (c *BookController) writePDF(w http.ResponseWriter, r *http.Request, scope models.Scope, user models.UserData) {
	result, err := c.books.GeneratePDF(r.Context(), scope, user)
	if err != nil {
		writeError(w, c.log, "GeneratePDF", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("X-Book-Pages", strconv.Itoa(result.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		c.log.Error("❌ GeneratePDF: error writing PDF response", zap.Error(err))
	}
}

// Preview handles POST /admin/books/preview and returns the interactive viewer document
func (c *BookController) Preview(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.log.Warn("❌ Preview: invalid request body", zap.Error(err))
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	scope, err := req.ResolveScope()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := resolveUser(r.Context(), c.users, req)
	if err != nil {
		writeError(w, c.log, "Preview", err)
		return
	}

	build, err := c.books.RenderInteractive(r.Context(), scope, user)
	if err != nil {
		writeError(w, c.log, "Preview", err)
		return
	}

	doc, err := viewer.RenderDocument(build.Rendered, viewer.DocumentOptions{Title: build.Title()})
	if err != nil {
		writeError(w, c.log, "Preview", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		c.log.Error("❌ Preview: error writing HTML response", zap.Error(err))
	}
}
