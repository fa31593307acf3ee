package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/repository"
	"astrobook/service"
	"astrobook/viewer"
)

// ViewerController handles HTTP requests for interactive viewer sessions
type ViewerController struct {
	books    service.BookServiceInterface
	users    repository.UserDataRepositoryInterface
	sessions *viewer.SessionStore
	log      *zap.Logger
}

// NewViewerController creates a new ViewerController. users may be nil.
func NewViewerController(
	books service.BookServiceInterface,
	users repository.UserDataRepositoryInterface,
	sessions *viewer.SessionStore,
	log *zap.Logger,
) *ViewerController {
	return &ViewerController{
		books:    books,
		users:    users,
		sessions: sessions,
		log:      log,
	}
}

type jumpRequest struct {
	Page int `json:"page"`
}

type viewportRequest struct {
	ViewportHeight float64       `json:"viewportHeight"`
	Rects          []viewer.Rect `json:"rects"`
}

type sessionResponse struct {
	ID       string                  `json:"id"`
	URL      string                  `json:"url"`
	Pages    models.AvailablePageSet `json:"pages"`
	State    viewer.Snapshot         `json:"state"`
	Defaults []models.Token          `json:"defaultedTokens,omitempty"`
}

type navigationResponse struct {
	Moved bool            `json:"moved"`
	State viewer.Snapshot `json:"state"`
}

func sessionURL(id string) string {
	return "/viewer/sessions/" + id
}

// CreateSession handles POST /viewer/sessions
func (c *ViewerController) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.BookRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.log.Warn("❌ CreateSession: invalid request body", zap.Error(err))
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
		writeError(w, c.log, "CreateSession", err)
		return
	}

	build, err := c.books.RenderInteractive(r.Context(), scope, user)
	if err != nil {
		writeError(w, c.log, "CreateSession", err)
		return
	}

	session, err := c.sessions.Create(build.Title(), build.Rendered)
	if err != nil {
		writeError(w, c.log, "CreateSession", err)
		return
	}

	writeJSON(w, c.log, http.StatusCreated, sessionResponse{
		ID:       session.ID,
		URL:      sessionURL(session.ID),
		Pages:    session.Navigator.Pages(),
		State:    session.Navigator.Snapshot(),
		Defaults: build.Fallbacks.Tokens(),
	})
}

// session loads the {sessionID} of the route or answers 404
func (c *ViewerController) session(w http.ResponseWriter, r *http.Request) (*viewer.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	session, ok := c.sessions.Get(id)
	if !ok {
		http.Error(w, "Viewer session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

// ShowSession handles GET /viewer/sessions/{sessionID}
func (c *ViewerController) ShowSession(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	doc, err := session.Document(sessionURL(session.ID) + "/jump")
	if err != nil {
		c.log.Error("❌ ShowSession: failed to render viewer", zap.String("sessionId", session.ID), zap.Error(err))
		http.Error(w, "Failed to render viewer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		c.log.Error("❌ ShowSession: error writing HTML response", zap.Error(err))
	}
}

// GetState handles GET /viewer/sessions/{sessionID}/state
func (c *ViewerController) GetState(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, c.log, http.StatusOK, session.Navigator.Snapshot())
}

// Jump handles POST /viewer/sessions/{sessionID}/jump
// Pages outside the session's set leave the current page unchanged.
func (c *ViewerController) Jump(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	var req jumpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	moved := session.Navigator.Jump(req.Page)
	if !moved {
		c.log.Debug("⏭️  Jump ignored, page not in session", zap.String("sessionId", session.ID), zap.Int("page", req.Page))
	}
	writeJSON(w, c.log, http.StatusOK, navigationResponse{Moved: moved, State: session.Navigator.Snapshot()})
}

// Next handles POST /viewer/sessions/{sessionID}/next
func (c *ViewerController) Next(w http.ResponseWriter, r *http.Request) {
	c.step(w, r, (*viewer.Navigator).Next)
}

// Prev handles POST /viewer/sessions/{sessionID}/prev
func (c *ViewerController) Prev(w http.ResponseWriter, r *http.Request) {
	c.step(w, r, (*viewer.Navigator).Prev)
}

func (c *ViewerController) step(w http.ResponseWriter, r *http.Request, move func(*viewer.Navigator) int) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}
	before := session.Navigator.Current()
	after := move(session.Navigator)
	writeJSON(w, c.log, http.StatusOK, navigationResponse{Moved: before != after, State: session.Navigator.Snapshot()})
}

// ReportViewport handles POST /viewer/sessions/{sessionID}/viewport
// The body carries page rectangles relative to the viewport top.
func (c *ViewerController) ReportViewport(w http.ResponseWriter, r *http.Request) {
	session, ok := c.session(w, r)
	if !ok {
		return
	}

	var req viewportRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ViewportHeight <= 0 {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	_, observed := session.Navigator.Observe(req.ViewportHeight, req.Rects)
	writeJSON(w, c.log, http.StatusOK, navigationResponse{Moved: observed, State: session.Navigator.Snapshot()})
}

// CloseSession handles DELETE /viewer/sessions/{sessionID}
func (c *ViewerController) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !c.sessions.Delete(id) {
		http.Error(w, "Viewer session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
