package viewer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"astrobook/models"
	"astrobook/renderer"
)

// Session holds one interactive build: its rendered pages and navigator
type Session struct {
	ID        string
	CreatedAt time.Time
	Title     string
	Pages     []renderer.RenderedPage
	Navigator *Navigator
}

// Document renders the session's viewer HTML
func (s *Session) Document(syncURL string) (string, error) {
	return RenderDocument(s.Pages, DocumentOptions{
		Title:       s.Title,
		InitialPage: s.Navigator.Current(),
		Debounce:    int(s.Navigator.debounce.Milliseconds()),
		SyncURL:     syncURL,
	})
}

// SessionStore keeps viewer sessions in memory until they are closed or expire
type SessionStore struct {
	cache    *cache.Cache
	debounce time.Duration
	log      *zap.Logger
}

// NewSessionStore creates a store whose sessions expire after ttl of inactivity
func NewSessionStore(ttl time.Duration, debounce time.Duration, log *zap.Logger) *SessionStore {
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(id string, _ interface{}) {
		log.Debug("🗑️  Viewer session closed", zap.String("sessionId", id))
	})
	return &SessionStore{
		cache:    c,
		debounce: debounce,
		log:      log,
	}
}

// Create stores rendered pages under a new session id
func (s *SessionStore) Create(title string, pages []renderer.RenderedPage) (*Session, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("session needs at least one page")
	}
	set := make(models.AvailablePageSet, len(pages))
	for i, p := range pages {
		set[i] = p.Number
	}
	nav, err := NewNavigator(set, WithDebounce(s.debounce))
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Title:     title,
		Pages:     pages,
		Navigator: nav,
	}
	s.cache.SetDefault(session.ID, session)

	s.log.Info("🆕 Viewer session created", zap.String("sessionId", session.ID), zap.Int("pages", len(pages)))
	return session, nil
}

// Get returns a live session and extends its lifetime
func (s *SessionStore) Get(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	session := v.(*Session)
	s.cache.SetDefault(id, session)
	return session, true
}

// Delete closes a session. It reports whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}
