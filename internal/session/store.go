// Package session keeps the table each browser session is working on.
package session

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"excelplotter/internal/sheet"
)

const CookieName = "xlplot_session"

// State is what one session has uploaded. A new upload replaces it whole.
type State struct {
	Table      *sheet.Table
	FileName   string
	FileSize   int64
	UploadedAt time.Time
}

type entry struct {
	state    *State
	lastSeen time.Time
}

// Store maps session IDs to State. Entries idle for longer than the TTL are
// dropped on the next write.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

// Get returns the state for the request's session, or nil when the request
// has no live session.
func (s *Store) Get(r *http.Request) *State {
	id := sessionID(r)
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	now := s.now()
	if s.expired(e, now) {
		delete(s.entries, id)
		return nil
	}
	e.lastSeen = now
	return e.state
}

// Put stores st under a freshly issued session ID and sets the session
// cookie. Any session the request already carried is dropped, so a client
// cannot choose the ID its upload is stored under.
func (s *Store) Put(w http.ResponseWriter, r *http.Request, st *State) string {
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if old := sessionID(r); old != "" {
		delete(s.entries, old)
	}
	s.sweep(now)
	s.entries[id] = &entry{state: st, lastSeen: now}
	return id
}

// Len reports the number of stored sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) sweep(now time.Time) {
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			s.logger.Debug("session expired", slog.String("session_id", id))
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastSeen) > s.ttl
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}
