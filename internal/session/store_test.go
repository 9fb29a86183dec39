package session

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"excelplotter/internal/sheet"
)

func newTestStore(ttl time.Duration) *Store {
	return NewStore(ttl, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func withCookie(id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/view", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	return r
}

func TestStore_PutIssuesCookie(t *testing.T) {
	s := newTestStore(time.Minute)
	st := &State{Table: &sheet.Table{}, FileName: "a.xlsx"}

	w := httptest.NewRecorder()
	id := s.Put(w, httptest.NewRequest(http.MethodPost, "/upload", nil), st)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	assert.Same(t, st, s.Get(withCookie(id)))
	assert.Equal(t, 1, s.Len())
}

func TestStore_PutRotatesSessionID(t *testing.T) {
	s := newTestStore(time.Minute)
	first := s.Put(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", nil), &State{FileName: "first.xlsx"})

	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: first})
	w := httptest.NewRecorder()
	second := s.Put(w, r, &State{FileName: "second.xlsx"})

	assert.NotEqual(t, first, second)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, second, cookies[0].Value)
	assert.Nil(t, s.Get(withCookie(first)))
	assert.Equal(t, "second.xlsx", s.Get(withCookie(second)).FileName)
	assert.Equal(t, 1, s.Len())
}

func TestStore_PutIgnoresClientChosenID(t *testing.T) {
	s := newTestStore(time.Minute)
	chosen := "6f1c7d3e-0b8a-4b7e-9d55-2f0e1c9a7b21"

	id := s.Put(httptest.NewRecorder(), withCookie(chosen), &State{FileName: "a.xlsx"})

	assert.NotEqual(t, chosen, id)
	assert.Nil(t, s.Get(withCookie(chosen)))
	assert.NotNil(t, s.Get(withCookie(id)))
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(time.Minute)

	assert.Nil(t, s.Get(httptest.NewRequest(http.MethodGet, "/view", nil)))
	assert.Nil(t, s.Get(withCookie("not-a-uuid")))
	assert.Nil(t, s.Get(withCookie("6f1c7d3e-0b8a-4b7e-9d55-2f0e1c9a7b21")))
}

func TestStore_Expiry(t *testing.T) {
	s := newTestStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	stale := s.Put(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", nil), &State{FileName: "old.xlsx"})

	now = now.Add(30 * time.Second)
	require.NotNil(t, s.Get(withCookie(stale)))

	now = now.Add(2 * time.Minute)
	fresh := s.Put(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", nil), &State{FileName: "new.xlsx"})
	assert.Equal(t, 1, s.Len())
	assert.Nil(t, s.Get(withCookie(stale)))
	assert.NotNil(t, s.Get(withCookie(fresh)))
}

func TestStore_ConcurrentSessions(t *testing.T) {
	s := newTestStore(time.Minute)
	ids := make([]string, 50)

	var g errgroup.Group
	for i := range ids {
		i := i
		g.Go(func() error {
			name := fmt.Sprintf("file-%d.xlsx", i)
			id := s.Put(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/upload", nil), &State{FileName: name})
			ids[i] = id
			if got := s.Get(withCookie(id)); got == nil || got.FileName != name {
				return fmt.Errorf("session %s lost its state", id)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, len(ids), s.Len())
}
