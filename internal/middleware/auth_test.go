package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pfrost/cinelog/internal/auth"
	"github.com/pfrost/cinelog/internal/model"
)

// fakeSessions is an in-memory SessionResolver for middleware tests.
type fakeSessions struct {
	sessions map[string]*model.Session
	err      error
}

func (f *fakeSessions) GetByToken(token string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sessions[token], nil
}

func TestRequireAuthNoCookie(t *testing.T) {
	resolver := &fakeSessions{sessions: map[string]*model.Session{}}

	handler := RequireAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/movies", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

func TestRequireAuthUnknownToken(t *testing.T) {
	resolver := &fakeSessions{sessions: map[string]*model.Session{}}

	handler := RequireAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/movies", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "invalid-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want %q", loc, "/")
	}
}

func TestRequireAuthResolverError(t *testing.T) {
	resolver := &fakeSessions{err: errors.New("db down")}

	handler := RequireAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("should not reach handler")
	}))

	req := httptest.NewRequest("GET", "/movies", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "tok"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Resolver failures redirect to login, never an error page.
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	resolver := &fakeSessions{sessions: map[string]*model.Session{
		"good-token": {
			ID:        1,
			Token:     "good-token",
			UserID:    7,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}}

	var gotAC auth.AuthContext
	handler := RequireAuth(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			t.Fatal("expected AuthContext in request context")
		}
		gotAC = ac
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/movies", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "good-token"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotAC.UserID != 7 {
		t.Errorf("UserID = %d, want 7", gotAC.UserID)
	}
	if gotAC.SessionToken != "good-token" {
		t.Errorf("SessionToken = %q, want %q", gotAC.SessionToken, "good-token")
	}
}
