package middleware

import (
	"net/http"

	"github.com/pfrost/cinelog/internal/auth"
	"github.com/pfrost/cinelog/internal/model"
)

const sessionCookieName = "cinelog_session"

// SessionResolver maps an opaque token to a live session. The sqlite-backed
// store implements it in production; tests use an in-memory fake.
type SessionResolver interface {
	GetByToken(token string) (*model.Session, error)
}

// RequireAuth validates the session cookie and populates AuthContext.
// Requests without a resolvable session are redirected to the login view,
// never shown an error page.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			sess, err := sessions.GetByToken(cookie.Value)
			if err != nil || sess == nil {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			ac := auth.AuthContext{
				UserID:       sess.UserID,
				SessionToken: sess.Token,
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
