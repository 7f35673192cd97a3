package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pfrost/cinelog/internal/store"
)

const sessionCookieName = "cinelog_session"

// invalidCredentialsMsg is shown for both unknown email and wrong password
// so responses cannot be used to enumerate accounts.
const invalidCredentialsMsg = "Invalid email or password."

type AuthHandler struct {
	users     *store.UserStore
	sessions  *store.SessionStore
	templates *template.Template
	logger    *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ss *store.SessionStore, logger *slog.Logger) *AuthHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &AuthHandler{
		users:     us,
		sessions:  ss,
		templates: tmpl,
		logger:    logger,
	}
}

// HomePage renders the landing view with the login and register forms.
func (h *AuthHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.templates.ExecuteTemplate(w, "home.html", nil)
}

func (h *AuthHandler) renderHome(w http.ResponseWriter, errMsg string) {
	h.templates.ExecuteTemplate(w, "home.html", map[string]any{
		"Error": errMsg,
	})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderHome(w, "Email and password are required.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	// The unique constraint on users.email is the authoritative guard
	// against concurrent registrations; no pre-check needed.
	user, err := h.users.Create(email, string(hash))
	if err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			h.renderHome(w, "That email is already registered.")
			return
		}
		h.logger.Error("create user", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.startSession(w, r, user.ID)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		h.renderHome(w, invalidCredentialsMsg)
		return
	}

	user, err := h.users.GetByEmail(email)
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		h.renderHome(w, invalidCredentialsMsg)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.renderHome(w, invalidCredentialsMsg)
		return
	}

	h.startSession(w, r, user.ID)
}

// startSession mints a session for the user, sets the cookie, and redirects
// to the movie list.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, userID int64) {
	sess, err := h.sessions.Create(userID)
	if err != nil {
		h.logger.Error("create session", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60, // 30 days, matches the store TTL
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})

	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Logout destroys the session if one exists. It always succeeds, even for
// an unknown or already-destroyed token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.DeleteByToken(cookie.Value); err != nil {
			h.logger.Error("delete session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
