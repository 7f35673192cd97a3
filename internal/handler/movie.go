package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pfrost/cinelog/internal/auth"
	"github.com/pfrost/cinelog/internal/catalog"
	"github.com/pfrost/cinelog/internal/store"
	"github.com/pfrost/cinelog/internal/websocket"
)

type MovieHandler struct {
	movies    *store.MovieStore
	catalog   *catalog.Client
	hub       *websocket.Hub
	templates *template.Template
	logger    *slog.Logger
}

func NewMovieHandler(ms *store.MovieStore, cc *catalog.Client, hub *websocket.Hub, logger *slog.Logger) *MovieHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &MovieHandler{
		movies:    ms,
		catalog:   cc,
		hub:       hub,
		templates: tmpl,
		logger:    logger,
	}
}

func (h *MovieHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// List renders the user's saved movies in the order they were added.
func (h *MovieHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, "")
}

func (h *MovieHandler) renderList(w http.ResponseWriter, r *http.Request, message string) {
	movies, err := h.movies.ListForUser(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list movies", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.templates.ExecuteTemplate(w, "movies.html", map[string]any{
		"Movies":  movies,
		"Message": message,
	})
}

// Add resolves the submitted title against the catalog and renders the
// review form seeded with the chosen match. Nothing is persisted here; the
// form is a pure lookup and Submit redoes the resolution.
func (h *MovieHandler) Add(w http.ResponseWriter, r *http.Request) {
	title := r.FormValue("title")

	movie, err := h.catalog.Resolve(r.Context(), title)
	if err != nil {
		h.renderList(w, r, h.catalogErrorMessage(title, err))
		return
	}

	h.templates.ExecuteTemplate(w, "movie.html", map[string]any{
		"Title":      movie.Title,
		"PosterPath": movie.PosterPath,
		"Review":     "",
		"Rating":     "",
		"Action":     "/submit",
	})
}

// Submit saves the movie with its review and rating in one step. The title
// is re-resolved against the catalog to recover the poster, so the form
// carries no hidden state between Add and Submit. An already-saved title is
// treated as success, not surfaced as a duplicate.
func (h *MovieHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	title := r.FormValue("title")
	review := strings.TrimSpace(r.FormValue("review"))

	movie, err := h.catalog.Resolve(r.Context(), title)
	if err != nil {
		h.renderList(w, r, h.catalogErrorMessage(title, err))
		return
	}

	rating, ok := parseRating(r.FormValue("rating"))
	if !ok {
		h.templates.ExecuteTemplate(w, "movie.html", map[string]any{
			"Title":      movie.Title,
			"PosterPath": movie.PosterPath,
			"Review":     review,
			"Rating":     r.FormValue("rating"),
			"Action":     "/submit",
			"Error":      "Rating must be a number between 0 and 10.",
		})
		return
	}

	existing, err := h.movies.GetByTitle(userID, movie.Title)
	if err != nil {
		h.logger.Error("check existing movie", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		// Already saved, nothing to do.
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	saved, err := h.movies.Add(userID, movie.Title, movie.PosterPath)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateTitle) {
			// Lost a race with another request for the same user; the row
			// exists, which is what Submit wanted.
			http.Redirect(w, r, "/movies", http.StatusSeeOther)
			return
		}
		h.logger.Error("add movie", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	if err := h.movies.SetReview(userID, movie.Title, review, rating); err != nil {
		h.logger.Error("set review", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.broadcast(websocket.NewMessage("movie", "created", saved.ID))

	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Edit renders the review form pre-filled from the user's saved row. It does
// not consult the catalog. A title the user never saved redirects back to
// the list rather than rendering an empty form.
func (h *MovieHandler) Edit(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	title := r.FormValue("title")

	movie, err := h.movies.GetByTitle(userID, title)
	if err != nil {
		h.logger.Error("get movie for edit", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if movie == nil {
		http.Redirect(w, r, "/movies", http.StatusSeeOther)
		return
	}

	review := ""
	if movie.Review != nil {
		review = *movie.Review
	}
	rating := ""
	if movie.Rating != nil {
		rating = strconv.FormatFloat(*movie.Rating, 'f', -1, 64)
	}

	h.templates.ExecuteTemplate(w, "movie.html", map[string]any{
		"Title":      movie.Title,
		"PosterPath": movie.PosterPath,
		"Review":     review,
		"Rating":     rating,
		"Action":     "/update",
	})
}

// Update saves an edited review and rating on an existing row.
func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	title := r.FormValue("title")
	review := strings.TrimSpace(r.FormValue("review"))

	rating, ok := parseRating(r.FormValue("rating"))
	if !ok {
		movie, err := h.movies.GetByTitle(userID, title)
		if err != nil || movie == nil {
			http.Redirect(w, r, "/movies", http.StatusSeeOther)
			return
		}
		h.templates.ExecuteTemplate(w, "movie.html", map[string]any{
			"Title":      movie.Title,
			"PosterPath": movie.PosterPath,
			"Review":     review,
			"Rating":     r.FormValue("rating"),
			"Action":     "/update",
			"Error":      "Rating must be a number between 0 and 10.",
		})
		return
	}

	err := h.movies.SetReview(userID, title, review, rating)
	if err != nil && !errors.Is(err, store.ErrMovieNotFound) {
		h.logger.Error("update review", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	if err == nil {
		h.broadcast(websocket.NewMessage("movie", "updated", 0))
	}

	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

// Delete removes the user's saved title and redirects whether or not a row
// existed.
func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	title := r.FormValue("title")

	if err := h.movies.DeleteByTitle(userID, title); err != nil {
		h.logger.Error("delete movie", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.broadcast(websocket.NewMessage("movie", "deleted", 0))

	http.Redirect(w, r, "/movies", http.StatusSeeOther)
}

func (h *MovieHandler) catalogErrorMessage(title string, err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "No movie matching \"" + catalog.NormalizeTitle(title) + "\" was found."
	case errors.Is(err, catalog.ErrUnavailable):
		h.logger.Warn("catalog unavailable", "error", err)
		return "The movie catalog is unavailable right now. Try again in a moment."
	default:
		h.logger.Error("catalog lookup", "error", err)
		return "Something went wrong looking up that movie."
	}
}

// parseRating converts the form value to a rating. An empty value means no
// rating. Returns ok=false for non-numeric or out-of-range input.
func parseRating(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > 10 {
		return nil, false
	}
	return &v, true
}
