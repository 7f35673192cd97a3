package model

import "time"

// Movie is a saved catalog entry owned by a single user. Review and Rating
// are nil until the owner submits them.
type Movie struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	PosterPath string    `json:"poster_path"`
	Review     *string   `json:"review"`
	Rating     *float64  `json:"rating"`
	CreatedAt  time.Time `json:"created_at"`
}
