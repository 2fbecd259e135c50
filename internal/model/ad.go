package model

import "time"

// Ad is a promotional banner. ImageURL is always set once the ad exists.
type Ad struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	LinkURL   string    `json:"link_url"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// AdFields carries the fields sent when creating an ad.
type AdFields struct {
	Title    string `json:"title" validate:"required"`
	LinkURL  string `json:"link_url"`
	ImageURL string `json:"image_url" validate:"required"`
}
