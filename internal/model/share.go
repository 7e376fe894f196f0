package model

import "time"

// ShareResponse carries a signed link to a fretboard view
type ShareResponse struct {
	Token     string    `json:"token"`
	Path      string    `json:"path"`
	ExpiresAt time.Time `json:"expiresAt"`
}
