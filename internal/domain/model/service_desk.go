package model

import "time"

// SessionSummary is the service-desk view of one session.
type SessionSummary struct {
	SessionToken string    `json:"sessionToken"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserMatch is a user found by exact name, with every session currently linked to it.
type UserMatch struct {
	UserID   string           `json:"userId"`
	Name     string           `json:"name"`
	Sessions []SessionSummary `json:"sessions"`
}

// IssuedLoginCode is a freshly issued login code and its expiry.
type IssuedLoginCode struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
}
