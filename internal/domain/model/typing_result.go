package model

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// TypingHistoryLimit is how many recent results are returned to a user.
	TypingHistoryLimit = 10

	maxTypingFieldLen = 200
	maxWPM            = 1000
)

// TypingResult is one completed typing exercise.
type TypingResult struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	VerseID     string    `json:"verseId"     db:"verse_id"`
	Translation string    `json:"translation" db:"translation"`
	Reference   string    `json:"reference"   db:"reference"`
	WPM         float64   `json:"wpm"         db:"wpm"`
	Accuracy    float64   `json:"accuracy"    db:"accuracy"`
	CreatedAt   time.Time `json:"timestamp"   db:"created_at"`
}

// SaveTypingResultRequest is submitted by the client after an exercise.
// WPM and accuracy are computed client-side.
type SaveTypingResultRequest struct {
	VerseID     string  `json:"verseId"`
	Translation string  `json:"translation"`
	Reference   string  `json:"reference"`
	WPM         float64 `json:"wpm"`
	Accuracy    float64 `json:"accuracy"`
}

// Validate validates SaveTypingResultRequest.
func (r *SaveTypingResultRequest) Validate() error {
	r.VerseID = strings.TrimSpace(r.VerseID)
	r.Translation = strings.TrimSpace(r.Translation)
	r.Reference = strings.TrimSpace(r.Reference)

	if r.VerseID == "" {
		return errors.New("verseId is required")
	}
	if r.Translation == "" {
		return errors.New("translation is required")
	}
	if r.Reference == "" {
		return errors.New("reference is required")
	}
	for _, v := range []string{r.VerseID, r.Translation, r.Reference} {
		if utf8.RuneCountInString(v) > maxTypingFieldLen {
			return errors.New("fields cannot exceed 200 characters")
		}
	}
	if math.IsNaN(r.WPM) || r.WPM < 0 || r.WPM > maxWPM {
		return errors.New("wpm must be between 0 and 1000")
	}
	if math.IsNaN(r.Accuracy) || r.Accuracy < 0 || r.Accuracy > 100 {
		return errors.New("accuracy must be between 0 and 100")
	}
	return nil
}
