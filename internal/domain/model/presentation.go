//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultMaxPresentationKeyLen = 128
	maxSlideIndex                = 10000
)

// PresentationState is the shared slide position for one presentation key.
type PresentationState struct {
	Key          string    `json:"key"          db:"key"`
	CurrentSlide int       `json:"currentSlide" db:"current_slide"`
	LastUpdated  time.Time `json:"lastUpdated"  db:"last_updated"`
	Exists       bool      `json:"exists"       db:"-"`
}

// DefaultPresentationState is returned for keys that were never written.
func DefaultPresentationState(key string) PresentationState {
	return PresentationState{Key: key, CurrentSlide: 0, Exists: false}
}

// SetSlideRequest is a last-writer-wins slide update.
// Timestamp is the writer's clock; when nil the server clock is used.
type SetSlideRequest struct {
	Key       string     `json:"-"`
	Slide     int        `json:"slide"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Validate validates SetSlideRequest against maxKeyLen (0 selects the default).
func (r *SetSlideRequest) Validate(maxKeyLen int) error {
	if maxKeyLen <= 0 {
		maxKeyLen = defaultMaxPresentationKeyLen
	}
	r.Key = strings.TrimSpace(r.Key)
	if err := ValidatePresentationKey(r.Key, maxKeyLen); err != nil {
		return err
	}
	if r.Slide < 0 {
		return errors.New("slide must be >= 0")
	}
	if r.Slide > maxSlideIndex {
		return errors.New("slide cannot exceed 10000")
	}
	if r.Timestamp != nil && r.Timestamp.IsZero() {
		r.Timestamp = nil
	}
	return nil
}

// ValidatePresentationKey checks a client-supplied presentation key.
func ValidatePresentationKey(key string, maxKeyLen int) error {
	if key == "" {
		return errors.New("key is required and cannot be empty")
	}
	if maxKeyLen <= 0 {
		maxKeyLen = defaultMaxPresentationKeyLen
	}
	if utf8.RuneCountInString(key) > maxKeyLen {
		return errors.New("key is too long")
	}
	return nil
}

// SetSlideResult reports whether an update won and the state after the attempt.
type SetSlideResult struct {
	Applied bool              `json:"applied"`
	State   PresentationState `json:"state"`
}
