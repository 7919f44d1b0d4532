package model

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultAppVersion is reported when no version has been published.
const DefaultAppVersion = "1.0.0"

var appVersionPattern = regexp.MustCompile(`^v?\d+\.\d+\.\d+([-+][0-9A-Za-z.-]+)?$`)

// AppInfo carries the latest client version advertised to web clients.
type AppInfo struct {
	Version string `json:"version"`
}

// SetAppVersionRequest publishes a new latest version.
type SetAppVersionRequest struct {
	Version string `json:"version"`
}

// Validate validates SetAppVersionRequest.
func (r *SetAppVersionRequest) Validate() error {
	r.Version = strings.TrimSpace(r.Version)
	if r.Version == "" {
		return errors.New("version is required")
	}
	if !appVersionPattern.MatchString(r.Version) {
		return errors.New("version must look like MAJOR.MINOR.PATCH")
	}
	return nil
}
