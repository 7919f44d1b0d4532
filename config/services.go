package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP API server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeSweeper runs the expired login-code sweeper.
	ServiceModeSweeper ServiceMode = "sweeper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeSweeper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeSweeper:
			services[mode] = true
		default:
			return nil, fmt.Errorf("invalid service name: %q (valid options: http, sweeper)", serviceName)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

const (
	defaultSweeperSchedule = "@every 5m"
	minSweeperBatchSize    = 1
	maxSweeperBatchSize    = 10000
)

// SweeperConfig contains configuration for the expired login-code sweeper.
type SweeperConfig struct {
	// Schedule is a cron expression (robfig/cron syntax, including "@every <duration>").
	Schedule string `env:"SWEEPER_SCHEDULE" envDefault:"@every 5m"`

	// BatchSize is the maximum number of codes deleted per statement.
	BatchSize int `env:"SWEEPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to sweeper configuration values.
// An unparsable schedule falls back to the default five minute interval.
func (s *SweeperConfig) Sanitize() {
	s.Schedule = strings.TrimSpace(s.Schedule)
	if _, err := s.ParseSchedule(); err != nil {
		s.Schedule = defaultSweeperSchedule
	}
	if s.BatchSize < minSweeperBatchSize {
		s.BatchSize = minSweeperBatchSize
	}
	if s.BatchSize > maxSweeperBatchSize {
		s.BatchSize = maxSweeperBatchSize
	}
}

// ParseSchedule parses Schedule with the standard five-field parser plus descriptors.
func (s *SweeperConfig) ParseSchedule() (cron.Schedule, error) {
	if s.Schedule == "" {
		return nil, errors.New("sweeper schedule is empty")
	}
	sched, err := cron.ParseStandard(s.Schedule)
	if err != nil {
		return nil, fmt.Errorf("parse sweeper schedule %q: %w", s.Schedule, err)
	}
	return sched, nil
}

// FirstInterval returns the gap between now and the first scheduled activation.
// The sweeper uses it to size its start-up jitter.
func (s *SweeperConfig) FirstInterval(now time.Time) time.Duration {
	sched, err := s.ParseSchedule()
	if err != nil {
		return 5 * time.Minute
	}
	return sched.Next(now).Sub(now)
}

// PresentationBackend selects where presentation state lives.
type PresentationBackend string

const (
	PresentationBackendPostgres PresentationBackend = "postgres"
	PresentationBackendRedis    PresentationBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for PresentationBackend.
func (b *PresentationBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "postgres", "redis":
		*b = PresentationBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid PresentationBackend: %q (valid options: postgres, redis)", v)
	}
}

// PresentationConfig contains presentation slide-sync configuration.
type PresentationConfig struct {
	Store PresentationBackend `env:"PRESENTATION_STORE" envDefault:"postgres"`

	// MaxKeyLength bounds presentation keys accepted from clients.
	MaxKeyLength int `env:"PRESENTATION_MAX_KEY_LENGTH" envDefault:"128"`
}

// Sanitize applies guardrails to presentation configuration values.
func (p *PresentationConfig) Sanitize() {
	if p.Store == "" {
		p.Store = PresentationBackendPostgres
	}
	if p.MaxKeyLength <= 0 {
		p.MaxKeyLength = 128
	}
}
