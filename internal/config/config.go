package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	defaultServiceName        = "pickleball"
	defaultPort               = 8080
	defaultEventsSubject      = "pickleball.events"
	defaultWinningScore       = 11
	defaultWinMargin          = 2
	defaultCompletedRetention = 10 * time.Minute
	defaultSweepInterval      = time.Minute
	defaultLogLevel           = "info"
)

// Config holds every runtime setting of the service.
type Config struct {
	ServiceName   string
	Port          int
	AdvertiseHost string

	// ConsulAddrs is a comma separated list; empty disables registration.
	ConsulAddrs string
	// NATSURL empty means events are only logged.
	NATSURL       string
	EventsSubject string

	WinningScore       int
	WinMargin          int
	RulesFile          string
	PendingTTL         time.Duration
	CompletedRetention time.Duration
	SweepInterval      time.Duration

	LogLevel string
	LogJSON  bool
}

// ListenAddr is the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("0.0.0.0:%d", c.Port)
}

// Load reads an optional .env file from the working directory (or the
// given files) and then the process environment. Every invalid value is
// reported, not just the first.
func Load(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside of local development.
	_ = godotenv.Load(envFiles...)

	var errs *multierror.Error
	cfg := &Config{
		ServiceName:   getString("PB_SERVICE_NAME", defaultServiceName),
		AdvertiseHost: getString("PB_ADVERTISE_HOST", hostname()),
		ConsulAddrs:   getString("CONSUL_HTTP_ADDR", ""),
		NATSURL:       getString("NATS_URL", ""),
		EventsSubject: getString("PB_EVENTS_SUBJECT", defaultEventsSubject),
		RulesFile:     getString("PB_RULES_FILE", ""),
		LogLevel:      strings.ToLower(getString("LOG_LEVEL", defaultLogLevel)),
	}

	var err error
	if cfg.Port, err = getInt("PB_PORT", defaultPort); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.WinningScore, err = getInt("PB_WINNING_SCORE", defaultWinningScore); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.WinMargin, err = getInt("PB_WIN_MARGIN", defaultWinMargin); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.PendingTTL, err = getDuration("PB_PENDING_TTL", 0); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.CompletedRetention, err = getDuration("PB_COMPLETED_RETENTION", defaultCompletedRetention); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.SweepInterval, err = getDuration("PB_SWEEP_INTERVAL", defaultSweepInterval); err != nil {
		errs = multierror.Append(errs, err)
	}
	if cfg.LogJSON, err = getBool("LOG_JSON", false); err != nil {
		errs = multierror.Append(errs, err)
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges that the parsers alone cannot.
func (c *Config) Validate() error {
	var errs *multierror.Error
	if c.ServiceName == "" {
		errs = multierror.Append(errs, fmt.Errorf("PB_SERVICE_NAME must not be empty"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("PB_PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.WinningScore < 1 {
		errs = multierror.Append(errs, fmt.Errorf("PB_WINNING_SCORE must be at least 1, got %d", c.WinningScore))
	}
	if c.WinMargin < 1 {
		errs = multierror.Append(errs, fmt.Errorf("PB_WIN_MARGIN must be at least 1, got %d", c.WinMargin))
	}
	if c.PendingTTL < 0 {
		errs = multierror.Append(errs, fmt.Errorf("PB_PENDING_TTL must not be negative"))
	}
	if c.CompletedRetention < 0 {
		errs = multierror.Append(errs, fmt.Errorf("PB_COMPLETED_RETENTION must not be negative"))
	}
	if c.SweepInterval <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("PB_SWEEP_INTERVAL must be positive"))
	}
	if c.EventsSubject == "" {
		errs = multierror.Append(errs, fmt.Errorf("PB_EVENTS_SUBJECT must not be empty"))
	}
	return errs.ErrorOrNil()
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func hostname() string {
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}
