package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	SessionTTL  time.Duration

	RabbitMQURL string

	LeadsDir           string
	UpdateInterval     time.Duration
	LeadLockDays       int
	AssignMaxAttempts  int
	MaxLeadsPerRequest int

	CORSOrigins []string

	MailHost string
	MailPort int
	MailUser string
	MailPass string
	MailFrom string

	AdminEmail    string
	AdminPassword string

	LogLevel  string
	LogFormat string
}

// LeadLockDuration is how long an assigned lead stays reserved for its owner.
func (c Config) LeadLockDuration() time.Duration {
	return time.Duration(c.LeadLockDays) * 24 * time.Hour
}

func (c Config) QueueEnabled() bool { return c.RabbitMQURL != "" }

func (c Config) MailEnabled() bool { return c.MailHost != "" }

func (c Config) SeedAdmin() bool { return c.AdminEmail != "" && c.AdminPassword != "" }

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from an arbitrary lookup, which keeps tests off the
// real environment.
func FromEnv(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}

	cfg := Config{
		Port:        p.get("PORT", "8080"),
		DatabaseURL: p.must("DATABASE_URL"),
		JWTSecret:   p.must("JWT_SECRET"),
		SessionTTL:  p.duration("SESSION_TTL", 24*time.Hour),

		RabbitMQURL: p.get("RABBITMQ_URL", ""),

		LeadsDir:           p.get("LEADS_DIR", "./Leads"),
		UpdateInterval:     p.duration("UPDATE_INTERVAL", 30*time.Minute),
		LeadLockDays:       p.positive("LEAD_LOCK_DAYS", 180),
		AssignMaxAttempts:  p.positive("ASSIGN_MAX_ATTEMPTS", 3),
		MaxLeadsPerRequest: p.positive("MAX_LEADS_PER_REQUEST", 100),

		CORSOrigins: p.list("CORS_ORIGINS", []string{"http://localhost:3000"}),

		MailHost: p.get("MAIL_HOST", ""),
		MailPort: p.positive("MAIL_PORT", 587),
		MailUser: p.get("MAIL_USER", ""),
		MailPass: p.get("MAIL_PASS", ""),
		MailFrom: p.get("MAIL_FROM", "noreply@leadgen.se"),

		AdminEmail:    p.get("ADMIN_EMAIL", ""),
		AdminPassword: p.get("ADMIN_PASSWORD", ""),

		LogLevel:  p.get("LOG_LEVEL", "info"),
		LogFormat: p.get("LOG_FORMAT", "json"),
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		p.errs = append(p.errs, fmt.Errorf("LOG_FORMAT: must be json or console, got %q", cfg.LogFormat))
	}

	if len(p.errs) > 0 {
		return Config{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) get(k, def string) string {
	if v := strings.TrimSpace(p.getenv(k)); v != "" {
		return v
	}
	return def
}

func (p *parser) must(k string) string {
	v := strings.TrimSpace(p.getenv(k))
	if v == "" {
		p.errs = append(p.errs, fmt.Errorf("missing required env: %s", k))
	}
	return v
}

func (p *parser) positive(k string, def int) int {
	raw := p.get(k, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: must be a positive integer, got %q", k, raw))
		return def
	}
	return n
}

func (p *parser) duration(k string, def time.Duration) time.Duration {
	raw := p.get(k, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: must be a positive duration, got %q", k, raw))
		return def
	}
	return d
}

func (p *parser) list(k string, def []string) []string {
	raw := p.get(k, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
