// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/scheduled/pkg/db"
	"github.com/dmitrymomot/scheduled/pkg/logger"
	"github.com/dmitrymomot/scheduled/pkg/mailer"
	"github.com/dmitrymomot/scheduled/pkg/mailer/resend"
	"github.com/dmitrymomot/scheduled/pkg/redis"
	"github.com/dmitrymomot/scheduled/pkg/storage"
)

var ErrLoad = errors.New("config: failed to load")

type Server struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"20s"`
	MaxUploadBytes  int64         `env:"HTTP_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	CORSOrigins     []string      `env:"HTTP_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
}

type Imports struct {
	SessionTTL   time.Duration `env:"IMPORT_SESSION_TTL" envDefault:"30m"`
	PreviewLimit int           `env:"IMPORT_PREVIEW_LIMIT" envDefault:"5"`
}

type Domains struct {
	// CNAMETarget is the host customer domains point their CNAME at.
	CNAMETarget string `env:"DOMAINS_CNAME_TARGET" envDefault:"custom.scheduled.app"`
	// Nameserver overrides the system resolver, "1.1.1.1" or "1.1.1.1:53".
	Nameserver     string        `env:"DOMAINS_NAMESERVER"`
	FirstCheck     time.Duration `env:"DOMAINS_FIRST_CHECK_DELAY" envDefault:"5m"`
	RecheckBatch   int           `env:"DOMAINS_RECHECK_BATCH" envDefault:"100"`
	RecheckCron    string        `env:"DOMAINS_RECHECK_CRON" envDefault:"*/15 * * * *"`
	RecheckUnique  time.Duration `env:"DOMAINS_RECHECK_UNIQUE_FOR" envDefault:"14m"`
	VerifyAttempts int           `env:"DOMAINS_VERIFY_MAX_ATTEMPTS" envDefault:"3"`
}

type Jobs struct {
	MaxWorkers  int           `env:"JOBS_MAX_WORKERS" envDefault:"10"`
	StopTimeout time.Duration `env:"JOBS_STOP_TIMEOUT" envDefault:"20s"`
}

type Config struct {
	Server   Server
	Imports  Imports
	Domains  Domains
	Jobs     Jobs
	Log      logger.Config
	Database db.Config
	Storage  storage.Config
	Mailer   mailer.Config
	Resend   resend.Config
	// Redis is optional; without REDIS_URL import sessions stay in memory.
	Redis    redis.Config
}

// Load reads an optional .env file, then the process environment.
// Variables already set in the environment win over .env values.
func Load(dotenv ...string) (Config, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	return cfg, nil
}
