package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultAdminPassword is the bootstrap password seeded for the admin
// account. It is public knowledge; main warns while it still works.
const DefaultAdminPassword = "admin123"

const minSecretLen = 16

type Config struct {
	Port           int           `env:"PORT" env-default:"3318"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	DatabaseType   string        `env:"DATABASE_TYPE" env-default:"sqlite"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	SessionTTL     time.Duration `env:"SESSION_TTL" env-default:"24h"`
	SecureCookies  bool          `env:"COOKIE_SECURE" env-default:"false"`
	PhotoDir       string        `env:"PHOTO_DIR" env-default:"photos"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" env-default:"16777216"`
	SeedAdmin      bool          `env:"SEED_ADMIN" env-default:"true"`
	AdminUsername  string        `env:"ADMIN_USERNAME" env-default:"admin"`
	AdminPassword  string        `env:"ADMIN_PASSWORD" env-default:"admin123"`
	LogLevel       string        `env:"LOG_LEVEL" env-default:"info"`
}

// ParseFlags builds the config from, in increasing precedence: the .env file
// (ENV_FILE, default ".env"), environment variables, and CLI flags.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := loadDotEnv(os.Getenv("ENV_FILE")); err != nil {
		return Config{}, err
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	fs := flag.NewFlagSet("quickly-vote", flag.ContinueOnError)

	// Env values become the flag defaults, so an explicit flag wins
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL (SQLite file or PostgreSQL DSN)")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite or postgres)")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Session lifetime")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "Mark session cookies Secure (HTTPS only)")
	fs.StringVar(&cfg.PhotoDir, "photo-dir", cfg.PhotoDir, "Directory for voter photos")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", cfg.MaxUploadBytes, "Maximum request body size in bytes")
	fs.BoolVar(&cfg.SeedAdmin, "seed-admin", cfg.SeedAdmin, "Create the admin account on first start")
	fs.StringVar(&cfg.AdminUsername, "admin-user", cfg.AdminUsername, "Seeded admin username")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", cfg.SessionSecret, "Session signing secret (prefer env)")
	fs.StringVar(&cfg.AdminPassword, "admin-password", cfg.AdminPassword, "Seeded admin password (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case "sqlite":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = "quickly-vote.db"
		}
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unsupported database type %q (sqlite or postgres)", cfg.DatabaseType)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}
	if len(cfg.SessionSecret) < minSecretLen {
		return Config{}, fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSecretLen)
	}

	if cfg.SessionTTL <= 0 {
		return Config{}, errors.New("session TTL must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("max upload size must be positive")
	}
	if cfg.SeedAdmin && (cfg.AdminUsername == "" || cfg.AdminPassword == "") {
		return Config{}, errors.New("admin username and password required when seeding is enabled")
	}

	return cfg, nil
}

// UsesDefaultAdminPassword reports whether seeding would use the public
// default password.
func (c Config) UsesDefaultAdminPassword() bool {
	return c.AdminPassword == DefaultAdminPassword
}

// loadDotEnv loads KEY=VALUE pairs without overriding variables that are
// already set. A missing file is fine.
func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
