// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Values are layered, lowest precedence first:

 1. a .env file (path from ENV_FILE, default ".env"; missing is fine),
    loaded with godotenv without overriding the real environment
 2. environment variables, read into Config by cleanenv (env-default tags)
 3. CLI flags

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: SQLite file or PostgreSQL DSN (default: quickly-vote.db for sqlite)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SessionSecret: HMAC key for session tokens (required, at least 16 bytes)
  - SessionTTL: Session lifetime (default: 24h)
  - SecureCookies: Set the Secure flag on the session cookie (default: false)
  - PhotoDir: Directory for voter photos (default: photos)
  - MaxUploadBytes: Request body cap (default: 16 MiB)
  - SeedAdmin, AdminUsername, AdminPassword: first-run admin account
    (default: true, admin, admin123)
  - LogLevel: debug, info, warn or error (default: info)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-session-secret   Session signing secret
	-session-ttl      Session lifetime
	-secure-cookies   Secure session cookie
	-photo-dir        Photo directory
	-max-upload       Request body cap
	-seed-admin       Seed the admin account
	-admin-user       Seeded admin username
	-admin-password   Seeded admin password
	-log-level        Log level

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE, SESSION_SECRET, SESSION_TTL,
	COOKIE_SECURE, PHOTO_DIR, MAX_UPLOAD_BYTES, SEED_ADMIN,
	ADMIN_USERNAME, ADMIN_PASSWORD, LOG_LEVEL

# Default Admin Credentials

The seeded admin defaults to admin / admin123, matching the first-run
behaviour operators may rely on. These credentials are public: they are a
bootstrap convenience, not a security control. Set ADMIN_PASSWORD before
first start, or log in and rotate it; the server logs a warning at every
start while the default password still authenticates.
*/
package cliparse
