package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
)

// Auth modes. Exactly one assertion discipline is active per deployment:
// either stateless bearer tokens or server-side sessions backed by Redis.
// The two are never mixed; the verifier for the configured mode is the only
// trust path registered.
const (
	AuthModeToken   = "token"
	AuthModeSession = "session"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	AuthMode  string // "token" or "session"
	JWTSecret string // secret used to sign JWTs (token mode)

	TokenTTLHours int // bearer token time-to-live in hours (token mode)
	SessionTTLMin int // session record time-to-live in minutes (session mode)
	BcryptCost    int // bcrypt cost for password hashing

	CookieName     string // session cookie name (session mode)
	CookieSecure   bool   // set the Secure attribute on the session cookie
	CookieSameSite string // "lax", "strict" or "none" ("none" forces Secure)

	EmailVerifyKey    string // access key for the email verification API ("" disables)
	EmailVerifyStrict bool   // fail closed when verification is unreachable
	AvatarBaseURL     string // public path prefix for stored avatars
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Everything that has
// a sensible default is optional.
func Load() Config {
	cfg := Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		AuthMode:  envStr("AUTH_MODE", AuthModeToken),
		JWTSecret: must("JWT_SECRET"), // secret for signing assertions

		TokenTTLHours: envInt("TOKEN_TTL_HOURS", 24),
		SessionTTLMin: envInt("SESSION_TTL_MIN", 720),
		BcryptCost:    envInt("BCRYPT_COST", 10),

		CookieName:     envStr("COOKIE_NAME", "vicare_session"),
		CookieSecure:   envBool("COOKIE_SECURE", false),
		CookieSameSite: envStr("COOKIE_SAMESITE", "lax"),

		EmailVerifyKey:    os.Getenv("EMAIL_VERIFY_API_KEY"),
		EmailVerifyStrict: envBool("EMAIL_VERIFY_STRICT", false),
		AvatarBaseURL:     envStr("AVATAR_BASE_URL", "/uploads"),
	}
	if cfg.AuthMode != AuthModeToken && cfg.AuthMode != AuthModeSession {
		log.Fatalf("invalid AUTH_MODE: %q (want %q or %q)", cfg.AuthMode, AuthModeToken, AuthModeSession)
	}
	// A cross-site cookie is only accepted by browsers when Secure is set.
	if cfg.CookieSameSite == "none" {
		cfg.CookieSecure = true
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}
