package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings" // strings splits the CORS origin list
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The struct is built once at startup and passed
// by value into handlers and services; nothing mutates it afterwards, so the
// signing secret and session policy are effectively read-only process state.
type Config struct {
	Env                  string   // application environment (e.g. "dev", "prod")
	Port                 string   // HTTP port to listen on
	DBUser               string   // database username
	DBPass               string   // database password (optional)
	DBHost               string   // database host address
	DBPort               string   // database port number
	DBName               string   // database name
	DBMaxOpenConns       int      // connection pool: max open connections
	DBMaxIdleConns       int      // connection pool: max idle connections
	DBConnMaxLifetimeMin int      // connection pool: connection lifetime in minutes
	JWTSecret            string   // secret used to sign JWTs
	AccessTTLMin         int      // access token time-to-live in minutes
	RefreshTTLDays       int      // refresh token time-to-live in days
	BcryptCost           int      // bcrypt cost for password hashing
	MaxSessionsPerUser   int      // active refresh tokens allowed per user
	CleanupIntervalHours int      // advertised cleanup cadence; cleanup actually runs inline at login
	CORSOrigins          []string // allowed CORS origins
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Session policy knobs
// fall back to the documented defaults when unset.
func Load() Config {
	return Config{
		Env:                  must("APP_ENV"),  // environment (dev/test/prod)
		Port:                 must("APP_PORT"), // port to bind the HTTP server
		DBUser:               must("DB_USER"),  // database user
		DBPass:               os.Getenv("DB_PASS"),
		DBHost:               must("DB_HOST"),
		DBPort:               must("DB_PORT"),
		DBName:               must("DB_NAME"),
		DBMaxOpenConns:       envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: envInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		JWTSecret:            must("JWT_SECRET"),                       // secret used for signing JWTs
		AccessTTLMin:         envInt("ACCESS_TOKEN_TTL_MIN", 30),       // TTL for access tokens in minutes
		RefreshTTLDays:       envInt("REFRESH_TOKEN_TTL_DAYS", 30),     // TTL for refresh tokens in days
		BcryptCost:           envInt("BCRYPT_COST", 12),                // bcrypt cost factor
		MaxSessionsPerUser:   envInt("MAX_SESSIONS_PER_USER", 5),       // concurrent session cap per user
		CleanupIntervalHours: envInt("CLEANUP_INTERVAL_HOURS", 24),     // informational only
		CORSOrigins:          splitCSV(envStr("CORS_ORIGINS", "http://localhost:3000")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// envStr returns the variable's value or the default when unset.
func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt is like envStr but converts the value into an integer, falling
// back to the default on parse failure.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

// splitCSV turns a comma-separated list into trimmed non-empty entries.
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
