package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  It is built once in main
// and passed by value to the components that need it; nothing reads the
// environment after startup.
type Config struct {
	Env            string        // application environment (dev, test, prod)
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	AccessSecret   string        // HMAC key for access tokens
	RefreshSecret  string        // HMAC key used to hash refresh tokens
	Algorithm      string        // JWT signing algorithm (HS256, HS384, HS512)
	AccessTTL      time.Duration // access token lifetime
	RefreshTTLDays int           // refresh token lifetime in days
	BcryptCost     int           // bcrypt cost for password hashing
	LogLevel       string        // logrus level name
	MigrateOnStart bool          // apply embedded migrations before serving
}

// Load reads a .env file when one exists and then builds a Config from the
// environment.  Values already present in the environment win over the
// file.  Required variables are enforced by must() and a missing value
// stops the process.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: could not read .env: %v", err)
	}
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		AccessSecret:   must("ACCESS_SECRET_KEY"),
		RefreshSecret:  must("REFRESH_SECRET_KEY"),
		Algorithm:      strings.ToUpper(envStr("ALGORITHM", "HS256")),
		AccessTTL:      time.Duration(mustInt("ACCESS_EXPIRE_MINUTES")) * time.Minute,
		RefreshTTLDays: mustInt("REFRESH_EXPIRE_DAYS"),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		MigrateOnStart: envBool("MIGRATE_ON_START", true),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
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

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
