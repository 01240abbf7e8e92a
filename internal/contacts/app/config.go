package app

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/contacts/internal/contacts/media"
)

type Config struct {
	SecretKey      string // Required outside dev: HMAC key for every signed token
	TokenAlgorithm string // Optional: HS256, HS384 or HS512 (default: HS256)
	TokenIssuer    string // Optional: iss claim (default: contacts-api)
	BootstrapToken string // Optional: enables POST /v1/bootstrap when set

	AccessTokenTTL       time.Duration // default: 30m
	RefreshTokenTTL      time.Duration // default: 7 days
	VerificationTokenTTL time.Duration // default: 24h
	ResetTokenTTL        time.Duration // default: 1h

	CacheBackend string        // memory or redis (default: memory)
	CacheTTL     time.Duration // profile cache lifetime (default: 300s)
	RedisURL     string

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // sqlite path (default: ./contacts.db)
	DatabaseURL    string // postgres connection string
	PepperFile     string // file holding the password pepper (default: ./pepper)

	MailBackend  string // log or sendgrid (default: log)
	SendGridKey  string
	MailFrom     string
	MailFromName string

	PublicBaseURL string // where this service is reachable (default: http://localhost:8080)
	FrontendURL   string // Optional: web client, used for reset links and CORS

	StorageBackend string // disk or s3 (default: disk)
	MediaDir       string // disk backend root (default: ./media)
	S3             media.S3Config

	AvatarMaxBytes     int64
	BirthdayWindowDays int

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads the configuration from the environment. A .env file in
// the working directory is loaded first when present; real environment
// variables take precedence over it.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		SecretKey:      os.Getenv("SECRET_KEY"),
		TokenAlgorithm: getEnvOrDefault("TOKEN_ALGORITHM", "HS256"),
		TokenIssuer:    getEnvOrDefault("TOKEN_ISSUER", "contacts-api"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		AccessTokenTTL:       getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 30*time.Minute),
		RefreshTokenTTL:      getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		VerificationTokenTTL: getEnvDurationOrDefault("VERIFICATION_TOKEN_TTL", 24*time.Hour),
		ResetTokenTTL:        getEnvDurationOrDefault("RESET_TOKEN_TTL", time.Hour),

		CacheBackend: strings.ToLower(getEnvOrDefault("CACHE_BACKEND", "memory")),
		CacheTTL:     getEnvSecondsOrDefault("CACHE_TTL", 300*time.Second),
		RedisURL:     getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "contacts.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),

		MailBackend:  strings.ToLower(getEnvOrDefault("MAIL_BACKEND", "log")),
		SendGridKey:  os.Getenv("SENDGRID_API_KEY"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@localhost"),
		MailFromName: getEnvOrDefault("MAIL_FROM_NAME", "Contacts"),

		PublicBaseURL: strings.TrimRight(getEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		FrontendURL:   strings.TrimRight(os.Getenv("FRONTEND_URL"), "/"),

		StorageBackend: strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", "disk")),
		MediaDir:       getEnvOrDefault("MEDIA_DIR", "media"),
		S3: media.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          os.Getenv("S3_REGION"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    getEnvBoolOrDefault("S3_USE_PATH_STYLE", false),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
		},

		AvatarMaxBytes:     int64(getEnvIntOrDefault("AVATAR_MAX_BYTES", 5<<20)),
		BirthdayWindowDays: getEnvIntOrDefault("BIRTHDAY_WINDOW_DAYS", 7),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

// IsDev reports whether the service runs in the development environment.
func (c Config) IsDev() bool { return c.Env == "dev" }

// VerifyURL is the base of the links mailed for email verification.
func (c Config) VerifyURL() string {
	return c.PublicBaseURL + "/v1/auth/verify-email"
}

// ResetURL is the base of the links mailed for password resets. They point
// at the web client when one is configured.
func (c Config) ResetURL() string {
	if c.FrontendURL != "" {
		return c.FrontendURL + "/reset-password"
	}
	return c.PublicBaseURL + "/reset-password"
}

// CORSOrigins are the browser origins allowed to call the API.
func (c Config) CORSOrigins() []string {
	return []string{"http://localhost:3000", "http://localhost:8000", c.FrontendURL}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvSecondsOrDefault is getEnvDurationOrDefault with bare integers read
// as seconds, the unit CACHE_TTL has always been given in.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return getEnvDurationOrDefault(key, defaultValue)
}
