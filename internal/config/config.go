package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	BlobModeLocal = "local"
	BlobModeS3    = "s3"
	BlobModeAuto  = "auto"
)

const (
	DietModeMock = "mock"
	DietModeHTTP = "http"
)

const (
	AuthModeNone = "none"
	AuthModeDev  = "dev"
)

type S3Config struct {
	Endpoint          string
	Region            string
	Bucket            string
	AccessKeyID       string
	SecretAccessKey   string
	PublicBaseURL     string
	PresignTTLSeconds int
	PreferPublicURL   bool
}

func (c S3Config) MissingRequired() []string {
	missing := make([]string, 0, 5)
	if strings.TrimSpace(c.Endpoint) == "" {
		missing = append(missing, "S3_ENDPOINT")
	}
	if strings.TrimSpace(c.Region) == "" {
		missing = append(missing, "S3_REGION")
	}
	if strings.TrimSpace(c.Bucket) == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if strings.TrimSpace(c.AccessKeyID) == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if strings.TrimSpace(c.SecretAccessKey) == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	return missing
}

func (c S3Config) IsConfigured() bool {
	return len(c.MissingRequired()) == 0
}

// DiagnosticsSummary returns a detailed summary for logging (no secrets)
func (c S3Config) DiagnosticsSummary() string {
	accessKeyStatus := "not set"
	if strings.TrimSpace(c.AccessKeyID) != "" {
		accessKeyStatus = "set"
	}
	secretKeyStatus := "not set"
	if strings.TrimSpace(c.SecretAccessKey) != "" {
		secretKeyStatus = "set"
	}

	return fmt.Sprintf("endpoint=%s region=%s bucket=%s public_base_url=%s presign_ttl=%ds prefer_public_url=%t access_key_id=%s secret_access_key=%s",
		nonEmptyOrDash(c.Endpoint),
		nonEmptyOrDash(c.Region),
		nonEmptyOrDash(c.Bucket),
		nonEmptyOrDash(c.PublicBaseURL),
		c.PresignTTLSeconds,
		c.PreferPublicURL,
		accessKeyStatus,
		secretKeyStatus,
	)
}

func nonEmptyOrDash(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "-"
	}
	return v
}

type BlobConfig struct {
	Mode string // local|s3|auto
	S3   S3Config
}

// Config holds the application configuration.
type Config struct {
	Env      string // local | staging | production
	Port     int
	LogLevel string

	// Database
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Recipe images (S3-compatible object storage)
	Blob BlobConfig

	// Uploads
	UploadMaxMB       int
	UploadAllowedMime string

	// Diet classification service
	DietMode           string // mock | http
	DietServiceURL     string
	DietTimeoutSeconds int

	// Legacy unscoped API shim (/recipes, /daily-meal-plans)
	LegacyAPIEnabled bool
	DefaultUserID    string

	// Recipe clipper
	ClipperMaxBodyMB int

	// Authentication & Authorization
	AuthMode      string // none | dev
	AuthRequired  bool
	JWTSecret     string
	JWTIssuer     string
	JWTTTLMinutes int

	// Migrations
	RunMigrationsOnStartup bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	// PORT (default: 8080)
	port := envInt("PORT", 8080)

	// LOG_LEVEL (default: debug)
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "debug"
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- Migrations ----------
	runMigrationsOnStartup := parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP")

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Rate Limiting ----------
	rateLimitRPS := envInt("RATE_LIMIT_RPS", 0)
	rateLimitBurst := envInt("RATE_LIMIT_BURST", 0)

	// ---------- Blob / S3 (recipe images) ----------
	blobMode := parseBlobMode("BLOB_MODE", BlobModeLocal)

	// S3_PRESIGN_TTL_SECONDS (default: 900, enforce > 0)
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	s3Cfg := S3Config{
		Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
		Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
		SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
		PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		PresignTTLSeconds: s3PresignTTL,
		PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
	}

	// UPLOAD_MAX_MB (default: 10)
	uploadMaxMB := envInt("UPLOAD_MAX_MB", 10)

	// UPLOAD_ALLOWED_MIME (default: image/jpeg,image/png,image/webp)
	uploadAllowedMime := os.Getenv("UPLOAD_ALLOWED_MIME")
	if uploadAllowedMime == "" {
		uploadAllowedMime = "image/jpeg,image/png,image/webp"
	}

	// ---------- Diet classification ----------
	dietMode := strings.ToLower(strings.TrimSpace(os.Getenv("DIET_MODE")))
	if dietMode == "" {
		dietMode = DietModeMock
	}
	if dietMode != DietModeMock && dietMode != DietModeHTTP {
		log.Printf("WARNING: unknown DIET_MODE=%q, fallback to %s", dietMode, DietModeMock)
		dietMode = DietModeMock
	}
	dietServiceURL := strings.TrimSpace(os.Getenv("DIET_SERVICE_URL"))
	dietTimeoutSeconds := envInt("DIET_TIMEOUT_SECONDS", 10)
	if dietTimeoutSeconds <= 0 {
		dietTimeoutSeconds = 10
	}
	if dietMode == DietModeHTTP && dietServiceURL == "" {
		log.Fatal("DIET_SERVICE_URL is required when DIET_MODE=http")
	}

	// ---------- Legacy API shim ----------
	// LEGACY_API_ENABLED (default: on; the unscoped routes are deprecated but still served)
	legacyEnabled := true
	if raw := strings.TrimSpace(os.Getenv("LEGACY_API_ENABLED")); raw != "" {
		legacyEnabled = parseBoolEnv("LEGACY_API_ENABLED")
	}
	defaultUserID := strings.TrimSpace(os.Getenv("DEFAULT_USER_ID"))
	if defaultUserID == "" {
		defaultUserID = "default"
	}

	// CLIPPER_MAX_BODY_MB (default: 4)
	clipperMaxBodyMB := envInt("CLIPPER_MAX_BODY_MB", 4)
	if clipperMaxBodyMB <= 0 {
		clipperMaxBodyMB = 4
	}

	// ---------- Auth ----------
	// AUTH_MODE (default: none)
	authMode := strings.ToLower(strings.TrimSpace(os.Getenv("AUTH_MODE")))
	if authMode == "" {
		authMode = AuthModeNone
	}
	if authMode != AuthModeNone && authMode != AuthModeDev {
		log.Printf("WARNING: unknown AUTH_MODE=%q, fallback to none", authMode)
		authMode = AuthModeNone
	}
	authRequired := authMode != AuthModeNone && (os.Getenv("AUTH_REQUIRED") == "1" || strings.EqualFold(os.Getenv("AUTH_REQUIRED"), "true"))

	// JWT_SECRET
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "change_me"
	}
	if jwtSecret == "change_me" && env != "local" {
		log.Println("WARNING: JWT_SECRET is set to 'change_me' in non-local environment!")
	}

	// JWT_ISSUER (default: "neverita")
	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "neverita"
	}

	// JWT_TTL_MINUTES (default: 10080 = 7 days)
	jwtTTLMinutes := envInt("JWT_TTL_MINUTES", 10080)

	return &Config{
		Env:               env,
		Port:              port,
		LogLevel:          logLevel,
		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   rateLimitRPS,
		RateLimitBurst: rateLimitBurst,

		Blob: BlobConfig{Mode: blobMode, S3: s3Cfg},

		UploadMaxMB:       uploadMaxMB,
		UploadAllowedMime: uploadAllowedMime,

		DietMode:           dietMode,
		DietServiceURL:     dietServiceURL,
		DietTimeoutSeconds: dietTimeoutSeconds,

		LegacyAPIEnabled: legacyEnabled,
		DefaultUserID:    defaultUserID,

		ClipperMaxBodyMB: clipperMaxBodyMB,

		AuthMode:      authMode,
		AuthRequired:  authRequired,
		JWTSecret:     jwtSecret,
		JWTIssuer:     jwtIssuer,
		JWTTTLMinutes: jwtTTLMinutes,

		RunMigrationsOnStartup: runMigrationsOnStartup,
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func parseBlobMode(key string, defaultVal string) string {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if mode == "" {
		return defaultVal
	}
	switch mode {
	case BlobModeLocal, BlobModeS3, BlobModeAuto:
		return mode
	default:
		log.Printf("WARNING: unknown %s=%q, fallback to %s", key, mode, defaultVal)
		return defaultVal
	}
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
