package config

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                = "8080"
	DefaultAccessTokenExpiry   = 60 // minutes
	DefaultLoginMaxAttempts    = 5
	DefaultLockoutMinutes      = 15
	DefaultRateLimitMax        = 10
	DefaultRateLimitWindowMs   = 60000
	DefaultRapidScanMax        = 5
	DefaultRapidScanWindowSec  = 60
	DefaultAuthLookupTimeoutMs = 3000
	DefaultAuditBufferSize     = 256

	vaultKeyPrefix = "base64:"
)

// RiskWeights are the per-signal contributions to a scan's risk score.
// Tunable configuration, not invariants; defaults mirror the values the
// fraud heuristics originally shipped with.
type RiskWeights struct {
	RapidScanning    int
	UnusualLocation  int
	MultipleDevices  int
	OffHours         int
	ForeignOwnerScan int
}

type Config struct {
	Env  string
	Port string

	DBURL     string
	RedisAddr string
	AMQPURL   string

	JWTSecret         string
	AccessExpiryMin   int
	LoginMaxAttempts  int
	LockoutMinutes    int
	AuthLookupTimeout int // milliseconds

	RateLimitMax      int
	RateLimitWindowMs int

	RapidScanMax       int
	RapidScanWindowSec int
	Risk               RiskWeights

	UploadDir string

	// VaultKey is the decoded 32-byte AES key; nil means encryption disabled.
	VaultKey []byte

	AuditBufferSize int
}

func Load() *Config {
	env := getEnv("ENV", "development")

	// Environment variables win over the file, matching godotenv semantics.
	envFile := "config/.env.dev"
	if env == "production" {
		envFile = "config/.env.prod"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Printf("no %s file found, relying on environment", envFile)
	}

	cfg := &Config{
		Env:                env,
		Port:               getEnv("PORT", DefaultPort),
		DBURL:              mustGetEnv("DB_URL"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		AMQPURL:            getEnv("AMQP_URL", ""),
		JWTSecret:          mustGetEnv("JWT_SECRET"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY", DefaultAccessTokenExpiry),
		LoginMaxAttempts:   getEnvAsInt("LOGIN_MAX_ATTEMPTS", DefaultLoginMaxAttempts),
		LockoutMinutes:     getEnvAsInt("LOCKOUT_MINUTES", DefaultLockoutMinutes),
		AuthLookupTimeout:  getEnvAsInt("AUTH_LOOKUP_TIMEOUT_MS", DefaultAuthLookupTimeoutMs),
		RateLimitMax:       getEnvAsInt("RATE_LIMIT_MAX", DefaultRateLimitMax),
		RateLimitWindowMs:  getEnvAsInt("RATE_LIMIT_WINDOW_MS", DefaultRateLimitWindowMs),
		RapidScanMax:       getEnvAsInt("RAPID_SCAN_MAX", DefaultRapidScanMax),
		RapidScanWindowSec: getEnvAsInt("RAPID_SCAN_WINDOW_SEC", DefaultRapidScanWindowSec),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		AuditBufferSize:    getEnvAsInt("AUDIT_BUFFER_SIZE", DefaultAuditBufferSize),
		Risk: RiskWeights{
			RapidScanning:    getEnvAsInt("RISK_WEIGHT_RAPID_SCANNING", 25),
			UnusualLocation:  getEnvAsInt("RISK_WEIGHT_UNUSUAL_LOCATION", 20),
			MultipleDevices:  getEnvAsInt("RISK_WEIGHT_MULTIPLE_DEVICES", 30),
			OffHours:         getEnvAsInt("RISK_WEIGHT_OFF_HOURS", 10),
			ForeignOwnerScan: getEnvAsInt("RISK_WEIGHT_FOREIGN_OWNER_SCAN", 15),
		},
	}

	cfg.VaultKey = decodeVaultKey(os.Getenv("FILE_ENCRYPTION_KEY"))

	return cfg
}

// Validate rejects configurations that are tolerable in development but not
// in production, notably running without file encryption.
func (c *Config) Validate() error {
	if c.Env == "production" && c.VaultKey == nil {
		return fmt.Errorf("FILE_ENCRYPTION_KEY must be set in production")
	}
	return nil
}

// decodeVaultKey parses the base64 key material, tolerating an optional
// "base64:" prefix. A missing or malformed key disables encryption rather
// than aborting startup; Validate enforces the production policy.
func decodeVaultKey(raw string) []byte {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		log.Printf("warn: FILE_ENCRYPTION_KEY not set - file encryption disabled")
		return nil
	}
	raw = strings.TrimPrefix(raw, vaultKeyPrefix)
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		log.Printf("warn: invalid FILE_ENCRYPTION_KEY format, file encryption disabled: %v", err)
		return nil
	}
	if len(key) != 32 {
		log.Printf("warn: FILE_ENCRYPTION_KEY must decode to 32 bytes, got %d - file encryption disabled", len(key))
		return nil
	}
	return key
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required config: %s", key)
	return ""
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %d", key, defaultVal)
		return defaultVal
	}
	return val
}
