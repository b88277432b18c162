package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"resumeflow/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Env             string   `envconfig:"ENV" default:"dev"`
	LogLevel        string   `envconfig:"LOG_LEVEL" default:"info"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`

	DatabaseURL        string `envconfig:"DATABASE_URL"`
	AutoMigrate        bool   `envconfig:"AUTO_MIGRATE" default:"false"`
	EntitlementBackend string `envconfig:"ENTITLEMENT_BACKEND"`
	DefaultCredits     int    `envconfig:"DEFAULT_CREDITS" default:"5"`
	RefundPolicy       string `envconfig:"CREDIT_REFUND_POLICY" default:"none"`

	AuthProvider string `envconfig:"AUTH_PROVIDER" default:"jwt"`
	JWTSecret    string `envconfig:"JWT_SECRET"`
	JWTIssuer    string `envconfig:"JWT_ISSUER"`
	JWTAudience  string `envconfig:"JWT_AUDIENCE"`

	FirebaseProjectID      string `envconfig:"FIREBASE_PROJECT_ID"`
	FirebaseCredentials    string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseCredentialsB64 string `envconfig:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	ObjectStoreType string `envconfig:"OBJECT_STORE" default:"local"`
	LocalStoreDir   string `envconfig:"LOCAL_STORE_DIR" default:"./data"`
	AWSRegion       string `envconfig:"AWS_REGION"`
	S3Bucket        string `envconfig:"S3_BUCKET"`
	S3Prefix        string `envconfig:"S3_PREFIX" default:"portfolios"`
	SSEKMSKeyID     string `envconfig:"SSE_KMS_KEY_ID"`

	LLMAPIKey         string        `envconfig:"LONGCAT_API_KEY"`
	LLMBaseURL        string        `envconfig:"LLM_BASE_URL" default:"https://api.longcat.ai/v1/chat/completions"`
	LLMModel          string        `envconfig:"LLM_MODEL" default:"gpt-4o"`
	LLMTimeout        time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	LLMBreakerEnabled bool          `envconfig:"LLM_BREAKER_ENABLED" default:"true"`
	ExtractTimeout    time.Duration `envconfig:"EXTRACT_TIMEOUT" default:"20s"`

	AIRatePerMinute int `envconfig:"AI_RATE_PER_MINUTE" default:"20"`
	AIRateBurst     int `envconfig:"AI_RATE_BURST" default:"5"`

	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	CheckoutSuccessURL  string `envconfig:"CHECKOUT_SUCCESS_URL" default:"http://localhost:3000/?payment=success"`
	CheckoutCancelURL   string `envconfig:"CHECKOUT_CANCEL_URL" default:"http://localhost:3000/?payment=cancel"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	for _, path := range []string{".env", "cmd/.env"} {
		if err := godotenv.Load(path); err == nil {
			telemetry.Info("config.env_file_loaded", map[string]any{"path": path})
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env config: %w", err)
	}
	cfg.normalize()

	if cfg.Env == "production" && cfg.DatabaseURL == "" && cfg.EntitlementBackend == "postgres" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres entitlement backend")
	}
	return cfg, nil
}

// MustLoad is Load for binaries that cannot start without configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.CORSAllowOrigin = trimAll(c.CORSAllowOrigin)
	c.AuthProvider = strings.ToLower(strings.TrimSpace(c.AuthProvider))
	c.RefundPolicy = strings.ToLower(strings.TrimSpace(c.RefundPolicy))
	c.EntitlementBackend = normalizeBackend(c.EntitlementBackend, c.DatabaseURL)
	if c.DefaultCredits < 0 {
		c.DefaultCredits = 0
	}
}

// IsDevLike reports whether env tolerates missing infrastructure.
func IsDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeBackend(raw, databaseURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "firestore":
		return "firestore"
	case "memory":
		return "memory"
	}
	if strings.TrimSpace(databaseURL) != "" {
		return "postgres"
	}
	return "memory"
}
