package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"

	"resumeflow/internal/analyses"
	"resumeflow/internal/credits"
	"resumeflow/internal/documents"
	"resumeflow/internal/extract"
	"resumeflow/internal/llm"
	"resumeflow/internal/llm/openai"
	"resumeflow/internal/payments"
	"resumeflow/internal/portfolio"
	"resumeflow/internal/rewrite"
	"resumeflow/internal/services/health"
	"resumeflow/internal/shared/auth"
	"resumeflow/internal/shared/config"
	"resumeflow/internal/shared/server"
	"resumeflow/internal/shared/storage/db"
	"resumeflow/internal/shared/storage/object"
	localstore "resumeflow/internal/shared/storage/object/local"
	s3store "resumeflow/internal/shared/storage/object/s3"
	"resumeflow/internal/shared/telemetry"
)

// App holds the wired dependencies of one process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Credits  credits.Store
	Store    object.ObjectStore
	Verifier auth.Verifier
	LLM      llm.Completer
	Gate     *credits.Gate
	Health   *health.Service

	AnalysesService  *analyses.Service
	RewriteService   *rewrite.Service
	PortfolioService *portfolio.Service
	DocumentsService *documents.Service
	PaymentsService  *payments.Service

	firebase  *firebase.App
	firestore *firestore.Client
}

// Build wires configuration into a ready router.
func Build(cfg config.Config) (*App, error) {
	return BuildContext(context.Background(), cfg)
}

// BuildContext is Build with a caller-supplied context for client setup.
func BuildContext(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	app := &App{Config: cfg}

	if err := app.buildCredits(ctx); err != nil {
		app.Close()
		return nil, err
	}
	verifier, err := app.buildVerifier(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Verifier = verifier

	store, err := buildStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = store

	policy, err := credits.ParseRefundPolicy(cfg.RefundPolicy)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Gate = credits.NewGate(app.Credits, policy)
	app.LLM = buildCompleter(cfg)

	app.AnalysesService = analyses.NewService(app.Gate, app.LLM)
	app.RewriteService = rewrite.NewService(app.Gate, app.LLM)
	app.PortfolioService = portfolio.NewService(app.Gate, app.Store)
	app.DocumentsService = documents.NewService(extract.New(cfg.ExtractTimeout))
	app.PaymentsService = payments.NewService(buildPaymentProvider(cfg), app.Credits, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)

	app.Health = health.NewService()
	if app.DB != nil {
		app.Health.Add("database", app.DB.PingContext)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Verifier: app.Verifier,
		Health:   app.Health,
		Handlers: []server.Registrar{
			credits.NewHandler(app.Credits),
			documents.NewHandler(app.DocumentsService),
			analyses.NewHandler(app.AnalysesService),
			rewrite.NewHandler(app.RewriteService),
			portfolio.NewHandler(app.PortfolioService),
			payments.NewHandler(app.PaymentsService),
		},
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":           cfg.Env,
		"entitlements":  cfg.EntitlementBackend,
		"auth_provider": cfg.AuthProvider,
		"object_store":  cfg.ObjectStoreType,
		"refund_policy": policy.Name(),
	})
	return app, nil
}

// Close releases database and Firestore connections.
func (a *App) Close() {
	if a.firestore != nil {
		_ = a.firestore.Close()
	}
	if a.DB != nil && !db.IsLambdaRuntime() {
		_ = a.DB.Close()
	}
}

func (a *App) buildCredits(ctx context.Context) error {
	cfg := a.Config
	switch cfg.EntitlementBackend {
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return err
		}
		if sqlDB == nil {
			a.Credits = credits.NewMemoryStore(cfg.DefaultCredits)
			return nil
		}
		a.DB = sqlDB
		if cfg.AutoMigrate {
			if err := db.RunMigrations(ctx, sqlDB); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
		}
		a.Credits = credits.NewPGStore(sqlDB, cfg.DefaultCredits)
	case "firestore":
		fbApp, err := a.firebaseApp(ctx)
		if err != nil {
			return err
		}
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return fmt.Errorf("firestore client: %w", err)
		}
		a.firestore = client
		a.Credits = credits.NewFirestoreStore(client, cfg.DefaultCredits)
	default:
		if !config.IsDevLike(cfg.Env) && cfg.Env != "test" {
			telemetry.Warn("bootstrap.memory_entitlements", map[string]any{"env": cfg.Env})
		}
		a.Credits = credits.NewMemoryStore(cfg.DefaultCredits)
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.ProfileLambda))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.ProfileServer))
	}
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{
				"fallback": "memory",
				"error":    err.Error(),
			})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func (a *App) buildVerifier(ctx context.Context) (auth.Verifier, error) {
	cfg := a.Config
	switch cfg.AuthProvider {
	case "firebase":
		fbApp, err := a.firebaseApp(ctx)
		if err != nil {
			return nil, err
		}
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase auth client: %w", err)
		}
		return auth.NewFirebaseVerifier(client)
	case "", "jwt":
		return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	default:
		return nil, fmt.Errorf("unknown AUTH_PROVIDER %q", cfg.AuthProvider)
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, s3store.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildCompleter returns the chat client, wrapped in a breaker when enabled.
// Without an API key it returns nil and the AI services refuse paid calls
// before touching the credit gate.
func buildCompleter(cfg config.Config) llm.Completer {
	client, err := openai.NewClient(openai.Options{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	if err != nil {
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"error": err.Error()})
		return nil
	}
	if !cfg.LLMBreakerEnabled {
		return client
	}
	return llm.NewBreaker(client, llm.DefaultBreakerSettings())
}

func buildPaymentProvider(cfg config.Config) payments.Provider {
	if strings.TrimSpace(cfg.StripeSecretKey) == "" {
		telemetry.Warn("bootstrap.payments_unconfigured", nil)
		return nil
	}
	return payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
}
