package bootstrap

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ae-triage-intake/config"
	deliveryHttp "ae-triage-intake/internal/delivery/http"
	"ae-triage-intake/internal/delivery/http/handler"
	"ae-triage-intake/internal/delivery/http/middleware"
	domainRepo "ae-triage-intake/internal/domain/repository"
	"ae-triage-intake/internal/infrastructure/cache"
	"ae-triage-intake/internal/infrastructure/llm"
	"ae-triage-intake/internal/repository"
	"ae-triage-intake/internal/service"
	"ae-triage-intake/internal/usecase"
	"ae-triage-intake/pkg/jwt"
	"ae-triage-intake/pkg/metrics"
	"ae-triage-intake/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	Log         *logrus.Logger
	RedisClient *redis.Client
	MemoryStore *repository.MemoryIntakeSessionRepository
	Locker      *service.SessionLocker
	Server      *http.Server
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Setup logger
	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
		log.Warn("SESSION_SECRET is not set, using a random secret; tokens will not survive a restart")
	}
	if cfg.Reasoning.APIKey == "" {
		log.Warn("OPENAI_API_KEY is not set, every triage suggestion will use the local fallback")
	}

	// Initialize session store
	sessionRepo, err := app.initializeSessionStore(cfg, log)
	if err != nil {
		return nil, err
	}

	// Initialize all layers
	app.Locker = service.NewSessionLocker(log)
	app.Server = initializeServer(cfg, log, sessionRepo, app.Locker)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)

	return logrus.StandardLogger()
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (app *App) initializeSessionStore(cfg *config.Config, log *logrus.Logger) (domainRepo.IntakeSessionRepository, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient, err := cache.NewRedisClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		log.Info("Redis session store connected successfully")
		return repository.NewRedisIntakeSessionRepository(redisClient, cfg.Session.TTL, log), nil
	default:
		store := repository.NewMemoryIntakeSessionRepository(cfg.Session.TTL, log)
		app.MemoryStore = store
		log.Info("Using in-memory session store")
		return store, nil
	}
}

// initializeServer creates and configures the HTTP server
func initializeServer(cfg *config.Config, log *logrus.Logger, sessionRepo domainRepo.IntakeSessionRepository, locker *service.SessionLocker) *http.Server {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.Session)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize metrics
	collector := metrics.NewCollector(cfg.Metrics.Namespace)

	// Initialize repositories
	complaintRepo := repository.NewComplaintRepository()

	// Initialize services
	reasoningClient := llm.NewReasoningClient(cfg.Reasoning, log)
	eprService := service.NewEPRService(log)

	// Initialize usecases
	complaintUsecase := usecase.NewComplaintUsecase(log, complaintRepo)
	intakeUsecase := usecase.NewIntakeUsecase(log, sessionRepo, complaintRepo, reasoningClient, eprService, locker, jwtService, collector)

	// Initialize handlers
	intakeHandler := handler.NewIntakeHandler(intakeUsecase, customValidator)
	triageHandler := handler.NewTriageHandler(intakeUsecase, customValidator)
	complaintHandler := handler.NewComplaintHandler(complaintUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)
	metricsMiddleware := middleware.NewMetricsMiddleware(collector, log)
	triageRateLimit := middleware.NewRateLimitMiddleware(cfg.Triage.RateLimit, log)

	// Initialize router
	router := deliveryHttp.NewRouter(
		intakeHandler,
		triageHandler,
		complaintHandler,
		authMiddleware,
		corsMiddleware,
		metricsMiddleware,
		triageRateLimit,
		collector,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Log.Info("Shutting down server...")

	// In-flight triage requests may be waiting on the backend
	ctx, cancel := context.WithTimeout(context.Background(), app.Config.Reasoning.Timeout+5*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	app.Log.Info("Server shutdown complete")
}

// Close stops background workers and closes connections
func (app *App) Close() {
	if app.Locker != nil {
		app.Locker.Stop()
	}

	if app.MemoryStore != nil {
		app.MemoryStore.Stop()
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
