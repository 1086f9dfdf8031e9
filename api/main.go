package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/arbiter/api/audit"
	"github.com/dev-mohitbeniwal/arbiter/api/config"
	"github.com/dev-mohitbeniwal/arbiter/api/controller"
	"github.com/dev-mohitbeniwal/arbiter/api/db"
	"github.com/dev-mohitbeniwal/arbiter/api/engine"
	logger "github.com/dev-mohitbeniwal/arbiter/api/logging"
	"github.com/dev-mohitbeniwal/arbiter/api/oracle"
	"github.com/dev-mohitbeniwal/arbiter/api/oversight"
	"github.com/dev-mohitbeniwal/arbiter/api/registry"
	"github.com/dev-mohitbeniwal/arbiter/api/router"
	"github.com/dev-mohitbeniwal/arbiter/api/rules"
	"github.com/dev-mohitbeniwal/arbiter/api/service"
	"github.com/dev-mohitbeniwal/arbiter/api/tools"
	"github.com/dev-mohitbeniwal/arbiter/api/util"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	// Initialize logger
	logger.InitLogger(config.GetString("log.dir"))
	defer logger.Sync()

	// Initialize Redis
	if err := db.InitRedis(); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer db.CloseRedis()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize EventBus
	eventBus := util.NewEventBus()
	eventBus.Start(ctx)

	// Load rule sets. Refusing to start beats starting with nothing to decide
	// against.
	ruleRepo, err := rules.NewRepository(config.GetString("rules.file"))
	if err != nil {
		logger.Fatal("Failed to load rule sets", zap.Error(err))
	}
	if config.GetBool("rules.watch") {
		if err := ruleRepo.Watch(ctx); err != nil {
			logger.Fatal("Failed to watch rule file", zap.Error(err))
		}
	}

	// Initialize the action store
	store, err := tools.NewStore(config.GetString("sqlite.path"))
	if err != nil {
		logger.Fatal("Failed to initialize action store", zap.Error(err))
	}

	// Initialize the audit trail. Elasticsearch when configured, in-process
	// otherwise.
	var auditRepo audit.Repository
	if esURL := config.GetString("elasticsearch.url"); esURL != "" {
		auditRepo, err = audit.NewElasticsearchRepository(esURL, config.GetString("audit.index"))
		if err != nil {
			logger.Fatal("Failed to initialize audit repository", zap.Error(err))
		}
	} else {
		logger.Warn("No Elasticsearch URL configured, audit trail is in-process only")
		auditRepo = audit.NewMemoryRepository()
	}
	auditService := audit.NewService(auditRepo)

	// Initialize the reasoning oracle
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Fatal("GEMINI_API_KEY is not set")
	}
	gemini, err := oracle.NewGeminiOracle(ctx, apiKey, config.GetString("oracle.model"))
	if err != nil {
		logger.Fatal("Failed to initialize oracle", zap.Error(err))
	}
	defer gemini.Close()

	// Initialize the decision engine
	decisionCache := db.NewDecisionCache(db.RedisClient, config.GetDuration("dedup.window"))
	decisionEngine := engine.NewEngine(gemini, decisionCache, engine.Config{
		Timeout:    config.GetDuration("oracle.timeout"),
		MaxRetries: config.GetInt("oracle.maxRetries"),
		Backoff:    config.GetDuration("oracle.retryBackoff"),
	})

	// Initialize the tool registry and executor
	toolRegistry := registry.NewRegistry()
	if err := tools.RegisterBuiltins(toolRegistry, store); err != nil {
		logger.Fatal("Failed to register tools", zap.Error(err))
	}
	executionGuard := db.NewExecutionGuard(db.RedisClient, 24*time.Hour)
	executor := registry.NewExecutor(toolRegistry, executionGuard)

	// Initialize the oversight pass with its own oracle so the review model
	// can differ from the decision model.
	reviewer, err := oracle.NewGeminiOracle(ctx, apiKey, config.GetString("oversight.model"))
	if err != nil {
		logger.Fatal("Failed to initialize oversight oracle", zap.Error(err))
	}
	defer reviewer.Close()

	notificationService := util.NewNotificationService()
	flagFanout := &util.FlagFanout{Bus: eventBus, Notifier: notificationService}
	oversightPass := oversight.NewPass(reviewer, auditService, flagFanout, oversight.Config{
		Workers:       config.GetInt("oversight.workers"),
		QueueSize:     config.GetInt("oversight.queueSize"),
		Timeout:       config.GetDuration("oversight.timeout"),
		MinConfidence: config.GetFloat64("oversight.minConfidence"),
	})
	oversightPass.Start(ctx)

	// Initialize the decision service
	validationUtil := util.NewValidationUtil()
	decisionService := service.NewDecisionService(
		ruleRepo,
		decisionEngine,
		executor,
		store,
		auditService,
		oversightPass,
		validationUtil,
		notificationService,
		eventBus,
	)

	// Initialize controllers and routes
	controllers := controller.InitializeControllers(decisionService)

	gin.SetMode(gin.ReleaseMode)
	engineRouter := router.SetupRouter(
		controllers,
		config.GetInt("ratelimit.requests"),
		config.GetDuration("ratelimit.window"),
	)

	// Set up the server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", config.GetString("server.port")),
		Handler: engineRouter,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", config.GetString("server.port")))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain queued oversight reviews before exit
	oversightPass.Stop()

	logger.Info("Server exiting")
}
