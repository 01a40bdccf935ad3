package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/config"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/infrastructure/models"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/infrastructure/repositories"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/handlers"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/http/middleware"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/interfaces/mcp"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/internal/usecases"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/jwt"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/logger"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/oauth"
	"github.com/joshwhatk/claude-shared-context-mcp-sub000/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt:    false,
			TranslateError: true,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(
			&models.User{},
			&models.ApiKey{},
			&models.SharedContext{},
			&models.ContextHistory{},
			&models.AdminAuditLog{},
		); err != nil {
			return fmt.Errorf("failed to migrate database schema: %w", err)
		}
	}

	// Initialize JWT service and OAuth token verifier
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)
	verifier := oauth.NewTokenVerifier(cfg.OAuth.Secret, cfg.OAuth.Issuer)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	apiKeyRepo := repositories.NewApiKeyRepository(db)
	contextRepo := repositories.NewContextRepository(db)
	auditRepo := repositories.NewAdminAuditRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize Session Store
	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Initialize usecases
	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, userRepo, cfg.Auth.MaxApiKeysPerUser)
	authUsecase := usecases.NewAuthUsecase(userRepo, apiKeyUsecase, verifier, cfg.Auth.AdminEmail)
	contextUsecase := usecases.NewContextUsecase(contextRepo, uow)
	adminUsecase := usecases.NewAdminUsecase(userRepo, apiKeyUsecase, auditRepo, uow)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase, jwtService, sessionStore, cfg.JWT.SessionTTL)
	contextHandler := handlers.NewContextHandler(contextUsecase)
	apiKeyHandler := handlers.NewApiKeyHandler(apiKeyUsecase)
	adminHandler := handlers.NewAdminHandler(adminUsecase)

	// Initialize the MCP facade
	mcpServer := mcp.NewServer(contextUsecase, adminUsecase, authUsecase)

	// Middleware owned by the composition root, not package globals
	dualAuthMiddleware := middleware.DualAuthMiddleware(authUsecase, jwtService, sessionStore)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	registry := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(registry)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.Middleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	r.Any(cfg.Server.MCPPath, gin.WrapH(mcpServer.Handler()))
	registerAPIV1Routes(r, routeDeps{
		authHandler:        authHandler,
		contextHandler:     contextHandler,
		apiKeyHandler:      apiKeyHandler,
		adminHandler:       adminHandler,
		dualAuthMiddleware: dualAuthMiddleware,
		rateLimiter:        rateLimiter,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown: drop every MCP session binding so clients
	// re-authenticate against the next process.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		mcpServer.Shutdown()
	}()

	// Start server
	log.Printf("🚀 Shared Context Server starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("🔌 MCP: http://localhost:%s%s", cfg.Server.Port, cfg.Server.MCPPath)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
