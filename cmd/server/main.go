package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialgraph/internal/config"
	"socialgraph/internal/database"
	"socialgraph/internal/handlers"
	"socialgraph/internal/logging"
	"socialgraph/internal/middleware"
	"socialgraph/internal/reporting"
	"socialgraph/internal/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New().SetLevel(logging.ParseLevel(cfg.Server.LogLevel))
	logger.Info("Starting socialgraph server")

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})

	if err := database.MigrateUp(cfg.Database.DSN(), "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("Migrations completed")

	redisDB, err := database.NewRedisDB(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})

	handler := buildHandler(cfg, logger, db, redisDB)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer close(done)
		<-quit
		logger.Info("Server is shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	logger.Info("Server listening", map[string]interface{}{"addr": addr})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}

// buildHandler wires services, handlers and the middleware chain.
func buildHandler(cfg *config.Config, logger *logging.Logger, db *database.PostgresDB, redisDB *database.RedisDB) http.Handler {
	pool := services.NewPoolAdapter(db.Pool)
	sessions := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(pool)
	authService := services.NewAuthService(pool, sessions)
	friendService := services.NewFriendService(pool)

	reporter := reporting.NewLogReporter(logger)

	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, reporter, cfg.Server.Secure)
	userHandler := handlers.NewUserHandler(userService, reporter)
	friendHandler := handlers.NewFriendHandler(friendService, reporter)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	authLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiLimiter := middleware.NewAPIRateLimiter(redisDB.Client)
	requireAuth := authMiddleware.RequireAuth

	mux := http.NewServeMux()

	// Probes: no auth, no rate limit.
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// Identity collaborator.
	mux.Handle("POST /api/auth/register", authLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))

	// User directory.
	mux.Handle("GET /api/users", requireAuth(http.HandlerFunc(userHandler.Search)))

	// Friend-request lifecycle.
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.ListFriends)))
	mux.Handle("GET /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.ListPendingRequests)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/accept", requireAuth(http.HandlerFunc(friendHandler.AcceptRequest)))
	mux.Handle("PUT /api/friends/requests/{id}/reject", requireAuth(http.HandlerFunc(friendHandler.RejectRequest)))

	// Outermost first: access log wraps everything, then the edge
	// limiter, then session resolution.
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = apiLimiter.Limit(handler)
	handler = middleware.AccessLog(logger)(handler)
	return handler
}
