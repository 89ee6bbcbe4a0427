// cmd/api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/jiyadkamal/bike/internal/auth"
	"github.com/jiyadkamal/bike/internal/config"
	"github.com/jiyadkamal/bike/internal/email"
	"github.com/jiyadkamal/bike/internal/handler"
	"github.com/jiyadkamal/bike/internal/middleware"
	"github.com/jiyadkamal/bike/internal/model"
	"github.com/jiyadkamal/bike/internal/repository"
	"github.com/jiyadkamal/bike/internal/service"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: true,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   a.Key,
					Value: slog.StringValue(a.Value.Time().Format(time.RFC3339)),
				}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := setupDatabase(cfg)
	if err != nil {
		return fmt.Errorf("setting up database: %w", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	// Initialize auth primitives. Access and refresh tokens are signed with
	// independent secrets so one class can never stand in for the other.
	passwordHasher := auth.NewPasswordHasher()
	accessTokens := auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.AccessExpiry)
	refreshTokens := auth.NewTokenManager(cfg.JWT.RefreshSecret, cfg.JWT.RefreshExpiry)

	// Initialize email service. Sendgrid when a key is configured, plain
	// SMTP as fallback; with neither the admin service skips sending.
	var emailService *email.Service
	switch {
	case cfg.Sendgrid.APIKey != "":
		emailService, err = email.NewEmailService(cfg, email.ProviderSendgrid)
	case len(cfg.SMTP) > 0:
		emailService, err = email.NewEmailService(cfg, email.ProviderSMTP)
	default:
		logger.Warn("no email provider configured, application decision emails disabled")
	}
	if err != nil {
		return fmt.Errorf("initializing email service: %w", err)
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, passwordHasher, accessTokens, refreshTokens)
	sessionService := service.NewSessionService(userRepo, accessTokens)
	orgService := service.NewOrganizationService(orgRepo)
	messageService := service.NewMessageService(messageRepo, orgRepo)
	adminService := service.NewAdminService(userRepo, orgRepo, passwordHasher, emailService)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessionService, cfg)
	orgHandler := handler.NewOrganizationHandler(orgService)
	messageHandler := handler.NewMessageHandler(messageService)
	adminHandler := handler.NewAdminHandler(adminService)

	// Create router
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(loggingMiddleware(logger))
	r.Use(recoveryMiddleware(logger))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Route("/auth", func(r chi.Router) {
			// Refresh and logout read cookies rather than bodies, so the
			// content-type gate only wraps the JSON endpoints.
			r.Post("/refresh", authHandler.RefreshHandler)
			r.Post("/logout", authHandler.LogoutHandler)

			r.Group(func(r chi.Router) {
				r.Use(chimw.AllowContentType("application/json"))

				r.Post("/register", authHandler.RegisterHandler)
				r.Post("/login", authHandler.LoginHandler)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(sessionService))

			r.Get("/auth/me", authHandler.MeHandler)
			r.Put("/auth/me", authHandler.UpdateProfileHandler)

			r.Route("/organizations", func(r chi.Router) {
				r.Get("/", orgHandler.ListHandler)
				r.Post("/", orgHandler.CreateHandler)
				r.Get("/my", orgHandler.ListMineHandler)
				r.Get("/{id}", orgHandler.GetHandler)
				r.Put("/{id}", orgHandler.UpdateHandler)
				r.Post("/{id}/join", orgHandler.JoinHandler)
				r.Post("/{id}/approve/{uid}", orgHandler.ApproveHandler)
				r.Delete("/{id}/members/{uid}", orgHandler.RemoveMemberHandler)
			})

			r.Route("/messages/{orgId}", func(r chi.Router) {
				r.Get("/", messageHandler.ListHandler)
				r.Post("/", messageHandler.SendHandler)
			})

			// Admin routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Get("/users", adminHandler.ListUsersHandler)
				r.Post("/users", adminHandler.CreateUserHandler)
				r.Put("/users/{uid}", adminHandler.UpdateUserHandler)
				r.Delete("/users/{uid}", adminHandler.DeleteUserHandler)
				r.Get("/applications", adminHandler.ListApplicationsHandler)
				r.Post("/applications/{uid}/approve", adminHandler.ApproveApplicationHandler)
				r.Post("/applications/{uid}/reject", adminHandler.RejectApplicationHandler)
				r.Get("/stats", adminHandler.StatsHandler)
			})
		})
	})

	// Create server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Server error channel
	serverErrors := make(chan error, 1)

	// Start server
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Shutdown channel
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	// Wait for shutdown or error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown started", "signal", sig)

		// Give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Gracefully shutdown the server
		if err := srv.Shutdown(ctx); err != nil {
			// If shutdown times out, forcefully close
			srv.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

func setupDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.SearchPath,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Surfaces unique violations as gorm.ErrDuplicatedKey, which the
		// repositories map to domain errors.
		TranslateError: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// citext backs the case-insensitive unique index on users.email.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS citext").Error; err != nil {
		return nil, fmt.Errorf("creating citext extension: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Organization{},
		&model.OrganizationMember{},
		&model.JoinRequest{},
		&model.RefreshToken{},
		&model.Message{},
	); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting database instance: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"duration", time.Since(start),
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"requestID", chimw.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func recoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					err := errors.New("panic recovered")
					logger.Error("panic recovered",
						"error", err,
						"panic", rvr,
						"stack", string(debug.Stack()),
						"requestID", chimw.GetReqID(r.Context()),
					)

					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"error":"error encountered"}`))
					return
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
