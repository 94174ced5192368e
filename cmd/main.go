package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rencar/internal/auth"
	"rencar/internal/chat"
	"rencar/internal/config"
	"rencar/internal/http_server/handlers/banners"
	"rencar/internal/http_server/handlers/cars"
	chathandler "rencar/internal/http_server/handlers/chat"
	"rencar/internal/http_server/handlers/googlelogin"
	"rencar/internal/http_server/handlers/health"
	"rencar/internal/http_server/handlers/login"
	"rencar/internal/http_server/handlers/packages"
	"rencar/internal/http_server/handlers/posters"
	"rencar/internal/http_server/handlers/profile"
	"rencar/internal/http_server/handlers/refresh"
	resp "rencar/internal/lib/api/response"
	sl "rencar/internal/lib/logger"
	"rencar/internal/lib/token"
	"rencar/internal/media"
	"rencar/internal/middleware/authn"
	rateLimit "rencar/internal/middleware/ratelimit"
	"rencar/internal/models"
	"rencar/internal/rabbitmq"
	"rencar/internal/storage/postgres"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting rencar api", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	key, err := token.LoadKey(cfg.Tokens.Key, cfg.Env == envLocal)
	if err != nil {
		log.Error("failed to load token key", sl.Err(err))
		os.Exit(1)
	}

	codec, err := token.New(cfg.Tokens.Codec, key)
	if err != nil {
		log.Error("failed to build token codec", sl.Err(err))
		os.Exit(1)
	}

	tokenTTL, err := token.ParseTTL(cfg.Tokens.TTL)
	if err != nil {
		log.Error("invalid token ttl", sl.Err(err))
		os.Exit(1)
	}

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer storage.Close()

	if err := storage.Bootstrap(ctx, log); err != nil {
		log.Error("failed to bootstrap database", sl.Err(err))
		os.Exit(1)
	}

	var notifier auth.Notifier = rabbitmq.Noop{}
	if cfg.RabbitMQ.URL != "" {
		msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
		if err != nil {
			log.Error("failed to connect rabbitmq", sl.Err(err))
			os.Exit(1)
		}
		defer msgBroker.Close()
		notifier = msgBroker
	}

	var uploads media.Uploader = media.Disabled{}
	if cfg.Cloudinary.URL != "" {
		cld, err := media.NewCloudinary(cfg.Cloudinary.URL, log)
		if err != nil {
			log.Error("failed to init cloudinary", sl.Err(err))
			os.Exit(1)
		}
		uploads = cld
	}

	authService := auth.New(
		log,
		storage,
		storage,
		auth.NewGoogleVerifier(cfg.Google.ClientID),
		codec,
		notifier,
		tokenTTL,
	)

	chatService := chat.New(log, cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, storage)

	router := setupRouter(log, cfg, authService, chatService, storage, uploads, codec)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", sl.Err(err))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

// contentStore is the slice of the repository the router hands to the
// content handlers.
type contentStore interface {
	cars.Storage
	banners.Storage
	posters.Storage
	packages.Storage
}

func setupRouter(
	log *slog.Logger,
	cfg *config.Config,
	authService *auth.Auth,
	chatService *chat.Service,
	store contentStore,
	uploads media.Uploader,
	codec token.Codec,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	validate := validator.New()

	requireAuth := authn.New(log, codec)
	requireAdmin := authn.RequireRole(models.RoleAdmin)

	r.Get("/health", health.New())

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Login()).Post("/login", login.New(log, validate, authService))
		r.With(rateLimit.GoogleLogin()).Post("/google-login", googlelogin.New(log, validate, authService))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", profile.New(log, authService))
			r.With(rateLimit.Refresh()).Post("/refresh", refresh.New(log, authService))
		})
	})

	r.Route("/api/cars", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", cars.List(log, store))
		r.Post("/", cars.Create(log, store, uploads))
		r.Put("/{id}", cars.Update(log, store, uploads))
		r.With(requireAdmin).Delete("/{id}", cars.Delete(log, store, uploads))
	})

	r.Route("/api/banners", func(r chi.Router) {
		r.Get("/", banners.List(log, store))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", banners.Create(log, store, uploads))
			r.Put("/{id}", banners.Update(log, store, uploads))
			r.With(requireAdmin).Delete("/{id}", banners.Delete(log, store, uploads))
		})
	})

	r.Route("/api/posters", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", posters.List(log, store))
		r.Post("/", posters.Create(log, store, uploads))
		r.Put("/{id}", posters.Update(log, store, uploads))
		r.With(requireAdmin).Delete("/{id}", posters.Delete(log, store, uploads))
	})

	r.Route("/api/packages", func(r chi.Router) {
		r.Get("/", packages.List(log, store))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", packages.Create(log, store, uploads))
			r.Put("/{id}", packages.Update(log, store, uploads))
			r.With(requireAdmin).Delete("/{id}", packages.Delete(log, store, uploads))
		})
	})

	r.With(rateLimit.Chat()).Post("/api/chat", chathandler.New(log, chatService))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("endpoint not found"))
	})

	return r
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
