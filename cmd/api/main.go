package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/stayrewards/stayrewards-api/internal/config"
	"github.com/stayrewards/stayrewards-api/internal/domain/auth"
	"github.com/stayrewards/stayrewards-api/internal/domain/loyalty"
	"github.com/stayrewards/stayrewards-api/internal/domain/user"
	"github.com/stayrewards/stayrewards-api/internal/middleware"
	"github.com/stayrewards/stayrewards-api/internal/pkg/database"
	"github.com/stayrewards/stayrewards-api/internal/pkg/jwt"
	"github.com/stayrewards/stayrewards-api/internal/pkg/logger"
	pkgresponse "github.com/stayrewards/stayrewards-api/internal/pkg/response"
)

// Credential endpoints get a tighter per-IP budget than the rest of the API
const (
	authRateLimitRPS   = 1
	authRateLimitBurst = 5
)

func main() {
	cfg := config.Load()
	closeLog := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	})
	defer closeLog()

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting StayRewards API")

	for key, value := range map[string]string{
		"JWT_ACCESS_EXPIRATION":  cfg.JWTAccessExpiration,
		"JWT_REFRESH_EXPIRATION": cfg.JWTRefreshExpiration,
	} {
		if !jwt.IsValidExpiration(value) {
			log.Warn().
				Str("key", key).
				Str("value", value).
				Int64("fallback_seconds", jwt.FallbackExpirationSeconds).
				Msg("Unparseable token lifetime, using fallback")
		}
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	redis, err := database.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	tiers, err := loyalty.LoadTierTable(cfg.TierConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tier configuration")
	}
	log.Info().Int("tiers", len(tiers.Tiers())).Str("path", cfg.TierConfigPath).Msg("Tier table loaded")

	jwtService := jwt.NewService(jwt.Config{
		AccessSecret:      cfg.JWTAccessSecret,
		RefreshSecret:     cfg.JWTRefreshSecret,
		AccessExpiration:  cfg.JWTAccessExpiration,
		RefreshExpiration: cfg.JWTRefreshExpiration,
	})

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	loyaltyRepo := loyalty.NewRepository(db)

	// ---------- Services ----------
	loginThrottle := auth.NewRedisLoginThrottle(redis, auth.DefaultMaxLoginAttempts, auth.DefaultLoginAttemptWindow)
	authService := auth.NewService(userRepo, jwtService, loginThrottle)
	loyaltyService := loyalty.NewService(loyaltyRepo, tiers, loyalty.NewRedisAccountCache(redis, loyalty.AccountCacheTTL))

	// ---------- Router ----------
	r := newRouter(routerDeps{
		authHandler:    auth.NewHandler(authService),
		loyaltyHandler: loyalty.NewHandler(loyaltyService),
		tokens:         jwtService,
		apiLimiter:     middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		authLimiter:    middleware.NewIPRateLimiter(authRateLimitRPS, authRateLimitBurst),
		allowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		return
	}

	log.Info().Msg("Server exited properly")
}

type routerDeps struct {
	authHandler    *auth.Handler
	loyaltyHandler *loyalty.Handler
	tokens         middleware.AccessTokenValidator
	apiLimiter     *middleware.IPRateLimiter
	authLimiter    *middleware.IPRateLimiter
	allowedOrigins []string
}

func newRouter(d routerDeps) http.Handler {
	authMiddleware := middleware.Auth(d.tokens)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(d.allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(d.apiLimiter))

		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/auth", d.authHandler.Routes(authMiddleware, middleware.RateLimit(d.authLimiter)))
		r.Mount("/loyalty", d.loyaltyHandler.Routes(authMiddleware))
	})

	return r
}
