// @title        Group Apply API
// @version      1.0
// @description  Coordinate group applications to job postings.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/groupapply/docs"
	"github.com/fkhayef/groupapply/internal/application"
	"github.com/fkhayef/groupapply/internal/cache"
	"github.com/fkhayef/groupapply/internal/config"
	"github.com/fkhayef/groupapply/internal/database"
	"github.com/fkhayef/groupapply/internal/group"
	"github.com/fkhayef/groupapply/internal/identity"
	"github.com/fkhayef/groupapply/internal/job"
	"github.com/fkhayef/groupapply/internal/notification"
	"github.com/fkhayef/groupapply/internal/user"
	mw "github.com/fkhayef/groupapply/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	ttl := cfg.TTLs()

	// Initialize database connection
	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to %s database successfully", cfg.DBDriver)

	if err := database.Migrate(db, cfg.DBDriver); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	c := newCache(cfg)

	// Job feature
	jobService := job.NewService(job.NewRepository(db), c, ttl.Groups)
	jobHandler := job.NewHandler(jobService)

	// User feature
	userService := user.NewService(user.NewRepository(db), c, ttl.Identity)
	userHandler := user.NewHandler(userService)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db), c, ttl.Notification)
	notificationHandler := notification.NewHandler(notificationService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(db, groupRepo, jobService, notificationService, userService, c, ttl.Groups, cfg.InviteBaseURL)
	groupHandler := group.NewHandler(groupService)

	// Application feature
	applicationService := application.NewService(db, application.NewRepository(db), groupRepo, jobService, notificationService, c, ttl.Groups)
	applicationHandler := application.NewHandler(applicationService)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(mw.CORS(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(identityMiddleware(cfg))

		// Mount feature routers
		r.Mount("/users", userHandler.Routes())
		r.Mount("/jobs", jobHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/applications", applicationHandler.Routes())
		r.Mount("/notifications", notificationHandler.Routes())
	})

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// newCache picks the cache driver. An unreachable Redis falls back to the
// in-process cache; the cache is never required for correctness.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.CacheDriver != "redis" {
		log.Println("Using in-process cache")
		return cache.NewMemory()
	}

	client, err := cache.NewRedisClient(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, using in-process cache: %v", err)
		return cache.NewMemory()
	}
	log.Printf("Using redis cache at %s", cfg.RedisURL)
	return cache.NewRedis(client, "groupapply:")
}

func identityMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	if cfg.AuthMode == "jwt" {
		return mw.AuthMiddleware(identity.NewVerifier(cfg.JWTSecret))
	}
	log.Println("WARNING: dev identity mode, callers are taken from X-User-ID headers")
	return mw.DevIdentityMiddleware
}
