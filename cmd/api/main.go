package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mirantsoa/clinic-api/internal/auth"
	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/handlers"
	"github.com/mirantsoa/clinic-api/internal/services"
	"github.com/mirantsoa/clinic-api/internal/store"
	"github.com/mirantsoa/clinic-api/internal/tenant"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, relying on environment variables")
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	registry, err := tenant.Connect(ctx, cfg.Mongo, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to MongoDB")
	}
	log.Info("connected to MongoDB")

	var roleCache auth.RoleCache = auth.NewMemoryRoleCache()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		roleCache = auth.NewRedisRoleCache(client)
		log.Info("connected to Redis")
	}

	sessions := auth.NewManager(cfg.Session, roleCache, roleFetcher(registry))
	notifier := services.NewNotifier(cfg.Mail, log)
	h := handlers.NewHandler(registry, sessions, notifier, cfg, log)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: h.NewRouter(),
	}

	go func() {
		log.WithField("port", cfg.App.Port).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
	if err := registry.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("failed to close mongo client")
	}
}

// roleFetcher adapts the registry into the role-refresh read used by the
// session manager.
func roleFetcher(registry *tenant.Registry) auth.RoleFetcher {
	return func(ctx context.Context, tenantID, userID string) (string, error) {
		id, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return "", store.ErrNotFound
		}
		repos, err := registry.ForTenant(ctx, tenantID)
		if err != nil {
			return "", err
		}
		return repos.Users.RoleOf(ctx, id)
	}
}
