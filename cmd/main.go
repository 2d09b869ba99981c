package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"zelia-app/internal/config"
	"zelia-app/internal/handler"
	"zelia-app/internal/repository"
	"zelia-app/internal/services"
	"zelia-app/internal/utils"
	"zelia-app/internal/utils/mongodb"
)

func main() {
	// go run ./cmd hash-service-key <key> prints the value for INTERNAL_SERVICE_KEY_HASH.
	if len(os.Args) == 3 && os.Args[1] == "hash-service-key" {
		hash, err := utils.HashServiceKey(os.Args[2])
		if err != nil {
			log.Fatalf("Error hashing service key: %v", err)
		}
		fmt.Println(hash)
		return
	}

	baseCtx := context.Background()
	ctx, shutdownManager := utils.NewShutdownManager(baseCtx)
	shutdownManager.StartListening()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error parsing configs: %v", err)
	}

	// MongoDB
	client, err := mongodb.NewMongoDBConnection(ctx, cfg.MongoDB)
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
	}
	db := client.Database(cfg.MongoDB.DBName)
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Disconnecting MongoDB...")
		return client.Disconnect(ctx)
	})

	// Redis
	rdb, err := utils.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	shutdownManager.Register(func(ctx context.Context) error {
		log.Println("[SHUTDOWN] Closing Redis connection...")
		return rdb.Close()
	})

	progressionRepo := repository.NewProgressionRepository(db)
	questionnaireRepo := repository.NewQuestionnaireRepository(db)
	progressionCache := repository.NewProgressionCache(rdb, cfg.Redis.ProgressionTTL)

	store := services.NewProgressionStore(progressionRepo, progressionCache)
	accessSvc := services.NewAccessService(
		utils.NewSubscriptionClient(cfg.Subscription.URL),
		rdb,
		cfg.Redis.EntitlementTTL,
		cfg.Progression.PaidGateLevel,
	)
	notifier := services.NewRedisNotifier(rdb, cfg.Redis.NotificationChan)
	progressionSvc := services.NewProgressionService(store, accessSvc, questionnaireRepo, notifier)

	var jwtUtil *utils.JWTUtil
	if cfg.Auth.JWTSecret != "" {
		jwtUtil = utils.NewJWTUtil(cfg.Auth.JWTSecret)
	}
	authMW := utils.AuthMiddleware(jwtUtil, cfg.Auth.URL)

	publicRouter := handler.NewPublicRouter(handler.NewProgressionHandler(progressionSvc), authMW, cfg.CORS.AllowOrigins)
	internalRouter := handler.NewInternalRouter(
		handler.NewInternalHandler(progressionSvc, map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   rdb.Ping,
		}),
		utils.ServiceKeyMiddleware(cfg.Internal.ServiceKeyHash),
		utils.LoggingMiddleware,
	)

	publicServer := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: publicRouter,
	}
	internalServer := &http.Server{
		Addr:    ":" + cfg.Internal.Port,
		Handler: internalRouter,
	}

	for _, srv := range []*http.Server{publicServer, internalServer} {
		go func(srv *http.Server) {
			log.Println("Progression service listening on", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTP server error: %v", err)
			}
		}(srv)
		shutdownManager.Register(func(ctx context.Context) error {
			log.Printf("[SHUTDOWN] HTTP server %s shutting down...", srv.Addr)
			return srv.Shutdown(ctx)
		})
	}

	shutdownManager.Wait()
}
