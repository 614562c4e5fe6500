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

	"captain-smart/internal/cleanup"
	"captain-smart/internal/config"
	"captain-smart/internal/database"
	"captain-smart/internal/engine"
	"captain-smart/internal/handlers"
	"captain-smart/internal/media"
	"captain-smart/internal/middleware"
	"captain-smart/internal/utils"
	ws "captain-smart/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := database.NewMongoDB(cfg.Database.URI, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(ctx); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(indexCtx, cfg.Cleanup.CommentRetention, cfg.Cleanup.ViewRetention); err != nil {
		cancel()
		log.Fatalf("Failed to ensure indexes: %v", err)
	}
	cancel()

	mediaStore, err := media.NewS3Store(cfg.Media.Region, cfg.Media.Bucket, cfg.Media.Endpoint)
	if err != nil {
		log.Fatalf("Failed to initialize media store: %v", err)
	}

	metrics := utils.NewMetricsCollector()

	hub := ws.NewHub()
	go hub.Run()

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, store, hub, metrics, cfg.Cleanup.FatigueWindow)

	cleanupSvc := cleanup.NewService(store, mediaStore, metrics)
	scheduler := cleanup.NewScheduler(cleanupSvc, cfg.Cleanup.PrimaryInterval, cfg.Cleanup.BackupInterval)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start cleanup scheduler: %v", err)
	}
	defer scheduler.Stop()

	server := handlers.NewServer(
		system,
		eng,
		metrics,
		store,
		mediaStore,
		cleanupSvc,
		hub,
		cfg.Admin.JWTSecret,
		cfg.Admin.PasswordHash,
	)

	mux := http.NewServeMux()

	// Public surface
	mux.HandleFunc("/health", server.HandleHealth())
	mux.HandleFunc("/api/exposes", server.HandleExposes())
	mux.HandleFunc("/api/exposes/votes", server.HandleVote())
	mux.HandleFunc("/api/exposes/views", server.HandleView())
	mux.HandleFunc("/api/exposes/shares", server.HandleShare())
	mux.HandleFunc("/api/comments", server.HandleComments())
	mux.HandleFunc("/ws/engagement", server.HandleEngagementFeed())

	// Articles: reads are public, publishing is an admin operation.
	articles := server.HandleArticles()
	mux.HandleFunc("/api/articles", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			middleware.AdminAuth(cfg.Admin.JWTSecret, articles)(w, r)
			return
		}
		articles(w, r)
	})

	// Admin surface
	mux.HandleFunc("/api/admin/login", server.HandleAdminLogin())
	mux.HandleFunc("/api/admin/cleanup", middleware.AdminAuth(cfg.Admin.JWTSecret, server.HandleCleanup()))
	mux.HandleFunc("/api/media/upload", middleware.AdminAuth(cfg.Admin.JWTSecret, server.HandleMediaUpload()))

	cors := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      cors(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
