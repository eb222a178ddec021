package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filvault/internal/api"
	"filvault/internal/config"
	"filvault/internal/provider"
	"filvault/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	store, err := storage.NewStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	log.Printf("Record store initialized (%s)", cfg.Database.Type)

	client := provider.NewClient(cfg)
	if cfg.Provider.Token == "" {
		log.Println("No provider token configured, uploads will use mock mode")
	}

	r := gin.New()
	api.SetupRoutes(r, store, client)

	srv := startServer(r, cfg.Server.Port)

	waitForShutdown(srv, store)
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Printf("Config file not found: %s, using default config", path)
		return config.Default(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded config from: %s", path)
	return cfg, nil
}

func startServer(r *gin.Engine, port string) *http.Server {
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	return srv
}

func waitForShutdown(srv *http.Server, store storage.Store) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Closing record store...")
	if err := store.Close(); err != nil {
		log.Printf("Error closing record store: %v", err)
	}

	log.Println("Server exited")
}
