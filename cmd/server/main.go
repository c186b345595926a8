package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studydesk/internal/api"
	"studydesk/internal/api/handlers"
	"studydesk/internal/gemini"
	"studydesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables first; a missing .env file just means we
	// rely on the system environment.
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: Error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The material store opens lazily on first use.
	dbPath := os.Getenv("STUDYDESK_DB_PATH")
	if dbPath == "" {
		dbPath = "studydesk.db"
	}
	materialStore := store.New(dbPath)
	defer materialStore.Close()

	// Initialize Gemini client
	geminiClient, err := gemini.NewClient(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Gemini client: %v", err)
	}
	defer geminiClient.Close()

	// Set up Gin router and API handlers
	router := gin.Default()
	handler := handlers.NewHandler(materialStore, geminiClient)
	api.SetupRoutes(router, handler)

	// Get port from environment variable or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give server 5 seconds to shut down gracefully
	ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited properly")
}
