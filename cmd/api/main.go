package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/database"
	"github.com/vidai-app/vidai-golang/internal/handlers"
	"github.com/vidai-app/vidai-golang/internal/routes"
	"github.com/vidai-app/vidai-golang/internal/store"
	"github.com/vidai-app/vidai-golang/internal/video"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	ctx := context.Background()

	// 1. --- Storage ---
	// MySQL when a DSN is configured, the in-memory store otherwise so
	// local development works without a database.
	var st store.Store
	db, err := database.OpenDB()
	switch {
	case err == nil:
		defer db.Close()
		mysqlStore := store.NewMySQLStore(db)
		if err := mysqlStore.Seed(ctx); err != nil {
			log.Fatalf("Failed to seed database: %v", err)
		}
		st = mysqlStore
		log.Println("Connected to MySQL")
	case errors.Is(err, database.ErrNoDSN):
		st = store.NewMemoryStore()
		log.Println("WARNING: DB_DSN not set, using the in-memory store. Data will not survive a restart.")
	default:
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 2. --- Runtime Configuration ---
	// Admin-set values in api_configs win over the environment.
	cfg := config.NewProvider(st)

	// 3. --- AI Services ---
	segmenter := ai.NewSegmenter(cfg)
	enhancer := ai.NewEnhancer(cfg)
	images := ai.NewImageSynthesizer(cfg)
	gemini := ai.NewGeminiClient(cfg)

	// 4. --- Video Pipeline ---
	renderer := video.NewSimulatedRenderer(gemini)
	orchestrator := video.NewOrchestrator(st, segmenter, enhancer, images, renderer)

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:        st,
		Config:       cfg,
		Segmenter:    segmenter,
		Enhancer:     enhancer,
		Images:       images,
		Orchestrator: orchestrator,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting VidAI API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
