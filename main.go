package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/mihai888nextlab/ecotag/config"
	"github.com/mihai888nextlab/ecotag/database"
	"github.com/mihai888nextlab/ecotag/extractor"
	"github.com/mihai888nextlab/ecotag/handlers"
	"github.com/mihai888nextlab/ecotag/middleware"
	"github.com/mihai888nextlab/ecotag/repository"
	"github.com/mihai888nextlab/ecotag/scheduler"
	"github.com/mihai888nextlab/ecotag/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Updates go to the webhook when one is configured, otherwise the log
	var notifier extractor.Notifier
	if cfg.WebhookURL != "" {
		notifier = services.NewWebhookNotifier(cfg.WebhookURL)
		log.Printf("Product updates will be pushed to %s", cfg.WebhookURL)
	} else {
		notifier = services.NewLogNotifier()
		log.Println("No WEBHOOK_URL set, product updates will be logged")
	}

	// Launch the browser used for live page sessions
	browser, err := extractor.NewBrowser(cfg.BrowserBin)
	if err != nil {
		log.Fatalf("Failed to launch browser: %v", err)
	}
	defer browser.MustClose()

	manager := extractor.NewManager(
		extractor.LiveSessionFactory(browser, cfg.Debounce, cfg.EventPoll),
		notifier,
	)
	defer manager.CloseAll()

	// The watch registry and scheduler need a database; skip both without one
	var watchRepo *repository.WatchRepository
	if cfg.DatabaseURL != "" {
		if err := database.InitDatabase(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer database.CloseDatabase()

		if err := database.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}

		watchRepo = repository.NewWatchRepository()

		pageWatcher := scheduler.NewPageWatcher(cfg.WatchSpec, watchRepo, manager, notifier)
		pageWatcher.Start()
		defer pageWatcher.Stop()
	} else {
		log.Println("No DATABASE_URL set, watched-page registry disabled")
	}

	h := handlers.NewHandlers(manager, watchRepo)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS))

	r.HandleFunc("/health", healthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// Session management and the message interface
	apiV1.HandleFunc("/sessions", h.OpenSession).Methods("POST")
	apiV1.HandleFunc("/sessions", h.ListSessions).Methods("GET")
	apiV1.HandleFunc("/sessions/{id}", h.CloseSession).Methods("DELETE")
	apiV1.HandleFunc("/sessions/{id}/message", h.SessionMessage).Methods("POST")

	// One-shot extraction
	apiV1.HandleFunc("/extract", h.ExtractOnce).Methods("POST")

	// Watched-page registry
	apiV1.HandleFunc("/watches", h.AddWatch).Methods("POST")
	apiV1.HandleFunc("/watches", h.GetWatches).Methods("GET")
	apiV1.HandleFunc("/watches/{id}", h.DeleteWatch).Methods("DELETE")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("Server starting on %s:%s", cfg.Host, cfg.Port)
	log.Printf("   GET    /health - Health check")
	log.Printf("   POST   /api/v1/sessions - Open a live page session")
	log.Printf("   GET    /api/v1/sessions - List open sessions")
	log.Printf("   DELETE /api/v1/sessions/{id} - Close a session")
	log.Printf("   POST   /api/v1/sessions/{id}/message - getProduct / ping")
	log.Printf("   POST   /api/v1/extract - One-shot extraction")
	log.Printf("   POST   /api/v1/watches - Register a watched page")

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service":   "ecotag",
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}
