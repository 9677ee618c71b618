package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/imranKhanTsx/indian-cences/config"
	"github.com/imranKhanTsx/indian-cences/handlers"
	"github.com/imranKhanTsx/indian-cences/middleware"
)

type HealthResponse struct {
	Status    string `json:"status"`
	DBStatus  string `json:"db_status"`
	DBDetails struct {
		Host     string   `json:"host"`
		Port     string   `json:"port"`
		Database string   `json:"database"`
		Tables   []string `json:"tables,omitempty"`
	} `json:"db_details"`
	Error string `json:"error,omitempty"`
}

func healthCheck(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{Status: "ok"}

		if err := config.CheckPostgresHealth(r.Context(), db); err != nil {
			response.Status = "error"
			response.DBStatus = "connection_error"
			response.Error = err.Error()
		} else {
			response.DBStatus = "connected"
			response.DBDetails.Host = os.Getenv("DB_HOST")
			response.DBDetails.Port = os.Getenv("DB_PORT")
			response.DBDetails.Database = os.Getenv("DB_NAME")

			tables := []string{
				"locations",
				"households_and_population",
				"scheduled_caste_tribe",
				"literacy",
				"workers_total",
				"main_workers",
				"marginal_workers",
			}
			var existing []string
			for _, table := range tables {
				var exists bool
				err := db.QueryRowContext(r.Context(), `
                    SELECT EXISTS (
                        SELECT FROM information_schema.tables
                        WHERE table_name = $1
                    )`, table).Scan(&exists)
				if err == nil && exists {
					existing = append(existing, table)
				}
			}
			response.DBDetails.Tables = existing
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

func welcome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Welcome to Indian Census API 2",
	})
}

func main() {
	startTime := time.Now()
	log.Printf("Starting server initialization at %s", startTime.Format(time.RFC3339))

	if err := config.LoadEnv(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		log.Printf("No PORT environment variable found, using default: %s", port)
	}

	log.Println("Initializing PostgreSQL database...")
	db, err := config.InitDBWithRetry(5)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL: %v", err)
	}
	log.Println("PostgreSQL database initialized successfully")
	defer config.CloseDB(db)

	srv := handlers.NewServer(db, config.NewResolverCache())

	r := mux.NewRouter()

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
	}
	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, origin := range strings.Split(extra, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Requested-With",
			"Origin",
		},
		MaxAge: 86400,
	})

	r.Use(corsHandler.Handler)
	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(gorillahandlers.CompressHandler)

	r.HandleFunc("/", welcome).Methods("GET", "HEAD")

	api := r.PathPrefix("/api/v1").Subrouter()
	registerRoutes(api, srv)
	api.HandleFunc("/health/detailed", healthCheck(db)).Methods("GET")
	log.Println("Routes registered successfully")

	server := &http.Server{
		Handler:           r,
		Addr:              ":" + port,
		WriteTimeout:      15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s...", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			serverErrors <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("Shutdown signal received")
	case err := <-serverErrors:
		log.Printf("Server error received: %v", err)
	}

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	} else {
		log.Println("Server shutdown completed successfully")
	}
}

func registerRoutes(api *mux.Router, srv *handlers.Server) {
	api.HandleFunc("/states", srv.GetStates).Methods("GET")
	api.HandleFunc("/state-population", srv.GetStatePopulation).Methods("GET")
	api.HandleFunc("/state-gender-population", srv.GetStateGenderPopulation).Methods("GET")
	api.HandleFunc("/state-literacy", srv.GetStateLiteracy).Methods("GET")
	api.HandleFunc("/state-workers", srv.GetStateWorkers).Methods("GET")
	api.HandleFunc("/state-non-workers", srv.GetStateNonWorkers).Methods("GET")
	api.HandleFunc("/state-main-workers", srv.GetStateMainWorkers).Methods("GET")
	api.HandleFunc("/state-marginal-workers", srv.GetStateMarginalWorkers).Methods("GET")
	api.HandleFunc("/state-caste-population", srv.GetStateCastePopulation).Methods("GET")
	api.HandleFunc("/state-households", srv.GetStateHouseholds).Methods("GET")
	api.HandleFunc("/state-locations", srv.GetStateLocations).Methods("GET")
	api.HandleFunc("/state-location-hierarchy", srv.GetLocationHierarchy).Methods("GET")
	api.HandleFunc("/district-population-breakdown", srv.GetDistrictPopulationBreakdown).Methods("GET")

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")
}
