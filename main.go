// main.go
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Gustavo2020/GestUnifServ/catalog"
	"github.com/Gustavo2020/GestUnifServ/config"
	"github.com/Gustavo2020/GestUnifServ/database"
	"github.com/Gustavo2020/GestUnifServ/handlers"
	"github.com/Gustavo2020/GestUnifServ/services"
	"github.com/Gustavo2020/GestUnifServ/storage"
)

func main() {
	log.Println("Starting GestUnifServ route risk backend...")

	// .env is optional; environment overrides the yaml config either way.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config.yaml"
		if _, errFallback := os.Stat(configPath); os.IsNotExist(errFallback) {
			log.Fatalf("Config file not found at default paths. Error: %v", errFallback)
		}
	}
	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Server port: %s, DB name: %s",
		config.AppConfig.Server.Port, config.AppConfig.Database.DBName)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()
	if err := database.EnsureSchema(); err != nil {
		log.Fatalf("Error ensuring database schema: %v", err)
	}

	riskCatalog, err := catalog.NewRiskCatalog(config.AppConfig.Data.RiskCSV)
	if err != nil {
		log.Fatalf("Error loading risk catalog: %v", err)
	}
	driverCatalog, err := catalog.NewDriverCatalog(config.AppConfig.Data.DriversCSV)
	if err != nil {
		log.Fatalf("Error loading driver registry: %v", err)
	}
	backups, err := storage.New(config.AppConfig.Data.BackupDir)
	if err != nil {
		log.Fatalf("Error initializing backup store: %v", err)
	}

	dbStore := database.Store{}
	audit := services.NewAuditLogger(dbStore, nil)
	evaluations := services.NewEvaluationService(riskCatalog, driverCatalog, backups, dbStore, audit, nil)
	summaries := services.NewSummaryService(backups, dbStore, audit)

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "route risk backend is healthy"}`)
	})

	http.HandleFunc("/api/evaluate", handlers.EvaluateHandler(evaluations))
	http.HandleFunc("/api/evaluate_day", handlers.EvaluateDayHandler(evaluations))
	http.HandleFunc("/api/week_summary", handlers.WeekSummaryHandler(summaries))
	http.HandleFunc("/api/municipios/suggest", handlers.SuggestMunicipiosHandler(riskCatalog))
	http.HandleFunc("/api/drivers", handlers.DriversHandler(driverCatalog))

	// Admin routes
	http.HandleFunc("/api/admin/reload-catalog", handlers.ReloadCatalogHandler(riskCatalog))

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
