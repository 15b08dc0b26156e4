package main

import (
	"net/http"
	"os"

	"loserpool-go/config"
	"loserpool-go/database"
	"loserpool-go/handlers"
	"loserpool-go/logging"
	"loserpool-go/middleware"
	"loserpool-go/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Configure(logging.Config{
		Level:       cfg.Logging.Level,
		Output:      os.Stdout,
		Prefix:      cfg.Logging.Prefix,
		EnableColor: cfg.Logging.EnableColor,
	})
	cfg.LogConfiguration()

	db, err := database.NewMongoConnection(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
	})
	if err != nil {
		logging.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	matchupRepo := database.NewMongoMatchupRepository(db)
	pickRepo := database.NewMongoPickRepository(db)

	seasonService := services.NewSeasonService(matchupRepo, cfg.Pool.CurrentSeason, cfg.Pool.FallbackWeek)
	reconcileService := services.NewReconcileService(matchupRepo)
	settlementService := services.NewSettlementService(matchupRepo, pickRepo, cfg.Pool.CurrentSeason)
	pickService := services.NewPickService(pickRepo, matchupRepo)
	feedService := services.NewScheduleFeedService(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	authService := services.NewAuthService(
		cfg.Auth.JWTSecret, cfg.Auth.AdminUser, cfg.Auth.AdminPasswordHash, cfg.Auth.TokenLifetime)

	adminHandler := handlers.NewAdminHandler(
		seasonService, reconcileService, settlementService,
		pickService, feedService, authService, matchupRepo)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	r := mux.NewRouter()
	r.Use(middleware.SecurityMiddleware)

	r.HandleFunc("/api/login", adminHandler.Login).Methods("POST")
	r.HandleFunc("/api/season", adminHandler.GetSeason).Methods("GET")
	r.HandleFunc("/api/matchups", adminHandler.GetMatchups).Methods("GET")

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(authMiddleware.RequireAdmin)
	protected.HandleFunc("/reconcile", adminHandler.Reconcile).Methods("POST")
	protected.HandleFunc("/settle", adminHandler.Settle).Methods("POST")
	protected.HandleFunc("/owners/{ownerID}/summary", adminHandler.GetOwnerSummary).Methods("GET")

	addr := cfg.GetServerAddress()
	logging.Infof("Server starting on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logging.Fatalf("Server failed: %v", err)
	}
}
