package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymdesk/pt-app/internal/api"
	"gymdesk/pt-app/internal/config"
	"gymdesk/pt-app/internal/recommender"
	"gymdesk/pt-app/internal/repository/mongo"
	"gymdesk/pt-app/internal/service"
	"gymdesk/pt-app/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	log.SetFormatter(&log.JSONFormatter{})
	log.Info("Starting PT management server...")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("Failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureAccountIndexes(ctx, appDB.Collection("accounts"))
		mongo.EnsureMemberProfileIndexes(ctx, appDB.Collection("member_profiles"))
		mongo.EnsureTrainerMemberIndexes(ctx, appDB.Collection("trainer_members"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("pt_sessions"))
		mongo.EnsureExerciseRecordIndexes(ctx, appDB.Collection("exercise_records"))
		mongo.EnsureRecommendationIndexes(ctx, appDB.Collection("recommended_workouts"), appDB.Collection("recommended_exercises"))
		mongo.EnsureMeasurementIndexes(ctx, appDB.Collection("body_measurements"))
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	accountRepo := mongo.NewMongoAccountRepository(appDB)
	profileRepo := mongo.NewMongoMemberProfileRepository(appDB)
	linkRepo := mongo.NewMongoTrainerMemberRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)
	recordRepo := mongo.NewMongoExerciseRecordRepository(appDB)
	recRepo := mongo.NewMongoRecommendationRepository(appDB)
	measurementRepo := mongo.NewMongoMeasurementRepository(appDB)
	txRunner := mongo.NewTxRunner(dbClient)

	// --- Initialize Services ---
	provider := recommender.NewChatProvider(cfg.Recommender)
	authService := service.NewAuthService(accountRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	rosterService := service.NewRosterService(accountRepo, profileRepo, linkRepo, sessionRepo, txRunner)
	sessionService := service.NewSessionService(sessionRepo, recordRepo, profileRepo, linkRepo, txRunner)
	recommendationService := service.NewRecommendationService(provider, recRepo, accountRepo, profileRepo, linkRepo, measurementRepo, recordRepo, txRunner)
	measurementService := service.NewMeasurementService(measurementRepo, linkRepo, fileStorage)

	// --- Initialize Gin Engine ---
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:   []string{"X-Total-Count"},
		MaxAge:          12 * time.Hour,
	}))

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, rosterService, sessionService, recommendationService, measurementService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infof("Server listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
