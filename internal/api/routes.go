package api

import (
	"net/http"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every handler onto the router. All routes except auth
// require a valid JWT; trainer routes additionally require the trainer role.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	rosterService service.RosterService,
	sessionService service.SessionService,
	recommendationService service.RecommendationService,
	measurementService service.MeasurementService,
) {
	authHandler := NewAuthHandler(authService)
	memberHandler := NewMemberHandler(rosterService)
	sessionHandler := NewSessionHandler(sessionService)
	recommendationHandler := NewRecommendationHandler(recommendationService)
	measurementHandler := NewMeasurementHandler(measurementService)

	authMiddleware := AuthMiddleware(jwtSecret)
	trainerOnly := RoleMiddleware(domain.RoleTrainer)
	memberOnly := RoleMiddleware(domain.RoleMember)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.RegisterTrainer)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Roster ---
		memberGroup := protected.Group("/members")
		memberGroup.Use(trainerOnly)
		{
			memberGroup.POST("", memberHandler.RegisterMember)
			memberGroup.GET("", memberHandler.ListMembers)
			memberGroup.GET("/:memberId", memberHandler.GetMember)
			memberGroup.PUT("/:memberId", memberHandler.UpdateMember)

			// --- PT sessions per member ---
			memberGroup.POST("/:memberId/sessions", sessionHandler.ScheduleSession)
			memberGroup.GET("/:memberId/sessions", sessionHandler.ListSessions)

			// --- Body measurements per member ---
			memberGroup.POST("/:memberId/measurements", measurementHandler.CreateMeasurement)
			memberGroup.GET("/:memberId/measurements", measurementHandler.ListMeasurements)
		}

		// --- Session lifecycle ---
		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.GET("/:sessionId/exercises", trainerOnly, sessionHandler.GetSessionExercises)
			sessionGroup.PUT("/:sessionId", trainerOnly, sessionHandler.UpdateSession)
			sessionGroup.DELETE("/:sessionId", trainerOnly, sessionHandler.DeleteSession)
			sessionGroup.POST("/:sessionId/complete", trainerOnly, sessionHandler.CompleteSession)

			// Members log their own exercises against their own sessions.
			sessionGroup.POST("/:sessionId/records", memberOnly, sessionHandler.AddMemberRecord)
		}

		// --- Measurements and progress photos ---
		measurementGroup := protected.Group("/measurements")
		measurementGroup.Use(trainerOnly)
		{
			measurementGroup.DELETE("/:measurementId", measurementHandler.DeleteMeasurement)
			measurementGroup.POST("/:measurementId/photo/upload-url", measurementHandler.RequestPhotoUpload)
			measurementGroup.POST("/:measurementId/photo/confirm", measurementHandler.ConfirmPhotoUpload)
		}

		// --- Recommended workouts ---
		workoutGroup := protected.Group("/recommended-workouts")
		workoutGroup.Use(trainerOnly)
		{
			workoutGroup.POST("/generate", recommendationHandler.GenerateWorkout)
			workoutGroup.POST("", recommendationHandler.SaveWorkout)
			workoutGroup.GET("", recommendationHandler.ListWorkouts)
			workoutGroup.GET("/:workoutId", recommendationHandler.GetWorkoutDetail)
		}
	}
}
