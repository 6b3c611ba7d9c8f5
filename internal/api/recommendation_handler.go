package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/recommender"
	"gymdesk/pt-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendationHandler exposes workout plan generation and persistence.
type RecommendationHandler struct {
	recommendationService service.RecommendationService
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(recommendationService service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{recommendationService: recommendationService}
}

// --- Request/Response Structs ---

type GenerateWorkoutRequest struct {
	MemberID           string   `json:"memberId" binding:"required"`
	SessionID          string   `json:"sessionId"`
	DurationMinutes    int      `json:"durationMinutes" binding:"min=0"`
	PreferredExercises []string `json:"preferredExercises"`
}

type SaveWorkoutRequest struct {
	MemberID  string            `json:"memberId" binding:"required"`
	SessionID string            `json:"sessionId" binding:"required"`
	Plan      *recommender.Plan `json:"plan" binding:"required"`
}

// --- Handler Methods ---

// GenerateWorkout asks the external provider for a plan tailored to the
// member. The plan is returned for review, not stored.
func (h *RecommendationHandler) GenerateWorkout(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}

	var req GenerateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId format.")
		return
	}

	input := service.GenerateInput{
		DurationMinutes:    req.DurationMinutes,
		PreferredExercises: req.PreferredExercises,
	}
	if req.SessionID != "" {
		sessionID, err := primitive.ObjectIDFromHex(req.SessionID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid sessionId format.")
			return
		}
		input.SessionID = sessionID
	}

	plan, err := h.recommendationService.GenerateWorkout(c.Request.Context(), trainerID, memberID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, recommender.ErrInvalidPlan):
			abortWithError(c, http.StatusBadGateway, err.Error())
		default:
			abortWithError(c, http.StatusBadGateway, "Workout generation failed.")
		}
		return
	}

	c.JSON(http.StatusOK, plan)
}

// SaveWorkout persists a generated plan the trainer accepted.
func (h *RecommendationHandler) SaveWorkout(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}

	var req SaveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid memberId format.")
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid sessionId format.")
		return
	}

	detail, err := h.recommendationService.SaveWorkout(c.Request.Context(), trainerID, memberID, sessionID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, recommender.ErrInvalidPlan):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to save workout.")
		}
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// ListWorkouts returns the trainer's stored workouts, optionally filtered by
// the memberId query parameter.
func (h *RecommendationHandler) ListWorkouts(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}

	var memberID *primitive.ObjectID
	if raw := c.Query("memberId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid memberId format.")
			return
		}
		memberID = &id
	}

	workouts, err := h.recommendationService.ListWorkouts(c.Request.Context(), trainerID, memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workouts.")
		}
		return
	}
	if workouts == nil {
		workouts = []domain.RecommendedWorkout{}
	}

	c.JSON(http.StatusOK, workouts)
}

// GetWorkoutDetail returns a stored workout with its ordered exercises.
func (h *RecommendationHandler) GetWorkoutDetail(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	workoutID, ok := pathObjectID(c, "workoutId")
	if !ok {
		return
	}

	detail, err := h.recommendationService.GetWorkoutDetail(c.Request.Context(), trainerID, workoutID)
	if err != nil {
		if errors.Is(err, service.ErrWorkoutNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve workout.")
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}
