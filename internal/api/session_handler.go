package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the PT session lifecycle endpoints.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	ExerciseName string `json:"exerciseName" binding:"required"`
	Duration     int    `json:"duration" binding:"min=0"`
	Repetitions  int    `json:"repetitions" binding:"min=0"`
	Sets         int    `json:"sets" binding:"min=0"`
	BodyPart     string `json:"bodyPart"`
	Notes        string `json:"notes"`
}

type ScheduleSessionRequest struct {
	SessionDate string            `json:"sessionDate" binding:"required"` // YYYY-MM-DD
	StartTime   string            `json:"startTime" binding:"required"`   // HH:MM
	EndTime     string            `json:"endTime" binding:"required"`     // HH:MM
	Notes       string            `json:"notes"`
	Exercises   []ExerciseRequest `json:"exercises" binding:"dive"`
}

func (r ScheduleSessionRequest) toInput() service.ScheduleInput {
	exercises := make([]service.ExerciseInput, len(r.Exercises))
	for i, ex := range r.Exercises {
		exercises[i] = service.ExerciseInput{
			ExerciseName: ex.ExerciseName,
			Duration:     ex.Duration,
			Repetitions:  ex.Repetitions,
			Sets:         ex.Sets,
			BodyPart:     ex.BodyPart,
			Notes:        ex.Notes,
		}
	}
	return service.ScheduleInput{
		SessionDate: r.SessionDate,
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		Notes:       r.Notes,
		Exercises:   exercises,
	}
}

// --- Handler Methods ---

// ScheduleSession godoc
// @Summary Schedule a PT session for a member
// @Description Consumes one PT credit and creates the session with its exercises atomically.
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param memberId path string true "Member ID"
// @Param session body ScheduleSessionRequest true "Session details"
// @Success 201 {object} service.SessionDetail "Session scheduled"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Member not found"
// @Failure 409 {object} gin.H "No remaining PT sessions"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /members/{memberId}/sessions [post]
func (h *SessionHandler) ScheduleSession(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	var req ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	detail, err := h.sessionService.ScheduleSession(c.Request.Context(), trainerID, memberID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMemberNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInsufficientCredit):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, detail)
}

// ListSessions returns all sessions between the trainer and the member.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	sessions, err := h.sessionService.ListSessions(c.Request.Context(), trainerID, memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve sessions.")
		}
		return
	}
	if sessions == nil {
		sessions = []domain.PTSession{}
	}

	c.JSON(http.StatusOK, sessions)
}

// GetSessionExercises returns a session with its exercise records.
func (h *SessionHandler) GetSessionExercises(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}

	detail, err := h.sessionService.GetSessionExercises(c.Request.Context(), trainerID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve session.")
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateSession rewrites the session and replaces its exercise list.
func (h *SessionHandler) UpdateSession(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}

	var req ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	detail, err := h.sessionService.UpdateSession(c.Request.Context(), trainerID, sessionID, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, detail)
}

// CompleteSession marks a session as completed.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.sessionService.CompleteSession(c.Request.Context(), trainerID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to complete session.")
		}
		return
	}

	c.JSON(http.StatusOK, session)
}

// DeleteSession removes a session and restores the member's PT credit.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteSession(c.Request.Context(), trainerID, sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete session.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// AddMemberRecord lets the authenticated member log an exercise against one
// of their own sessions.
func (h *SessionHandler) AddMemberRecord(c *gin.Context) {
	memberID, ok := callerObjectID(c)
	if !ok {
		return
	}
	sessionID, ok := pathObjectID(c, "sessionId")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	record, err := h.sessionService.AddMemberRecord(c.Request.Context(), memberID, sessionID, service.ExerciseInput{
		ExerciseName: req.ExerciseName,
		Duration:     req.Duration,
		Repetitions:  req.Repetitions,
		Sets:         req.Sets,
		BodyPart:     req.BodyPart,
		Notes:        req.Notes,
	})
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, record)
}
