package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MemberHandler exposes the trainer's roster endpoints.
type MemberHandler struct {
	rosterService service.RosterService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(rosterService service.RosterService) *MemberHandler {
	return &MemberHandler{rosterService: rosterService}
}

// --- Request/Response Structs ---

type RegisterMemberRequest struct {
	LoginID         string        `json:"loginId" binding:"required,min=4"`
	Password        string        `json:"password" binding:"required,min=8"`
	Name            string        `json:"name" binding:"required"`
	Gender          domain.Gender `json:"gender" binding:"required,oneof=M F"`
	Contact         string        `json:"contact"`
	FitnessGoal     string        `json:"fitnessGoal"`
	ExperienceLevel string        `json:"experienceLevel"`
	Injuries        []string      `json:"injuries"`
	Notes           string        `json:"notes"`
	TotalPTCount    int           `json:"totalPtCount" binding:"min=0"`
}

type UpdateMemberRequest struct {
	Name             *string        `json:"name"`
	Password         *string        `json:"password"`
	Gender           *domain.Gender `json:"gender" binding:"omitempty,oneof=M F"`
	Contact          *string        `json:"contact"`
	FitnessGoal      *string        `json:"fitnessGoal"`
	ExperienceLevel  *string        `json:"experienceLevel"`
	Injuries         *[]string      `json:"injuries"`
	Notes            *string        `json:"notes"`
	TotalPTCount     *int           `json:"totalPtCount"`
	RemainingPTCount *int           `json:"remainingPtCount"`
	IsActive         *bool          `json:"isActive"`
}

// --- Handler Methods ---

// ListMembers returns the trainer's roster page, with the unpaginated total
// in the X-Total-Count header.
func (h *MemberHandler) ListMembers(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}

	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	members, total, err := h.rosterService.ListMembers(c.Request.Context(), trainerID, offset, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve members.")
		return
	}
	if members == nil {
		members = []domain.Member{}
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, members)
}

// RegisterMember godoc
// @Summary Register a new member on the trainer's roster
// @Description Creates the member account, profile, and roster link in one step.
// @Tags Members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member body RegisterMemberRequest true "Member details"
// @Success 201 {object} domain.Member "Member created"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 409 {object} gin.H "Login id already exists"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /members [post]
func (h *MemberHandler) RegisterMember(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}

	var req RegisterMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	member, err := h.rosterService.RegisterMember(c.Request.Context(), trainerID, service.MemberInput{
		LoginID:         req.LoginID,
		Password:        req.Password,
		Name:            req.Name,
		Gender:          req.Gender,
		Contact:         req.Contact,
		FitnessGoal:     req.FitnessGoal,
		ExperienceLevel: req.ExperienceLevel,
		Injuries:        req.Injuries,
		Notes:           req.Notes,
		TotalPTCount:    req.TotalPTCount,
	})
	if err != nil {
		if errors.Is(err, service.ErrLoginIDTaken) {
			abortWithError(c, http.StatusConflict, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to register member.")
		}
		return
	}

	c.JSON(http.StatusCreated, member)
}

// GetMember returns one roster member with derived session progress.
func (h *MemberHandler) GetMember(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	member, err := h.rosterService.GetMember(c.Request.Context(), trainerID, memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve member.")
		}
		return
	}

	c.JSON(http.StatusOK, member)
}

// UpdateMember applies a partial update to a roster member.
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	var req UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	member, err := h.rosterService.UpdateMember(c.Request.Context(), trainerID, memberID, service.MemberUpdate{
		Name:             req.Name,
		Password:         req.Password,
		Gender:           req.Gender,
		Contact:          req.Contact,
		FitnessGoal:      req.FitnessGoal,
		ExperienceLevel:  req.ExperienceLevel,
		Injuries:         req.Injuries,
		Notes:            req.Notes,
		TotalPTCount:     req.TotalPTCount,
		RemainingPTCount: req.RemainingPTCount,
		IsActive:         req.IsActive,
	})
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to update member.")
		}
		return
	}

	c.JSON(http.StatusOK, member)
}
