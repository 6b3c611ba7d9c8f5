package api

import (
	"errors"
	"fmt"
	"net/http"

	"gymdesk/pt-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MeasurementHandler exposes body measurement and progress photo endpoints.
type MeasurementHandler struct {
	measurementService service.MeasurementService
}

// NewMeasurementHandler creates a new MeasurementHandler.
func NewMeasurementHandler(measurementService service.MeasurementService) *MeasurementHandler {
	return &MeasurementHandler{measurementService: measurementService}
}

// --- Request/Response Structs ---

type CreateMeasurementRequest struct {
	Height          float64 `json:"height" binding:"required,gt=0"`
	Weight          float64 `json:"weight" binding:"required,gt=0"`
	BodyFat         float64 `json:"bodyFat" binding:"min=0"`
	MuscleMass      float64 `json:"muscleMass" binding:"min=0"`
	MeasurementDate string  `json:"measurementDate"` // YYYY-MM-DD, defaults to today
}

type PhotoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmPhotoRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Handler Methods ---

// CreateMeasurement records a new body measurement for a roster member. BMI
// and body-fat percentage are computed on the server.
func (h *MeasurementHandler) CreateMeasurement(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	var req CreateMeasurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	measurement, err := h.measurementService.Create(c.Request.Context(), trainerID, memberID, service.MeasurementInput{
		Height:          req.Height,
		Weight:          req.Weight,
		BodyFat:         req.BodyFat,
		MuscleMass:      req.MuscleMass,
		MeasurementDate: req.MeasurementDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusBadRequest, err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, measurement)
}

// ListMeasurements returns the member's measurements newest first, with
// presigned photo download URLs where photos exist.
func (h *MeasurementHandler) ListMeasurements(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	memberID, ok := pathObjectID(c, "memberId")
	if !ok {
		return
	}

	views, err := h.measurementService.ListByMember(c.Request.Context(), trainerID, memberID)
	if err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve measurements.")
		}
		return
	}
	if views == nil {
		views = []service.MeasurementView{}
	}

	c.JSON(http.StatusOK, views)
}

// DeleteMeasurement removes a measurement and its progress photo.
func (h *MeasurementHandler) DeleteMeasurement(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	measurementID, ok := pathObjectID(c, "measurementId")
	if !ok {
		return
	}

	if err := h.measurementService.Delete(c.Request.Context(), trainerID, measurementID); err != nil {
		if errors.Is(err, service.ErrMeasurementNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete measurement.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestPhotoUpload issues a presigned PUT URL for a progress photo.
func (h *MeasurementHandler) RequestPhotoUpload(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	measurementID, ok := pathObjectID(c, "measurementId")
	if !ok {
		return
	}

	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	upload, err := h.measurementService.RequestPhotoUploadURL(c.Request.Context(), trainerID, measurementID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMeasurementNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidContentType):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL.")
		}
		return
	}

	c.JSON(http.StatusOK, upload)
}

// ConfirmPhotoUpload binds an uploaded object to the measurement.
func (h *MeasurementHandler) ConfirmPhotoUpload(c *gin.Context) {
	trainerID, ok := callerObjectID(c)
	if !ok {
		return
	}
	measurementID, ok := pathObjectID(c, "measurementId")
	if !ok {
		return
	}

	var req ConfirmPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.measurementService.ConfirmPhoto(c.Request.Context(), trainerID, measurementID, req.ObjectKey); err != nil {
		if errors.Is(err, service.ErrMeasurementNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to confirm photo upload.")
		}
		return
	}

	c.Status(http.StatusNoContent)
}
