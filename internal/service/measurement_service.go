package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"
	"gymdesk/pt-app/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrMeasurementNotFound = errors.New("measurement not found")
	ErrInvalidContentType  = errors.New("unsupported photo content type")
)

var allowedPhotoContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// MeasurementInput carries the raw values for a new body measurement. BMI and
// body-fat percentage are computed server side and never accepted from the
// client.
type MeasurementInput struct {
	Height          float64
	Weight          float64
	BodyFat         float64
	MuscleMass      float64
	MeasurementDate string // "2006-01-02", empty means today
}

// MeasurementView is a measurement plus a short-lived download URL for its
// progress photo, when one exists.
type MeasurementView struct {
	domain.BodyMeasurement
	PhotoURL string `json:"photoUrl,omitempty"`
}

// PhotoUpload is a presigned upload grant for a progress photo.
type PhotoUpload struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// MeasurementService manages body measurements and their progress photos.
// Photos live in object storage; clients upload and download them through
// presigned URLs without the API proxying bytes.
type MeasurementService interface {
	Create(ctx context.Context, trainerID, memberID primitive.ObjectID, input MeasurementInput) (*domain.BodyMeasurement, error)
	ListByMember(ctx context.Context, trainerID, memberID primitive.ObjectID) ([]MeasurementView, error)
	Delete(ctx context.Context, trainerID, measurementID primitive.ObjectID) error
	// RequestPhotoUploadURL issues a presigned PUT URL for a new progress
	// photo tied to the measurement.
	RequestPhotoUploadURL(ctx context.Context, trainerID, measurementID primitive.ObjectID, contentType string) (*PhotoUpload, error)
	// ConfirmPhoto records the uploaded object on the measurement.
	ConfirmPhoto(ctx context.Context, trainerID, measurementID primitive.ObjectID, objectKey string) error
}

// measurementService implements the MeasurementService interface.
type measurementService struct {
	measurementRepo repository.MeasurementRepository
	linkRepo        repository.TrainerMemberRepository
	fileStorage     storage.FileStorage
}

// NewMeasurementService creates a new instance of measurementService.
func NewMeasurementService(
	measurementRepo repository.MeasurementRepository,
	linkRepo repository.TrainerMemberRepository,
	fileStorage storage.FileStorage,
) MeasurementService {
	return &measurementService{
		measurementRepo: measurementRepo,
		linkRepo:        linkRepo,
		fileStorage:     fileStorage,
	}
}

// Create records a measurement for a roster member, deriving BMI and body-fat
// percentage from the raw values.
func (s *measurementService) Create(ctx context.Context, trainerID, memberID primitive.ObjectID, input MeasurementInput) (*domain.BodyMeasurement, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}
	if input.Height <= 0 || input.Weight <= 0 {
		return nil, errors.New("height and weight must be positive")
	}
	if input.BodyFat < 0 || input.MuscleMass < 0 {
		return nil, errors.New("body fat and muscle mass cannot be negative")
	}

	measurementDate := time.Now().UTC()
	if input.MeasurementDate != "" {
		parsed, err := time.Parse("2006-01-02", input.MeasurementDate)
		if err != nil {
			return nil, fmt.Errorf("invalid measurement date %q, want YYYY-MM-DD", input.MeasurementDate)
		}
		measurementDate = parsed.UTC()
	}

	m := &domain.BodyMeasurement{
		MemberID:        memberID,
		Height:          input.Height,
		Weight:          input.Weight,
		BodyFat:         input.BodyFat,
		MuscleMass:      input.MuscleMass,
		MeasurementDate: measurementDate,
	}
	m.BMI = m.ComputeBMI()
	m.BodyFatPercentage = m.ComputeBodyFatPercentage()

	id, err := s.measurementRepo.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

// ListByMember returns the member's measurements newest first, each with a
// presigned download URL when a progress photo is attached.
func (s *measurementService) ListByMember(ctx context.Context, trainerID, memberID primitive.ObjectID) ([]MeasurementView, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}

	measurements, err := s.measurementRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	views := make([]MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		view := MeasurementView{BodyMeasurement: m}
		if m.PhotoObjectKey != "" {
			url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, m.PhotoObjectKey, storage.DefaultPresignedURLExpiry)
			if err != nil {
				// A broken photo link should not hide the measurement data.
				log.WithError(err).WithField("objectKey", m.PhotoObjectKey).Warn("Failed to presign photo download URL")
			} else {
				view.PhotoURL = url
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete removes the measurement; the progress photo, if any, is deleted from
// object storage best effort.
func (s *measurementService) Delete(ctx context.Context, trainerID, measurementID primitive.ObjectID) error {
	m, err := s.getOwnedMeasurement(ctx, trainerID, measurementID)
	if err != nil {
		return err
	}

	if err := s.measurementRepo.Delete(ctx, measurementID); err != nil {
		return err
	}

	if m.PhotoObjectKey != "" {
		if err := s.fileStorage.DeleteObject(ctx, m.PhotoObjectKey); err != nil {
			log.WithError(err).WithField("objectKey", m.PhotoObjectKey).Warn("Failed to delete progress photo object")
		}
	}
	return nil
}

// RequestPhotoUploadURL issues a presigned PUT URL under a fresh object key.
// The key is only attached to the measurement once ConfirmPhoto is called.
func (s *measurementService) RequestPhotoUploadURL(ctx context.Context, trainerID, measurementID primitive.ObjectID, contentType string) (*PhotoUpload, error) {
	if _, ok := allowedPhotoContentTypes[contentType]; !ok {
		return nil, ErrInvalidContentType
	}

	m, err := s.getOwnedMeasurement(ctx, trainerID, measurementID)
	if err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("progress-photos/%s/%s", m.MemberID.Hex(), uuid.NewString())
	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}
	return &PhotoUpload{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmPhoto binds an uploaded object to the measurement, replacing a
// previous photo if one exists.
func (s *measurementService) ConfirmPhoto(ctx context.Context, trainerID, measurementID primitive.ObjectID, objectKey string) error {
	if objectKey == "" {
		return errors.New("object key is required")
	}

	m, err := s.getOwnedMeasurement(ctx, trainerID, measurementID)
	if err != nil {
		return err
	}

	if err := s.measurementRepo.SetPhotoObjectKey(ctx, measurementID, objectKey); err != nil {
		return err
	}

	if m.PhotoObjectKey != "" && m.PhotoObjectKey != objectKey {
		if err := s.fileStorage.DeleteObject(ctx, m.PhotoObjectKey); err != nil {
			log.WithError(err).WithField("objectKey", m.PhotoObjectKey).Warn("Failed to delete replaced progress photo")
		}
	}
	return nil
}

func (s *measurementService) requireLink(ctx context.Context, trainerID, memberID primitive.ObjectID) error {
	linked, err := s.linkRepo.Exists(ctx, trainerID, memberID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrMemberNotFound
	}
	return nil
}

func (s *measurementService) getOwnedMeasurement(ctx context.Context, trainerID, measurementID primitive.ObjectID) (*domain.BodyMeasurement, error) {
	m, err := s.measurementRepo.GetByID(ctx, measurementID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMeasurementNotFound
		}
		return nil, err
	}

	linked, err := s.linkRepo.Exists(ctx, trainerID, m.MemberID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrMeasurementNotFound
	}
	return m, nil
}
