package service

import (
	"context"
	"strings"
	"testing"

	"gymdesk/pt-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type measurementFixture struct {
	svc             MeasurementService
	measurementRepo *fakeMeasurementRepo
	storage         *fakeFileStorage
	trainerID       primitive.ObjectID
	memberID        primitive.ObjectID
}

func newMeasurementFixture(t *testing.T) *measurementFixture {
	t.Helper()
	ctx := context.Background()

	measurementRepo := newFakeMeasurementRepo()
	linkRepo := newFakeLinkRepo()
	fs := &fakeFileStorage{}

	trainerID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()
	_, err := linkRepo.Create(ctx, &domain.TrainerMember{TrainerID: trainerID, MemberID: memberID})
	require.NoError(t, err)

	return &measurementFixture{
		svc:             NewMeasurementService(measurementRepo, linkRepo, fs),
		measurementRepo: measurementRepo,
		storage:         fs,
		trainerID:       trainerID,
		memberID:        memberID,
	}
}

func TestMeasurementService_Create_DerivesBMIAndBodyFat(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{
		Height:          170,
		Weight:          70,
		BodyFat:         14,
		MuscleMass:      32,
		MeasurementDate: "2026-08-30",
	})
	require.NoError(t, err)

	assert.InDelta(t, 24.2, m.BMI, 0.001)
	assert.InDelta(t, 20.0, m.BodyFatPercentage, 0.001)
	assert.Equal(t, "2026-08-30", m.MeasurementDate.Format("2006-01-02"))
}

func TestMeasurementService_Create_RejectsBadValues(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 0, Weight: 70})
	assert.Error(t, err)

	_, err = f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70, BodyFat: -1})
	assert.Error(t, err)
}

func TestMeasurementService_Create_UnlinkedMember(t *testing.T) {
	f := newMeasurementFixture(t)

	_, err := f.svc.Create(context.Background(), primitive.NewObjectID(), f.memberID, MeasurementInput{Height: 170, Weight: 70})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestMeasurementService_ListByMember_PhotoURLs(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	withPhoto, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70, MeasurementDate: "2026-08-01"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 69, MeasurementDate: "2026-08-15"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmPhoto(ctx, f.trainerID, withPhoto.ID, "progress-photos/key1"))

	views, err := f.svc.ListByMember(ctx, f.trainerID, f.memberID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Newest first; only the measurement with a photo gets a URL.
	assert.Equal(t, "2026-08-15", views[0].MeasurementDate.Format("2006-01-02"))
	assert.Empty(t, views[0].PhotoURL)
	assert.Contains(t, views[1].PhotoURL, "progress-photos/key1")
}

func TestMeasurementService_PhotoUploadFlow(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70})
	require.NoError(t, err)

	upload, err := f.svc.RequestPhotoUploadURL(ctx, f.trainerID, m.ID, "image/jpeg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.ObjectKey, "progress-photos/"+f.memberID.Hex()+"/"))
	assert.NotEmpty(t, upload.UploadURL)

	require.NoError(t, f.svc.ConfirmPhoto(ctx, f.trainerID, m.ID, upload.ObjectKey))

	stored, err := f.measurementRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, upload.ObjectKey, stored.PhotoObjectKey)
}

func TestMeasurementService_RequestPhotoUploadURL_BadContentType(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70})
	require.NoError(t, err)

	_, err = f.svc.RequestPhotoUploadURL(ctx, f.trainerID, m.ID, "application/pdf")
	assert.ErrorIs(t, err, ErrInvalidContentType)
}

func TestMeasurementService_ConfirmPhoto_ReplacesPrevious(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70})
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmPhoto(ctx, f.trainerID, m.ID, "progress-photos/old"))
	require.NoError(t, f.svc.ConfirmPhoto(ctx, f.trainerID, m.ID, "progress-photos/new"))

	stored, err := f.measurementRepo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "progress-photos/new", stored.PhotoObjectKey)
	assert.Contains(t, f.storage.deleted, "progress-photos/old")
}

func TestMeasurementService_Delete_RemovesPhoto(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70})
	require.NoError(t, err)
	require.NoError(t, f.svc.ConfirmPhoto(ctx, f.trainerID, m.ID, "progress-photos/key1"))

	require.NoError(t, f.svc.Delete(ctx, f.trainerID, m.ID))

	_, err = f.measurementRepo.GetByID(ctx, m.ID)
	assert.Error(t, err)
	assert.Contains(t, f.storage.deleted, "progress-photos/key1")
}

func TestMeasurementService_Delete_OtherTrainer(t *testing.T) {
	f := newMeasurementFixture(t)
	ctx := context.Background()

	m, err := f.svc.Create(ctx, f.trainerID, f.memberID, MeasurementInput{Height: 170, Weight: 70})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, primitive.NewObjectID(), m.ID)
	assert.ErrorIs(t, err, ErrMeasurementNotFound)
}
