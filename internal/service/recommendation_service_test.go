package service

import (
	"context"
	"errors"
	"testing"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/recommender"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubProvider returns a canned plan or error and captures the context it
// was called with.
type stubProvider struct {
	plan    *recommender.Plan
	err     error
	lastCtx *recommender.MemberContext
}

func (s *stubProvider) GenerateWorkoutPlan(ctx context.Context, mc recommender.MemberContext) (*recommender.Plan, error) {
	s.lastCtx = &mc
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

type recommendationFixture struct {
	svc             RecommendationService
	provider        *stubProvider
	recRepo         *fakeRecommendationRepo
	measurementRepo *fakeMeasurementRepo
	recordRepo      *fakeRecordRepo
	trainerID       primitive.ObjectID
	memberID        primitive.ObjectID
	sessionID       primitive.ObjectID
}

func newRecommendationFixture(t *testing.T) *recommendationFixture {
	t.Helper()
	ctx := context.Background()

	accountRepo := newFakeAccountRepo()
	profileRepo := newFakeProfileRepo()
	linkRepo := newFakeLinkRepo()
	recRepo := newFakeRecommendationRepo()
	measurementRepo := newFakeMeasurementRepo()
	recordRepo := newFakeRecordRepo()
	provider := &stubProvider{plan: validPlan()}

	trainerID := primitive.NewObjectID()
	memberID, err := accountRepo.Create(ctx, &domain.Account{
		LoginID: "alice", PasswordHash: "x", Name: "Alice", Role: domain.RoleMember, IsActive: true,
	})
	require.NoError(t, err)
	_, err = profileRepo.Create(ctx, &domain.MemberProfile{
		MemberID:         memberID,
		FitnessGoal:      "weight loss",
		ExperienceLevel:  "beginner",
		Injuries:         []string{"left knee"},
		RemainingPTCount: 7,
	})
	require.NoError(t, err)
	_, err = linkRepo.Create(ctx, &domain.TrainerMember{TrainerID: trainerID, MemberID: memberID})
	require.NoError(t, err)

	svc := NewRecommendationService(provider, recRepo, accountRepo, profileRepo, linkRepo, measurementRepo, recordRepo, &fakeTxRunner{})
	return &recommendationFixture{
		svc:             svc,
		provider:        provider,
		recRepo:         recRepo,
		measurementRepo: measurementRepo,
		recordRepo:      recordRepo,
		trainerID:       trainerID,
		memberID:        memberID,
		sessionID:       primitive.NewObjectID(),
	}
}

func validPlan() *recommender.Plan {
	return &recommender.Plan{
		TotalDuration: 45,
		Exercises: []recommender.PlanExercise{
			{ExerciseName: "Goblet squat", Sets: 3, Repetitions: 12, Duration: 40, RestTime: 60},
			{ExerciseName: "Row", Sets: 3, Repetitions: 10, Duration: 45, RestTime: 60},
		},
	}
}

func TestRecommendationService_GenerateWorkout(t *testing.T) {
	f := newRecommendationFixture(t)
	ctx := context.Background()

	// Seed history the provider context should carry.
	_, err := f.measurementRepo.Create(ctx, &domain.BodyMeasurement{
		MemberID: f.memberID, Height: 170, Weight: 70, BMI: 24.2,
	})
	require.NoError(t, err)
	_, err = f.recordRepo.Create(ctx, &domain.ExerciseRecord{
		SessionID: primitive.NewObjectID(), MemberID: f.memberID, ExerciseName: "Squat",
	})
	require.NoError(t, err)

	plan, err := f.svc.GenerateWorkout(ctx, f.trainerID, f.memberID, GenerateInput{DurationMinutes: 45})
	require.NoError(t, err)
	assert.Equal(t, 45, plan.TotalDuration)

	require.NotNil(t, f.provider.lastCtx)
	assert.Equal(t, "Alice", f.provider.lastCtx.Name)
	assert.Equal(t, "weight loss", f.provider.lastCtx.FitnessGoal)
	assert.Equal(t, []string{"left knee"}, f.provider.lastCtx.Injuries)
	assert.Equal(t, 45, f.provider.lastCtx.PTDurationMinutes)
	require.NotNil(t, f.provider.lastCtx.LatestMeasurement)
	assert.Len(t, f.provider.lastCtx.RecentRecords, 1)
}

func TestRecommendationService_GenerateWorkout_NoHistory(t *testing.T) {
	f := newRecommendationFixture(t)

	// A member without measurements or records still gets a plan.
	plan, err := f.svc.GenerateWorkout(context.Background(), f.trainerID, f.memberID, GenerateInput{})
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Nil(t, f.provider.lastCtx.LatestMeasurement)
	assert.Equal(t, 60, f.provider.lastCtx.PTDurationMinutes, "duration defaults when unset")
}

func TestRecommendationService_GenerateWorkout_ProviderFailure(t *testing.T) {
	f := newRecommendationFixture(t)
	f.provider.err = errors.New("upstream timeout")

	_, err := f.svc.GenerateWorkout(context.Background(), f.trainerID, f.memberID, GenerateInput{})
	assert.Error(t, err)
}

func TestRecommendationService_GenerateWorkout_UnlinkedMember(t *testing.T) {
	f := newRecommendationFixture(t)

	_, err := f.svc.GenerateWorkout(context.Background(), primitive.NewObjectID(), f.memberID, GenerateInput{})
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestRecommendationService_SaveWorkout(t *testing.T) {
	f := newRecommendationFixture(t)
	ctx := context.Background()

	detail, err := f.svc.SaveWorkout(ctx, f.trainerID, f.memberID, f.sessionID, validPlan())
	require.NoError(t, err)

	assert.Equal(t, "45-minute workout program", detail.Workout.WorkoutName)
	assert.Equal(t, 45, detail.Workout.TotalDuration)
	assert.Equal(t, f.memberID, detail.Workout.MemberID)
	require.Len(t, detail.Exercises, 2)
	assert.Equal(t, 1, detail.Exercises[0].Sequence)
	assert.Equal(t, 2, detail.Exercises[1].Sequence)
}

func TestRecommendationService_SaveWorkout_InvalidPlan(t *testing.T) {
	f := newRecommendationFixture(t)
	ctx := context.Background()

	plan := validPlan()
	plan.Exercises[1].ExerciseName = ""

	_, err := f.svc.SaveWorkout(ctx, f.trainerID, f.memberID, f.sessionID, plan)
	assert.ErrorIs(t, err, recommender.ErrInvalidPlan)

	// An invalid plan must leave nothing behind.
	workouts, err := f.recRepo.ListWorkouts(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}

func TestRecommendationService_GetWorkoutDetail(t *testing.T) {
	f := newRecommendationFixture(t)
	ctx := context.Background()

	saved, err := f.svc.SaveWorkout(ctx, f.trainerID, f.memberID, f.sessionID, validPlan())
	require.NoError(t, err)

	detail, err := f.svc.GetWorkoutDetail(ctx, f.trainerID, saved.Workout.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Workout.ID, detail.Workout.ID)
	require.Len(t, detail.Exercises, 2)
	assert.Equal(t, "Goblet squat", detail.Exercises[0].ExerciseName)

	// Another trainer cannot see it.
	_, err = f.svc.GetWorkoutDetail(ctx, primitive.NewObjectID(), saved.Workout.ID)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
}

func TestRecommendationService_ListWorkouts_ScopedToRoster(t *testing.T) {
	f := newRecommendationFixture(t)
	ctx := context.Background()

	_, err := f.svc.SaveWorkout(ctx, f.trainerID, f.memberID, f.sessionID, validPlan())
	require.NoError(t, err)

	workouts, err := f.svc.ListWorkouts(ctx, f.trainerID, nil)
	require.NoError(t, err)
	assert.Len(t, workouts, 1)

	workouts, err = f.svc.ListWorkouts(ctx, f.trainerID, &f.memberID)
	require.NoError(t, err)
	assert.Len(t, workouts, 1)

	// A trainer with no roster sees nothing.
	workouts, err = f.svc.ListWorkouts(ctx, primitive.NewObjectID(), nil)
	require.NoError(t, err)
	assert.Empty(t, workouts)
}
