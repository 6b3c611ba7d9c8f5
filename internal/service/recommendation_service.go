package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/recommender"
	"gymdesk/pt-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound = errors.New("recommended workout not found")
)

const recentRecordLimit = 10

// GenerateInput tunes a plan request beyond what the member profile carries.
type GenerateInput struct {
	SessionID          primitive.ObjectID
	DurationMinutes    int
	PreferredExercises []string
}

// WorkoutDetail is a stored workout with its ordered exercises.
type WorkoutDetail struct {
	Workout   domain.RecommendedWorkout    `json:"workout"`
	Exercises []domain.RecommendedExercise `json:"exercises"`
}

// RecommendationService generates workout plans through an external provider
// and persists the ones a trainer chooses to keep. Generation and saving are
// separate steps: a generated plan is never stored until explicitly saved,
// and saving re-validates the plan from scratch.
type RecommendationService interface {
	GenerateWorkout(ctx context.Context, trainerID, memberID primitive.ObjectID, input GenerateInput) (*recommender.Plan, error)
	// SaveWorkout persists a validated plan as a write-once workout with its
	// exercises, in one transaction.
	SaveWorkout(ctx context.Context, trainerID, memberID primitive.ObjectID, sessionID primitive.ObjectID, plan *recommender.Plan) (*WorkoutDetail, error)
	// ListWorkouts returns the trainer's stored workouts newest first,
	// optionally for one member.
	ListWorkouts(ctx context.Context, trainerID primitive.ObjectID, memberID *primitive.ObjectID) ([]domain.RecommendedWorkout, error)
	GetWorkoutDetail(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*WorkoutDetail, error)
}

// recommendationService implements the RecommendationService interface.
type recommendationService struct {
	provider        recommender.Provider
	recRepo         repository.RecommendationRepository
	accountRepo     repository.AccountRepository
	profileRepo     repository.MemberProfileRepository
	linkRepo        repository.TrainerMemberRepository
	measurementRepo repository.MeasurementRepository
	recordRepo      repository.ExerciseRecordRepository
	tx              repository.TxRunner
}

// NewRecommendationService creates a new instance of recommendationService.
func NewRecommendationService(
	provider recommender.Provider,
	recRepo repository.RecommendationRepository,
	accountRepo repository.AccountRepository,
	profileRepo repository.MemberProfileRepository,
	linkRepo repository.TrainerMemberRepository,
	measurementRepo repository.MeasurementRepository,
	recordRepo repository.ExerciseRecordRepository,
	tx repository.TxRunner,
) RecommendationService {
	return &recommendationService{
		provider:        provider,
		recRepo:         recRepo,
		accountRepo:     accountRepo,
		profileRepo:     profileRepo,
		linkRepo:        linkRepo,
		measurementRepo: measurementRepo,
		recordRepo:      recordRepo,
		tx:              tx,
	}
}

// GenerateWorkout gathers the member's profile, latest measurement, and
// recent exercise history and asks the provider for a plan. The result is
// returned to the caller without being persisted.
func (s *recommendationService) GenerateWorkout(ctx context.Context, trainerID, memberID primitive.ObjectID, input GenerateInput) (*recommender.Plan, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	profile, err := s.profileRepo.GetByMemberID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	mc := recommender.MemberContext{
		Name:               account.Name,
		Gender:             profile.Gender,
		FitnessGoal:        profile.FitnessGoal,
		ExperienceLevel:    profile.ExperienceLevel,
		PTDurationMinutes:  input.DurationMinutes,
		PreferredExercises: input.PreferredExercises,
		Injuries:           profile.Injuries,
		RemainingSessions:  profile.RemainingPTCount,
	}
	if mc.PTDurationMinutes <= 0 {
		mc.PTDurationMinutes = 60
	}

	latest, err := s.measurementRepo.LatestByMemberID(ctx, memberID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	mc.LatestMeasurement = latest

	recent, err := s.recordRepo.ListRecentByMember(ctx, memberID, recentRecordLimit)
	if err != nil {
		return nil, err
	}
	mc.RecentRecords = recent

	return s.provider.GenerateWorkoutPlan(ctx, mc)
}

// SaveWorkout validates and stores a plan. The workout name is derived from
// the plan's total duration and the exercises keep the plan's order as a
// dense 1-based sequence.
func (s *recommendationService) SaveWorkout(ctx context.Context, trainerID, memberID primitive.ObjectID, sessionID primitive.ObjectID, plan *recommender.Plan) (*WorkoutDetail, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}
	if err := recommender.ValidatePlan(plan); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	workout := &domain.RecommendedWorkout{
		MemberID:      memberID,
		SessionID:     sessionID,
		WorkoutName:   fmt.Sprintf("%d-minute workout program", plan.TotalDuration),
		TotalDuration: plan.TotalDuration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var exercises []domain.RecommendedExercise
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		workoutID, err := s.recRepo.CreateWorkout(txCtx, workout)
		if err != nil {
			return err
		}
		workout.ID = workoutID

		exercises = make([]domain.RecommendedExercise, len(plan.Exercises))
		for i, ex := range plan.Exercises {
			exercises[i] = domain.RecommendedExercise{
				WorkoutID:    workoutID,
				ExerciseName: ex.ExerciseName,
				Sets:         ex.Sets,
				Repetitions:  ex.Repetitions,
				Duration:     ex.Duration,
				RestTime:     ex.RestTime,
				Description:  ex.Description,
				Sequence:     i + 1,
			}
		}
		return s.recRepo.CreateExercises(txCtx, exercises)
	})
	if err != nil {
		return nil, err
	}

	return &WorkoutDetail{Workout: *workout, Exercises: exercises}, nil
}

// ListWorkouts returns stored workouts, filtered to the trainer's roster.
func (s *recommendationService) ListWorkouts(ctx context.Context, trainerID primitive.ObjectID, memberID *primitive.ObjectID) ([]domain.RecommendedWorkout, error) {
	if memberID != nil {
		if err := s.requireLink(ctx, trainerID, *memberID); err != nil {
			return nil, err
		}
		return s.recRepo.ListWorkouts(ctx, memberID)
	}

	// Unfiltered listing still only exposes the trainer's own members.
	memberIDs, err := s.linkRepo.MemberIDsByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	linked := make(map[primitive.ObjectID]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		linked[id] = struct{}{}
	}

	all, err := s.recRepo.ListWorkouts(ctx, nil)
	if err != nil {
		return nil, err
	}
	workouts := make([]domain.RecommendedWorkout, 0, len(all))
	for _, w := range all {
		if _, ok := linked[w.MemberID]; ok {
			workouts = append(workouts, w)
		}
	}
	return workouts, nil
}

// GetWorkoutDetail returns a workout with its exercises, scoped through the
// trainer/member link.
func (s *recommendationService) GetWorkoutDetail(ctx context.Context, trainerID, workoutID primitive.ObjectID) (*WorkoutDetail, error) {
	workout, err := s.recRepo.GetWorkout(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	linked, err := s.linkRepo.Exists(ctx, trainerID, workout.MemberID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, ErrWorkoutNotFound
	}

	exercises, err := s.recRepo.ListExercisesByWorkout(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &WorkoutDetail{Workout: *workout, Exercises: exercises}, nil
}

func (s *recommendationService) requireLink(ctx context.Context, trainerID, memberID primitive.ObjectID) error {
	linked, err := s.linkRepo.Exists(ctx, trainerID, memberID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrMemberNotFound
	}
	return nil
}
