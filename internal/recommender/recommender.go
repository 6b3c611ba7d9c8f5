package recommender

import (
	"context"
	"errors"
	"fmt"

	"gymdesk/pt-app/internal/domain"
)

// ErrInvalidPlan signals the provider returned a malformed or incomplete
// workout plan. Nothing from such a response may be persisted.
var ErrInvalidPlan = errors.New("recommendation provider returned an invalid plan")

// PlanExercise is one entry of a generated workout plan, in the provider's
// wire shape.
type PlanExercise struct {
	ExerciseName string `json:"exercise_name"`
	Sets         int    `json:"sets"`
	Repetitions  int    `json:"repetitions"`
	Duration     int    `json:"duration"`  // Seconds per set
	RestTime     int    `json:"rest_time"` // Seconds between sets
	Description  string `json:"description"`
}

// Plan is the structured workout plan the provider must return.
type Plan struct {
	TotalDuration int            `json:"total_duration"` // Minutes
	Exercises     []PlanExercise `json:"exercises"`
}

// MemberContext carries everything the provider needs to tailor a plan:
// profile data plus recent measurement and exercise history.
type MemberContext struct {
	Name               string
	Gender             domain.Gender
	FitnessGoal        string
	ExperienceLevel    string
	PTDurationMinutes  int
	PreferredExercises []string
	Injuries           []string
	RemainingSessions  int
	LatestMeasurement  *domain.BodyMeasurement
	RecentRecords      []domain.ExerciseRecord
}

// Provider generates workout plans from member context. Implementations call
// an external model; failures and malformed output must surface as errors,
// never as partial plans.
type Provider interface {
	GenerateWorkoutPlan(ctx context.Context, mc MemberContext) (*Plan, error)
}

// ValidatePlan checks a decoded plan against the persistence schema. Every
// violation maps to ErrInvalidPlan so callers can treat them uniformly.
func ValidatePlan(p *Plan) error {
	if p == nil {
		return fmt.Errorf("%w: empty plan", ErrInvalidPlan)
	}
	if p.TotalDuration <= 0 {
		return fmt.Errorf("%w: total_duration must be positive", ErrInvalidPlan)
	}
	if len(p.Exercises) == 0 {
		return fmt.Errorf("%w: no exercises", ErrInvalidPlan)
	}
	for i, ex := range p.Exercises {
		if ex.ExerciseName == "" {
			return fmt.Errorf("%w: exercise %d has no name", ErrInvalidPlan, i+1)
		}
		if ex.Sets < 1 {
			return fmt.Errorf("%w: exercise %q has invalid sets", ErrInvalidPlan, ex.ExerciseName)
		}
		if ex.Repetitions < 1 {
			return fmt.Errorf("%w: exercise %q has invalid repetitions", ErrInvalidPlan, ex.ExerciseName)
		}
		if ex.Duration < 1 {
			return fmt.Errorf("%w: exercise %q has invalid duration", ErrInvalidPlan, ex.ExerciseName)
		}
		if ex.RestTime < 0 {
			return fmt.Errorf("%w: exercise %q has negative rest time", ErrInvalidPlan, ex.ExerciseName)
		}
	}
	return nil
}
