package repository

import (
	"context"
	"time"

	"gymdesk/pt-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound = RepositoryError("not found")
	// ErrDuplicateLoginID signals the unique login-id index rejected a write.
	ErrDuplicateLoginID = RepositoryError("login id already exists")
	// ErrInsufficientCredit signals a conditional PT-count decrement matched
	// no document, i.e. the member has no remaining sessions.
	ErrInsufficientCredit = RepositoryError("no remaining pt count")
	ErrUpdateFailed       = RepositoryError("update failed")
	ErrDeleteFailed       = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// TxRunner runs fn inside a single datastore transaction. Repository calls
// made with the context passed to fn join the transaction; any error from fn
// rolls back everything.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AccountRepository defines the interface for login identities. Trainers and
// members share one collection and one login-id namespace.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (primitive.ObjectID, error)
	GetByLoginID(ctx context.Context, loginID string) (*domain.Account, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Account, error)
	Update(ctx context.Context, account *domain.Account) error
}

// MemberProfileRepository manages the member-specific extension documents,
// including the PT credit ledger.
type MemberProfileRepository interface {
	Create(ctx context.Context, profile *domain.MemberProfile) (primitive.ObjectID, error)
	GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.MemberProfile, error)
	Update(ctx context.Context, profile *domain.MemberProfile) error
	// MaxSequenceNumber returns the highest roster sequence among the given
	// members, or 0 when the list is empty.
	MaxSequenceNumber(ctx context.Context, memberIDs []primitive.ObjectID) (int, error)
	// ListByMemberIDs returns profiles ordered by sequence number ascending.
	ListByMemberIDs(ctx context.Context, memberIDs []primitive.ObjectID, offset, limit int64) ([]domain.MemberProfile, error)
	// DecrementRemainingPT atomically decrements the member's remaining PT
	// count if and only if it is positive. Returns ErrInsufficientCredit when
	// the count is zero; the document is left untouched in that case.
	DecrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error
	// IncrementRemainingPT restores one PT credit.
	IncrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error
}

// TrainerMemberRepository maintains the many-to-many trainer/member links.
// Every trainer-scoped read or write must check ownership through this
// repository.
type TrainerMemberRepository interface {
	Create(ctx context.Context, link *domain.TrainerMember) (primitive.ObjectID, error)
	Exists(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error)
	MemberIDsByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error)
}

// SessionRepository defines the interface for PT session data.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.PTSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PTSession, error)
	// GetOwned fetches a session only if it belongs to the given trainer;
	// anything else is ErrNotFound.
	GetOwned(ctx context.Context, sessionID, trainerID primitive.ObjectID) (*domain.PTSession, error)
	// ListByMemberAndTrainer returns sessions ordered by date then start time.
	ListByMemberAndTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) ([]domain.PTSession, error)
	// MaxSessionNumber returns the highest ordinal ever assigned for the
	// pair, or 0 when no session exists. Used to assign the next ordinal
	// without reusing numbers freed by deletions.
	MaxSessionNumber(ctx context.Context, memberID, trainerID primitive.ObjectID) (int, error)
	CountCompleted(ctx context.Context, memberID, trainerID primitive.ObjectID) (int64, error)
	// NextUpcoming returns the earliest uncompleted session on or after from,
	// or ErrNotFound when none is scheduled.
	NextUpcoming(ctx context.Context, memberID, trainerID primitive.ObjectID, from time.Time) (*domain.PTSession, error)
	Update(ctx context.Context, session *domain.PTSession) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRecordRepository defines the interface for per-session exercise
// records.
type ExerciseRecordRepository interface {
	Create(ctx context.Context, record *domain.ExerciseRecord) (primitive.ObjectID, error)
	CreateMany(ctx context.Context, records []domain.ExerciseRecord) error
	// ListBySessionID returns records ordered by creation time.
	ListBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseRecord, error)
	// ListRecentByMember returns the member's newest records first.
	ListRecentByMember(ctx context.Context, memberID primitive.ObjectID, limit int64) ([]domain.ExerciseRecord, error)
	DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) (int64, error)
}

// RecommendationRepository persists externally generated workout plans.
type RecommendationRepository interface {
	CreateWorkout(ctx context.Context, workout *domain.RecommendedWorkout) (primitive.ObjectID, error)
	CreateExercises(ctx context.Context, exercises []domain.RecommendedExercise) error
	// ListWorkouts returns workouts newest first, optionally filtered by member.
	ListWorkouts(ctx context.Context, memberID *primitive.ObjectID) ([]domain.RecommendedWorkout, error)
	GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.RecommendedWorkout, error)
	// ListExercisesByWorkout returns exercises ordered by sequence.
	ListExercisesByWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.RecommendedExercise, error)
}

// MeasurementRepository defines the interface for body measurement data.
type MeasurementRepository interface {
	Create(ctx context.Context, measurement *domain.BodyMeasurement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMeasurement, error)
	// ListByMemberID returns measurements newest first.
	ListByMemberID(ctx context.Context, memberID primitive.ObjectID) ([]domain.BodyMeasurement, error)
	// LatestByMemberID returns the most recent measurement, or ErrNotFound.
	LatestByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.BodyMeasurement, error)
	SetPhotoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
