package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound = errors.New("session not found")
	// ErrInsufficientCredit is returned when a member has no remaining PT
	// sessions; nothing is written in that case.
	ErrInsufficientCredit = errors.New("member has no remaining pt sessions")
)

// ExerciseInput is one exercise supplied when scheduling or editing a session.
type ExerciseInput struct {
	ExerciseName string
	Duration     int // Seconds
	Repetitions  int
	Sets         int
	BodyPart     string
	Notes        string
}

// ScheduleInput is the payload for scheduling a new PT session.
type ScheduleInput struct {
	SessionDate string // "2006-01-02"
	StartTime   string // "15:04"
	EndTime     string // "15:04"
	Notes       string
	Exercises   []ExerciseInput
}

// SessionDetail combines a session with its exercise records.
type SessionDetail struct {
	Session   domain.PTSession        `json:"session"`
	Exercises []domain.ExerciseRecord `json:"exercises"`
}

// SessionService manages the PT session lifecycle: scheduling against the
// member's credit ledger, editing, completing, and deleting.
type SessionService interface {
	// ScheduleSession consumes one PT credit and creates the session together
	// with its trainer-entered exercise records, all in one transaction.
	ScheduleSession(ctx context.Context, trainerID, memberID primitive.ObjectID, input ScheduleInput) (*SessionDetail, error)
	// ListSessions returns all sessions between the trainer and member,
	// ordered by date then start time.
	ListSessions(ctx context.Context, trainerID, memberID primitive.ObjectID) ([]domain.PTSession, error)
	// GetSessionExercises returns a session with its exercise records. The
	// session must belong to the trainer.
	GetSessionExercises(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*SessionDetail, error)
	// UpdateSession rewrites the session's schedule fields and replaces its
	// exercise records wholesale with the supplied list.
	UpdateSession(ctx context.Context, trainerID, sessionID primitive.ObjectID, input ScheduleInput) (*SessionDetail, error)
	// CompleteSession marks a session completed. Completion is terminal;
	// there is no way back to scheduled.
	CompleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.PTSession, error)
	// DeleteSession removes the session and its records and restores the
	// consumed PT credit, all in one transaction.
	DeleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) error
	// AddMemberRecord lets a member log an exercise against their own
	// session. Sessions of other members are reported as not found.
	AddMemberRecord(ctx context.Context, memberID, sessionID primitive.ObjectID, input ExerciseInput) (*domain.ExerciseRecord, error)
}

// sessionService implements the SessionService interface.
type sessionService struct {
	sessionRepo repository.SessionRepository
	recordRepo  repository.ExerciseRecordRepository
	profileRepo repository.MemberProfileRepository
	linkRepo    repository.TrainerMemberRepository
	tx          repository.TxRunner
}

// NewSessionService creates a new instance of sessionService.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	recordRepo repository.ExerciseRecordRepository,
	profileRepo repository.MemberProfileRepository,
	linkRepo repository.TrainerMemberRepository,
	tx repository.TxRunner,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		recordRepo:  recordRepo,
		profileRepo: profileRepo,
		linkRepo:    linkRepo,
		tx:          tx,
	}
}

// ScheduleSession creates a session for a roster member. The credit decrement
// runs first inside the transaction: when the member has no remaining
// sessions it matches nothing, the transaction writes nothing, and the
// caller gets ErrInsufficientCredit. Two concurrent schedules for a member
// with one credit left can therefore never both succeed.
func (s *sessionService) ScheduleSession(ctx context.Context, trainerID, memberID primitive.ObjectID, input ScheduleInput) (*SessionDetail, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}

	sessionDate, err := parseSessionDate(input.SessionDate)
	if err != nil {
		return nil, err
	}
	if err := validateTimeRange(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	session := &domain.PTSession{
		MemberID:    memberID,
		TrainerID:   &trainerID,
		SessionDate: sessionDate,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Notes:       input.Notes,
	}

	var records []domain.ExerciseRecord
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.profileRepo.DecrementRemainingPT(txCtx, memberID); err != nil {
			if errors.Is(err, repository.ErrInsufficientCredit) {
				return ErrInsufficientCredit
			}
			return err
		}

		// Next ordinal is the highest assigned so far + 1; numbers freed by
		// deletions are not reused.
		maxNumber, err := s.sessionRepo.MaxSessionNumber(txCtx, memberID, trainerID)
		if err != nil {
			return err
		}
		session.SessionNumber = maxNumber + 1

		sessionID, err := s.sessionRepo.Create(txCtx, session)
		if err != nil {
			return err
		}
		session.ID = sessionID

		records = buildRecords(session, input.Exercises)
		if len(records) > 0 {
			return s.recordRepo.CreateMany(txCtx, records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SessionDetail{Session: *session, Exercises: records}, nil
}

// ListSessions returns the trainer's sessions with the member.
func (s *sessionService) ListSessions(ctx context.Context, trainerID, memberID primitive.ObjectID) ([]domain.PTSession, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}
	return s.sessionRepo.ListByMemberAndTrainer(ctx, memberID, trainerID)
}

// GetSessionExercises returns the session with its exercise records.
func (s *sessionService) GetSessionExercises(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*SessionDetail, error) {
	session, err := s.getOwnedSession(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}
	records, err := s.recordRepo.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: *session, Exercises: records}, nil
}

// UpdateSession replaces the session's schedule fields and its exercise list.
// Records are deleted and reinserted wholesale; the session number and
// completion flag are untouched.
func (s *sessionService) UpdateSession(ctx context.Context, trainerID, sessionID primitive.ObjectID, input ScheduleInput) (*SessionDetail, error) {
	session, err := s.getOwnedSession(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}

	sessionDate, err := parseSessionDate(input.SessionDate)
	if err != nil {
		return nil, err
	}
	if err := validateTimeRange(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}

	session.SessionDate = sessionDate
	session.StartTime = input.StartTime
	session.EndTime = input.EndTime
	session.Notes = input.Notes

	var records []domain.ExerciseRecord
	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionRepo.Update(txCtx, session); err != nil {
			return err
		}
		if _, err := s.recordRepo.DeleteBySessionID(txCtx, sessionID); err != nil {
			return err
		}
		records = buildRecords(session, input.Exercises)
		if len(records) > 0 {
			return s.recordRepo.CreateMany(txCtx, records)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SessionDetail{Session: *session, Exercises: records}, nil
}

// CompleteSession marks the session as done. Completing an already completed
// session is a no-op rather than an error.
func (s *sessionService) CompleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.PTSession, error) {
	session, err := s.getOwnedSession(ctx, trainerID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted {
		return session, nil
	}

	session.IsCompleted = true
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes the session and its exercise records and gives the
// member the PT credit back.
func (s *sessionService) DeleteSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) error {
	session, err := s.getOwnedSession(ctx, trainerID, sessionID)
	if err != nil {
		return err
	}

	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.recordRepo.DeleteBySessionID(txCtx, sessionID); err != nil {
			return err
		}
		if err := s.sessionRepo.Delete(txCtx, sessionID); err != nil {
			return err
		}
		return s.profileRepo.IncrementRemainingPT(txCtx, session.MemberID)
	})
}

// AddMemberRecord logs a member-reported exercise against the member's own
// session. This is the one record write outside the trainer flows and the
// only one tagged with the member source.
func (s *sessionService) AddMemberRecord(ctx context.Context, memberID, sessionID primitive.ObjectID, input ExerciseInput) (*domain.ExerciseRecord, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	// Another member's session must look exactly like a missing one.
	if session.MemberID != memberID {
		return nil, ErrSessionNotFound
	}

	if input.ExerciseName == "" {
		return nil, errors.New("exercise name is required")
	}

	record := &domain.ExerciseRecord{
		SessionID:    sessionID,
		MemberID:     memberID,
		TrainerID:    session.TrainerID,
		ExerciseName: input.ExerciseName,
		Duration:     input.Duration,
		Repetitions:  input.Repetitions,
		Sets:         input.Sets,
		BodyPart:     input.BodyPart,
		Notes:        input.Notes,
		InputSource:  domain.SourceMember,
	}
	recordID, err := s.recordRepo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = recordID
	return record, nil
}

func (s *sessionService) requireLink(ctx context.Context, trainerID, memberID primitive.ObjectID) error {
	linked, err := s.linkRepo.Exists(ctx, trainerID, memberID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrMemberNotFound
	}
	return nil
}

func (s *sessionService) getOwnedSession(ctx context.Context, trainerID, sessionID primitive.ObjectID) (*domain.PTSession, error) {
	session, err := s.sessionRepo.GetOwned(ctx, sessionID, trainerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func buildRecords(session *domain.PTSession, inputs []ExerciseInput) []domain.ExerciseRecord {
	records := make([]domain.ExerciseRecord, 0, len(inputs))
	for _, in := range inputs {
		records = append(records, domain.ExerciseRecord{
			SessionID:    session.ID,
			MemberID:     session.MemberID,
			TrainerID:    session.TrainerID,
			ExerciseName: in.ExerciseName,
			Duration:     in.Duration,
			Repetitions:  in.Repetitions,
			Sets:         in.Sets,
			BodyPart:     in.BodyPart,
			Notes:        in.Notes,
			InputSource:  domain.SourceTrainer,
		})
	}
	return records
}

func parseSessionDate(value string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid session date %q, want YYYY-MM-DD", value)
	}
	return t.UTC(), nil
}

func validateTimeRange(start, end string) error {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return fmt.Errorf("invalid start time %q, want HH:MM", start)
	}
	et, err := time.Parse("15:04", end)
	if err != nil {
		return fmt.Errorf("invalid end time %q, want HH:MM", end)
	}
	if !et.After(st) {
		return fmt.Errorf("end time %q must be after start time %q", end, start)
	}
	return nil
}
