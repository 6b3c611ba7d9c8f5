package service

import (
	"context"
	"errors"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	// ErrMemberNotFound covers both truly missing members and members outside
	// the caller's roster; the two cases must be indistinguishable so a
	// trainer cannot probe for other trainers' members.
	ErrMemberNotFound = errors.New("member not found")
)

// MemberInput is the payload for registering a new member.
type MemberInput struct {
	LoginID         string
	Password        string
	Name            string
	Gender          domain.Gender
	Contact         string
	FitnessGoal     string
	ExperienceLevel string
	Injuries        []string
	Notes           string
	TotalPTCount    int
}

// MemberUpdate carries a partial member update; nil fields are left unchanged.
type MemberUpdate struct {
	Name             *string
	Password         *string
	Gender           *domain.Gender
	Contact          *string
	FitnessGoal      *string
	ExperienceLevel  *string
	Injuries         *[]string
	Notes            *string
	TotalPTCount     *int
	RemainingPTCount *int
	IsActive         *bool
}

// RosterService maintains a trainer's member roster. All reads and writes are
// scoped through the trainer/member link table.
type RosterService interface {
	// ListMembers returns the trainer's members ordered by roster sequence,
	// paginated, plus the unpaginated total. Each entry carries the derived
	// current session number and next session date for this trainer.
	ListMembers(ctx context.Context, trainerID primitive.ObjectID, offset, limit int64) ([]domain.Member, int64, error)
	RegisterMember(ctx context.Context, trainerID primitive.ObjectID, input MemberInput) (*domain.Member, error)
	GetMember(ctx context.Context, trainerID, memberID primitive.ObjectID) (*domain.Member, error)
	UpdateMember(ctx context.Context, trainerID, memberID primitive.ObjectID, update MemberUpdate) (*domain.Member, error)
}

// rosterService implements the RosterService interface.
type rosterService struct {
	accountRepo repository.AccountRepository
	profileRepo repository.MemberProfileRepository
	linkRepo    repository.TrainerMemberRepository
	sessionRepo repository.SessionRepository
	tx          repository.TxRunner
}

// NewRosterService creates a new instance of rosterService.
func NewRosterService(
	accountRepo repository.AccountRepository,
	profileRepo repository.MemberProfileRepository,
	linkRepo repository.TrainerMemberRepository,
	sessionRepo repository.SessionRepository,
	tx repository.TxRunner,
) RosterService {
	return &rosterService{
		accountRepo: accountRepo,
		profileRepo: profileRepo,
		linkRepo:    linkRepo,
		sessionRepo: sessionRepo,
		tx:          tx,
	}
}

// ListMembers returns the trainer's roster with derived PT progress fields.
func (s *rosterService) ListMembers(ctx context.Context, trainerID primitive.ObjectID, offset, limit int64) ([]domain.Member, int64, error) {
	memberIDs, err := s.linkRepo.MemberIDsByTrainer(ctx, trainerID)
	if err != nil {
		return nil, 0, err
	}
	total := int64(len(memberIDs))

	profiles, err := s.profileRepo.ListByMemberIDs(ctx, memberIDs, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	pageIDs := make([]primitive.ObjectID, len(profiles))
	for i, p := range profiles {
		pageIDs[i] = p.MemberID
	}
	accounts, err := s.accountRepo.GetByIDs(ctx, pageIDs)
	if err != nil {
		return nil, 0, err
	}
	accountByID := make(map[primitive.ObjectID]domain.Account, len(accounts))
	for _, a := range accounts {
		a.PasswordHash = ""
		accountByID[a.ID] = a
	}

	today := startOfDayUTC(time.Now())
	members := make([]domain.Member, 0, len(profiles))
	for _, profile := range profiles {
		account, ok := accountByID[profile.MemberID]
		if !ok {
			// Profile without an account should not happen; skip rather than fail the page.
			continue
		}

		member := domain.Member{Account: account, Profile: profile}

		completed, err := s.sessionRepo.CountCompleted(ctx, profile.MemberID, trainerID)
		if err != nil {
			return nil, 0, err
		}
		member.CurrentSessionNumber = int(completed) + 1

		next, err := s.sessionRepo.NextUpcoming(ctx, profile.MemberID, trainerID, today)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, 0, err
		}
		if next != nil {
			member.NextSessionDate = next.SessionDate.Format("2006-01-02")
		}

		members = append(members, member)
	}

	return members, total, nil
}

// RegisterMember creates the member account, its profile, and the trainer
// link in a single transaction; a failure in any step leaves nothing behind.
func (s *rosterService) RegisterMember(ctx context.Context, trainerID primitive.ObjectID, input MemberInput) (*domain.Member, error) {
	if input.LoginID == "" || input.Password == "" || input.Name == "" {
		return nil, errors.New("login id, password, and name are required")
	}
	if input.TotalPTCount < 0 {
		return nil, errors.New("pt count cannot be negative")
	}

	// Duplicate check across the shared account namespace; the unique index
	// backstops the race inside the transaction.
	if _, err := s.accountRepo.GetByLoginID(ctx, input.LoginID); err == nil {
		return nil, ErrLoginIDTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	// Roster position: max existing sequence for this trainer, or 0, plus 1.
	memberIDs, err := s.linkRepo.MemberIDsByTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	maxSeq, err := s.profileRepo.MaxSequenceNumber(ctx, memberIDs)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		LoginID:      input.LoginID,
		PasswordHash: string(hashedPassword),
		Name:         input.Name,
		Role:         domain.RoleMember,
		IsActive:     true,
	}
	profile := &domain.MemberProfile{
		Gender:           input.Gender,
		Contact:          input.Contact,
		FitnessGoal:      input.FitnessGoal,
		ExperienceLevel:  input.ExperienceLevel,
		Injuries:         input.Injuries,
		Notes:            input.Notes,
		SequenceNumber:   maxSeq + 1,
		TotalPTCount:     input.TotalPTCount,
		RemainingPTCount: input.TotalPTCount,
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		accountID, err := s.accountRepo.Create(txCtx, account)
		if err != nil {
			return err
		}
		profile.MemberID = accountID

		if _, err := s.profileRepo.Create(txCtx, profile); err != nil {
			return err
		}

		link := &domain.TrainerMember{TrainerID: trainerID, MemberID: accountID}
		_, err = s.linkRepo.Create(txCtx, link)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateLoginID) {
			return nil, ErrLoginIDTaken
		}
		return nil, err
	}

	account.PasswordHash = ""
	return &domain.Member{Account: *account, Profile: *profile}, nil
}

// GetMember returns a member only when linked to the trainer.
func (s *rosterService) GetMember(ctx context.Context, trainerID, memberID primitive.ObjectID) (*domain.Member, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}
	return s.loadMember(ctx, memberID)
}

// UpdateMember applies a partial update to a member on the trainer's roster.
// A supplied password is re-hashed; plaintext never reaches the datastore.
func (s *rosterService) UpdateMember(ctx context.Context, trainerID, memberID primitive.ObjectID, update MemberUpdate) (*domain.Member, error) {
	if err := s.requireLink(ctx, trainerID, memberID); err != nil {
		return nil, err
	}

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	account := member.Account
	profile := member.Profile

	if update.Name != nil {
		account.Name = *update.Name
	}
	if update.Password != nil && *update.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, ErrHashingFailed
		}
		account.PasswordHash = string(hashed)
	}
	if update.IsActive != nil {
		account.IsActive = *update.IsActive
	}
	if update.Gender != nil {
		profile.Gender = *update.Gender
	}
	if update.Contact != nil {
		profile.Contact = *update.Contact
	}
	if update.FitnessGoal != nil {
		profile.FitnessGoal = *update.FitnessGoal
	}
	if update.ExperienceLevel != nil {
		profile.ExperienceLevel = *update.ExperienceLevel
	}
	if update.Injuries != nil {
		profile.Injuries = *update.Injuries
	}
	if update.Notes != nil {
		profile.Notes = *update.Notes
	}
	if update.TotalPTCount != nil {
		if *update.TotalPTCount < 0 {
			return nil, errors.New("pt count cannot be negative")
		}
		profile.TotalPTCount = *update.TotalPTCount
	}
	if update.RemainingPTCount != nil {
		if *update.RemainingPTCount < 0 {
			return nil, errors.New("pt count cannot be negative")
		}
		profile.RemainingPTCount = *update.RemainingPTCount
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if account.PasswordHash == "" {
			// loadMember blanks the hash; refetch so Update does not wipe it.
			stored, err := s.accountRepo.GetByID(txCtx, memberID)
			if err != nil {
				return err
			}
			account.PasswordHash = stored.PasswordHash
		}
		if err := s.accountRepo.Update(txCtx, &account); err != nil {
			return err
		}
		return s.profileRepo.Update(txCtx, &profile)
	})
	if err != nil {
		return nil, err
	}

	account.PasswordHash = ""
	return &domain.Member{Account: account, Profile: profile}, nil
}

func (s *rosterService) requireLink(ctx context.Context, trainerID, memberID primitive.ObjectID) error {
	linked, err := s.linkRepo.Exists(ctx, trainerID, memberID)
	if err != nil {
		return err
	}
	if !linked {
		return ErrMemberNotFound
	}
	return nil
}

func (s *rosterService) loadMember(ctx context.Context, memberID primitive.ObjectID) (*domain.Member, error) {
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

	account.PasswordHash = ""
	return &domain.Member{Account: *account, Profile: *profile}, nil
}

func startOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
