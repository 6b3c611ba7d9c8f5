package service

import (
	"context"
	"sync"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes backing the service tests. The fake TxRunner
// just invokes the callback; atomicity of the conditional credit decrement
// is preserved by the mutex in fakeProfileRepo, which is what the
// concurrency tests exercise.

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- accounts ---

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[primitive.ObjectID]domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[primitive.ObjectID]domain.Account)}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.LoginID == account.LoginID {
			return primitive.NilObjectID, repository.ErrDuplicateLoginID
		}
	}
	id := primitive.NewObjectID()
	account.ID = id
	account.CreatedAt = time.Now()
	f.accounts[id] = *account
	return id, nil
}

func (f *fakeAccountRepo) GetByLoginID(ctx context.Context, loginID string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.LoginID == loginID {
			out := a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := a
	return &out, nil
}

func (f *fakeAccountRepo) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Account
	for _, id := range ids {
		if a, ok := f.accounts[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	f.accounts[account.ID] = *account
	return nil
}

// --- member profiles ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[primitive.ObjectID]domain.MemberProfile // keyed by member id
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[primitive.ObjectID]domain.MemberProfile)}
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *domain.MemberProfile) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	profile.ID = id
	f.profiles[profile.MemberID] = *profile
	return id, nil
}

func (f *fakeProfileRepo) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[memberID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := p
	return &out, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, profile *domain.MemberProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[profile.MemberID]; !ok {
		return repository.ErrNotFound
	}
	f.profiles[profile.MemberID] = *profile
	return nil
}

func (f *fakeProfileRepo) MaxSequenceNumber(ctx context.Context, memberIDs []primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, id := range memberIDs {
		if p, ok := f.profiles[id]; ok && p.SequenceNumber > max {
			max = p.SequenceNumber
		}
	}
	return max, nil
}

func (f *fakeProfileRepo) ListByMemberIDs(ctx context.Context, memberIDs []primitive.ObjectID, offset, limit int64) ([]domain.MemberProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.MemberProfile
	for _, id := range memberIDs {
		if p, ok := f.profiles[id]; ok {
			all = append(all, p)
		}
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			if all[j].SequenceNumber < all[i].SequenceNumber {
				all[i], all[j] = all[j], all[i]
			}
		}
	}
	if offset >= int64(len(all)) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < int64(len(all)) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeProfileRepo) DecrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[memberID]
	if !ok || p.RemainingPTCount <= 0 {
		return repository.ErrInsufficientCredit
	}
	p.RemainingPTCount--
	f.profiles[memberID] = p
	return nil
}

func (f *fakeProfileRepo) IncrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[memberID]
	if !ok {
		return repository.ErrNotFound
	}
	p.RemainingPTCount++
	f.profiles[memberID] = p
	return nil
}

// --- trainer/member links ---

type fakeLinkRepo struct {
	mu    sync.Mutex
	links []domain.TrainerMember
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{}
}

func (f *fakeLinkRepo) Create(ctx context.Context, link *domain.TrainerMember) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link.ID = primitive.NewObjectID()
	f.links = append(f.links, *link)
	return link.ID, nil
}

func (f *fakeLinkRepo) Exists(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.links {
		if l.TrainerID == trainerID && l.MemberID == memberID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLinkRepo) MemberIDsByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []primitive.ObjectID
	for _, l := range f.links {
		if l.TrainerID == trainerID {
			ids = append(ids, l.MemberID)
		}
	}
	return ids, nil
}

// --- sessions ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]domain.PTSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]domain.PTSession)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *domain.PTSession) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	session.ID = id
	session.CreatedAt = time.Now()
	f.sessions[id] = *session
	return id, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PTSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeSessionRepo) GetOwned(ctx context.Context, sessionID, trainerID primitive.ObjectID) (*domain.PTSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok || s.TrainerID == nil || *s.TrainerID != trainerID {
		return nil, repository.ErrNotFound
	}
	out := s
	return &out, nil
}

func (f *fakeSessionRepo) ListByMemberAndTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) ([]domain.PTSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.PTSession
	for _, s := range f.sessions {
		if s.MemberID == memberID && s.TrainerID != nil && *s.TrainerID == trainerID {
			out = append(out, s)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].SessionDate.Before(out[i].SessionDate) ||
				(out[j].SessionDate.Equal(out[i].SessionDate) && out[j].StartTime < out[i].StartTime) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) MaxSessionNumber(ctx context.Context, memberID, trainerID primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, s := range f.sessions {
		if s.MemberID == memberID && s.TrainerID != nil && *s.TrainerID == trainerID && s.SessionNumber > max {
			max = s.SessionNumber
		}
	}
	return max, nil
}

func (f *fakeSessionRepo) CountCompleted(ctx context.Context, memberID, trainerID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.sessions {
		if s.MemberID == memberID && s.TrainerID != nil && *s.TrainerID == trainerID && s.IsCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeSessionRepo) NextUpcoming(ctx context.Context, memberID, trainerID primitive.ObjectID, from time.Time) (*domain.PTSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *domain.PTSession
	for _, s := range f.sessions {
		s := s
		if s.MemberID != memberID || s.TrainerID == nil || *s.TrainerID != trainerID {
			continue
		}
		if s.IsCompleted || s.SessionDate.Before(from) {
			continue
		}
		if best == nil || s.SessionDate.Before(best.SessionDate) {
			best = &s
		}
	}
	if best == nil {
		return nil, repository.ErrNotFound
	}
	return best, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, session *domain.PTSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	f.sessions[session.ID] = *session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.sessions, id)
	return nil
}

// --- exercise records ---

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.ExerciseRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: make(map[primitive.ObjectID]domain.ExerciseRecord)}
}

func (f *fakeRecordRepo) Create(ctx context.Context, record *domain.ExerciseRecord) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	record.ID = id
	if record.Sets == 0 {
		record.Sets = 1
	}
	record.CreatedAt = time.Now()
	f.records[id] = *record
	return id, nil
}

func (f *fakeRecordRepo) CreateMany(ctx context.Context, records []domain.ExerciseRecord) error {
	for i := range records {
		if _, err := f.Create(ctx, &records[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeRecordRepo) ListBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ExerciseRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListRecentByMember(ctx context.Context, memberID primitive.ObjectID, limit int64) ([]domain.ExerciseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ExerciseRecord
	for _, r := range f.records {
		if r.MemberID == memberID {
			out = append(out, r)
		}
	}
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecordRepo) DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.records {
		if r.SessionID == sessionID {
			delete(f.records, id)
			n++
		}
	}
	return n, nil
}

// --- recommendations ---

type fakeRecommendationRepo struct {
	mu        sync.Mutex
	workouts  map[primitive.ObjectID]domain.RecommendedWorkout
	exercises []domain.RecommendedExercise
}

func newFakeRecommendationRepo() *fakeRecommendationRepo {
	return &fakeRecommendationRepo{workouts: make(map[primitive.ObjectID]domain.RecommendedWorkout)}
}

func (f *fakeRecommendationRepo) CreateWorkout(ctx context.Context, workout *domain.RecommendedWorkout) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	workout.ID = id
	f.workouts[id] = *workout
	return id, nil
}

func (f *fakeRecommendationRepo) CreateExercises(ctx context.Context, exercises []domain.RecommendedExercise) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range exercises {
		exercises[i].ID = primitive.NewObjectID()
		f.exercises = append(f.exercises, exercises[i])
	}
	return nil
}

func (f *fakeRecommendationRepo) ListWorkouts(ctx context.Context, memberID *primitive.ObjectID) ([]domain.RecommendedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RecommendedWorkout
	for _, w := range f.workouts {
		if memberID == nil || w.MemberID == *memberID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeRecommendationRepo) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.RecommendedWorkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.workouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := w
	return &out, nil
}

func (f *fakeRecommendationRepo) ListExercisesByWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.RecommendedExercise, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.RecommendedExercise
	for _, ex := range f.exercises {
		if ex.WorkoutID == workoutID {
			out = append(out, ex)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Sequence < out[i].Sequence {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// --- measurements ---

type fakeMeasurementRepo struct {
	mu           sync.Mutex
	measurements map[primitive.ObjectID]domain.BodyMeasurement
}

func newFakeMeasurementRepo() *fakeMeasurementRepo {
	return &fakeMeasurementRepo{measurements: make(map[primitive.ObjectID]domain.BodyMeasurement)}
}

func (f *fakeMeasurementRepo) Create(ctx context.Context, measurement *domain.BodyMeasurement) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := primitive.NewObjectID()
	measurement.ID = id
	measurement.CreatedAt = time.Now()
	f.measurements[id] = *measurement
	return id, nil
}

func (f *fakeMeasurementRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMeasurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.measurements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := m
	return &out, nil
}

func (f *fakeMeasurementRepo) ListByMemberID(ctx context.Context, memberID primitive.ObjectID) ([]domain.BodyMeasurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.BodyMeasurement
	for _, m := range f.measurements {
		if m.MemberID == memberID {
			out = append(out, m)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].MeasurementDate.After(out[i].MeasurementDate) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeMeasurementRepo) LatestByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.BodyMeasurement, error) {
	all, err := f.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, repository.ErrNotFound
	}
	return &all[0], nil
}

func (f *fakeMeasurementRepo) SetPhotoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.measurements[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.PhotoObjectKey = objectKey
	f.measurements[id] = m
	return nil
}

func (f *fakeMeasurementRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.measurements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.measurements, id)
	return nil
}

// --- object storage ---

type fakeFileStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (f *fakeFileStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/upload/" + objectKey, nil
}

func (f *fakeFileStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/download/" + objectKey, nil
}

func (f *fakeFileStorage) DeleteObject(ctx context.Context, objectKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, objectKey)
	return nil
}
