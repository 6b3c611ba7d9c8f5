package mongo

import (
	"context"
	"errors"
	"time"

	"gymdesk/pt-app/internal/domain"
	"gymdesk/pt-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "pt_sessions"

// mongoSessionRepository implements repository.SessionRepository using MongoDB.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new instance of mongoSessionRepository.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new PT session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.PTSession) (primitive.ObjectID, error) {
	if session.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("member id is required")
	}
	if session.SessionNumber < 1 {
		return primitive.NilObjectID, errors.New("session number must be at least 1")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a session by its ObjectID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PTSession, error) {
	var session domain.PTSession
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetOwned retrieves a session only when it belongs to the given trainer.
// A session owned by another trainer is indistinguishable from a missing one.
func (r *mongoSessionRepository) GetOwned(ctx context.Context, sessionID, trainerID primitive.ObjectID) (*domain.PTSession, error) {
	var session domain.PTSession
	filter := bson.M{"_id": sessionID, "trainerId": trainerID}
	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByMemberAndTrainer returns the pair's sessions ordered by date then
// start time ascending.
func (r *mongoSessionRepository) ListByMemberAndTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) ([]domain.PTSession, error) {
	filter := bson.M{"memberId": memberID, "trainerId": trainerID}
	opts := options.Find().SetSort(bson.D{
		{Key: "sessionDate", Value: 1},
		{Key: "startTime", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []domain.PTSession
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// MaxSessionNumber returns the highest ordinal assigned for the pair, or 0.
func (r *mongoSessionRepository) MaxSessionNumber(ctx context.Context, memberID, trainerID primitive.ObjectID) (int, error) {
	filter := bson.M{"memberId": memberID, "trainerId": trainerID}
	opts := options.FindOne().SetSort(bson.D{{Key: "sessionNumber", Value: -1}})

	var session domain.PTSession
	err := r.collection.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return session.SessionNumber, nil
}

// CountCompleted counts the pair's completed sessions.
func (r *mongoSessionRepository) CountCompleted(ctx context.Context, memberID, trainerID primitive.ObjectID) (int64, error) {
	filter := bson.M{"memberId": memberID, "trainerId": trainerID, "isCompleted": true}
	return r.collection.CountDocuments(ctx, filter)
}

// NextUpcoming returns the earliest uncompleted session on or after from.
func (r *mongoSessionRepository) NextUpcoming(ctx context.Context, memberID, trainerID primitive.ObjectID, from time.Time) (*domain.PTSession, error) {
	filter := bson.M{
		"memberId":    memberID,
		"trainerId":   trainerID,
		"sessionDate": bson.M{"$gte": from},
		"isCompleted": false,
	}
	opts := options.FindOne().SetSort(bson.D{
		{Key: "sessionDate", Value: 1},
		{Key: "startTime", Value: 1},
	})

	var session domain.PTSession
	err := r.collection.FindOne(ctx, filter, opts).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update replaces the mutable fields of an existing session. SessionNumber is
// excluded: ordinals are assigned once and never renumbered.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.PTSession) error {
	session.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"sessionDate": session.SessionDate,
		"startTime":   session.StartTime,
		"endTime":     session.EndTime,
		"isCompleted": session.IsCompleted,
		"notes":       session.Notes,
		"updatedAt":   session.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": session.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a session. Its exercise records must be removed in the same
// transaction by the caller; MongoDB has no foreign-key cascade.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes creates necessary indexes for the pt_sessions collection.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "memberId", Value: 1},
				{Key: "trainerId", Value: 1},
				{Key: "sessionDate", Value: 1},
			},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
