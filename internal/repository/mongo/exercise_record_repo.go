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

const exerciseRecordCollectionName = "exercise_records"

// mongoExerciseRecordRepository implements repository.ExerciseRecordRepository.
type mongoExerciseRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRecordRepository creates a new instance of mongoExerciseRecordRepository.
func NewMongoExerciseRecordRepository(db *mongo.Database) repository.ExerciseRecordRepository {
	return &mongoExerciseRecordRepository{
		collection: db.Collection(exerciseRecordCollectionName),
	}
}

func prepareRecord(record *domain.ExerciseRecord, now time.Time) error {
	if record.SessionID == primitive.NilObjectID || record.MemberID == primitive.NilObjectID {
		return errors.New("session id and member id are required")
	}
	if record.ExerciseName == "" {
		return errors.New("exercise name is required")
	}
	if record.Sets < 1 {
		record.Sets = 1
	}
	record.ID = primitive.NewObjectID()
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

// Create inserts a single exercise record.
func (r *mongoExerciseRecordRepository) Create(ctx context.Context, record *domain.ExerciseRecord) (primitive.ObjectID, error) {
	if err := prepareRecord(record, time.Now().UTC()); err != nil {
		return primitive.NilObjectID, err
	}

	result, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// CreateMany inserts a batch of exercise records. Meant to run inside the
// session-scheduling or session-update transaction.
func (r *mongoExerciseRecordRepository) CreateMany(ctx context.Context, records []domain.ExerciseRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(records))
	for i := range records {
		if err := prepareRecord(&records[i], now); err != nil {
			return err
		}
		docs[i] = records[i]
	}

	_, err := r.collection.InsertMany(ctx, docs)
	return err
}

// ListBySessionID returns a session's records ordered by creation time.
func (r *mongoExerciseRecordRepository) ListBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ExerciseRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListRecentByMember returns the member's newest records first, capped at limit.
func (r *mongoExerciseRecordRepository) ListRecentByMember(ctx context.Context, memberID primitive.ObjectID, limit int64) ([]domain.ExerciseRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ExerciseRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteBySessionID removes every record belonging to the session and returns
// how many were deleted. Used both for the bulk replace-on-update and for the
// explicit cascade when a session is deleted.
func (r *mongoExerciseRecordRepository) DeleteBySessionID(ctx context.Context, sessionID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureExerciseRecordIndexes creates necessary indexes for the exercise_records collection.
func EnsureExerciseRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys: bson.D{
				{Key: "memberId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
