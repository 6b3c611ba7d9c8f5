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

const (
	recommendedWorkoutCollectionName  = "recommended_workouts"
	recommendedExerciseCollectionName = "recommended_exercises"
)

// mongoRecommendationRepository implements repository.RecommendationRepository
// across the workout and exercise collections.
type mongoRecommendationRepository struct {
	workouts  *mongo.Collection
	exercises *mongo.Collection
}

// NewMongoRecommendationRepository creates a new instance of mongoRecommendationRepository.
func NewMongoRecommendationRepository(db *mongo.Database) repository.RecommendationRepository {
	return &mongoRecommendationRepository{
		workouts:  db.Collection(recommendedWorkoutCollectionName),
		exercises: db.Collection(recommendedExerciseCollectionName),
	}
}

// CreateWorkout inserts a new recommended workout header.
func (r *mongoRecommendationRepository) CreateWorkout(ctx context.Context, workout *domain.RecommendedWorkout) (primitive.ObjectID, error) {
	if workout.MemberID == primitive.NilObjectID || workout.SessionID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("member id and session id are required")
	}

	workout.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	workout.CreatedAt = now
	workout.UpdatedAt = now

	result, err := r.workouts.InsertOne(ctx, workout)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// CreateExercises inserts a workout's exercises. Meant to run in the same
// transaction as CreateWorkout so the plan commits as a unit.
func (r *mongoRecommendationRepository) CreateExercises(ctx context.Context, exercises []domain.RecommendedExercise) error {
	if len(exercises) == 0 {
		return nil
	}

	docs := make([]interface{}, len(exercises))
	for i := range exercises {
		if exercises[i].WorkoutID == primitive.NilObjectID {
			return errors.New("workout id is required")
		}
		if exercises[i].Sequence < 1 {
			return errors.New("sequence must be at least 1")
		}
		exercises[i].ID = primitive.NewObjectID()
		docs[i] = exercises[i]
	}

	_, err := r.exercises.InsertMany(ctx, docs)
	return err
}

// ListWorkouts returns workouts newest first, optionally filtered by member.
func (r *mongoRecommendationRepository) ListWorkouts(ctx context.Context, memberID *primitive.ObjectID) ([]domain.RecommendedWorkout, error) {
	filter := bson.M{}
	if memberID != nil {
		filter["memberId"] = *memberID
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.workouts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workouts []domain.RecommendedWorkout
	if err = cursor.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// GetWorkout retrieves a workout by id.
func (r *mongoRecommendationRepository) GetWorkout(ctx context.Context, id primitive.ObjectID) (*domain.RecommendedWorkout, error) {
	var workout domain.RecommendedWorkout
	err := r.workouts.FindOne(ctx, bson.M{"_id": id}).Decode(&workout)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &workout, nil
}

// ListExercisesByWorkout returns a workout's exercises ordered by sequence.
func (r *mongoRecommendationRepository) ListExercisesByWorkout(ctx context.Context, workoutID primitive.ObjectID) ([]domain.RecommendedExercise, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})

	cursor, err := r.exercises.Find(ctx, bson.M{"workoutId": workoutID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var exercises []domain.RecommendedExercise
	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

// EnsureRecommendationIndexes creates necessary indexes for both
// recommendation collections.
func EnsureRecommendationIndexes(ctx context.Context, workouts, exercises *mongo.Collection) {
	_, _ = workouts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "memberId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index(),
		},
	})

	_, _ = exercises.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "workoutId", Value: 1},
				{Key: "sequence", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
	})
}
