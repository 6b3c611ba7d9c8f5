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

const measurementCollectionName = "body_measurements"

// mongoMeasurementRepository implements repository.MeasurementRepository.
type mongoMeasurementRepository struct {
	collection *mongo.Collection
}

// NewMongoMeasurementRepository creates a new instance of mongoMeasurementRepository.
func NewMongoMeasurementRepository(db *mongo.Database) repository.MeasurementRepository {
	return &mongoMeasurementRepository{
		collection: db.Collection(measurementCollectionName),
	}
}

// Create inserts a new body measurement.
func (r *mongoMeasurementRepository) Create(ctx context.Context, measurement *domain.BodyMeasurement) (primitive.ObjectID, error) {
	if measurement.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("member id is required")
	}

	measurement.ID = primitive.NewObjectID()
	measurement.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, measurement)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a measurement by id.
func (r *mongoMeasurementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyMeasurement, error) {
	var measurement domain.BodyMeasurement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&measurement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &measurement, nil
}

// ListByMemberID returns the member's measurements newest first.
func (r *mongoMeasurementRepository) ListByMemberID(ctx context.Context, memberID primitive.ObjectID) ([]domain.BodyMeasurement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "measurementDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"memberId": memberID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var measurements []domain.BodyMeasurement
	if err = cursor.All(ctx, &measurements); err != nil {
		return nil, err
	}
	return measurements, nil
}

// LatestByMemberID returns the most recent measurement for the member.
func (r *mongoMeasurementRepository) LatestByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.BodyMeasurement, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "measurementDate", Value: -1}})

	var measurement domain.BodyMeasurement
	err := r.collection.FindOne(ctx, bson.M{"memberId": memberID}, opts).Decode(&measurement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &measurement, nil
}

// SetPhotoObjectKey attaches a progress-photo object key to a measurement.
func (r *mongoMeasurementRepository) SetPhotoObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	update := bson.M{"$set": bson.M{"photoObjectKey": objectKey}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a measurement.
func (r *mongoMeasurementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMeasurementIndexes creates necessary indexes for the body_measurements collection.
func EnsureMeasurementIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "memberId", Value: 1},
				{Key: "measurementDate", Value: -1},
			},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
