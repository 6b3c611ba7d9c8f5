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

const trainerMemberCollectionName = "trainer_members"

// mongoTrainerMemberRepository implements repository.TrainerMemberRepository.
type mongoTrainerMemberRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainerMemberRepository creates a new instance of mongoTrainerMemberRepository.
func NewMongoTrainerMemberRepository(db *mongo.Database) repository.TrainerMemberRepository {
	return &mongoTrainerMemberRepository{
		collection: db.Collection(trainerMemberCollectionName),
	}
}

// Create inserts a new trainer/member link.
func (r *mongoTrainerMemberRepository) Create(ctx context.Context, link *domain.TrainerMember) (primitive.ObjectID, error) {
	if link.TrainerID == primitive.NilObjectID || link.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("trainer id and member id are required")
	}

	link.ID = primitive.NewObjectID()
	link.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// Exists reports whether the trainer is linked to the member.
func (r *mongoTrainerMemberRepository) Exists(ctx context.Context, trainerID, memberID primitive.ObjectID) (bool, error) {
	filter := bson.M{"trainerId": trainerID, "memberId": memberID}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemberIDsByTrainer returns the ids of all members linked to the trainer.
func (r *mongoTrainerMemberRepository) MemberIDsByTrainer(ctx context.Context, trainerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"trainerId": trainerID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []domain.TrainerMember
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, len(links))
	for i, link := range links {
		ids[i] = link.MemberID
	}
	return ids, nil
}

// EnsureTrainerMemberIndexes creates necessary indexes for the trainer_members collection.
func EnsureTrainerMemberIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "trainerId", Value: 1},
				{Key: "memberId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "memberId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
