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

const memberProfileCollectionName = "member_profiles"

// mongoMemberProfileRepository implements repository.MemberProfileRepository.
type mongoMemberProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoMemberProfileRepository creates a new instance of mongoMemberProfileRepository.
func NewMongoMemberProfileRepository(db *mongo.Database) repository.MemberProfileRepository {
	return &mongoMemberProfileRepository{
		collection: db.Collection(memberProfileCollectionName),
	}
}

// Create inserts a new member profile.
func (r *mongoMemberProfileRepository) Create(ctx context.Context, profile *domain.MemberProfile) (primitive.ObjectID, error) {
	if profile.MemberID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("member id is required")
	}

	profile.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByMemberID retrieves the profile for the given member account.
func (r *mongoMemberProfileRepository) GetByMemberID(ctx context.Context, memberID primitive.ObjectID) (*domain.MemberProfile, error) {
	var profile domain.MemberProfile
	err := r.collection.FindOne(ctx, bson.M{"memberId": memberID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Update replaces the mutable fields of a member profile. The sequence number
// is deliberately excluded: it is assigned once at registration.
func (r *mongoMemberProfileRepository) Update(ctx context.Context, profile *domain.MemberProfile) error {
	profile.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"gender":           profile.Gender,
		"contact":          profile.Contact,
		"fitnessGoal":      profile.FitnessGoal,
		"experienceLevel":  profile.ExperienceLevel,
		"injuries":         profile.Injuries,
		"notes":            profile.Notes,
		"totalPtCount":     profile.TotalPTCount,
		"remainingPtCount": profile.RemainingPTCount,
		"updatedAt":        profile.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": profile.MemberID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// MaxSequenceNumber returns the highest roster sequence among the given
// members, or 0 when the list is empty.
func (r *mongoMemberProfileRepository) MaxSequenceNumber(ctx context.Context, memberIDs []primitive.ObjectID) (int, error) {
	if len(memberIDs) == 0 {
		return 0, nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "sequenceNumber", Value: -1}})
	var profile domain.MemberProfile
	err := r.collection.FindOne(ctx, bson.M{"memberId": bson.M{"$in": memberIDs}}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}
	return profile.SequenceNumber, nil
}

// ListByMemberIDs returns profiles ordered by sequence number ascending,
// paginated by offset/limit. A limit of 0 means no limit.
func (r *mongoMemberProfileRepository) ListByMemberIDs(ctx context.Context, memberIDs []primitive.ObjectID, offset, limit int64) ([]domain.MemberProfile, error) {
	if len(memberIDs) == 0 {
		return []domain.MemberProfile{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sequenceNumber", Value: 1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"memberId": bson.M{"$in": memberIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.MemberProfile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DecrementRemainingPT atomically takes one PT credit. The filter only
// matches while remainingPtCount > 0, so two concurrent schedules against a
// member with one credit left cannot both succeed.
func (r *mongoMemberProfileRepository) DecrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error {
	filter := bson.M{
		"memberId":         memberID,
		"remainingPtCount": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"remainingPtCount": -1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	err := r.collection.FindOneAndUpdate(ctx, filter, update).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.ErrInsufficientCredit
		}
		return err
	}
	return nil
}

// IncrementRemainingPT restores one PT credit.
func (r *mongoMemberProfileRepository) IncrementRemainingPT(ctx context.Context, memberID primitive.ObjectID) error {
	update := bson.M{
		"$inc": bson.M{"remainingPtCount": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"memberId": memberID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMemberProfileIndexes creates necessary indexes for the member_profiles collection.
func EnsureMemberProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "memberId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "sequenceNumber", Value: 1}},
			Options: options.Index(),
		},
	}

	_, _ = collection.Indexes().CreateMany(ctx, indexes)
}
