package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PTSession is one scheduled personal-training appointment between a trainer
// and a member.
type PTSession struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID primitive.ObjectID `bson:"memberId" json:"memberId"`
	// TrainerID is nullable: if a trainer account is removed, the member's
	// sessions survive with the trainer unset.
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`

	// SessionNumber is the ordinal of this session for the member+trainer
	// pair. Assigned at creation as the highest existing ordinal + 1, so a
	// mid-sequence deletion never causes renumbering or collisions.
	SessionNumber int `bson:"sessionNumber" json:"sessionNumber"`

	SessionDate time.Time `bson:"sessionDate" json:"sessionDate"` // Date only, UTC midnight
	StartTime   string    `bson:"startTime" json:"startTime"`     // "HH:MM"
	EndTime     string    `bson:"endTime" json:"endTime"`         // "HH:MM"
	IsCompleted bool      `bson:"isCompleted" json:"isCompleted"`
	Notes       string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
