package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender of a member, as recorded at registration.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// MemberProfile holds the member-specific extension of an Account, including
// the PT credit ledger. MemberID equals the member's Account ID.
type MemberProfile struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	MemberID        primitive.ObjectID `bson:"memberId" json:"memberId"`
	Gender          Gender             `bson:"gender" json:"gender"`
	Contact         string             `bson:"contact" json:"contact"`
	FitnessGoal     string             `bson:"fitnessGoal,omitempty" json:"fitnessGoal,omitempty"`
	ExperienceLevel string             `bson:"experienceLevel,omitempty" json:"experienceLevel,omitempty"`
	Injuries        []string           `bson:"injuries,omitempty" json:"injuries,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`

	// SequenceNumber is the member's position on the registering trainer's
	// roster. Assigned once at registration and never reassigned, so it
	// survives deletions of earlier members.
	SequenceNumber int `bson:"sequenceNumber" json:"sequenceNumber"`

	// PT credit ledger. RemainingPTCount is decremented when a session is
	// scheduled and restored when one is deleted; it never goes negative.
	TotalPTCount     int `bson:"totalPtCount" json:"totalPtCount"`
	RemainingPTCount int `bson:"remainingPtCount" json:"remainingPtCount"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TrainerMember links a trainer to a member. A member may be linked to more
// than one trainer; every trainer-scoped read or write must join through
// this collection rather than trusting a trainer id stored on the member.
type TrainerMember struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	MemberID  primitive.ObjectID `bson:"memberId" json:"memberId"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Member is the combined view of an Account and its MemberProfile that the
// roster endpoints return. CurrentSessionNumber and NextSessionDate are
// derived per-trainer at read time and never stored.
type Member struct {
	Account
	Profile MemberProfile `json:"profile"`

	CurrentSessionNumber int    `json:"currentSessionNumber,omitempty"`
	NextSessionDate      string `json:"nextSessionDate,omitempty"`
}
