package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InputSource tags who logged an exercise record.
type InputSource string

const (
	SourceMember  InputSource = "MEMBER"
	SourceTrainer InputSource = "TRAINER"
)

// ExerciseRecord is one logged exercise belonging to a PT session. Records
// have no independent lifecycle: they are created with a session, replaced
// wholesale when the session is edited, and deleted with it. The only
// exception is a member-reported entry logged directly against a session.
type ExerciseRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID    primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	Duration     int                `bson:"duration" json:"duration"` // Seconds
	Repetitions  int                `bson:"repetitions" json:"repetitions"`
	Sets         int                `bson:"sets" json:"sets"` // Defaults to 1
	BodyPart     string             `bson:"bodyPart" json:"bodyPart"`
	InputSource  InputSource        `bson:"inputSource" json:"inputSource"`
	// MemberID duplicates the session's member for query convenience.
	MemberID  primitive.ObjectID  `bson:"memberId" json:"memberId"`
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
