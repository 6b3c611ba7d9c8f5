package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecommendedWorkout is a stored, externally generated workout plan for a
// member. It references the PT session it was generated for but is not that
// session's exercise list; saving a plan never touches the session.
// Workouts are write-once: no update path exists, exercises are removed only
// by cascade from their workout.
type RecommendedWorkout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID      primitive.ObjectID `bson:"memberId" json:"memberId"`
	SessionID     primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	WorkoutName   string             `bson:"workoutName" json:"workoutName"`
	TotalDuration int                `bson:"totalDuration" json:"totalDuration"` // Minutes
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// RecommendedExercise is one entry of a RecommendedWorkout. Sequence is
// 1-based and dense within a workout, matching the order the plan supplied.
type RecommendedExercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WorkoutID    primitive.ObjectID `bson:"workoutId" json:"workoutId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	Sets         int                `bson:"sets" json:"sets"`
	Repetitions  int                `bson:"repetitions" json:"repetitions"`
	Duration     int                `bson:"duration" json:"duration"` // Seconds per set
	RestTime     int                `bson:"restTime" json:"restTime"` // Seconds between sets
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Sequence     int                `bson:"sequence" json:"sequence"`
}
