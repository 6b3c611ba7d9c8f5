package domain

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BodyMeasurement is one body-composition reading for a member. BMI and
// body-fat percentage are derived from the raw values at save time.
// PhotoObjectKey, when set, points at a progress photo in object storage.
type BodyMeasurement struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MemberID          primitive.ObjectID `bson:"memberId" json:"memberId"`
	Height            float64            `bson:"height" json:"height"` // cm
	Weight            float64            `bson:"weight" json:"weight"` // kg
	BodyFat           float64            `bson:"bodyFat" json:"bodyFat"` // kg
	BodyFatPercentage float64            `bson:"bodyFatPercentage" json:"bodyFatPercentage"`
	MuscleMass        float64            `bson:"muscleMass" json:"muscleMass"` // kg
	BMI               float64            `bson:"bmi" json:"bmi"`
	MeasurementDate   time.Time          `bson:"measurementDate" json:"measurementDate"`
	PhotoObjectKey    string             `bson:"photoObjectKey,omitempty" json:"-"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}

// ComputeBMI returns weight/height² rounded to one decimal, height in cm.
func (m *BodyMeasurement) ComputeBMI() float64 {
	if m.Height <= 0 {
		return 0
	}
	meters := m.Height / 100
	return math.Round(m.Weight/(meters*meters)*10) / 10
}

// ComputeBodyFatPercentage returns body fat as a share of weight, rounded to
// one decimal.
func (m *BodyMeasurement) ComputeBodyFatPercentage() float64 {
	if m.Weight <= 0 {
		return 0
	}
	return math.Round(m.BodyFat/m.Weight*100*10) / 10
}
