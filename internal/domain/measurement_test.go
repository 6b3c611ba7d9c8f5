package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBMI(t *testing.T) {
	m := &BodyMeasurement{Height: 170, Weight: 70}
	assert.InDelta(t, 24.2, m.ComputeBMI(), 0.001)

	m = &BodyMeasurement{Height: 182.5, Weight: 91.3}
	assert.InDelta(t, 27.4, m.ComputeBMI(), 0.001)

	// Unset height must not divide by zero.
	m = &BodyMeasurement{Height: 0, Weight: 70}
	assert.Zero(t, m.ComputeBMI())
}

func TestComputeBodyFatPercentage(t *testing.T) {
	m := &BodyMeasurement{Weight: 70, BodyFat: 14}
	assert.InDelta(t, 20.0, m.ComputeBodyFatPercentage(), 0.001)

	m = &BodyMeasurement{Weight: 80, BodyFat: 18.5}
	assert.InDelta(t, 23.1, m.ComputeBodyFatPercentage(), 0.001)

	m = &BodyMeasurement{Weight: 0, BodyFat: 14}
	assert.Zero(t, m.ComputeBodyFatPercentage())
}
