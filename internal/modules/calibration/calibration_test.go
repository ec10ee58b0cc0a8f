package calibration

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit_InvalidInputs(t *testing.T) {
	var m Model
	assert.ErrorIs(t, m.Fit(nil, nil), ErrInvalidInput)
	assert.ErrorIs(t, m.Fit([]float64{0.5}, []float64{1, 0}), ErrInvalidInput)
	assert.False(t, m.IsFitted())
}

func TestNotFitted(t *testing.T) {
	var m Model
	_, err := m.Predict([]float64{0.5})
	assert.ErrorIs(t, err, ErrNotFitted)
	_, err = m.CalibrationError([]float64{0.5}, []float64{1})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFit_MonotoneOutput(t *testing.T) {
	var m Model
	rng := rand.New(rand.NewSource(1))
	probs := make([]float64, 500)
	outcomes := make([]float64, 500)
	for i := range probs {
		probs[i] = rng.Float64()
		// Noisy but increasing relationship.
		if rng.Float64() < probs[i] {
			outcomes[i] = 1
		}
	}
	require.NoError(t, m.Fit(probs, outcomes))

	inputs := []float64{0, 0.1, 0.25, 0.4, 0.5, 0.6, 0.75, 0.9, 1}
	predicted, err := m.Predict(inputs)
	require.NoError(t, err)
	for i := 1; i < len(predicted); i++ {
		assert.GreaterOrEqual(t, predicted[i], predicted[i-1],
			"calibrated probabilities must be non-decreasing in the input")
	}
	for _, p := range predicted {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}
}

func TestFit_PerfectlyCalibratedIsNearIdentity(t *testing.T) {
	var m Model
	// Outcomes equal the probabilities exactly: the map should be identity on
	// the fitted points.
	probs := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	require.NoError(t, m.Fit(probs, probs))

	predicted, err := m.Predict(probs)
	require.NoError(t, err)
	for i, p := range predicted {
		assert.InDelta(t, probs[i], p, 1e-12)
	}

	ece, err := m.CalibrationError(probs, probs)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, ece, 1e-12)
}

func TestFit_ClipsOutOfRangeInputs(t *testing.T) {
	var m Model
	require.NoError(t, m.Fit([]float64{-0.2, 0.5, 1.3}, []float64{0, 0.5, 1}))
	assert.Equal(t, 2, m.ClippedInputs)

	predicted, err := m.Predict([]float64{-5, 5})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, predicted[0], 1e-12)
	assert.InDelta(t, 1.0, predicted[1], 1e-12)
}

func TestFit_PoolsViolators(t *testing.T) {
	var m Model
	// Middle observation violates monotonicity; PAVA pools it with its
	// neighbor so the fitted means stay non-decreasing.
	require.NoError(t, m.Fit([]float64{0.1, 0.5, 0.9}, []float64{0.8, 0.2, 0.9}))

	predicted, err := m.Predict([]float64{0.1, 0.5, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, predicted[0], 1e-12, "pooled mean of 0.8 and 0.2")
	assert.InDelta(t, 0.9, predicted[2], 1e-12)
	assert.LessOrEqual(t, predicted[0], predicted[1])
	assert.LessOrEqual(t, predicted[1], predicted[2])
}

func TestFit_Refit(t *testing.T) {
	var m Model
	require.NoError(t, m.Fit([]float64{0.2, 0.8}, []float64{0, 1}))
	require.NoError(t, m.Fit([]float64{0.2, 0.8}, []float64{1, 1}))

	predicted, err := m.Predict([]float64{0.2})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, predicted[0], 1e-12, "refit replaces the previous map")
}

func TestCalibrationError_DetectsMiscalibration(t *testing.T) {
	var m Model
	probs := []float64{0.1, 0.3, 0.5, 0.7, 0.9}
	require.NoError(t, m.Fit(probs, probs))

	// Evaluate against systematically lower outcomes than predicted.
	low := []float64{0, 0, 0, 0, 0}
	ece, err := m.CalibrationError(probs, low)
	require.NoError(t, err)
	assert.Greater(t, ece, 0.2)
	assert.LessOrEqual(t, ece, 1.0)
}

func TestCalibrationError_InvalidInputs(t *testing.T) {
	var m Model
	require.NoError(t, m.Fit([]float64{0.2, 0.8}, []float64{0, 1}))
	_, err := m.CalibrationError(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = m.CalibrationError([]float64{0.5}, []float64{1, 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
