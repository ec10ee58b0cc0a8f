package drift

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_Levels(t *testing.T) {
	policy := DefaultPolicy()

	cases := []struct {
		name       string
		psi, ks    float64
		ece        float64
		level      Level
		multiplier float64
	}{
		{"all_clear", 0.05, 0.05, 0.01, LevelOK, 1.0},
		{"psi_warn", 0.15, 0.05, 0.01, LevelWarn, 0.5},
		{"psi_alert", 0.30, 0.05, 0.01, LevelAlert, 0.25},
		{"ks_warn", 0.05, 0.20, 0.01, LevelWarn, 0.5},
		{"ks_alert", 0.05, 0.30, 0.01, LevelAlert, 0.25},
		{"ece_warn", 0.05, 0.05, 0.07, LevelWarn, 0.5},
		{"ece_alert", 0.05, 0.05, 0.12, LevelAlert, 0.25},
		{"worst_wins", 0.15, 0.30, 0.01, LevelAlert, 0.25},
		{"exactly_at_warn", 0.10, 0.05, 0.01, LevelWarn, 0.5},
		{"exactly_at_alert", 0.25, 0.05, 0.01, LevelAlert, 0.25},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.psi, tc.ks, tc.ece, policy)
			assert.Equal(t, tc.level, d.Level)
			assert.Equal(t, tc.multiplier, d.SizeMultiplier)
			assert.NotEmpty(t, d.Notes)
			assert.Equal(t, tc.psi, d.PSI)
			assert.Equal(t, tc.ks, d.KS)
			assert.Equal(t, tc.ece, d.ECE)
		})
	}
}

func TestEvaluate_ZeroECENeverTriggers(t *testing.T) {
	d := Evaluate(0.01, 0.01, 0, DefaultPolicy())
	assert.Equal(t, LevelOK, d.Level)
	assert.Equal(t, 1.0, d.SizeMultiplier)
}

func TestEvaluate_MonotoneInPSI(t *testing.T) {
	policy := DefaultPolicy()
	ok := Evaluate(0.05, 0, 0, policy)
	warn := Evaluate(0.15, 0, 0, policy)
	alert := Evaluate(0.30, 0, 0, policy)

	assert.Equal(t, LevelOK, ok.Level)
	assert.Equal(t, LevelWarn, warn.Level)
	assert.Equal(t, LevelAlert, alert.Level)
	assert.Greater(t, ok.SizeMultiplier, warn.SizeMultiplier)
	assert.Greater(t, warn.SizeMultiplier, alert.SizeMultiplier)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "OK", LevelOK.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ALERT", LevelAlert.String())
}
