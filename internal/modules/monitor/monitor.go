// Package monitor wraps the drift detector in a stateful rolling-window
// monitor, one instance per model/symbol, owned and serialized by the caller.
package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/quantcore/internal/modules/calibration"
	"github.com/aristath/quantcore/internal/modules/drift"
)

// Defaults for the rolling live window.
const (
	DefaultWindowSize = 500
	DefaultMinSamples = 100
)

// ErrInvalidInput indicates malformed live data (mismatched outcome length).
var ErrInvalidInput = fmt.Errorf("monitor: invalid input")

// Config controls a monitor's window sizes and decision thresholds. A zero
// Policy falls back to drift.DefaultPolicy.
type Config struct {
	WindowSize int
	MinSamples int
	Policy     drift.Policy
}

func (c Config) windowSize() int {
	if c.WindowSize <= 0 {
		return DefaultWindowSize
	}
	return c.WindowSize
}

func (c Config) minSamples() int {
	if c.MinSamples <= 0 {
		return DefaultMinSamples
	}
	return c.MinSamples
}

func (c Config) policy() drift.Policy {
	if c.Policy == (drift.Policy{}) {
		return drift.DefaultPolicy()
	}
	return c.Policy
}

// Record is one entry of the append-only decision history.
type Record struct {
	ID       string
	At       time.Time
	Decision drift.Decision
}

// Monitor holds a reference window, a bounded FIFO of live observations, and
// the decision history. It carries no internal locking: each instance must be
// owned by a single logical caller or serialized externally (the Registry
// does this for the sweep scheduler).
type Monitor struct {
	cfg        Config
	log        zerolog.Logger
	calibrator *calibration.Model

	reference []float64
	live      []float64

	// Probability/outcome pairs used for the calibration-error statistic,
	// kept only for live batches that arrived with outcomes.
	pairProbs    []float64
	pairOutcomes []float64

	history []Record
}

// New creates a monitor. Pass zerolog.Nop() to silence diagnostics.
func New(cfg Config, log zerolog.Logger) *Monitor {
	return &Monitor{
		cfg: cfg,
		log: log.With().Str("component", "drift_monitor").Logger(),
	}
}

// SetCalibrator attaches a fitted calibration model. Without one (or without
// live outcomes) the calibration-error statistic is reported as 0 and cannot
// trigger WARN or ALERT by itself.
func (m *Monitor) SetCalibrator(c *calibration.Model) {
	m.calibrator = c
}

// AddReferenceData sets the reference window. Calling it again replaces the
// previous window.
func (m *Monitor) AddReferenceData(probs []float64) {
	m.reference = append([]float64(nil), probs...)
	m.log.Debug().Int("samples", len(m.reference)).Msg("Reference window set")
}

// AddLiveData appends live probabilities (optionally with realized outcomes)
// to the rolling window and returns the current decision. Until the monitor
// has a reference window and enough live samples, the returned decision is a
// non-alerting placeholder and is not recorded in the history.
func (m *Monitor) AddLiveData(probs []float64, outcomes []float64) (drift.Decision, error) {
	if outcomes != nil && len(outcomes) != len(probs) {
		return drift.Decision{}, fmt.Errorf("%w: %d probabilities vs %d outcomes", ErrInvalidInput, len(probs), len(outcomes))
	}

	m.live = append(m.live, probs...)
	m.live = trimFront(m.live, m.cfg.windowSize())

	if outcomes != nil {
		m.pairProbs = append(m.pairProbs, probs...)
		m.pairOutcomes = append(m.pairOutcomes, outcomes...)
		m.pairProbs = trimFront(m.pairProbs, m.cfg.windowSize())
		m.pairOutcomes = trimFront(m.pairOutcomes, m.cfg.windowSize())
	}

	rec, _ := m.Evaluate()
	return rec.Decision, nil
}

// Evaluate computes the current decision without mutating the windows. The
// boolean is false when the monitor lacks a reference window or enough live
// samples; in that case the record holds a placeholder decision and nothing
// is appended to the history.
func (m *Monitor) Evaluate() (Record, bool) {
	if len(m.reference) == 0 {
		return placeholder("no reference window"), false
	}
	if len(m.live) < m.cfg.minSamples() {
		return placeholder(fmt.Sprintf("insufficient live samples: have %d, need %d", len(m.live), m.cfg.minSamples())), false
	}

	psi, err := drift.PSI(m.reference, m.live)
	if err != nil {
		return placeholder(fmt.Sprintf("psi unavailable: %v", err)), false
	}
	ks, err := drift.KSStatistic(m.reference, m.live)
	if err != nil {
		return placeholder(fmt.Sprintf("ks unavailable: %v", err)), false
	}

	ece := 0.0
	eceNote := "ece unavailable: no calibrator or live outcomes"
	if m.calibrator != nil && m.calibrator.IsFitted() && len(m.pairOutcomes) > 0 {
		if v, err := m.calibrator.CalibrationError(m.pairProbs, m.pairOutcomes); err == nil {
			ece = v
			eceNote = ""
		}
	}

	decision := drift.Evaluate(psi, ks, ece, m.cfg.policy())
	if eceNote != "" {
		decision.Notes = append(decision.Notes, eceNote)
	}

	rec := Record{
		ID:       uuid.New().String(),
		At:       time.Now().UTC(),
		Decision: decision,
	}
	m.history = append(m.history, rec)

	m.log.Debug().
		Str("level", decision.Level.String()).
		Float64("psi", psi).
		Float64("ks", ks).
		Float64("ece", ece).
		Float64("size_multiplier", decision.SizeMultiplier).
		Msg("Drift decision")

	return rec, true
}

// History returns a copy of the append-only decision history. The notes are
// copied too, so callers cannot alter recorded decisions.
func (m *Monitor) History() []Record {
	out := make([]Record, len(m.history))
	copy(out, m.history)
	for i := range out {
		out[i].Decision.Notes = append([]string(nil), out[i].Decision.Notes...)
	}
	return out
}

// LiveSamples returns the current size of the rolling live window.
func (m *Monitor) LiveSamples() int {
	return len(m.live)
}

// Reset clears the reference window, the rolling live window and the
// history.
func (m *Monitor) Reset() {
	m.reference = nil
	m.live = nil
	m.pairProbs = nil
	m.pairOutcomes = nil
	m.history = nil
	m.log.Debug().Msg("Monitor reset")
}

// placeholder is the non-alerting decision emitted before the monitor has
// enough data to say anything meaningful.
func placeholder(note string) Record {
	return Record{
		Decision: drift.Decision{
			Level:          drift.LevelOK,
			SizeMultiplier: 1.0,
			Notes:          []string{note},
		},
	}
}

// trimFront drops the oldest entries so the slice holds at most max values.
func trimFront(s []float64, max int) []float64 {
	if len(s) <= max {
		return s
	}
	trimmed := make([]float64, max)
	copy(trimmed, s[len(s)-max:])
	return trimmed
}
