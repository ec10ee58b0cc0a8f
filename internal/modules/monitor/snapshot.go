package monitor

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// snapshotState is the serialized monitor state. The calibrator is not part
// of the snapshot; the host refits and reattaches it after a restore.
type snapshotState struct {
	Reference    []float64 `msgpack:"reference"`
	Live         []float64 `msgpack:"live"`
	PairProbs    []float64 `msgpack:"pair_probs"`
	PairOutcomes []float64 `msgpack:"pair_outcomes"`
	History      []Record  `msgpack:"history"`
}

// Snapshot serializes the monitor's windows and history so the host can
// persist them across restarts.
func (m *Monitor) Snapshot() ([]byte, error) {
	data, err := msgpack.Marshal(snapshotState{
		Reference:    m.reference,
		Live:         m.live,
		PairProbs:    m.pairProbs,
		PairOutcomes: m.pairOutcomes,
		History:      m.history,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode monitor snapshot: %w", err)
	}
	return data, nil
}

// RestoreMonitor rebuilds a monitor from a snapshot produced by Snapshot.
func RestoreMonitor(data []byte, cfg Config, log zerolog.Logger) (*Monitor, error) {
	var state snapshotState
	if err := msgpack.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode monitor snapshot: %w", err)
	}
	m := New(cfg, log)
	m.reference = state.Reference
	m.live = state.Live
	m.pairProbs = state.PairProbs
	m.pairOutcomes = state.PairOutcomes
	m.history = state.History
	return m, nil
}
