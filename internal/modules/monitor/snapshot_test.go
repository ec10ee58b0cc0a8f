package monitor

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRestore(t *testing.T) {
	rng := rand.New(rand.NewSource(20))
	cfg := Config{WindowSize: 300, MinSamples: 50}
	m := testMonitor(cfg)
	m.AddReferenceData(normalSample(rng, 500, 0.5, 0.1))
	_, err := m.AddLiveData(normalSample(rng, 200, 0.5, 0.1), nil)
	require.NoError(t, err)
	require.Len(t, m.History(), 1)

	data, err := m.Snapshot()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	restored, err := RestoreMonitor(data, cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, m.LiveSamples(), restored.LiveSamples())
	require.Len(t, restored.History(), 1)
	assert.Equal(t, m.History()[0].ID, restored.History()[0].ID)
	assert.Equal(t, m.History()[0].Decision.Level, restored.History()[0].Decision.Level)

	// The restored monitor keeps evaluating from where it left off.
	rec, ready := restored.Evaluate()
	require.True(t, ready)
	assert.Equal(t, m.History()[0].Decision.Level, rec.Decision.Level)
}

func TestRestoreMonitor_CorruptData(t *testing.T) {
	_, err := RestoreMonitor([]byte("not msgpack"), Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestSnapshot_EmptyMonitor(t *testing.T) {
	m := testMonitor(Config{})
	data, err := m.Snapshot()
	require.NoError(t, err)

	restored, err := RestoreMonitor(data, Config{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, restored.LiveSamples())
	_, ready := restored.Evaluate()
	assert.False(t, ready)
}
