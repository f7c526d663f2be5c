package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altommo/crypto-grid-trader/pkg/config"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	cfg := config.Default()
	cfg.GridSize = 10
	cfg.GridSpacing = 0.01
	manager, err := NewManager(cfg)
	require.NoError(t, err)
	return manager
}

func TestManager_Initialize(t *testing.T) {
	manager := newManager(t)

	require.NoError(t, manager.Initialize(100.0))
	levels := manager.Levels()

	// Symmetric stepping yields gridSize+1 rungs with the reference in the
	// middle.
	require.Len(t, levels, 11)
	assert.InDelta(t, 100.0, levels[5].Price, 1e-9)

	for i := 1; i < len(levels); i++ {
		assert.Greater(t, levels[i].Price, levels[i-1].Price, "levels must stay sorted ascending")
		assert.InDelta(t, 1.01, levels[i].Price/levels[i-1].Price, 1e-9)
	}
}

func TestManager_InitializeRejectsBadReference(t *testing.T) {
	manager := newManager(t)

	assert.Error(t, manager.Initialize(0))
	assert.Error(t, manager.Initialize(-5))
}

func TestManager_InitializeResetsState(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.Initialize(100.0))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, manager.MarkFilled(100.0, 0.5, 100.0, ts, 0))
	require.Equal(t, 1, manager.TotalPositions())

	require.NoError(t, manager.Initialize(200.0))
	assert.Zero(t, manager.TotalPositions())
	assert.Zero(t, manager.CountOpen())
}

func TestManager_MarkFilledLifecycle(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.Initialize(100.0))

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, manager.MarkFilled(100.0, 0.5, 100.05, ts, 0))
	level := manager.LevelAt(100.0)
	require.NotNil(t, level)
	assert.True(t, level.Open())
	assert.Equal(t, 0.5, level.PositionSize)
	assert.Equal(t, 100.05, level.EntryPrice)
	assert.Equal(t, ts, level.EntryTime)
	assert.Equal(t, 1, manager.TotalPositions())
	assert.Equal(t, manager.CountOpen(), manager.TotalPositions())

	// Opening an already-open level is an error.
	assert.Error(t, manager.MarkFilled(100.0, 0.5, 100.0, ts, 0))

	// Closing clears entry fields and records the win.
	later := ts.Add(time.Hour)
	require.NoError(t, manager.MarkFilled(100.0, 0, 101.0, later, 0.45))
	assert.False(t, level.Open())
	assert.Zero(t, level.EntryPrice)
	assert.True(t, level.EntryTime.IsZero())
	assert.Equal(t, later, level.LastUpdate)
	assert.Equal(t, 1, level.TradesTaken)
	assert.Equal(t, 1, level.SuccessfulTrades)
	assert.Zero(t, manager.TotalPositions())

	// Closing again is an error.
	assert.Error(t, manager.MarkFilled(100.0, 0, 101.0, later, 0))
}

func TestManager_MarkFilledUnknownLevel(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.Initialize(100.0))

	ts := time.Now()
	assert.Error(t, manager.MarkFilled(123.456, 0.5, 123.456, ts, 0))
}

func TestLevel_SuccessRate(t *testing.T) {
	level := &Level{}

	// No history means the level is not gated out.
	assert.Equal(t, 1.0, level.SuccessRate())

	level.TradesTaken = 4
	level.SuccessfulTrades = 1
	assert.InDelta(t, 0.25, level.SuccessRate(), 1e-9)
}

func TestLevel_LossDoesNotCountAsSuccess(t *testing.T) {
	manager := newManager(t)
	require.NoError(t, manager.Initialize(100.0))

	ts := time.Now()
	require.NoError(t, manager.MarkFilled(100.0, 0.5, 100.0, ts, 0))
	require.NoError(t, manager.MarkFilled(100.0, 0, 99.0, ts.Add(time.Hour), -0.5))

	level := manager.LevelAt(100.0)
	assert.Equal(t, 1, level.TradesTaken)
	assert.Zero(t, level.SuccessfulTrades)
}
