package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventBridgeForwardsWarnAndAbove(t *testing.T) {
	bridge := NewEventBridge()
	var got []Event
	bridge.Attach(func(ev Event) { got = append(got, ev) })

	log := zap.New(bridge)
	log.Info("quiet")
	log.Warn("sink stalled", zap.String("sink", "spi"), zap.Int("pixels", 648))

	require.Len(t, got, 1)
	assert.Equal(t, "warn", got[0].Level)
	assert.Equal(t, "sink stalled", got[0].Message)
	assert.Equal(t, "engine", got[0].Source)
	assert.Equal(t, "spi", got[0].Fields["sink"])
	assert.EqualValues(t, 648, got[0].Fields["pixels"])
}

func TestEventBridgeSourceFieldOverridesDefault(t *testing.T) {
	bridge := NewEventBridge()
	var got []Event
	bridge.Attach(func(ev Event) { got = append(got, ev) })

	zap.New(bridge).With(zap.String("source", "render")).Error("effect panicked")

	require.Len(t, got, 1)
	assert.Equal(t, "render", got[0].Source)
	_, leaked := got[0].Fields["source"]
	assert.False(t, leaked, "source must be lifted out of the field map")
}

func TestEventBridgeDropsEntriesWithNoSink(t *testing.T) {
	bridge := NewEventBridge()
	assert.NotPanics(t, func() {
		zap.New(bridge).Error("nobody listening")
	})
}

func TestNewHonorsLogDir(t *testing.T) {
	dir := t.TempDir()
	log, err := New(Config{Level: "debug", Format: "json", LogDir: dir}, nil)
	require.NoError(t, err)
	log.Info("hello")
	_ = log.Sync()

	_, err = os.Stat(filepath.Join(dir, logFileName))
	assert.NoError(t, err, "rotated log file should exist after a write")
}
