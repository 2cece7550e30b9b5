package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger(t *testing.T) {
	require.NotNil(t, Logger())

	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))

	t.Cleanup(func() { SetLogger(nil) })

	Logger().Debug("layout resolved", zap.String("struct", "Parent"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "layout resolved", entry.Message)
	assert.Equal(t, "Parent", entry.ContextMap()["struct"])
}

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := New(false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	l, err = New(true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
