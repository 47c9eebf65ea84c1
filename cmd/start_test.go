package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBindPortPrecedence(t *testing.T) {
	startServerCmdBindPort = ""
	t.Setenv(BindPortEnvVar, "")
	assert.Equal(t, BindPortDefault, getBindPort())

	t.Setenv(BindPortEnvVar, "9090")
	assert.Equal(t, "9090", getBindPort())

	startServerCmdBindPort = "7070"
	defer func() { startServerCmdBindPort = "" }()
	assert.Equal(t, "7070", getBindPort())
}

func TestIsTelemetryEnabled(t *testing.T) {
	t.Setenv(TelemetryEnabledEnvVar, "")
	enabled, err := isTelemetryEnabled()
	require.NoError(t, err)
	assert.False(t, enabled)

	t.Setenv(TelemetryEnabledEnvVar, "true")
	enabled, err = isTelemetryEnabled()
	require.NoError(t, err)
	assert.True(t, enabled)

	t.Setenv(TelemetryEnabledEnvVar, "banana")
	_, err = isTelemetryEnabled()
	require.Error(t, err)
}
