package logger

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger()
	l.SetOutput(&buf)

	l.WithFields(logrus.Fields{"subject": "example.com", "cost": 0.015}).Warn("real analysis failed")

	line := buf.String()
	assert.Contains(t, line, "[WARN]")
	assert.Contains(t, line, "logger_test.go:")
	assert.Contains(t, line, "real analysis failed cost=0.015 subject=example.com")
}

func TestInitLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "radar.log")
	require.NoError(t, InitLogger("debug", path))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.FileExists(t, path)
}

func TestInitLogger_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, InitLogger("loud", ""))
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}
