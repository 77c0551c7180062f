package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("auth", "development", "").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("auth", "production", "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("auth", "production", "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, NewLogger("auth", "production", "loud").GetLevel())
}

func TestLogError_StampsAppAndError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("auth", "production", "")
	logger.SetOutput(&buf)

	LogError(logger, "boom", errors.New("db down"), logrus.Fields{"op": "login"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "auth", entry["app"])
	assert.Equal(t, "db down", entry["error"])
	assert.Equal(t, "login", entry["op"])
	assert.Equal(t, "boom", entry["msg"])
}
