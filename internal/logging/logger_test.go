package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", "json", &buf)

	log.WithField("task_id", "abc").Info("status changed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["task_id"])
	assert.Equal(t, "status changed", entry["msg"])
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}

func TestNewWithOutput_UnknownLevel(t *testing.T) {
	log := NewWithOutput("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
