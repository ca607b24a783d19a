package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mohammadpnp/candidate-import/internal/logging"
	"github.com/sirupsen/logrus"
)

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.New(logging.Options{Level: "debug", Format: "json", Output: &buf})
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	logging.Component(logger, "sweeper").WithField("job_id", "job-1").Info("swept")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if line["component"] != "sweeper" || line["job_id"] != "job-1" {
		t.Fatalf("unexpected fields: %#v", line)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	t.Parallel()

	logger := logging.New(logging.Options{Level: "loud", Output: &bytes.Buffer{}})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %s", logger.GetLevel())
	}
}
