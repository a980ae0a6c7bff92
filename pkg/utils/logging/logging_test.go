package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

type credentials struct {
	Name     string
	BotToken string
}

func TestNew_Redaction(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	logger.Info("configured",
		"account", credentials{Name: "team-a", BotToken: "super-secret-value"},
		"raw", "xoxb-1234-abcd")

	out := buf.String()
	gt.String(t, out).Contains("team-a")
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("super-secret-value"))).False()
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("xoxb-1234-abcd"))).False()
}

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelWarn, logging.FormatJSON)

	logger.Info("hidden")
	gt.Number(t, buf.Len()).Equal(0)

	logger.Warn("shown")
	gt.String(t, buf.String()).Contains("shown")
}

func TestFrom(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo, logging.FormatJSON)

	ctx := logging.With(context.Background(), logger)
	logging.From(ctx).Info("from context")
	gt.String(t, buf.String()).Contains("from context")

	gt.Value(t, logging.From(context.Background())).Equal(logging.Default())
}
