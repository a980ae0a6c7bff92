package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// ErrTooLarge is returned by ReadAll when the reader exceeds the limit
var ErrTooLarge = goerr.New("payload too large")

// Close safely closes an io.Closer and logs any errors.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Write safely writes data to an io.Writer and logs any errors.
// It handles nil writers gracefully.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

// ReadAll reads r up to limit bytes. A reader holding more than limit bytes
// yields ErrTooLarge instead of a silently truncated payload.
func ReadAll(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read payload")
	}
	if int64(len(data)) > limit {
		return nil, goerr.Wrap(ErrTooLarge, "payload exceeds limit", goerr.V("limit", limit))
	}
	return data, nil
}
