package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Amund211/riftrewind/internal/logging"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestGoogleCloudTracingLogHandler(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, buf *bytes.Buffer) map[string]any {
		t.Helper()
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		return entry
	}

	t.Run("adds trace fields when a span is active", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewGoogleCloudTracingLogHandler(slog.NewJSONHandler(buf, nil), "my-project"))

		traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("0123456789abcdef")
		require.NoError(t, err)
		ctx := trace.ContextWithSpanContext(t.Context(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		logger.With("riotId", "Faker#KR1").InfoContext(ctx, "Fetched recap")

		entry := decode(t, buf)
		require.Equal(t, "projects/my-project/traces/0123456789abcdef0123456789abcdef", entry["logging.googleapis.com/trace"])
		require.Equal(t, "0123456789abcdef", entry["logging.googleapis.com/spanId"])
		require.Equal(t, true, entry["logging.googleapis.com/trace_sampled"])
		require.Equal(t, "Faker#KR1", entry["riotId"])
	})

	t.Run("no trace fields without a span", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewGoogleCloudTracingLogHandler(slog.NewJSONHandler(buf, nil), "my-project"))

		logger.InfoContext(t.Context(), "Fetched recap")

		entry := decode(t, buf)
		require.NotContains(t, entry, "logging.googleapis.com/trace")
	})
}
