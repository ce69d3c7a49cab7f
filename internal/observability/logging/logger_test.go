package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-platform/internal/domain/entity"
	"blog-platform/internal/handler/http/requestid"
	authservice "blog-platform/internal/service/auth"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		log       func(*slog.Logger)
		wantEntry bool
		wantLevel string
	}{
		{name: "info at info", level: slog.LevelInfo, log: func(l *slog.Logger) { l.Info("m") }, wantEntry: true, wantLevel: "INFO"},
		{name: "debug filtered at info", level: slog.LevelInfo, log: func(l *slog.Logger) { l.Debug("m") }},
		{name: "debug at debug", level: slog.LevelDebug, log: func(l *slog.Logger) { l.Debug("m") }, wantEntry: true, wantLevel: "DEBUG"},
		{name: "warn filtered at error", level: slog.LevelError, log: func(l *slog.Logger) { l.Warn("m") }},
		{name: "error at warn", level: slog.LevelWarn, log: func(l *slog.Logger) { l.Error("m") }, wantEntry: true, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(New(&buf, tt.level, FormatJSON))

			if !tt.wantEntry {
				assert.Empty(t, buf.String())
				return
			}
			entry := decode(t, &buf)
			assert.Equal(t, "m", entry["msg"])
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.NotEmpty(t, entry["time"])
		})
	}
}

func TestNew_SourceOnlyBelowError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatJSON).Info("with source")
	assert.Contains(t, decode(t, &buf), "source")

	buf.Reset()
	New(&buf, slog.LevelError, FormatJSON).Error("without source")
	assert.NotContains(t, decode(t, &buf), "source")
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, slog.LevelInfo, FormatText).Info("article created", slog.Int64("article_id", 7))

	out := buf.String()
	assert.True(t, strings.Contains(out, `msg="article created"`), out)
	assert.Contains(t, out, "article_id=7")
}

func TestWithRequestID(t *testing.T) {
	tests := []struct {
		name      string
		ctx       func() context.Context
		wantReqID any
		wantUser  any
	}{
		{
			name: "anonymous request",
			ctx: func() context.Context {
				return requestid.WithRequestID(context.Background(), "req-123")
			},
			wantReqID: "req-123",
		},
		{
			name: "logged in request",
			ctx: func() context.Context {
				ctx := requestid.WithRequestID(context.Background(), "req-456")
				return authservice.WithUser(ctx, &entity.User{ID: 9, Username: "alice"})
			},
			wantReqID: "req-456",
			wantUser:  float64(9),
		},
		{
			name: "no request id",
			ctx:  context.Background,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			WithRequestID(tt.ctx(), New(&buf, slog.LevelInfo, FormatJSON)).Info("m")

			entry := decode(t, &buf)
			assert.Equal(t, tt.wantReqID, entry["request_id"])
			assert.Equal(t, tt.wantUser, entry["user_id"])
		})
	}
}
