package config

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"postgres://envis:s3cret@db:5432/envis?sslmode=disable", "postgres://envis@db:5432/envis?sslmode=disable"},
		{"redis://:s3cret@cache:6379/0", "redis://redacted@cache:6379/0"},
		{"redis://cache:6379", "redis://cache:6379"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RedactURL(tt.in), tt.in)
	}
}

func TestSanitizeError(t *testing.T) {
	dsn := "postgres://envis:s3cret@db:5432/envis"
	err := errors.New("dial " + dsn + ": refused (password=s3cret)")

	got := SanitizeError(err, dsn)
	assert.NotContains(t, got, "s3cret")
	assert.Contains(t, got, "postgres://envis@db:5432/envis")
	assert.Empty(t, SanitizeError(nil))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("dropped")
	logger.Warn("kept", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "dropped", "info record written at warn level")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, `"k":"v"`)
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLogLevel(in), in)
	}
}
