package config

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSanitizedMasksPickerAPIKey(t *testing.T) {
	cfg := &Config{
		AppName:      "samvad-news-sender",
		FeedBaseURL:  "http://0.0.0.0:8000",
		PickerAPIKey: "sk-super-secret",
	}

	got := cfg.Sanitized()
	if got.PickerAPIKey != "***" {
		t.Fatalf("sanitized PickerAPIKey = %q, want masked", got.PickerAPIKey)
	}
	if got.FeedBaseURL != cfg.FeedBaseURL {
		t.Fatalf("sanitized copy altered FeedBaseURL: %q", got.FeedBaseURL)
	}
	if cfg.PickerAPIKey != "sk-super-secret" {
		t.Fatalf("Sanitized mutated the original config: %q", cfg.PickerAPIKey)
	}
}

func TestSanitizedLeavesEmptyKeyEmpty(t *testing.T) {
	cfg := &Config{}
	if got := cfg.Sanitized(); got.PickerAPIKey != "" {
		t.Fatalf("sanitized empty key = %q, want empty", got.PickerAPIKey)
	}
}

func TestSanitizedConfigLogLineOmitsKey(t *testing.T) {
	cfg := &Config{
		AppName:      "samvad-news-sender",
		LogLevel:     "info",
		FeedBaseURL:  "http://0.0.0.0:8000",
		PickerAPIKey: "sk-super-secret",
	}

	var buf bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&buf),
		zapcore.InfoLevel,
	)
	zap.New(core).Info("sender starting", zap.Any("config", cfg.Sanitized()))

	line := buf.String()
	if strings.Contains(line, "sk-super-secret") {
		t.Fatalf("log line leaked the picker API key: %s", line)
	}
	if !strings.Contains(line, "samvad-news-sender") {
		t.Fatalf("log line missing config payload: %s", line)
	}
}
