package logger

import (
	"path/filepath"
	"testing"

	"igtracker/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "valid config with info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "valid config with debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "warning alias accepted",
			cfg:     &config.LoggingConfig{Level: "warning"},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestNewWithFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "igtracker.log")
	logger, err := New(&config.LoggingConfig{Level: "info", File: logFile})
	if err != nil {
		t.Fatalf("New() with file output failed: %v", err)
	}
	if logger == nil {
		t.Fatal("New() returned nil logger")
	}
	logger.Info("written to file")
}

func TestGetLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetLogger() == nil {
		t.Error("GetLogger() should create a default logger when uninitialized")
	}
}

func TestTestLoggerCapture(t *testing.T) {
	tl := NewTestLogger()

	tl.Info("plain message")
	tl.WithField("input_url", "https://instagram.com/p/ABC").Warn("scoped message")
	tl.ErrorWithFields("failed", map[string]interface{}{"attempt": 2})

	if got := len(tl.GetMessages()); got != 3 {
		t.Fatalf("expected 3 captured messages, got %d", got)
	}
	if !tl.HasMessage("scoped message") {
		t.Error("field-scoped message should be captured on the root logger")
	}
	if !tl.HasError() {
		t.Error("expected an error-level message")
	}

	warns := tl.GetMessagesByLevel("WARN")
	if len(warns) != 1 {
		t.Fatalf("expected 1 warn message, got %d", len(warns))
	}
	if warns[0].Fields["input_url"] != "https://instagram.com/p/ABC" {
		t.Errorf("scoped field lost: %v", warns[0].Fields)
	}

	tl.Clear()
	if len(tl.GetMessages()) != 0 {
		t.Error("Clear() should drop captured messages")
	}
}
