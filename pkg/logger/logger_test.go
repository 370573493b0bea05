package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization is allowed.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	log := Get()

	// None of these should panic.
	log.Info(ctx, "info message", String("key", "value"))
	log.Debug(ctx, "debug message", Int("count", 3))
	log.Warn(ctx, "warn message", Int64("id", 42))
	log.Error(ctx, "error message", Error(errors.New("boom")), Float64("ratio", 0.5))

	named := log.Named("component")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(ctx, "named message", Any("payload", map[string]int{"a": 1}))
}

func TestNamedGlobal(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	if Named("sub") == nil {
		t.Fatal("expected a named logger")
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	cases := map[string]bool{
		"debug":   true,
		"info":    true,
		"":        true,
		"WARN":    true,
		"warning": true,
		"error":   true,
		"bogus":   false,
	}
	for input, ok := range cases {
		err := SetLevelString(input)
		if ok && err != nil {
			t.Errorf("SetLevelString(%q) returned unexpected error: %v", input, err)
		}
		if !ok && err == nil {
			t.Errorf("SetLevelString(%q) expected an error", input)
		}
	}

	// Restore the default level for other tests.
	SetLevel(slog.LevelInfo)
}
