package logger

import (
	"context"
	"testing"
)

func TestInitAndGet(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}

	// Logging must not panic.
	ctx := context.Background()
	l.Info(ctx, "info message", String("key", "value"))
	l.Warn(ctx, "warn message", Int("n", 1))
	l.Debug(ctx, "debug message", Bool("flag", true))
	l.Error(ctx, "error message", Error(nil))
}

func TestNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	named := Named("store")
	if named == nil {
		t.Fatal("expected non-nil named logger")
	}
	named.Info(context.Background(), "named message")
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"warn", false},
		{"warning", false},
		{"error", false},
		{"ERROR", false},
		{" info ", false},
		{"verbose", true},
	}

	for _, tc := range cases {
		err := SetLevelString(tc.level)
		if tc.wantErr && err == nil {
			t.Errorf("SetLevelString(%q): expected error", tc.level)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("SetLevelString(%q): unexpected error: %v", tc.level, err)
		}
	}
}
