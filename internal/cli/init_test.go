package cli

import (
	"context"
	"testing"

	"expensetracker/internal/config"
	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

func TestLogFormat(t *testing.T) {
	tests := []struct {
		configured string
		tty        bool
		want       log.Format
	}{
		{"auto", true, log.FormatText},
		{"auto", false, log.FormatJSON},
		{"json", true, log.FormatJSON},
		{"text", false, log.FormatText},
	}
	for _, tt := range tests {
		if got := LogFormat(tt.configured, tt.tty); got != tt.want {
			t.Errorf("LogFormat(%q, %v) = %v, want %v", tt.configured, tt.tty, got, tt.want)
		}
	}
}

func TestOpenStoreHonoursConfig(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DataBackend: "memory", StorageKey: "mine", EditingEnabled: false}

	res, err := OpenBackend(ctx, log.Nop(), cfg)
	if err != nil {
		t.Fatalf("OpenBackend() error = %v", err)
	}
	defer res.Close()

	s := OpenStore(ctx, cfg, log.Nop(), res.Store)
	if s.EditingEnabled() {
		t.Error("expected editing disabled")
	}
	if _, err := s.Add(ctx, core.Draft{Title: "A", Amount: core.FromCents(100), Category: core.Food}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, ok, _ := res.Store.Get(ctx, "mine"); !ok {
		t.Error("expected blob under configured key")
	}
}
