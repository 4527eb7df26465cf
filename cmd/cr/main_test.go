package main

import (
	"testing"

	"github.com/reviewbridge/reviewbridge/internal/config"
)

func TestNewHandlers_FallsBackToInMemoryStoreOnBadDBPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DBPath = "/nonexistent-dir-for-reviewbridge-tests/reviewbridge.db"

	handlers, cleanup, err := newHandlers(cfg)
	if err != nil {
		t.Fatalf("newHandlers returned error instead of falling back: %v", err)
	}
	defer cleanup()

	if handlers == nil {
		t.Fatal("expected non-nil handlers from the in-memory fallback")
	}
}

func TestHasPositionalArg(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want bool
	}{
		{"empty", nil, false},
		{"single subcommand", []string{"review-plan"}, true},
		{"subcommand with flags", []string{"review-code", "--diff", "-"}, true},
		{"flags only", []string{"--json"}, false},
		{"help flag", []string{"--help"}, true},
		{"short help flag", []string{"-h"}, true},
		{"version flag", []string{"--version"}, true},
		{"short version flag", []string{"-v"}, true},
		{"flag value is indistinguishable from a positional", []string{"--config", "dir"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := hasPositionalArg(tc.args)
			if got != tc.want {
				t.Errorf("hasPositionalArg(%v) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}
