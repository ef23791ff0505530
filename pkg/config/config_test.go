package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SearchLimit != 20 {
		t.Errorf("expected default search limit 20, got %d", cfg.SearchLimit)
	}
	if cfg.FetchTimeout != time.Minute {
		t.Errorf("expected default timeout 1m, got %s", cfg.FetchTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LANDSCAPE_BASE_SOURCE", "testdata/base.json")
	t.Setenv("LANDSCAPE_FULL_SOURCE", "github:cncf/landscape2-sites/cncf/full.json@main")
	t.Setenv("LANDSCAPE_SEARCH_LIMIT", "5")
	t.Setenv("LANDSCAPE_OUTPUT", "yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		BaseSource:   "testdata/base.json",
		FullSource:   "github:cncf/landscape2-sites/cncf/full.json@main",
		GitHubToken:  cfg.GitHubToken,
		SearchLimit:  5,
		FetchTimeout: time.Minute,
		Output:       "yaml",
	}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"not a number", "many", "parse env:"},
		{"negative", "-1", "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LANDSCAPE_SEARCH_LIMIT", tt.value)
			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %v", tt.want, err)
			}
		})
	}
}
