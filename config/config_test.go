package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestNew_defaults(t *testing.T) {
	v := viper.New()
	if err := Init(v, ""); err != nil {
		t.Fatal(err)
	}

	c, err := New(v)
	if err != nil {
		t.Fatal(err)
	}

	if c.Blast.Blastn != "blastn" {
		t.Errorf("Blast.Blastn = %q, want blastn", c.Blast.Blastn)
	}
	if c.Blast.EValue != 1e-5 {
		t.Errorf("Blast.EValue = %g, want 1e-5", c.Blast.EValue)
	}
	if c.Layout.Mode != "circular" {
		t.Errorf("Layout.Mode = %q, want circular", c.Layout.Mode)
	}
	if c.Render.Format != "svg" {
		t.Errorf("Render.Format = %q, want svg", c.Render.Format)
	}
	if c.Layout.Spacer != 10000 {
		t.Errorf("Layout.Spacer = %d, want 10000", c.Layout.Spacer)
	}
	if !c.Blast.Reuse || c.Blast.Strict {
		t.Errorf("Blast.Reuse, Blast.Strict = %v, %v, want true, false", c.Blast.Reuse, c.Blast.Strict)
	}
}

func TestInit_settingsFile(t *testing.T) {
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `blast:
  evalue: 1e-10
  timeout: 90s
  strict: true
layout:
  mode: linear
  min-hit: 5000
render:
  format: pdf
`
	if err := os.WriteFile(settings, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := Init(v, settings); err != nil {
		t.Fatal(err)
	}
	c, err := New(v)
	if err != nil {
		t.Fatal(err)
	}

	if c.Blast.EValue != 1e-10 {
		t.Errorf("Blast.EValue = %g, want 1e-10", c.Blast.EValue)
	}
	if c.Blast.Timeout != 90*time.Second {
		t.Errorf("Blast.Timeout = %s, want 90s", c.Blast.Timeout)
	}
	if !c.Blast.Strict {
		t.Error("Blast.Strict = false, want true")
	}
	if c.Layout.Mode != "linear" || c.Layout.MinHit != 5000 {
		t.Errorf("Layout = %+v, want linear with min-hit 5000", c.Layout)
	}
	if c.Render.Format != "pdf" {
		t.Errorf("Render.Format = %q, want pdf", c.Render.Format)
	}
	// untouched settings keep their defaults
	if c.Layout.MinGap != 1000 {
		t.Errorf("Layout.MinGap = %d, want 1000", c.Layout.MinGap)
	}
}

func TestInit_missingSettingsFile(t *testing.T) {
	v := viper.New()
	if err := Init(v, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing settings file")
	}
}

func TestNew_invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{"unknown layout", "layout.mode", "spiral"},
		{"unknown format", "render.format", "gif"},
		{"zero evalue", "blast.evalue", 0.0},
		{"empty palette", "layout.palette", 0},
		{"negative timeout", "blast.timeout", -time.Second},
		{"negative spacer", "layout.spacer", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			if err := Init(v, ""); err != nil {
				t.Fatal(err)
			}
			v.Set(tt.key, tt.value)

			if _, err := New(v); err == nil {
				t.Errorf("New() with %s=%v, expected an error", tt.key, tt.value)
			}
		})
	}
}

func TestConfig_BlastThreads(t *testing.T) {
	c := Config{Blast: BlastConfig{Threads: 3}}
	if got := c.BlastThreads(); got != 3 {
		t.Errorf("BlastThreads() = %d, want 3", got)
	}

	c.Blast.Threads = 0
	if got := c.BlastThreads(); got < 1 {
		t.Errorf("BlastThreads() = %d, want >= 1", got)
	}
}
