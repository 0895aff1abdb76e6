package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Addr != ":8090" {
		t.Errorf("Addr = %q, want :8090", cfg.Server.Addr)
	}
	if cfg.Avatar.FrameRate != 60 {
		t.Errorf("FrameRate = %d, want 60", cfg.Avatar.FrameRate)
	}
	if cfg.Motion.Scale != 1.0 {
		t.Errorf("Motion.Scale = %v, want 1.0", cfg.Motion.Scale)
	}
	if cfg.Viewport.Width != 200 || cfg.Viewport.Height != 480 {
		t.Errorf("Viewport = %dx%d, want 200x480", cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Avatar.ModelPath != "assets/avatar.vrm" {
		t.Errorf("ModelPath = %q", cfg.Avatar.ModelPath)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.yaml")
	body := `
server:
  addr: ":7777"
avatar:
  frame_rate: 30
motion:
  scale: 0.5
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7777" {
		t.Errorf("Addr = %q, want :7777", cfg.Server.Addr)
	}
	if cfg.Avatar.FrameRate != 30 {
		t.Errorf("FrameRate = %d, want 30", cfg.Avatar.FrameRate)
	}
	if cfg.Motion.Scale != 0.5 {
		t.Errorf("Motion.Scale = %v, want 0.5", cfg.Motion.Scale)
	}
	// Untouched sections keep their defaults.
	if cfg.Lighting.Directional != 0.95 {
		t.Errorf("Lighting.Directional = %v, want default", cfg.Lighting.Directional)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/no/such/config.yaml"); err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should fail on malformed YAML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AVATAR_ADDR", ":9999")
	t.Setenv("AVATAR_MODEL", "other.vrm")
	t.Setenv("AVATAR_FRAME_RATE", "120")
	t.Setenv("AVATAR_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Avatar.ModelPath != "other.vrm" {
		t.Errorf("ModelPath = %q, want env override", cfg.Avatar.ModelPath)
	}
	if cfg.Avatar.FrameRate != 120 {
		t.Errorf("FrameRate = %d, want 120", cfg.Avatar.FrameRate)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestEnvOverridesBeatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "avatar.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":7777\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AVATAR_ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Addr = %q, env should beat the file", cfg.Server.Addr)
	}
}

func TestEnvBadFrameRateIgnored(t *testing.T) {
	t.Setenv("AVATAR_FRAME_RATE", "sixty")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Avatar.FrameRate != 60 {
		t.Errorf("FrameRate = %d, want default when env is not a number", cfg.Avatar.FrameRate)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"frame rate zero", func(c *Config) { c.Avatar.FrameRate = 0 }, "frame_rate"},
		{"frame rate huge", func(c *Config) { c.Avatar.FrameRate = 500 }, "frame_rate"},
		{"preview above frame rate", func(c *Config) { c.Avatar.PreviewRate = 90 }, "preview_rate"},
		{"negative preview", func(c *Config) { c.Avatar.PreviewRate = -1 }, "preview_rate"},
		{"bad viewport", func(c *Config) { c.Viewport.Width = 0 }, "viewport"},
		{"negative motion scale", func(c *Config) { c.Motion.Scale = -1 }, "motion scale"},
		{"negative lighting scale", func(c *Config) { c.Lighting.Scale = -0.1 }, "lighting scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePreviewZeroAllowed(t *testing.T) {
	cfg := Default()
	cfg.Avatar.PreviewRate = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("preview_rate 0 disables previews and should validate, got %v", err)
	}
}
