// Package config loads go-avatar service configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Avatar   AvatarConfig   `yaml:"avatar"`
	Motion   MotionConfig   `yaml:"motion"`
	Lighting LightingConfig `yaml:"lighting"`
	Viewport ViewportConfig `yaml:"viewport"`
	Speech   SpeechConfig   `yaml:"speech"`
	RTC      RTCConfig      `yaml:"rtc"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP/WebSocket server.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// AvatarConfig configures model and pose sources.
type AvatarConfig struct {
	// ModelPath is the VRM/GLB model file.
	ModelPath string `yaml:"model_path"`
	// PosePath is the initial pose file, a local path or an http(s) URL.
	PosePath string `yaml:"pose_path"`
	// PoseDir is scanned at startup to register named poses.
	PoseDir string `yaml:"pose_dir"`
	// WatchPose enables hot-reload of the active pose file.
	WatchPose bool `yaml:"watch_pose"`
	// FrameRate is the control loop rate in Hz.
	FrameRate int `yaml:"frame_rate"`
	// PreviewRate is the skeleton preview stream rate in Hz.
	PreviewRate int `yaml:"preview_rate"`
}

// MotionConfig overrides the built-in idle motion parameters.
type MotionConfig struct {
	BreathingIntensity float64 `yaml:"breathing_intensity"`
	BreathingSpeed     float64 `yaml:"breathing_speed"`
	SwayIntensity      float64 `yaml:"sway_intensity"`
	SwaySpeed          float64 `yaml:"sway_speed"`
	Scale              float64 `yaml:"scale"`
}

// LightingConfig holds base lighting intensities.
type LightingConfig struct {
	Directional float64 `yaml:"directional"`
	Ambient     float64 `yaml:"ambient"`
	Rim         float64 `yaml:"rim"`
	Scale       float64 `yaml:"scale"`
}

// ViewportConfig holds the container dimensions assumed until the
// first resize event. The logical render resolution is fixed.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// SpeechConfig configures the speech wobble pipeline.
type SpeechConfig struct {
	Enabled    bool `yaml:"enabled"`
	SampleRate int  `yaml:"sample_rate"`
	Channels   int  `yaml:"channels"`
}

// RTCConfig configures the WebRTC data-channel transport.
type RTCConfig struct {
	Enabled     bool     `yaml:"enabled"`
	STUNServers []string `yaml:"stun_servers"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8090",
			StaticDir: "web/static",
		},
		Avatar: AvatarConfig{
			ModelPath:   "assets/avatar.vrm",
			PosePath:    "assets/poses/idle.json",
			PoseDir:     "assets/poses",
			WatchPose:   true,
			FrameRate:   60,
			PreviewRate: 10,
		},
		Motion: MotionConfig{
			BreathingIntensity: 0.035,
			BreathingSpeed:     1.1,
			SwayIntensity:      0.025,
			SwaySpeed:          0.7,
			Scale:              1.0,
		},
		Lighting: LightingConfig{
			Directional: 0.95,
			Ambient:     0.55,
			Rim:         0.25,
			Scale:       1.0,
		},
		Viewport: ViewportConfig{
			Width:  200,
			Height: 480,
		},
		Speech: SpeechConfig{
			Enabled:    true,
			SampleRate: 48000,
			Channels:   1,
		},
		RTC: RTCConfig{
			Enabled:     true,
			STUNServers: []string{"stun:stun.l.google.com:19302"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "",
		},
	}
}

// Load reads a YAML config file over the defaults, then applies
// environment overrides. An empty path loads defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: unmarshal %q: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overlays AVATAR_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("AVATAR_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AVATAR_MODEL"); v != "" {
		c.Avatar.ModelPath = v
	}
	if v := os.Getenv("AVATAR_POSE"); v != "" {
		c.Avatar.PosePath = v
	}
	if v := os.Getenv("AVATAR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("AVATAR_FRAME_RATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Avatar.FrameRate = n
		}
	}
}

// Validate checks ranges that would break the control loop.
func (c *Config) Validate() error {
	if c.Avatar.FrameRate <= 0 || c.Avatar.FrameRate > 240 {
		return fmt.Errorf("config: frame_rate %d out of range (1-240)", c.Avatar.FrameRate)
	}
	if c.Avatar.PreviewRate < 0 || c.Avatar.PreviewRate > c.Avatar.FrameRate {
		return fmt.Errorf("config: preview_rate %d out of range (0-%d)", c.Avatar.PreviewRate, c.Avatar.FrameRate)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return fmt.Errorf("config: viewport %dx%d invalid", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Motion.Scale < 0 {
		return fmt.Errorf("config: motion scale %f negative", c.Motion.Scale)
	}
	if c.Lighting.Scale < 0 {
		return fmt.Errorf("config: lighting scale %f negative", c.Lighting.Scale)
	}
	return nil
}
