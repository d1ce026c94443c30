// Package config loads the emachat CLI configuration from a YAML file and
// EMACHAT_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/koscakluka/ema-chat/core/api"
)

type AudioDriver string

const (
	AudioDriverMiniaudio AudioDriver = "miniaudio"
	AudioDriverPortaudio AudioDriver = "portaudio"
	AudioDriverNone      AudioDriver = "none"
)

const (
	DefaultBackendURL      = "http://localhost:8000"
	DefaultBackendTimeout  = 120 * time.Second
	DefaultCoordinatorRole = "Product_Manager"
	DefaultSampleRate      = 16000
)

// Config represents the complete CLI configuration
type Config struct {
	Backend         BackendConfig `yaml:"backend"`
	Model           api.Model     `yaml:"model"`
	CoordinatorRole string        `yaml:"coordinator_role"`
	Greeting        string        `yaml:"greeting"`
	Audio           AudioConfig   `yaml:"audio"`
	Log             LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AudioConfig struct {
	Driver     AudioDriver `yaml:"driver"`
	SampleRate int         `yaml:"sample_rate"`
}

// LogConfig routes logs to a file; without one logs are discarded because
// the terminal belongs to the UI.
type LogConfig struct {
	File string `yaml:"file"`
}

func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Model:           api.DefaultModel,
		CoordinatorRole: DefaultCoordinatorRole,
		Audio: AudioConfig{
			Driver:     AudioDriverMiniaudio,
			SampleRate: DefaultSampleRate,
		},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (c *Config) applyEnv() error {
	c.Backend.URL = getEnv("EMACHAT_BACKEND_URL", c.Backend.URL)
	c.Model = api.Model(getEnv("EMACHAT_MODEL", string(c.Model)))
	c.CoordinatorRole = getEnv("EMACHAT_COORDINATOR_ROLE", c.CoordinatorRole)
	c.Greeting = getEnv("EMACHAT_GREETING", c.Greeting)
	c.Audio.Driver = AudioDriver(getEnv("EMACHAT_AUDIO_DRIVER", string(c.Audio.Driver)))
	c.Log.File = getEnv("EMACHAT_LOG_FILE", c.Log.File)

	if v := os.Getenv("EMACHAT_BACKEND_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("EMACHAT_BACKEND_TIMEOUT: %w", err)
		}
		c.Backend.Timeout = timeout
	}
	if v := os.Getenv("EMACHAT_AUDIO_SAMPLE_RATE"); v != "" {
		sampleRate, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMACHAT_AUDIO_SAMPLE_RATE: %w", err)
		}
		c.Audio.SampleRate = sampleRate
	}

	return nil
}

func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}

	if !c.Model.IsValid() {
		return fmt.Errorf("model must be one of %v, got %q", api.Models(), c.Model)
	}

	if c.CoordinatorRole == "" {
		return fmt.Errorf("coordinator_role cannot be empty")
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	return nil
}

func (b *BackendConfig) Validate() error {
	if b.URL == "" {
		return fmt.Errorf("url cannot be empty")
	}

	if b.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", b.Timeout)
	}

	return nil
}

func (a *AudioConfig) Validate() error {
	switch a.Driver {
	case AudioDriverMiniaudio, AudioDriverPortaudio, AudioDriverNone:
	default:
		return fmt.Errorf("driver must be one of [miniaudio, portaudio, none], got %q", a.Driver)
	}

	if a.SampleRate < 8000 || a.SampleRate > 48000 {
		return fmt.Errorf("sample_rate must be between 8000 and 48000 Hz, got %d", a.SampleRate)
	}

	return nil
}
