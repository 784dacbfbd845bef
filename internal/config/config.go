package config

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gimlock/internal/physics"
	"github.com/san-kum/gimlock/internal/rig"
)

const (
	DefaultDt       = 0.002
	DefaultDuration = 1.0
	DefaultFPS      = 10.0
	DefaultEnvs     = 1
	DefaultSpin     = 1000.0
	DefaultWidth    = 640
	DefaultHeight   = 480
)

type Config struct {
	Integrator string           `yaml:"integrator"`
	Dt         float64          `yaml:"dt"`
	Duration   float64          `yaml:"duration"`
	FPS        float64          `yaml:"fps"`
	NumEnvs    int              `yaml:"num_envs"`
	InitState  InitStateConfig  `yaml:"init_state"`
	Overrides  []OverrideConfig `yaml:"overrides"`
	Video      VideoConfig      `yaml:"video"`
	OutputDir  string           `yaml:"output_dir"`
}

type InitStateConfig struct {
	Yaw   float64 `yaml:"yaw"`
	Pitch float64 `yaml:"pitch"`
	Spin  float64 `yaml:"spin"`
}

type OverrideConfig struct {
	Joint     int     `yaml:"joint"`
	Kind      string  `yaml:"kind"`
	Value     float64 `yaml:"value"`
	EveryStep bool    `yaml:"every_step"`
}

type VideoConfig struct {
	Enabled bool `yaml:"enabled"`
	Width   int  `yaml:"width"`
	Height  int  `yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		FPS:        DefaultFPS,
		NumEnvs:    DefaultEnvs,
		InitState: InitStateConfig{
			Pitch: math.Pi / 4,
			Spin:  DefaultSpin,
		},
		Overrides: []OverrideConfig{
			{Joint: physics.JointRotor, Kind: "velocity", Value: DefaultSpin, EveryStep: true},
		},
		Video: VideoConfig{
			Enabled: true,
			Width:   DefaultWidth,
			Height:  DefaultHeight,
		},
		OutputDir: "output",
	}
}

// Load reads a YAML config over the defaults. Unknown keys are
// rejected so a typo'd field fails loudly instead of falling back to a
// default silently.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %f", c.FPS)
	}
	if c.NumEnvs < 1 {
		return fmt.Errorf("num_envs must be at least 1, got %d", c.NumEnvs)
	}
	for i, ov := range c.Overrides {
		if ov.Joint < 0 || ov.Joint >= physics.NumJoints {
			return fmt.Errorf("override %d: joint %d out of range [0,%d)", i, ov.Joint, physics.NumJoints)
		}
		if _, err := rig.ParseTargetKind(ov.Kind); err != nil {
			return fmt.Errorf("override %d: %w", i, err)
		}
	}
	if c.Video.Enabled && (c.Video.Width <= 0 || c.Video.Height <= 0) {
		return fmt.Errorf("video size %dx%d must be positive", c.Video.Width, c.Video.Height)
	}
	return nil
}

// GetInitState builds the full solver state vector for one environment.
func (c *Config) GetInitState() []float64 {
	x := make([]float64, physics.StateDim)
	x[physics.JointYaw] = c.InitState.Yaw
	x[physics.JointPitch] = c.InitState.Pitch
	x[physics.NumJoints+physics.JointRotor] = c.InitState.Spin
	return x
}

// GetOverrides converts the configured override entries into rig
// policies, preserving file order.
func (c *Config) GetOverrides() ([]rig.Override, error) {
	out := make([]rig.Override, 0, len(c.Overrides))
	for i, ov := range c.Overrides {
		kind, err := rig.ParseTargetKind(ov.Kind)
		if err != nil {
			return nil, fmt.Errorf("override %d: %w", i, err)
		}
		out = append(out, rig.Override{
			Joint:     ov.Joint,
			Kind:      kind,
			Value:     ov.Value,
			EveryStep: ov.EveryStep,
		})
	}
	return out, nil
}
