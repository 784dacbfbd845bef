package config

import (
	"math"

	"github.com/san-kum/gimlock/internal/physics"
)

var Presets = map[string]*Config{
	"classic": {
		Integrator: "rk4", Dt: 0.002, Duration: 1.0, FPS: 10, NumEnvs: 1,
		InitState: InitStateConfig{Pitch: math.Pi / 4, Spin: 1000},
		Overrides: []OverrideConfig{
			{Joint: physics.JointRotor, Kind: "velocity", Value: 1000, EveryStep: true},
		},
		Video:     VideoConfig{Enabled: true, Width: DefaultWidth, Height: DefaultHeight},
		OutputDir: "output",
	},
	"lock": {
		Integrator: "rk4", Dt: 0.001, Duration: 2.0, FPS: 24, NumEnvs: 1,
		InitState: InitStateConfig{Pitch: math.Pi/2 - 0.02, Spin: 1500},
		Overrides: []OverrideConfig{
			{Joint: physics.JointRotor, Kind: "velocity", Value: 1500, EveryStep: true},
			{Joint: physics.JointPitch, Kind: "position", Value: math.Pi/2 - 0.02},
		},
		Video:     VideoConfig{Enabled: true, Width: DefaultWidth, Height: DefaultHeight},
		OutputDir: "output",
	},
	"slow": {
		Integrator: "rk4", Dt: 0.005, Duration: 5.0, FPS: 12, NumEnvs: 1,
		InitState: InitStateConfig{Pitch: 0.3, Spin: 50},
		Video:     VideoConfig{Enabled: true, Width: DefaultWidth, Height: DefaultHeight},
		OutputDir: "output",
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
