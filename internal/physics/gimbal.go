package physics

import (
	"math"

	"github.com/san-kum/gimlock/internal/dynamics"
)

// Joint indices within a single environment's state vector.
const (
	JointYaw   = 0
	JointPitch = 1
	JointRotor = 2

	NumJoints = 3

	// StateDim is [yaw, pitch, rotor, yawVel, pitchVel, rotorVel].
	StateDim = 2 * NumJoints
)

// JointNames returns the joint labels in state order.
func JointNames() []string {
	return []string{"yaw", "pitch", "rotor"}
}

// Gimbal models a three-ring gyroscope rig: an outer yaw ring, a middle
// pitch ring, and an inner rotor spinning about the axis carried by the
// pitch ring. The yaw equation contains a 1/cos(pitch) term: as the pitch
// ring approaches ±π/2 the yaw and rotor axes align and the yaw rate
// required to track the rotor momentum diverges. That divergence is the
// gimbal-lock behaviour this rig exists to demonstrate.
type Gimbal struct {
	YawInertia    float64
	PitchInertia  float64
	RotorInertia  float64
	RotorFriction float64
	Gravity       float64
	Mass          float64
	Length        float64
}

func NewGimbal() *Gimbal {
	return &Gimbal{
		YawInertia:    1.0,
		PitchInertia:  1.0,
		RotorInertia:  2.0,
		RotorFriction: 0.05,
		Gravity:       9.81,
		Mass:          1.0,
		Length:        0.5,
	}
}

func (g *Gimbal) StateDim() int { return StateDim }

func (g *Gimbal) Derive(s dynamics.State, _ float64) dynamics.State {
	if len(s) < StateDim {
		return make(dynamics.State, StateDim)
	}
	pitch := s[JointPitch]
	wYaw, wPitch, wRotor := s[NumJoints+JointYaw], s[NumJoints+JointPitch], s[NumJoints+JointRotor]

	cosP := math.Cos(pitch)
	if math.Abs(cosP) < 1e-9 {
		if cosP < 0 {
			cosP = -1e-9
		} else {
			cosP = 1e-9
		}
	}

	// Spin angular momentum carried by the rotor.
	h := g.RotorInertia * wRotor

	dWYaw := (h * wPitch) / (g.YawInertia * cosP)
	dWPitch := (-h*wYaw*cosP - g.Mass*g.Gravity*g.Length*math.Sin(pitch)) / g.PitchInertia
	dWRotor := -g.RotorFriction * wRotor / g.RotorInertia

	return dynamics.State{wYaw, wPitch, wRotor, dWYaw, dWPitch, dWRotor}
}

func (g *Gimbal) DefaultState() dynamics.State {
	return dynamics.State{0.0, math.Pi / 4, 0.0, 0.0, 0.0, 1e3}
}

func (g *Gimbal) Energy(s dynamics.State) float64 {
	if len(s) < StateDim {
		return 0
	}
	pitch := s[JointPitch]
	wYaw, wPitch, wRotor := s[NumJoints+JointYaw], s[NumJoints+JointPitch], s[NumJoints+JointRotor]
	ke := 0.5 * (g.YawInertia*wYaw*wYaw + g.PitchInertia*wPitch*wPitch + g.RotorInertia*wRotor*wRotor)
	pe := g.Mass * g.Gravity * g.Length * math.Cos(pitch)
	return ke + pe
}

func (g *Gimbal) GetParams() map[string]float64 {
	return map[string]float64{
		"yaw_inertia":    g.YawInertia,
		"pitch_inertia":  g.PitchInertia,
		"rotor_inertia":  g.RotorInertia,
		"rotor_friction": g.RotorFriction,
		"gravity":        g.Gravity,
		"mass":           g.Mass,
		"length":         g.Length,
	}
}

func (g *Gimbal) SetParam(name string, v float64) error {
	switch name {
	case "yaw_inertia":
		if v <= 0 {
			return dynamics.ErrParameterBounds
		}
		g.YawInertia = v
	case "pitch_inertia":
		if v <= 0 {
			return dynamics.ErrParameterBounds
		}
		g.PitchInertia = v
	case "rotor_inertia":
		if v <= 0 {
			return dynamics.ErrParameterBounds
		}
		g.RotorInertia = v
	case "rotor_friction":
		g.RotorFriction = v
	case "gravity":
		g.Gravity = v
	case "mass":
		g.Mass = v
	case "length":
		g.Length = v
	}
	return nil
}
