package rig

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/gimlock/internal/dynamics"
	"github.com/san-kum/gimlock/internal/integrators"
	"github.com/san-kum/gimlock/internal/physics"
)

func newTestEngine(t *testing.T, envs int) *ArticulationEngine {
	t.Helper()
	g := physics.NewGimbal()
	eng, err := NewArticulationEngine(g, integrators.NewRK4(), physics.JointNames(), envs, g.DefaultState())
	if err != nil {
		t.Fatalf("engine init failed: %v", err)
	}
	return eng
}

func TestEngineDimensions(t *testing.T) {
	eng := newTestEngine(t, 4)
	if eng.NumEnvs() != 4 {
		t.Errorf("expected 4 envs, got %d", eng.NumEnvs())
	}
	if eng.NumJoints() != 3 {
		t.Errorf("expected 3 joints, got %d", eng.NumJoints())
	}
}

func TestEngineRejectsBadConfig(t *testing.T) {
	g := physics.NewGimbal()
	if _, err := NewArticulationEngine(g, integrators.NewRK4(), physics.JointNames(), 0, g.DefaultState()); err == nil {
		t.Error("expected error for zero envs")
	}
	if _, err := NewArticulationEngine(g, integrators.NewRK4(), physics.JointNames(), 1, dynamics.State{1, 2}); err == nil {
		t.Error("expected error for wrong init state length")
	}
	if _, err := NewArticulationEngine(g, integrators.NewRK4(), []string{"only"}, 1, g.DefaultState()); err == nil {
		t.Error("expected error for wrong joint name count")
	}
}

func TestEngineStepAdvancesTime(t *testing.T) {
	eng := newTestEngine(t, 1)
	dt := 0.002
	for i := 0; i < 10; i++ {
		if err := eng.Step(dt); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if math.Abs(eng.Time()-10*dt) > 1e-12 {
		t.Errorf("expected time %.4f, got %.4f", 10*dt, eng.Time())
	}
}

func TestEngineStopIsCooperative(t *testing.T) {
	eng := newTestEngine(t, 1)
	eng.Stop()
	if eng.Running() {
		t.Error("engine should report not running after Stop")
	}
	if err := eng.Step(0.002); !errors.Is(err, dynamics.ErrEngineStopped) {
		t.Errorf("expected ErrEngineStopped, got %v", err)
	}
}

func TestEngineJointStateRoundTrip(t *testing.T) {
	eng := newTestEngine(t, 2)

	js := eng.JointState()
	js.Vel[0][physics.JointRotor] = 1234.0
	js.Pos[1][physics.JointPitch] = 0.9

	if err := eng.WriteJointState(js); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	back := eng.JointState()
	if back.Vel[0][physics.JointRotor] != 1234.0 {
		t.Errorf("rotor velocity not written back: %f", back.Vel[0][physics.JointRotor])
	}
	if back.Pos[1][physics.JointPitch] != 0.9 {
		t.Errorf("pitch position not written back: %f", back.Pos[1][physics.JointPitch])
	}
}

func TestEngineJointStateIsSnapshot(t *testing.T) {
	eng := newTestEngine(t, 1)
	js := eng.JointState()
	js.Vel[0][0] = 99.0

	fresh := eng.JointState()
	if fresh.Vel[0][0] == 99.0 {
		t.Error("mutating the snapshot must not alias engine state")
	}
}

func TestEngineWriteDimensionMismatch(t *testing.T) {
	eng := newTestEngine(t, 1)
	bad := NewJointState(2, 3)
	if err := eng.WriteJointState(bad); !errors.Is(err, dynamics.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEngineEnvsEvolveIdentically(t *testing.T) {
	eng := newTestEngine(t, 3)
	for i := 0; i < 50; i++ {
		if err := eng.Step(0.002); err != nil {
			t.Fatalf("step failed: %v", err)
		}
	}
	js := eng.JointState()
	for e := 1; e < 3; e++ {
		for j := 0; j < 3; j++ {
			if js.Pos[e][j] != js.Pos[0][j] {
				t.Fatalf("identical envs diverged at env %d joint %d", e, j)
			}
		}
	}
}
