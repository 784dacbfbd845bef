package rig

import (
	"fmt"

	"github.com/san-kum/gimlock/internal/dynamics"
)

// ArticulationEngine steps N independent environments of the same
// articulated model. State layout per environment is the model's
// convention: joint positions followed by joint velocities.
type ArticulationEngine struct {
	sys     dynamics.System
	integ   dynamics.Integrator
	names   []string
	states  []dynamics.State
	joints  int
	t       float64
	steps   int
	running bool
}

func NewArticulationEngine(sys dynamics.System, integ dynamics.Integrator, names []string, numEnvs int, init dynamics.State) (*ArticulationEngine, error) {
	if numEnvs < 1 {
		return nil, fmt.Errorf("rig: need at least one environment, got %d", numEnvs)
	}
	if len(init) != sys.StateDim() {
		return nil, dynamics.ErrDimensionMismatch
	}
	joints := sys.StateDim() / 2
	if len(names) != joints {
		return nil, fmt.Errorf("rig: %d joint names for %d joints", len(names), joints)
	}

	states := make([]dynamics.State, numEnvs)
	for e := range states {
		states[e] = init.Clone()
	}

	return &ArticulationEngine{
		sys:     sys,
		integ:   integ,
		names:   names,
		states:  states,
		joints:  joints,
		running: true,
	}, nil
}

func (a *ArticulationEngine) NumEnvs() int         { return len(a.states) }
func (a *ArticulationEngine) NumJoints() int       { return a.joints }
func (a *ArticulationEngine) JointNames() []string { return a.names }
func (a *ArticulationEngine) Time() float64        { return a.t }
func (a *ArticulationEngine) Running() bool        { return a.running }

// Stop requests cooperative shutdown; the driver observes it at the top of
// its next iteration.
func (a *ArticulationEngine) Stop() { a.running = false }

// Step advances every environment by one dt. A NaN/Inf state is a fatal
// solver failure: the rig cannot recover mid-run from corrupted state.
func (a *ArticulationEngine) Step(dt float64) error {
	if !a.running {
		return dynamics.ErrEngineStopped
	}
	for e, x := range a.states {
		next := a.integ.Step(a.sys, x, a.t, dt)
		if !next.IsValid() {
			return &dynamics.StepError{
				Step:    a.steps,
				Time:    a.t,
				Wrapped: fmt.Errorf("env %d: %w", e, dynamics.ErrInvalidState),
			}
		}
		a.states[e] = next
	}
	a.t += dt
	a.steps++
	return nil
}

// JointState returns a snapshot of all environments' joint channels.
func (a *ArticulationEngine) JointState() JointState {
	js := NewJointState(len(a.states), a.joints)
	for e, x := range a.states {
		copy(js.Pos[e], x[:a.joints])
		copy(js.Vel[e], x[a.joints:])
	}
	return js
}

// WriteJointState copies the given joint channels back into the solver
// state. Dimensions must match the engine exactly.
func (a *ArticulationEngine) WriteJointState(js JointState) error {
	if js.NumEnvs() != len(a.states) || js.NumJoints() != a.joints {
		return dynamics.ErrDimensionMismatch
	}
	for e := range a.states {
		copy(a.states[e][:a.joints], js.Pos[e])
		copy(a.states[e][a.joints:], js.Vel[e])
	}
	return nil
}

// Energy reports the model's total energy for one environment, or 0 if the
// model does not expose it.
func (a *ArticulationEngine) Energy(env int) float64 {
	h, ok := a.sys.(dynamics.Hamiltonian)
	if !ok || env < 0 || env >= len(a.states) {
		return 0
	}
	return h.Energy(a.states[env])
}
