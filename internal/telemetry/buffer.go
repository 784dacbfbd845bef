package telemetry

// StateBuffer is fixed-capacity, time-indexed dense storage for scalar
// per-joint samples. It is allocated once, zero-filled, and never resized;
// writes outside [0, capacity) are rejected rather than grown. Layout is
// env-major: [env][step][joint].
type StateBuffer struct {
	envs   int
	steps  int
	joints int
	data   []float64
}

func NewStateBuffer(envs, steps, joints int) *StateBuffer {
	return &StateBuffer{
		envs:   envs,
		steps:  steps,
		joints: joints,
		data:   make([]float64, envs*steps*joints),
	}
}

func (b *StateBuffer) Envs() int     { return b.envs }
func (b *StateBuffer) Capacity() int { return b.steps }
func (b *StateBuffer) Joints() int   { return b.joints }

func (b *StateBuffer) index(env, step, joint int) int {
	return (env*b.steps+step)*b.joints + joint
}

// SetRow writes one environment's joint row at the given step. Repeated
// writes to the same step overwrite (last write wins). Returns false when
// the indices are out of range; the buffer is untouched in that case.
func (b *StateBuffer) SetRow(env, step int, row []float64) bool {
	if env < 0 || env >= b.envs || step < 0 || step >= b.steps || len(row) != b.joints {
		return false
	}
	copy(b.data[b.index(env, step, 0):b.index(env, step, b.joints)], row)
	return true
}

// At reads a single sample; never-written cells hold the zero fill value.
func (b *StateBuffer) At(env, step, joint int) float64 {
	if env < 0 || env >= b.envs || step < 0 || step >= b.steps || joint < 0 || joint >= b.joints {
		return 0
	}
	return b.data[b.index(env, step, joint)]
}

// Series copies one joint's full time series for one environment.
func (b *StateBuffer) Series(env, joint int) []float64 {
	out := make([]float64, b.steps)
	if env < 0 || env >= b.envs || joint < 0 || joint >= b.joints {
		return out
	}
	for s := 0; s < b.steps; s++ {
		out[s] = b.data[b.index(env, s, joint)]
	}
	return out
}
