package rig

// JointState holds per-environment joint positions and velocities, indexed
// [env][joint]. The driver borrows one from the engine each step, mutates
// it through override policies, and writes it back; it is never retained
// across iterations.
type JointState struct {
	Pos [][]float64
	Vel [][]float64
}

func NewJointState(envs, joints int) JointState {
	js := JointState{
		Pos: make([][]float64, envs),
		Vel: make([][]float64, envs),
	}
	for e := 0; e < envs; e++ {
		js.Pos[e] = make([]float64, joints)
		js.Vel[e] = make([]float64, joints)
	}
	return js
}

func (js JointState) NumEnvs() int { return len(js.Pos) }

func (js JointState) NumJoints() int {
	if len(js.Pos) == 0 {
		return 0
	}
	return len(js.Pos[0])
}

func (js JointState) Clone() JointState {
	c := NewJointState(js.NumEnvs(), js.NumJoints())
	for e := range js.Pos {
		copy(c.Pos[e], js.Pos[e])
		copy(c.Vel[e], js.Vel[e])
	}
	return c
}
