// Package physics provides the articulated gimbal rig model.
//
// [Gimbal] implements [dynamics.System] for a three-joint mechanism
// (yaw ring, pitch ring, spinning rotor) whose yaw equation degenerates
// as the pitch ring approaches ±π/2, the gimbal-lock configuration.
//
// The model also implements [dynamics.Hamiltonian] for energy-drift
// monitoring and [dynamics.Configurable] for runtime parameter tuning.
package physics
