// Package dynamics provides the core primitives for simulating the gimbal rig.
//
// The package defines the vocabulary the rest of the module is written
// against:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Hamiltonian]: optional energy reporting for drift checks
//
// # Example
//
//	sys := physics.NewGimbal()
//	integ := integrators.NewRK4()
//	x := sys.DefaultState()
//	x = integ.Step(sys, x, 0, 0.002)
//
// # Thread Safety
//
// States and systems are NOT thread-safe. The simulation driver is strictly
// single-threaded; independent environments are stepped sequentially.
package dynamics
