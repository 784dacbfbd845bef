package integrators

import "github.com/san-kum/gimlock/internal/dynamics"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamics.System, x dynamics.State, t, dt float64) dynamics.State {
	dx := sys.Derive(x, t)
	result := make(dynamics.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// ByName resolves an integrator from its config/CLI name. RK4 is the
// default for unknown names.
func ByName(name string) dynamics.Integrator {
	switch name {
	case "euler":
		return NewEuler()
	default:
		return NewRK4()
	}
}
