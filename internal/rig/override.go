package rig

import "fmt"

// TargetKind selects which joint channel an override drives.
type TargetKind int

const (
	TargetPosition TargetKind = iota
	TargetVelocity
)

func (k TargetKind) String() string {
	switch k {
	case TargetPosition:
		return "position"
	case TargetVelocity:
		return "velocity"
	default:
		return "unknown"
	}
}

func ParseTargetKind(s string) (TargetKind, error) {
	switch s {
	case "position":
		return TargetPosition, nil
	case "velocity":
		return TargetVelocity, nil
	default:
		return 0, fmt.Errorf("unknown override kind %q (want position or velocity)", s)
	}
}

// Override forces one joint channel to a fixed value, bypassing whatever
// the solver produced. EveryStep policies are re-asserted before every
// physics step to counteract solver decay; one-shot policies fire only
// before the first step, seeding initial conditions.
type Override struct {
	Joint     int
	Kind      TargetKind
	Value     float64
	EveryStep bool
}

// ApplyOverrides mutates js in place, applying each active policy to every
// environment. Policies are applied in list order; if two target the same
// joint and kind the later one wins. Overrides take effect strictly at the
// boundary between consecutive engine steps; the solver never sees them
// mid-step.
func ApplyOverrides(js JointState, policies []Override, firstStep bool) {
	for _, p := range policies {
		if !p.EveryStep && !firstStep {
			continue
		}
		if p.Joint < 0 || p.Joint >= js.NumJoints() {
			continue
		}
		for e := 0; e < js.NumEnvs(); e++ {
			switch p.Kind {
			case TargetPosition:
				js.Pos[e][p.Joint] = p.Value
			case TargetVelocity:
				js.Vel[e][p.Joint] = p.Value
			}
		}
	}
}
