package telemetry

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/gimlock/internal/logging"
	"github.com/san-kum/gimlock/internal/rig"
)

// Source is the rig the recorder samples from each step.
type Source interface {
	JointState() rig.JointState
	NumEnvs() int
	NumJoints() int
	JointNames() []string
}

// Recorder stores per-step joint positions and velocities in pre-allocated
// buffers sized from the full run length. Data is only read back after the
// run ends; there is no incremental flush. Recording is diagnostic, not
// control-critical: every failure path warns and returns instead of
// aborting the run.
type Recorder struct {
	src   Source
	names []string
	dt    float64
	pos   *StateBuffer
	vel   *StateBuffer
	log   *logging.Logger
}

func NewRecorder(src Source, dt, duration float64, log *logging.Logger) (*Recorder, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("telemetry: dt must be positive, got %f", dt)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("telemetry: duration must be positive, got %f", duration)
	}
	if log == nil {
		log = logging.Default()
	}

	steps := int(duration / dt)
	envs := src.NumEnvs()
	joints := src.NumJoints()

	r := &Recorder{
		src:   src,
		names: src.JointNames(),
		dt:    dt,
		pos:   NewStateBuffer(envs, steps, joints),
		vel:   NewStateBuffer(envs, steps, joints),
		log:   log,
	}
	log.Debugf("telemetry buffers: %d envs x %d steps x %d joints", envs, steps, joints)
	return r, nil
}

func (r *Recorder) Steps() int               { return r.pos.Capacity() }
func (r *Recorder) Dt() float64              { return r.dt }
func (r *Recorder) JointNames() []string     { return r.names }
func (r *Recorder) Positions() *StateBuffer  { return r.pos }
func (r *Recorder) Velocities() *StateBuffer { return r.vel }

// TimeAxis reconstructs the sample times as i*dt.
func (r *Recorder) TimeAxis() []float64 {
	t := make([]float64, r.Steps())
	for i := range t {
		t[i] = float64(i) * r.dt
	}
	return t
}

// Record samples the current joint state of every environment at the given
// step index. Out-of-range indices are logged and ignored.
func (r *Recorder) Record(step int) {
	if step < 0 || step >= r.Steps() {
		r.log.Warnf("telemetry: step index %d out of bounds [0, %d)", step, r.Steps())
		return
	}
	js := r.src.JointState()
	for e := 0; e < js.NumEnvs(); e++ {
		if !r.pos.SetRow(e, step, js.Pos[e]) || !r.vel.SetRow(e, step, js.Vel[e]) {
			r.log.Warnf("telemetry: dropped sample for env %d at step %d", e, step)
		}
	}
}

// WriteCSV dumps the buffers as one row per step: time, then
// env{e}_{joint}_pos and env{e}_{joint}_vel columns.
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"time"}
	for e := 0; e < r.pos.Envs(); e++ {
		for _, name := range r.names {
			header = append(header, fmt.Sprintf("env%d_%s_pos", e, name))
		}
		for _, name := range r.names {
			header = append(header, fmt.Sprintf("env%d_%s_vel", e, name))
		}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for s := 0; s < r.Steps(); s++ {
		row := []string{strconv.FormatFloat(float64(s)*r.dt, 'f', 6, 64)}
		for e := 0; e < r.pos.Envs(); e++ {
			for j := 0; j < r.pos.Joints(); j++ {
				row = append(row, strconv.FormatFloat(r.pos.At(e, s, j), 'f', 6, 64))
			}
			for j := 0; j < r.vel.Joints(); j++ {
				row = append(row, strconv.FormatFloat(r.vel.At(e, s, j), 'f', 6, 64))
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Error()
}
