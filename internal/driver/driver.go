package driver

import (
	"context"
	"fmt"
	"image"

	"github.com/san-kum/gimlock/internal/logging"
	"github.com/san-kum/gimlock/internal/rig"
)

// Engine is the physics host the driver runs against.
type Engine interface {
	Step(dt float64) error
	JointState() rig.JointState
	WriteJointState(rig.JointState) error
	Running() bool
}

// Camera renders the scene; Update advances any camera motion, Capture
// produces a frame for the indexed environment.
type Camera interface {
	Update(dt float64)
	Capture(index int) (image.Image, error)
}

// Encoder consumes captured frames. Close must be safe to call exactly
// once per run, on every exit path.
type Encoder interface {
	AppendFrame(img image.Image) error
	Close() error
}

// Recorder receives one sample per completed physics step.
type Recorder interface {
	Record(step int)
}

// Config is the driver's timing surface, validated once at construction.
type Config struct {
	Dt          float64
	Duration    float64
	FPS         float64
	CameraIndex int
}

func (c Config) validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("driver: dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("driver: duration must be positive, got %f", c.Duration)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("driver: fps must be positive, got %f", c.FPS)
	}
	return nil
}

// Result summarises one run.
type Result struct {
	Steps          int
	SimTime        float64
	FramesCaptured int
}

// Driver owns the fixed-timestep loop: it re-asserts kinematic overrides,
// advances the engine, feeds the telemetry recorder, and gates frame
// capture at the video rate. Construct, attach collaborators, Run once.
type Driver struct {
	engine    Engine
	cfg       Config
	overrides []rig.Override
	camera    Camera
	encoder   Encoder
	recorder  Recorder
	log       *logging.Logger
}

func New(engine Engine, cfg Config) (*Driver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Driver{
		engine: engine,
		cfg:    cfg,
		log:    logging.Default(),
	}, nil
}

func (d *Driver) SetLogger(l *logging.Logger) { d.log = l }

func (d *Driver) SetOverrides(policies []rig.Override) { d.overrides = policies }

// AttachVideo wires a camera and encoder; without one the run is headless.
func (d *Driver) AttachVideo(cam Camera, enc Encoder) {
	d.camera = cam
	d.encoder = enc
}

func (d *Driver) AttachRecorder(rec Recorder) { d.recorder = rec }

// Run executes the loop until sim time reaches the configured duration,
// the engine stops, or ctx is cancelled. Engine failures are fatal and
// propagate; telemetry and capture failures are logged and the run
// continues. The encoder is closed on every exit path, so a cancelled or
// failed run still leaves a valid partial artifact set.
func (d *Driver) Run(ctx context.Context) (res *Result, err error) {
	clock := NewClock(d.cfg.Dt)
	sched, schedErr := NewFrameSchedule(d.cfg.FPS)
	if schedErr != nil {
		return nil, schedErr
	}

	res = &Result{}
	defer func() {
		res.FramesCaptured = sched.FramesCaptured()
		if d.encoder != nil {
			if cerr := d.encoder.Close(); cerr != nil {
				d.log.Warnf("driver: encoder close: %v", cerr)
			}
		}
	}()

	first := true
	for d.engine.Running() && clock.Time < d.cfg.Duration {
		select {
		case <-ctx.Done():
			d.log.Infof("driver: cancelled at t=%.4f after %d steps", clock.Time, clock.Step)
			return res, nil
		default:
		}

		// Re-assert authoritative joint targets at the step boundary,
		// then hand the whole vector back to the solver.
		js := d.engine.JointState()
		rig.ApplyOverrides(js, d.overrides, first)
		first = false
		if werr := d.engine.WriteJointState(js); werr != nil {
			return res, fmt.Errorf("driver: joint state write: %w", werr)
		}

		if serr := d.engine.Step(d.cfg.Dt); serr != nil {
			return res, fmt.Errorf("driver: engine step: %w", serr)
		}
		clock.Advance()
		res.Steps = clock.Step
		res.SimTime = clock.Time

		if d.camera != nil {
			d.camera.Update(d.cfg.Dt)
		}

		// Telemetry indexes the state by the step that just completed.
		if d.recorder != nil {
			d.recorder.Record(clock.Step - 1)
		}

		if d.camera != nil && d.encoder != nil && sched.ShouldCapture(clock.Time) {
			frame, cerr := d.camera.Capture(d.cfg.CameraIndex)
			if cerr != nil {
				d.log.Warnf("driver: frame capture at t=%.4f: %v", clock.Time, cerr)
			} else if aerr := d.encoder.AppendFrame(frame); aerr != nil {
				d.log.Warnf("driver: frame encode at t=%.4f: %v", clock.Time, aerr)
			}
			// A dropped frame still consumes its deadline; retrying every
			// physics step would burst-fire against a broken camera.
			sched.Advance()
		}
	}

	return res, nil
}
