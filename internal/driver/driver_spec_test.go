package driver_test

import (
	"context"
	"errors"
	"image"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gimlock/internal/driver"
	"github.com/san-kum/gimlock/internal/integrators"
	"github.com/san-kum/gimlock/internal/logging"
	"github.com/san-kum/gimlock/internal/physics"
	"github.com/san-kum/gimlock/internal/rig"
	"github.com/san-kum/gimlock/internal/telemetry"
)

// scriptedEngine stands in for the physics host: it damps velocities each
// step like a lossy solver and can stop itself mid-run.
type scriptedEngine struct {
	js        rig.JointState
	running   bool
	stopAfter int
	steps     int
	damping   float64
	stepErr   error
}

func newScriptedEngine(envs, joints int) *scriptedEngine {
	return &scriptedEngine{js: rig.NewJointState(envs, joints), running: true, damping: 1.0}
}

func (s *scriptedEngine) Step(dt float64) error {
	if s.stepErr != nil {
		return s.stepErr
	}
	s.steps++
	for e := range s.js.Vel {
		for j := range s.js.Vel[e] {
			s.js.Vel[e][j] *= s.damping
		}
	}
	if s.stopAfter > 0 && s.steps >= s.stopAfter {
		s.running = false
	}
	return nil
}

func (s *scriptedEngine) JointState() rig.JointState { return s.js.Clone() }

func (s *scriptedEngine) WriteJointState(js rig.JointState) error {
	s.js = js.Clone()
	return nil
}

func (s *scriptedEngine) Running() bool        { return s.running }
func (s *scriptedEngine) NumEnvs() int         { return s.js.NumEnvs() }
func (s *scriptedEngine) NumJoints() int       { return s.js.NumJoints() }
func (s *scriptedEngine) JointNames() []string { return []string{"yaw", "pitch", "rotor"} }

type countingCamera struct{ updates int }

func (c *countingCamera) Update(dt float64) { c.updates++ }

func (c *countingCamera) Capture(index int) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

type countingEncoder struct {
	frames    int
	closes    int
	appendErr error
}

func (e *countingEncoder) AppendFrame(img image.Image) error {
	if e.appendErr != nil {
		return e.appendErr
	}
	e.frames++
	return nil
}

func (e *countingEncoder) Close() error {
	e.closes++
	return nil
}

var _ = Describe("FrameSchedule", func() {
	It("stays within one frame of floor(T*fps) over long runs", func() {
		fps := 30.0
		dt := 0.001
		steps := 20000

		sched, err := driver.NewFrameSchedule(fps)
		Expect(err).NotTo(HaveOccurred())

		for i := 1; i <= steps; i++ {
			t := float64(i) * dt
			if sched.ShouldCapture(t) {
				sched.Advance()
			}
		}

		total := float64(steps) * dt
		expected := math.Floor(total * fps)
		Expect(float64(sched.FramesCaptured())).To(BeNumerically("~", expected, 1))
	})

	It("does not accumulate deadline drift across thousands of periods", func() {
		fps := 24.0
		sched, err := driver.NewFrameSchedule(fps)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 10000; i++ {
			sched.Advance()
		}
		Expect(sched.NextDeadline()).To(BeNumerically("~", 10000.0/fps, 1e-6))
	})
})

var _ = Describe("Driver", func() {
	newRecorder := func(src telemetry.Source, dt, duration float64) *telemetry.Recorder {
		rec, err := telemetry.NewRecorder(src, dt, duration, logging.Discard())
		Expect(err).NotTo(HaveOccurred())
		return rec
	}

	It("rejects non-positive timing configuration", func() {
		eng := newScriptedEngine(1, 3)
		_, err := driver.New(eng, driver.Config{Dt: 0, Duration: 1, FPS: 10})
		Expect(err).To(HaveOccurred())
		_, err = driver.New(eng, driver.Config{Dt: 0.01, Duration: -1, FPS: 10})
		Expect(err).To(HaveOccurred())
		_, err = driver.New(eng, driver.Config{Dt: 0.01, Duration: 1, FPS: 0})
		Expect(err).To(HaveOccurred())
	})

	It("runs dt=0.01 duration=1.0 fps=10 with a 100-step buffer and ~10 frames", func() {
		eng := newScriptedEngine(1, 3)
		d, err := driver.New(eng, driver.Config{Dt: 0.01, Duration: 1.0, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())

		rec := newRecorder(eng, 0.01, 1.0)
		Expect(rec.Steps()).To(Equal(100))
		d.AttachRecorder(rec)

		cam := &countingCamera{}
		enc := &countingEncoder{}
		d.AttachVideo(cam, enc)

		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(100))
		Expect(float64(res.FramesCaptured)).To(BeNumerically("~", 10, 1))
		Expect(enc.frames).To(Equal(res.FramesCaptured))
		Expect(enc.closes).To(Equal(1))
		Expect(cam.updates).To(Equal(100))
	})

	It("lets a per-step velocity override win over solver decay", func() {
		gimbal := physics.NewGimbal()
		eng, err := rig.NewArticulationEngine(gimbal, integrators.NewRK4(), physics.JointNames(), 1, gimbal.DefaultState())
		Expect(err).NotTo(HaveOccurred())

		dt, duration := 0.002, 0.1
		d, err := driver.New(eng, driver.Config{Dt: dt, Duration: duration, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())
		d.SetOverrides([]rig.Override{
			{Joint: physics.JointRotor, Kind: rig.TargetVelocity, Value: 1e3, EveryStep: true},
		})

		rec := newRecorder(eng, dt, duration)
		d.AttachRecorder(rec)

		_, err = d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		// Every sample sits within one step's worth of friction decay of
		// the override target; without re-assertion the rotor would have
		// lost far more over the run.
		vel := rec.Velocities()
		for s := 0; s < rec.Steps(); s++ {
			Expect(vel.At(0, s, physics.JointRotor)).To(BeNumerically("~", 1e3, 0.1))
		}
	})

	It("shows the decay the override exists to defeat when disabled", func() {
		gimbal := physics.NewGimbal()
		eng, err := rig.NewArticulationEngine(gimbal, integrators.NewRK4(), physics.JointNames(), 1, gimbal.DefaultState())
		Expect(err).NotTo(HaveOccurred())

		dt, duration := 0.002, 0.1
		d, err := driver.New(eng, driver.Config{Dt: dt, Duration: duration, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())

		rec := newRecorder(eng, dt, duration)
		d.AttachRecorder(rec)

		_, err = d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		last := rec.Velocities().At(0, rec.Steps()-1, physics.JointRotor)
		Expect(last).To(BeNumerically("<", 999))
	})

	It("exits early on host stop with partial buffers and a single close", func() {
		eng := newScriptedEngine(1, 3)
		eng.stopAfter = 30

		dt, duration := 0.01, 1.0
		d, err := driver.New(eng, driver.Config{Dt: dt, Duration: duration, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())
		d.SetOverrides([]rig.Override{
			{Joint: 0, Kind: rig.TargetVelocity, Value: 5.0, EveryStep: true},
		})

		rec := newRecorder(eng, dt, duration)
		d.AttachRecorder(rec)

		enc := &countingEncoder{}
		d.AttachVideo(&countingCamera{}, enc)

		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(30))
		Expect(enc.closes).To(Equal(1))

		vel := rec.Velocities()
		Expect(vel.At(0, 29, 0)).To(BeNumerically("~", 5.0, 1e-9))
		for s := 30; s < rec.Steps(); s++ {
			Expect(vel.At(0, s, 0)).To(BeZero())
		}
	})

	It("propagates engine step failures and still closes the encoder", func() {
		eng := newScriptedEngine(1, 3)
		eng.stepErr = errors.New("solver exploded")

		d, err := driver.New(eng, driver.Config{Dt: 0.01, Duration: 1.0, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())

		enc := &countingEncoder{}
		d.AttachVideo(&countingCamera{}, enc)

		_, err = d.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("solver exploded")))
		Expect(enc.closes).To(Equal(1))
	})

	It("treats encoder write failures as recoverable", func() {
		eng := newScriptedEngine(1, 3)

		d, err := driver.New(eng, driver.Config{Dt: 0.01, Duration: 0.5, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())

		enc := &countingEncoder{appendErr: errors.New("disk full")}
		d.AttachVideo(&countingCamera{}, enc)

		res, err := d.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(Equal(50))
		Expect(enc.frames).To(BeZero())
	})

	It("stops cooperatively on context cancellation", func() {
		eng := newScriptedEngine(1, 3)

		d, err := driver.New(eng, driver.Config{Dt: 0.01, Duration: 1.0, FPS: 10})
		Expect(err).NotTo(HaveOccurred())
		d.SetLogger(logging.Discard())

		enc := &countingEncoder{}
		d.AttachVideo(&countingCamera{}, enc)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := d.Run(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Steps).To(BeZero())
		Expect(enc.closes).To(Equal(1))
	})
})
