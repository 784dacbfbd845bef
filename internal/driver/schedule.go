package driver

import "fmt"

// FrameSchedule decides when a video frame is due. The deadline advances
// by a fixed 1/fps increment on every capture instead of being recomputed
// from elapsed time, which would compound rounding error over long runs.
// At most one capture fires per step; if dt is coarser than the frame
// period the schedule under-produces frames rather than bursting to catch
// up.
type FrameSchedule struct {
	fps          float64
	nextDeadline float64
	frames       int
}

// NewFrameSchedule starts with the first deadline at t=0 so a frame is
// captured at or near the start of the run.
func NewFrameSchedule(fps float64) (*FrameSchedule, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("driver: fps must be positive, got %f", fps)
	}
	return &FrameSchedule{fps: fps}, nil
}

// ShouldCapture reports whether a frame is due at the given simulated
// time. On a true result the caller must perform the capture and then
// call Advance.
func (s *FrameSchedule) ShouldCapture(simTime float64) bool {
	return simTime >= s.nextDeadline
}

// Advance moves the deadline forward by exactly one frame period and
// counts the capture, regardless of how much simulated time elapsed.
func (s *FrameSchedule) Advance() {
	s.nextDeadline += 1.0 / s.fps
	s.frames++
}

func (s *FrameSchedule) FramesCaptured() int     { return s.frames }
func (s *FrameSchedule) NextDeadline() float64   { return s.nextDeadline }
func (s *FrameSchedule) FramePeriod() float64    { return 1.0 / s.fps }
