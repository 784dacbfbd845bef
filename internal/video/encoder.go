// Package video turns captured frames into an MP4. Frames are written as
// numbered PNGs and muxed with ffmpeg on Close; when ffmpeg is not on
// PATH the PNG sequence is left behind as the artifact instead.
package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/san-kum/gimlock/internal/logging"
)

const framePattern = "frame_%06d.png"

// Encoder appends frames to a frames directory and muxes them on Close.
type Encoder struct {
	outPath   string
	framesDir string
	fps       float64
	frames    int
	keepPNGs  bool
	closed    bool
	log       *logging.Logger
}

// NewEncoder prepares the frames directory next to the output file.
func NewEncoder(outPath string, fps float64, log *logging.Logger) (*Encoder, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("video: fps must be positive, got %f", fps)
	}
	if log == nil {
		log = logging.Default()
	}
	framesDir := filepath.Join(filepath.Dir(outPath), "frames")
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return nil, fmt.Errorf("video: create frames dir: %w", err)
	}
	return &Encoder{
		outPath:   outPath,
		framesDir: framesDir,
		fps:       fps,
		log:       log,
	}, nil
}

// KeepFrames leaves the PNG sequence on disk after a successful mux.
func (e *Encoder) KeepFrames(keep bool) { e.keepPNGs = keep }

func (e *Encoder) FramesWritten() int { return e.frames }

// AppendFrame writes one numbered PNG. A failed frame is an encoder-level
// error the caller may treat as recoverable; numbering is not advanced so
// the sequence stays dense.
func (e *Encoder) AppendFrame(img image.Image) error {
	if e.closed {
		return fmt.Errorf("video: append after close")
	}
	path := filepath.Join(e.framesDir, fmt.Sprintf(framePattern, e.frames))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("video: create frame file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("video: encode frame %d: %w", e.frames, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("video: close frame file: %w", err)
	}
	e.frames++
	return nil
}

// Close muxes the frame sequence into the MP4. Safe to call more than
// once; only the first call does work. With no frames, or with ffmpeg
// missing, the PNG sequence (possibly empty) is the final artifact and
// Close still succeeds.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	if e.frames == 0 {
		e.log.Infof("video: no frames captured, skipping mux")
		return nil
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		e.log.Warnf("video: ffmpeg not on PATH; leaving %d PNG frames in %s", e.frames, e.framesDir)
		return nil
	}

	cmd := exec.Command("ffmpeg",
		"-y",
		"-framerate", fmt.Sprintf("%g", e.fps),
		"-i", filepath.Join(e.framesDir, framePattern),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		e.outPath,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("video: ffmpeg mux: %w", err)
	}
	e.log.Infof("video: wrote %s (%d frames at %g fps)", e.outPath, e.frames, e.fps)

	if !e.keepPNGs {
		if err := os.RemoveAll(e.framesDir); err != nil {
			e.log.Warnf("video: could not remove frames dir: %v", err)
		}
	}
	return nil
}

// SaveSnapshot writes a single still image as PNG, creating the target
// directory if needed.
func SaveSnapshot(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("video: create snapshot dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("video: create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("video: encode snapshot: %w", err)
	}
	return nil
}
