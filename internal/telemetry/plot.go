package telemetry

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// PlotFileName is the composed telemetry image written by Render.
const PlotFileName = "joint_telemetry.png"

var envPalette = []color.RGBA{
	{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	{R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	{R: 0xd6, G: 0x27, B: 0x28, A: 0xff},
	{R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	{R: 0x8c, G: 0x56, B: 0x4b, A: 0xff},
}

// limitedTicker keeps axis labels readable on dense time axes.
func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if max <= min {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func (r *Recorder) subplot(buf *StateBuffer, joint int, title, ylabel string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time (s)"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = limitedTicker(5, "%.2f")
	p.Y.Tick.Marker = limitedTicker(5, "%.3g")

	times := r.TimeAxis()
	for e := 0; e < buf.Envs(); e++ {
		series := buf.Series(e, joint)
		pts := make(plotter.XYs, len(series))
		for i := range series {
			pts[i].X = times[i]
			pts[i].Y = series[i]
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Width = vg.Points(1)
		line.LineStyle.Color = envPalette[e%len(envPalette)]
		p.Add(line)
		if buf.Envs() > 1 {
			p.Legend.Add(fmt.Sprintf("env %d", e), line)
		}
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// Render writes a single composed image: one column per joint, positions
// on the top row and velocities on the bottom, one line per environment.
// This is the only place buffered data is read; nothing is flushed during
// the run.
func (r *Recorder) Render(outputDir string) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("telemetry: create output dir: %w", err)
	}

	joints := r.pos.Joints()
	plots := make([][]*plot.Plot, 2)
	plots[0] = make([]*plot.Plot, joints)
	plots[1] = make([]*plot.Plot, joints)

	for j := 0; j < joints; j++ {
		pp, err := r.subplot(r.pos, j, r.names[j]+" position", "position (rad)")
		if err != nil {
			return fmt.Errorf("telemetry: position subplot %d: %w", j, err)
		}
		vp, err := r.subplot(r.vel, j, r.names[j]+" velocity", "velocity (rad/s)")
		if err != nil {
			return fmt.Errorf("telemetry: velocity subplot %d: %w", j, err)
		}
		plots[0][j] = pp
		plots[1][j] = vp
	}

	img := vgimg.NewWith(
		vgimg.UseWH(vg.Inch*vg.Length(4*joints), vg.Inch*6),
		vgimg.UseDPI(150),
	)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2,
		Cols: joints,
		PadX: vg.Millimeter * 4,
		PadY: vg.Millimeter * 4,
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	outPath := filepath.Join(outputDir, PlotFileName)
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("telemetry: create plot file: %w", err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("telemetry: write plot: %w", err)
	}
	r.log.Infof("telemetry plot saved to %s", outPath)
	return nil
}
