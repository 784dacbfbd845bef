package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gimlock/internal/analysis"
	"github.com/san-kum/gimlock/internal/camera"
	"github.com/san-kum/gimlock/internal/config"
	"github.com/san-kum/gimlock/internal/driver"
	"github.com/san-kum/gimlock/internal/integrators"
	"github.com/san-kum/gimlock/internal/logging"
	"github.com/san-kum/gimlock/internal/physics"
	"github.com/san-kum/gimlock/internal/rig"
	"github.com/san-kum/gimlock/internal/store"
	"github.com/san-kum/gimlock/internal/telemetry"
	"github.com/san-kum/gimlock/internal/tui"
	"github.com/san-kum/gimlock/internal/video"
)

var (
	dataDir    string
	outputDir  string
	dt         float64
	duration   float64
	fps        float64
	numEnvs    int
	yaw        float64
	pitch      float64
	spin       float64
	integrator string
	configFile string
	preset     string
	noVideo    bool
	keepFrames bool
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gimlock",
		Short: "gimbal rig simulation driver",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gimlock", "data directory")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the rig and record telemetry and video",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&outputDir, "out", "output", "output directory")
	runCmd.Flags().BoolVar(&noVideo, "no-video", false, "disable frame capture")
	runCmd.Flags().BoolVar(&keepFrames, "keep-frames", false, "keep PNG frames after muxing")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render a single frame of the initial rig pose",
		RunE:  renderSnapshot,
	}
	addSimFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&outputDir, "out", "output", "output directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal view of the rig",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a saved run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run telemetry as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "print run telemetry as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, snapshotCmd, liveCmd, listCmd, plotCmd,
		exportCmd, exportCSVCmd, exportJSONCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "physics timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "video frame rate")
	cmd.Flags().IntVar(&numEnvs, "envs", config.DefaultEnvs, "environment count")
	cmd.Flags().Float64Var(&yaw, "yaw", 0, "initial yaw angle")
	cmd.Flags().Float64Var(&pitch, "pitch", 0.785398, "initial pitch angle")
	cmd.Flags().Float64Var(&spin, "spin", config.DefaultSpin, "rotor spin rate held by override")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers preset, config file, and CLI flags, with flags
// winning over the file and the file winning over the preset.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
		cfg.Overrides = append([]config.OverrideConfig(nil), p.Overrides...)
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS = fps
	}
	if cmd.Flags().Changed("envs") {
		cfg.NumEnvs = numEnvs
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Integrator = integrator
	}
	if cmd.Flags().Changed("yaw") {
		cfg.InitState.Yaw = yaw
	}
	if cmd.Flags().Changed("pitch") {
		cfg.InitState.Pitch = pitch
	}
	if cmd.Flags().Changed("spin") {
		cfg.InitState.Spin = spin
		for i := range cfg.Overrides {
			if cfg.Overrides[i].Joint == physics.JointRotor && cfg.Overrides[i].Kind == "velocity" {
				cfg.Overrides[i].Value = spin
			}
		}
	}
	if cmd.Flags().Changed("no-video") && noVideo {
		cfg.Video.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger() *logging.Logger {
	if verbose {
		return logging.New(os.Stdout, logging.Debug)
	}
	return logging.Default()
}

func buildEngine(cfg *config.Config) (*rig.ArticulationEngine, error) {
	return rig.NewArticulationEngine(physics.NewGimbal(), integrators.ByName(cfg.Integrator),
		physics.JointNames(), cfg.NumEnvs, cfg.GetInitState())
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = outputDir
	}

	log := newLogger()

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	overrides, err := cfg.GetOverrides()
	if err != nil {
		return err
	}

	drv, err := driver.New(engine, driver.Config{
		Dt:       cfg.Dt,
		Duration: cfg.Duration,
		FPS:      cfg.FPS,
	})
	if err != nil {
		return err
	}
	drv.SetLogger(log)
	drv.SetOverrides(overrides)

	rec, err := telemetry.NewRecorder(engine, cfg.Dt, cfg.Duration, log)
	if err != nil {
		return err
	}
	drv.AttachRecorder(rec)

	if cfg.Video.Enabled {
		cam, err := camera.New(engine, cfg.Video.Width, cfg.Video.Height)
		if err != nil {
			return err
		}
		enc, err := video.NewEncoder(filepath.Join(cfg.OutputDir, "gimbal.mp4"), cfg.FPS, log)
		if err != nil {
			return err
		}
		enc.KeepFrames(keepFrames)
		drv.AttachVideo(cam, enc)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("running gimbal simulation...")
	start := time.Now()

	result, err := drv.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	if err := rec.Render(cfg.OutputDir); err != nil {
		log.Warnf("plot render failed: %v", err)
	}

	runID, err := st.Save(store.RunMetadata{
		Dt:             cfg.Dt,
		Duration:       cfg.Duration,
		FPS:            cfg.FPS,
		Integrator:     cfg.Integrator,
		NumEnvs:        cfg.NumEnvs,
		NumJoints:      physics.NumJoints,
		JointNames:     physics.JointNames(),
		Steps:          result.Steps,
		FramesCaptured: result.FramesCaptured,
	}, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("sim time: %.4fs\n", result.SimTime)
	fmt.Printf("frames: %d\n", result.FramesCaptured)

	return nil
}

func renderSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("out") {
		cfg.OutputDir = outputDir
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	overrides, err := cfg.GetOverrides()
	if err != nil {
		return err
	}
	js := engine.JointState()
	rig.ApplyOverrides(js, overrides, true)
	if err := engine.WriteJointState(js); err != nil {
		return err
	}

	cam, err := camera.New(engine, cfg.Video.Width, cfg.Video.Height)
	if err != nil {
		return err
	}
	img, err := cam.Capture(0)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.OutputDir, "snapshot.png")
	if err := video.SaveSnapshot(img, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	overrides, err := cfg.GetOverrides()
	if err != nil {
		return err
	}

	newEngine := func() (*rig.ArticulationEngine, error) {
		return rig.NewArticulationEngine(physics.NewGimbal(), integrators.ByName(cfg.Integrator),
			physics.JointNames(), cfg.NumEnvs, cfg.GetInitState())
	}

	m, err := tui.NewModel(newEngine, overrides, cfg.Dt)
	if err != nil {
		return err
	}
	return tui.Run(m)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDURATION\tDT\tFPS\tENVS\tSTEPS\tFRAMES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.2fs\t%.4fs\t%.0f\t%d\t%d\t%d\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.FPS,
			run.NumEnvs,
			run.Steps,
			run.FramesCaptured,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, _, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", meta.Steps)

	cols := make([]string, 0, len(series))
	for name := range series {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	for _, name := range cols {
		data := series[name]
		if len(data) < 2 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	series, times, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if len(times) == 0 {
		return fmt.Errorf("no data to export")
	}

	cols := make([]string, 0, len(series))
	for name := range series {
		cols = append(cols, name)
	}
	sort.Strings(cols)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write(append([]string{"time"}, cols...)); err != nil {
		return err
	}
	for i := range times {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, name := range cols {
			row = append(row, strconv.FormatFloat(series[name][i], 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	series, times, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}

	out := struct {
		Meta   *store.RunMetadata   `json:"meta"`
		Times  []float64            `json:"times"`
		Series map[string][]float64 `json:"series"`
	}{meta, times, series}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := store.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, _, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}

	col := fmt.Sprintf("env0_%s_vel", physics.JointNames()[physics.JointYaw])
	data, ok := series[col]
	if !ok || len(data) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", col)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	return nil
}
