package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/automation"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/observability"
	"github.com/san-kum/gravsim/internal/optim"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile  string
	themeName   string
	outFile     string
	trajectory  bool
	spawnCount  int
	spawnArea   float64
	chartWidth  int
	chartHeight int
	series      []string
	body        int
	center      int
	benchSteps  int
	tuneDts     []float64
	softenings  []float64
	metricName  string
	tolerance   float64

	cfg    *config.Config
	logger *zap.Logger
	styles viz.Styles
)

// flagKeys maps command line flags to configuration keys; a flag set on
// the command line wins over the config file and the environment.
var flagKeys = map[string]string{
	"data":         "data_dir",
	"log-level":    "logger.level",
	"dt":           "dt",
	"time":         "duration",
	"integrator":   "integrator",
	"seed":         "seed",
	"sample-every": "sample_every",
	"validate":     "validate_state",
	"workers":      "workers",
}

func main() {
	rootCmd := &cobra.Command{
		Use:               "gravsim",
		Short:             "2-D n-body gravity simulator",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().String("data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", viz.ThemeDeepSpace.Name, "report theme")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a preset and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&trajectory, "trajectory", false, "record particle positions")
	runCmd.Flags().IntVar(&spawnCount, "spawn", 0, "random particles to add before running")
	runCmd.Flags().Float64Var(&spawnArea, "spawn-area", 10, "half-width of the random spawn square")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&chartWidth, "width", viz.DefaultChartWidth, "chart width")
	plotCmd.Flags().IntVar(&chartHeight, "height", viz.DefaultChartHeight, "chart height")
	plotCmd.Flags().StringSliceVar(&series, "series", []string{"kinetic", "potential", "angular"}, "series to plot besides the energy error")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run diagnostics as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [preset] [dt...]",
		Short: "compare conservation across time steps",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareTimeSteps,
	}
	addRunFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	diagnoseCmd := &cobra.Command{
		Use:   "diagnose [preset]",
		Short: "diagnostics of a preset's initial state",
		Args:  cobra.MaximumNArgs(1),
		RunE:  diagnosePreset,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "benchmark step throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchPreset,
	}
	benchCmd.Flags().IntVar(&benchSteps, "steps", 10000, "steps per measurement")
	benchCmd.Flags().IntVar(&spawnCount, "spawn", 0, "random particles to add")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital period",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&body, "body", 1, "orbiting particle index")
	analyzeCmd.Flags().IntVar(&center, "center", 0, "central particle index")

	tuneCmd := &cobra.Command{
		Use:   "tune [preset]",
		Short: "grid search time step and softening",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tunePreset,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneDts, "dts", nil, "time steps to try (required)")
	tuneCmd.Flags().Float64SliceVar(&softenings, "softening", nil, "softening lengths to try")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy_drift", "metric to minimize")
	tuneCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3, "acceptable metric value")
	_ = tuneCmd.MarkFlagRequired("dts")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, exportCSVCmd,
		presetsCmd, compareCmd, scenarioCmd, diagnoseCmd, benchCmd, analyzeCmd, tuneCmd)

	err := rootCmd.Execute()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("dt", 0, "time step (0 keeps the preset's)")
	cmd.Flags().Float64("time", 0, "simulated duration (0 keeps the preset's)")
	cmd.Flags().String("integrator", config.DefaultIntegrator, "integrator")
	cmd.Flags().Int64("seed", 0, "random seed")
	cmd.Flags().Int("sample-every", config.DefaultSampleEvery, "ticks between diagnostics samples")
	cmd.Flags().Bool("validate", true, "stop when the state becomes non-finite")
	cmd.Flags().Int("workers", config.DefaultWorkers, "parallel runs")
}

// setup loads the configuration, initializes logging and styles.
func setup(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err = config.FromViper(v)
	if err != nil {
		return err
	}

	observability.InitializeLogger(cfg.Logger)
	logger = observability.GetLogger().With(zap.String("command", cmd.Name()))
	styles = viz.NewStyles(viz.GetTheme(themeName))
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

func presetArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Preset
}

func experimentConfig(preset string) experiment.Config {
	return experiment.Config{
		Preset:        preset,
		Integrator:    cfg.Integrator,
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		SampleEvery:   cfg.SampleEvery,
		Seed:          cfg.Seed,
		ValidateState: cfg.Validate,
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	preset := presetArg(args)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ecfg := experimentConfig(preset)
	ecfg.Trajectory = trajectory
	ecfg.RandomSpawns = spawnCount
	ecfg.SpawnArea = spawnArea

	exp := experiment.New(ecfg, experiment.NewRegistry(), logger)
	if err := exp.Setup(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("run started",
		zap.String("preset", preset),
		zap.Float64("dt", exp.Simulation().Dt()),
		zap.Float64("duration", exp.Duration()),
		zap.Int("particles", exp.Simulation().Len()),
	)
	start := time.Now()

	result, runErr := exp.Run(ctx)
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Preset:     preset,
		Params:     exp.Simulation().Params(),
		Duration:   exp.Duration(),
		Seed:       cfg.Seed,
		Integrator: exp.Simulation().IntegratorName(),
		Labels:     exp.Labels(),
	}, result)
	if err != nil {
		return err
	}
	logger.Info("run stored", zap.String("id", runID), zap.Duration("elapsed", elapsed))

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	fmt.Println(viz.RunSummary(styles, meta))
	fmt.Println(viz.Diagnostics(styles, result.Final()))
	fmt.Println(viz.Sparkline(viz.Values(result.Samples, viz.TotalSeries), viz.DefaultChartWidth))

	return runErr
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tDURATION\tDT\tBODIES\tSTEPS\tDRIFT")

	for _, run := range runs {
		drift := fmt.Sprintf("%.2e", run.EnergyDrift)
		if run.Diverged {
			drift = "diverged"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\t%d\t%d\t%s\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Params.Dt,
			run.Particles,
			run.StepsTaken,
			drift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.RunSummary(styles, meta))
	fmt.Println()
	fmt.Println(viz.EnergyChart(samples, chartWidth, chartHeight))
	fmt.Println()

	for _, name := range series {
		fn, ok := viz.SeriesByName[name]
		if !ok {
			return fmt.Errorf("unknown series %q", name)
		}
		fmt.Println(viz.Chart(viz.Values(samples, fn), name, chartWidth, chartHeight))
		fmt.Println()
	}
	return nil
}

// output returns stdout or the --output file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	if err := st.ExportJSON(w, args[0]); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportCSV(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	if err := st.ExportCSV(w, args[0]); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func listPresets(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBODIES\tDT\tDURATION\tCOLLISIONS\tDESCRIPTION")
	for _, name := range registry.ListPresets() {
		p, err := registry.GetPreset(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%t\t%s\n",
			p.Name, len(p.Bodies), p.Params.Dt, p.Duration, p.Params.Collisions, p.Description)
	}
	return w.Flush()
}

func compareTimeSteps(cmd *cobra.Command, args []string) error {
	preset := args[0]
	dts := make([]float64, 0, len(args)-1)
	for _, a := range args[1:] {
		dt, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid dt %q: %w", a, err)
		}
		dts = append(dts, dt)
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	results, err := experiment.Sweep(ctx, experiment.NewRegistry(), experimentConfig(preset), dts, cfg.Workers, logger)
	if err != nil {
		return err
	}
	logger.Info("sweep finished", zap.Int("runs", len(results)), zap.Duration("elapsed", time.Since(start)))

	fmt.Println(styles.Title.Render("time step comparison: " + preset))
	fmt.Print(viz.SweepTable(styles, results))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, runErr := automation.RunScenario(ctx, scenario, experiment.NewRegistry(), logger)

	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tNAME\tPRESET\tSTEPS\tTIME\tDRIFT\tRUN ID")
	for _, r := range results {
		runID, err := st.Save(storage.RunInfo{
			Preset:     r.Setup,
			Params:     r.Params,
			Duration:   r.Result.Final().Time,
			Seed:       scenario.Seed,
			Integrator: config.DefaultIntegrator,
			Labels:     r.Labels,
		}, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%g\t%.2e\t%s\n",
			r.Step, r.Name, r.Setup, r.Result.StepsTaken, r.Result.Final().Time, r.Result.EnergyDrift, runID)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return runErr
}

func diagnosePreset(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	p, err := registry.GetPreset(presetArg(args))
	if err != nil {
		return err
	}
	setup, err := p.Setup()
	if err != nil {
		return err
	}
	s, err := sim.New(setup, sim.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Println(styles.Title.Render(p.Title))
	if p.Description != "" {
		fmt.Println(styles.Muted.Render(p.Description))
	}
	fmt.Println(viz.Diagnostics(styles, metrics.Measure(s.Frame())))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLABEL\tMASS\tRADIUS\tX\tY\tVX\tVY")
	for _, pt := range s.Particles() {
		vel := pt.Velocity(s.Dt())
		fmt.Fprintf(w, "%d\t%s\t%g\t%g\t%g\t%g\t%g\t%g\n",
			pt.ID, pt.Label, pt.Mass, pt.Radius, pt.Position.X, pt.Position.Y, vel.X, vel.Y)
	}
	return w.Flush()
}

func benchPreset(cmd *cobra.Command, args []string) error {
	preset := presetArg(args)
	registry := experiment.NewRegistry()

	fmt.Printf("benchmarking %s\n\n", preset)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tBODIES\tSTEPS\tTIME\tSTEPS/SEC")

	for _, scale := range []float64{0.5, 1, 2} {
		exp := experiment.New(experiment.Config{
			Preset:       preset,
			Seed:         42,
			RandomSpawns: spawnCount,
			SpawnArea:    10,
		}, registry, nil)
		if err := exp.Setup(); err != nil {
			return err
		}
		s := exp.Simulation()
		if err := s.ChangeSpeed(s.DefaultDt() * scale); err != nil {
			return err
		}

		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			s.Step()
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%g\t%d\t%d\t%v\t%.0f\n",
			s.Dt(), s.Len(), benchSteps, elapsed, float64(benchSteps)/elapsed.Seconds())
	}

	return w.Flush()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj) == 0 {
		return fmt.Errorf("run %s has no trajectory, rerun with --trajectory", meta.ID)
	}

	fmt.Printf("orbit analysis: %s\n", meta.ID)
	fmt.Printf("preset: %s\n\n", meta.Preset)

	xs := make([]float64, 0, len(traj))
	for _, snap := range traj {
		if body < len(snap.Positions) && center < len(snap.Positions) {
			xs = append(xs, snap.Positions[body].X-snap.Positions[center].X)
		}
	}
	if len(xs) > 0 {
		fmt.Println(viz.Chart(xs, fmt.Sprintf("x%d - x%d", body, center), viz.DefaultChartWidth, viz.DefaultChartHeight))
		fmt.Println()
	}

	period, err := analysis.OrbitPeriod(traj, body, center)
	if errors.Is(err, analysis.ErrNoPeriod) {
		fmt.Println("no dominant period found")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("dominant period: %.6g s\n", period)
	fmt.Printf("frequency: %.6g hz\n", 1/period)
	return nil
}

func tunePreset(cmd *cobra.Command, args []string) error {
	preset := presetArg(args)
	grid, err := optim.DtSoftening(tuneDts, softenings)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		ecfg := experimentConfig(preset)
		ecfg.Dt = params["dt"]
		ecfg.Softening = params["softening"]
		exp := experiment.New(ecfg, registry, logger)
		return exp, exp.Setup()
	}

	ctx, cancel := signalContext()
	defer cancel()

	res, err := grid.Search(ctx, build, metricName)
	if err != nil && !errors.Is(err, optim.ErrNoCandidate) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "DT\tSOFTENING\t%s\n", metricName)
	for _, t := range res.Trials {
		value := fmt.Sprintf("%.3e", t.Value)
		if t.Err != nil {
			value = t.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%g\t%s\n", t.Params["dt"], t.Params["softening"], value)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if res.Best == nil {
		return optim.ErrNoCandidate
	}

	fmt.Println()
	fmt.Println(styles.Good.Render(fmt.Sprintf("best: dt=%g softening=%g %s=%.3e",
		res.Best["dt"], res.Best["softening"], metricName, res.Value)))
	if ok := res.Within(tolerance); len(ok) > 0 {
		fmt.Println(styles.Value.Render(fmt.Sprintf("largest dt within %g: %g", tolerance, ok[0].Params["dt"])))
	}
	return nil
}
