package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/san-kum/dimerlab/internal/calc"
	"github.com/san-kum/dimerlab/internal/config"
	"github.com/san-kum/dimerlab/internal/experiment"
	"github.com/san-kum/dimerlab/internal/export"
	"github.com/san-kum/dimerlab/internal/storage"
	"github.com/san-kum/dimerlab/internal/sweep"
	"github.com/san-kum/dimerlab/internal/viz"
)

var (
	dataDir     string
	logLevel    string
	profileMode string
	dumpMetrics bool

	configFile string
	preset     string
	kind       string
	species    string
	cell       float64
	k          float64
	a          float64
	rc         float64
	taperInner float64
	engine     string
	engineArgs []string
	engineRate float64
	workers    int
	start      float64
	stop       float64
	points     int
	distances  []float64
	useCache   bool
	cacheDir   string

	tol       float64
	nominal   float64
	cutPoints int
	detector  string
	window    int

	noSave      bool
	watch       bool
	exploratory bool
	fromR       float64
	toR         float64
	jsonOut    bool
	outputPath string
)

var (
	profiler interface{ Stop() }
	registry = prometheus.NewRegistry()
	metrics  = calc.NewMetrics(registry)
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "dimerlab",
		Short:             "dimer pair potential lab",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dimerlab", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&profileMode, "profile", "", "write a cpu or mem profile into the data directory")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print calculator metrics after the run")

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "evaluate energy and force curves over a separation sweep",
		RunE:  runCurve,
	}
	studyFlags(curveCmd)
	curveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	curveCmd.Flags().BoolVar(&watch, "watch", false, "re-run whenever the config file changes")
	curveCmd.Flags().BoolVar(&exploratory, "exploratory", false, "survey 0.5 to 5.0 in 451 points")

	cutoffCmd := &cobra.Command{
		Use:   "cutoff",
		Short: "estimate the adjusted cutoff of a potential",
		RunE:  runCutoff,
	}
	studyFlags(cutoffCmd)
	cutoffCmd.Flags().Float64Var(&tol, "tol", config.DefaultTolerance, "convergence tolerance")
	cutoffCmd.Flags().Float64Var(&nominal, "nominal", 0, "nominal cutoff (default: the potential's own)")
	cutoffCmd.Flags().IntVar(&cutPoints, "cut-points", config.DefaultCutPoints, "points in [0.5*rc, rc]")
	cutoffCmd.Flags().StringVar(&detector, "detector", "tail_mean", "convergence detector (tail_mean, window)")
	cutoffCmd.Flags().IntVar(&window, "window", 0, "window size for the window detector")
	cutoffCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	elasticCmd := &cobra.Command{
		Use:   "elastic",
		Short: "continuum elastic constants of an ideal brittle solid",
		RunE:  runElastic,
	}
	studyFlags(elasticCmd)
	elasticCmd.Flags().BoolVar(&jsonOut, "json", false, "print as json")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().Float64Var(&fromR, "from", 0, "plot only separations >= from")
	showCmd.Flags().Float64Var(&toR, "to", math.Inf(1), "plot only separations <= to")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run curves to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and curves to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw run curves as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "tune an ideal brittle solid interactively",
		RunE:  runExplore,
	}
	studyFlags(exploreCmd)

	rootCmd.AddCommand(curveCmd, cutoffCmd, elasticCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, exploreCmd)
	return rootCmd
}

func studyFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or hjson)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&kind, "kind", def.Potential.Kind,
		"potential ("+strings.Join(experiment.NewRegistry().ListPotentials(), ", ")+")")
	cmd.Flags().StringVar(&species, "species", def.Species, "chemical species of both atoms")
	cmd.Flags().Float64Var(&cell, "cell", def.Cell, "cubic cell length")
	cmd.Flags().Float64Var(&k, "k", def.Potential.K, "spring constant")
	cmd.Flags().Float64Var(&a, "a", def.Potential.A, "equilibrium spacing")
	cmd.Flags().Float64Var(&rc, "rc", def.Potential.Rc, "cutoff radius")
	cmd.Flags().Float64Var(&taperInner, "taper-inner", def.Potential.TaperInner, "radius where the spline taper starts")
	cmd.Flags().StringVar(&engine, "engine", "", "external engine command (kind exec)")
	cmd.Flags().StringSliceVar(&engineArgs, "engine-arg", nil, "external engine argument, repeatable")
	cmd.Flags().Float64Var(&engineRate, "engine-rate", 0, "max engine launches per second (0 = unlimited)")
	cmd.Flags().IntVar(&workers, "workers", def.Workers, "concurrent evaluations per sweep")
	cmd.Flags().Float64Var(&start, "start", def.Sweep.Start, "first separation")
	cmd.Flags().Float64Var(&stop, "stop", def.Sweep.Stop, "last separation")
	cmd.Flags().IntVar(&points, "points", def.Sweep.Points, "number of separations")
	cmd.Flags().Float64SliceVar(&distances, "distances", nil, "explicit separations, overrides start/stop/points")
	cmd.Flags().BoolVar(&useCache, "cache", false, "memoize calculator results")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "cache directory (default <data>/cache)")
}

func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch profileMode {
	case "":
	case "cpu":
		profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(dataDir), profile.Quiet)
	case "mem":
		profiler = profile.Start(profile.MemProfile, profile.ProfilePath(dataDir), profile.Quiet)
	default:
		return fmt.Errorf("unknown profile mode: %s", profileMode)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) {
	if profiler != nil {
		profiler.Stop()
		profiler = nil
	}
	if dumpMetrics {
		if err := writeMetrics(cmd.ErrOrStderr()); err != nil {
			slog.Error("dump metrics", slog.String("error", err.Error()))
		}
	}
}

func writeMetrics(w io.Writer) error {
	families, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// loadStudy layers defaults, preset, config file and changed flags, in that
// order.
func loadStudy(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("kind") {
		cfg.Potential.Kind = kind
	}
	if flags.Changed("species") {
		cfg.Species = species
	}
	if flags.Changed("cell") {
		cfg.Cell = cell
	}
	if flags.Changed("k") {
		cfg.Potential.K = k
	}
	if flags.Changed("a") {
		cfg.Potential.A = a
	}
	if flags.Changed("rc") {
		cfg.Potential.Rc = rc
	}
	if flags.Changed("taper-inner") {
		cfg.Potential.TaperInner = taperInner
	}
	if flags.Changed("engine") {
		cfg.Potential.Command = engine
		if !flags.Changed("kind") {
			cfg.Potential.Kind = "exec"
		}
	}
	if flags.Changed("engine-arg") {
		cfg.Potential.Args = engineArgs
	}
	if flags.Changed("engine-rate") {
		cfg.Potential.RateLimit = engineRate
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("start") {
		cfg.Sweep.Start = start
	}
	if flags.Changed("stop") {
		cfg.Sweep.Stop = stop
	}
	if flags.Changed("points") {
		cfg.Sweep.Points = points
	}
	if flags.Changed("distances") {
		cfg.Sweep.Distances = distances
	}
	if flags.Lookup("exploratory") != nil && exploratory {
		cfg.Sweep.Distances = sweep.Exploratory().Distances()
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir = cacheDir
	}
	if flags.Lookup("tol") != nil {
		if flags.Changed("tol") {
			cfg.Cutoff.Tolerance = tol
		}
		if flags.Changed("nominal") {
			cfg.Cutoff.Nominal = nominal
		}
		if flags.Changed("cut-points") {
			cfg.Cutoff.Points = cutPoints
		}
		if flags.Changed("detector") {
			cfg.Cutoff.Detector = detector
		}
		if flags.Changed("window") {
			cfg.Cutoff.Window = window
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newExperiment builds the experiment for cmd. The returned cleanup closes
// the cache, if one was opened.
func newExperiment(cmd *cobra.Command) (*experiment.Experiment, func(), error) {
	cfg, err := loadStudy(cmd)
	if err != nil {
		return nil, nil, err
	}

	opts := []experiment.Option{
		experiment.WithLogger(slog.Default()),
		experiment.WithMetrics(metrics),
	}
	cleanup := func() {}
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			dir = filepath.Join(dataDir, "cache")
		}
		db, err := calc.OpenCache(dir)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, experiment.WithCache(db))
		cleanup = func() {
			if err := db.Close(); err != nil {
				slog.Warn("close cache", slog.String("error", err.Error()))
			}
		}
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), opts...)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return exp, cleanup, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runCurve(cmd *cobra.Command, args []string) error {
	if watch && configFile == "" {
		return errWatchNeedsConfig
	}

	ctx, cancel := signalContext()
	defer cancel()

	err := curveOnce(ctx, cmd)
	if !watch {
		return err
	}
	if err != nil {
		slog.Error("curve failed", slog.Any("err", err))
	}
	return watchConfig(ctx, configFile, func() error { return curveOnce(ctx, cmd) })
}

func curveOnce(ctx context.Context, cmd *cobra.Command) error {
	exp, cleanup, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := exp.Curve(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.PlotCurve(res.Energy, viz.DefaultPlotHeight, viz.DefaultPlotWidth))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.PlotCurves([]*sweep.Curve{res.X1, res.X2}, viz.DefaultPlotHeight, viz.DefaultPlotWidth))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.MetricsSummary("curve metrics", res.Metrics))
	reportCache(exp)

	if noSave {
		return nil
	}
	meta := exp.Metadata("curve")
	meta.Metrics = res.Metrics
	return save(out, meta, res.Curves()...)
}

func runCutoff(cmd *cobra.Command, args []string) error {
	exp, cleanup, err := newExperiment(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := signalContext()
	defer cancel()

	res, err := exp.Cutoff(ctx, 0)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.PlotCurve(res.Curve, viz.DefaultPlotHeight, viz.DefaultPlotWidth))
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.CutoffSummary(res))
	reportCache(exp)

	if noSave {
		return nil
	}
	meta := exp.Metadata("cutoff")
	meta.Metrics = map[string]float64{
		"cutoff":          res.Cutoff,
		"index":           float64(res.Index),
		"converged_value": res.Converged,
		"nominal_cutoff":  res.Nominal,
		"tolerance":       res.Tolerance,
	}
	return save(out, meta, res.Curve)
}

func runElastic(cmd *cobra.Command, args []string) error {
	cfg, err := loadStudy(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	c, err := exp.Elastic()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}
	fmt.Fprintln(out, viz.ElasticSummary(c))
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return errors.New("explore needs an interactive terminal")
	}
	cfg, err := loadStudy(cmd)
	if err != nil {
		return err
	}
	p, err := cfg.IBS()
	if err != nil {
		return err
	}
	return viz.RunExplorer(p)
}

func reportCache(exp *experiment.Experiment) {
	if hits, misses := exp.CacheStats(); hits+misses > 0 {
		slog.Info("calculator cache", slog.Int64("hits", hits), slog.Int64("misses", misses))
	}
}

func save(out io.Writer, meta storage.RunMetadata, curves ...*sweep.Curve) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, curves...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMMAND\tPOTENTIAL\tTIME\tPOINTS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			run.ID,
			run.Command,
			run.Potential,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Points,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	curves, err := st.LoadCurves(runID)
	if err != nil {
		return err
	}

	rows := []viz.Row{
		{Label: "run", Value: meta.ID},
		{Label: "command", Value: meta.Command},
		{Label: "potential", Value: meta.Potential},
		{Label: "points", Value: fmt.Sprintf("%d", meta.Points)},
	}
	for _, name := range viz.SortedKeys(meta.Metrics) {
		rows = append(rows, viz.Row{Label: name, Value: fmt.Sprintf("%.6g", meta.Metrics[name])})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, viz.Summary(meta.Name, rows))
	for _, c := range curves {
		if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
			c = c.Slice(fromR, toR)
		}
		fmt.Fprintln(out)
		if c.Len() == 0 {
			fmt.Fprintf(out, "%s: no points in [%g, %g]\n", c.Kind, fromR, toR)
			continue
		}
		fmt.Fprintln(out, viz.PlotCurve(c, viz.DefaultPlotHeight, viz.DefaultPlotWidth))
	}
	fmt.Fprintln(out, viz.Separator(viz.DefaultPlotWidth))
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return writeOutput(cmd, func(w io.Writer) error {
		return storage.New(dataDir).ExportCSV(args[0], w)
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return writeOutput(cmd, func(w io.Writer) error {
		return storage.New(dataDir).ExportJSON(args[0], w)
	})
}

func exportSVG(cmd *cobra.Command, args []string) error {
	curves, err := storage.New(dataDir).LoadCurves(args[0])
	if err != nil {
		return err
	}
	svg, err := export.CurvesToSVG(curves, 800, 400)
	if err != nil {
		return err
	}
	return writeOutput(cmd, func(w io.Writer) error {
		_, err := io.WriteString(w, svg)
		return err
	})
}

func writeOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	if outputPath == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tK\tA\tRC")
	for _, name := range config.ListPresets() {
		p := config.Presets[name].Potential
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\n", name, p.Kind, p.K, p.A, p.Rc)
	}
	return w.Flush()
}
