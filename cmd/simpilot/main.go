package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/simpilot/simpilot/internal/analysis"
	"github.com/simpilot/simpilot/internal/catalog"
	"github.com/simpilot/simpilot/internal/config"
	"github.com/simpilot/simpilot/internal/export"
	"github.com/simpilot/simpilot/internal/fsutil"
	"github.com/simpilot/simpilot/internal/logging"
	"github.com/simpilot/simpilot/internal/mcp"
	"github.com/simpilot/simpilot/internal/metrics"
	"github.com/simpilot/simpilot/internal/progress"
	"github.com/simpilot/simpilot/internal/results"
	"github.com/simpilot/simpilot/internal/sim"
	"github.com/simpilot/simpilot/internal/universe"
	"github.com/simpilot/simpilot/internal/viz"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var (
	settingsPath string
	batchMode    bool
	showProgress bool
	useCatalog   bool
	logLevel     string
	// plot dimensions
	plotWidth  int
	plotHeight int
	// starter variant for init
	variant string
	// export format
	format string
)

// maxPlots caps how many fields plot renders when none are named.
const maxPlots = 6

// main is the entry point for the simpilot CLI; it registers commands and flags and executes the root command.
// It exits the process with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "simpilot",
		Short: "simulation run lifecycle manager",
	}

	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", config.DefaultPath(), "tool settings file")

	runCmd := &cobra.Command{
		Use:   "run [-b] <input> [output]",
		Short: "load, build and launch simulations",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runSimulations,
	}
	runCmd.Flags().BoolVarP(&batchMode, "batch", "b", false, "treat input as a directory of .conf files")
	runCmd.Flags().BoolVar(&showProgress, "progress", true, "paint a progress line per run")
	runCmd.Flags().BoolVar(&useCatalog, "catalog", true, "record finished runs in the output catalog")
	runCmd.Flags().StringVar(&logLevel, "level", config.DefaultLogLevel, "run log level")

	listCmd := &cobra.Command{
		Use:   "list [output]",
		Short: "list recorded runs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show <run-dir>",
		Short: "show one run directory",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot <run-dir> [field...]",
		Short: "plot result series from a run directory",
		Args:  cobra.MinimumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze <run-dir> [field]",
		Short: "frequency analysis of a result series",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export <run-dir> [field...]",
		Short: "export result records as CSV or SVG",
		Args:  cobra.MinimumNArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "csv", "output format (csv, svg)")
	exportCmd.Flags().IntVar(&plotWidth, "width", 800, "svg width")
	exportCmd.Flags().IntVar(&plotHeight, "height", 400, "svg height")

	watchCmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "live view of a run directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(args)
			if err != nil {
				return err
			}
			return viz.RunWatch(dir)
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [model] [file]",
		Short: "write a starter config",
		Args:  cobra.MaximumNArgs(2),
		RunE:  initConf,
	}
	initCmd.Flags().StringVar(&variant, "variant", "default", "starter variant")

	mcpCmd := &cobra.Command{
		Use:   "mcp [output]",
		Short: "serve recorded runs over the Model Context Protocol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(args)
			if err != nil {
				return err
			}
			srv, err := mcp.NewServer(&mcp.Config{Name: "simpilot", Version: version, Root: dir})
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("simpilot version %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, analyzeCmd, exportCmd, watchCmd, initCmd, mcpCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveDir returns the explicit directory argument, or the configured
// output directory when none is given.
func resolveDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	settings, err := config.Resolve(settingsPath)
	if err != nil {
		return "", err
	}
	return settings.OutputDir, nil
}

func runSimulations(cmd *cobra.Command, args []string) error {
	settings, err := config.Resolve(settingsPath)
	if err != nil {
		return err
	}
	// Explicit flags win over the settings file.
	if !cmd.Flags().Changed("progress") {
		showProgress = settings.Progress
	}
	if !cmd.Flags().Changed("catalog") {
		useCatalog = settings.Catalog
	}
	if !cmd.Flags().Changed("level") {
		logLevel = settings.LogLevel
	}

	input := args[0]
	output := settings.OutputDir
	if len(args) > 1 {
		output = args[1]
	}

	var sources []sim.Source[*universe.Spec]
	if batchMode {
		sources, err = sim.CollectSources[*universe.Spec](input)
		if err != nil {
			return err
		}
		if len(sources) == 0 {
			return fmt.Errorf("no %s files in %s", sim.ConfExt, input)
		}
	} else {
		src, err := sim.LoadSource[*universe.Spec](input)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	if err := fsutil.CreateDirectory(output); err != nil {
		return err
	}
	logger, logFile, err := logging.Open(output, logLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	sims, err := sim.BuildAll(sources, output)
	if err != nil {
		logger.Error("setup failed", "error", sim.FlattenError(err))
		return err
	}

	var cat *catalog.Catalog
	if useCatalog {
		if cat, err = catalog.Open(output); err != nil {
			logger.Warn("run catalog unavailable", "error", err.Error())
			cat = nil
		} else {
			defer cat.Close()
		}
	}

	for i, s := range sims {
		fmt.Printf("running %s (%s, t=%g..%g)\n", s.Name, s.Scheme.Name, s.InitialTime, s.FinalTime)

		var progressTo io.Writer
		if showProgress {
			progressTo = os.Stdout
		}
		rep := progress.New(progressTo, s.Name, s.InitialTime, s.FinalTime)
		s.Observe(rep.Observe)

		started := time.Now()
		outcome, err := s.Launch(logger, s.InitialTime, s.FinalTime, sources[i].Config.Universe.InitialState())
		if err != nil {
			// A run that could not start aborts the rest of the batch.
			for _, rest := range sims[i+1:] {
				rest.Discard()
			}
			logger.Error("aborting batch", "error", sim.FlattenError(err))
			return err
		}
		elapsed := time.Since(started)
		rep.Done(outcome.FinalTime)

		if cat != nil {
			rec := catalog.Run{
				Dir:         s.RunDir,
				Name:        s.Name,
				Scheme:      s.Scheme.Name,
				InitialTime: s.InitialTime,
				FinalTime:   s.FinalTime,
				Status:      string(outcome.Status),
				TimeReached: outcome.FinalTime,
				Steps:       outcome.Stats.Steps,
				Accepted:    outcome.Stats.Accepted,
				Rejected:    outcome.Stats.Rejected,
				Evals:       outcome.Stats.Evals,
				Error:       outcome.Message,
				StartedAt:   started,
				FinishedAt:  time.Now(),
			}
			if _, err := cat.Record(cmd.Context(), rec); err != nil {
				logger.Warn("recording run in catalog", "name", s.Name, "error", err.Error())
			}
		}

		fmt.Printf("  %s: %s at t=%g, %s (%v)\n",
			s.RunDir, outcome.Status, outcome.FinalTime, outcome.Stats, elapsed)
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, catalog.FileName)); err != nil {
		fmt.Println("no runs recorded")
		return nil
	}

	cat, err := catalog.Open(dir)
	if err != nil {
		return err
	}
	defer cat.Close()

	runs, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIR\tNAME\tSCHEME\tSTATUS\tREACHED\tSTEPS\tFINISHED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g/%g\t%d\t%s\n",
			r.Dir,
			r.Name,
			r.Scheme,
			r.Status,
			r.TimeReached,
			r.FinalTime,
			r.Steps,
			r.FinishedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	dir := filepath.Clean(args[0])

	info, err := results.Conf(dir)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", dir)
	fmt.Printf("name: %s\n", info.Name)
	fmt.Printf("scheme: %s\n", info.Scheme)
	fmt.Printf("span: t=%g..%g\n", info.InitialTime, info.FinalTime)

	if path, err := results.File(dir); err == nil {
		if n, err := results.Count(path); err == nil {
			fmt.Printf("records: %d\n", n)
		}
		if fields, err := results.Fields(path); err == nil {
			fmt.Printf("fields: %s\n", strings.Join(fields, ", "))
		}
		if energy, err := results.Series(path, "energy"); err == nil {
			fmt.Printf("energy drift: %.3e\n", metrics.Drift(energy))
		}
		if last, err := results.Last(path); err == nil {
			fmt.Printf("last: %s\n", last)
		}
	}

	// The catalog row is supplementary; a run directory is readable
	// without one.
	root := filepath.Dir(dir)
	if _, err := os.Stat(filepath.Join(root, catalog.FileName)); err != nil {
		return nil
	}
	cat, err := catalog.Open(root)
	if err != nil {
		return nil
	}
	defer cat.Close()

	rec, err := cat.ByDir(cmd.Context(), dir)
	if err != nil {
		return nil
	}
	fmt.Printf("status: %s\n", rec.Status)
	fmt.Printf("stats: %d steps, %d evaluations\n", rec.Steps, rec.Evals)
	if rec.Error != "" {
		fmt.Printf("error: %s\n", rec.Error)
	}
	fmt.Printf("finished: %s\n", rec.FinishedAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	dir := args[0]

	info, err := results.Conf(dir)
	if err != nil {
		return err
	}
	path, err := results.File(dir)
	if err != nil {
		return err
	}

	fields := args[1:]
	if len(fields) == 0 {
		all, err := results.Fields(path)
		if err != nil {
			return err
		}
		for _, f := range all {
			if f == "t" {
				continue
			}
			fields = append(fields, f)
		}
		if len(fields) > maxPlots {
			fields = fields[:maxPlots]
		}
	}

	fmt.Printf("run: %s (%s, t=%g..%g)\n\n", info.Name, info.Scheme, info.InitialTime, info.FinalTime)

	for _, field := range fields {
		series, err := results.Series(path, field)
		if err != nil {
			return err
		}
		graph, err := viz.Plot(series, fmt.Sprintf("%s vs t", field), plotWidth, plotHeight)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	dir := args[0]

	info, err := results.Conf(dir)
	if err != nil {
		return err
	}
	path, err := results.File(dir)
	if err != nil {
		return err
	}

	field := "y.0"
	if len(args) > 1 {
		field = args[1]
	}

	series, err := results.Series(path, field)
	if err != nil {
		return err
	}
	times, err := results.Series(path, "t")
	if err != nil {
		return err
	}
	if len(series) < 2 {
		return fmt.Errorf("not enough records to analyze")
	}
	dt := (times[len(times)-1] - times[0]) / float64(len(times)-1)
	if dt <= 0 {
		return fmt.Errorf("records carry no time span")
	}

	fmt.Printf("frequency analysis: %s (%s)\n", info.Name, field)
	fmt.Printf("records: %d\n\n", len(series))

	ps := analysis.PowerSpectrum(series)
	// Plot only the low-frequency quarter of the spectrum.
	plotData := ps
	if len(ps) >= 8 {
		plotData = ps[:len(ps)/4]
	}
	graph, err := viz.Plot(plotData, fmt.Sprintf("power spectrum (%s)", field), 80, 15)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	fmt.Println()

	lo, hi := metrics.Span(series)
	fmt.Printf("range: %g .. %g (mean %g)\n", lo, hi, metrics.Mean(series))

	freq, period := analysis.Dominant(ps, dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if period > 0 {
		fmt.Printf("period: %.3f s\n", period)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	dir := args[0]

	path, err := results.File(dir)
	if err != nil {
		return err
	}

	fields := args[1:]
	if len(fields) == 0 && format == "csv" {
		fields, err = results.Fields(path)
		if err != nil {
			return err
		}
	}

	switch format {
	case "csv":
		columns, err := results.Table(path, fields...)
		if err != nil {
			return err
		}
		return export.CSV(os.Stdout, fields, columns)
	case "svg":
		if len(fields) != 2 {
			return fmt.Errorf("svg export needs exactly two fields (x y), got %d", len(fields))
		}
		columns, err := results.Table(path, fields...)
		if err != nil {
			return err
		}
		return export.SVG(os.Stdout, columns[0], columns[1], plotWidth, plotHeight)
	default:
		return fmt.Errorf("unknown format: %s (csv, svg)", format)
	}
}

func initConf(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("available starters:")
		for _, m := range config.StarterModels() {
			fmt.Printf("  %-10s %s\n", m, strings.Join(config.ListStarters(m), ", "))
		}
		return nil
	}

	model := args[0]
	cfg := config.GetStarter(model, variant)
	if cfg == nil {
		if variants := config.ListStarters(model); len(variants) > 0 {
			return fmt.Errorf("unknown variant: %s (available: %v)", variant, variants)
		}
		return fmt.Errorf("unknown model: %s (available: %v)", model, config.StarterModels())
	}

	path := model + sim.ConfExt
	if len(args) > 1 {
		path = args[1]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := fsutil.WriteJSON(cfg, path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
