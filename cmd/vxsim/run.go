package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/vxsim/internal/automation"
	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/metrics"
	"github.com/san-kum/vxsim/internal/optim"
	"github.com/san-kum/vxsim/internal/sim"
	"github.com/san-kum/vxsim/internal/storage"
	"github.com/san-kum/vxsim/internal/viz"
)

func listScenes(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tDIMS\tDESCRIPTION")
	for _, name := range registry.ListScenes() {
		scene, err := registry.GetScene(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%dD\t%s\n", name, scene.World().Dimensions, scene.Description())
	}
	return w.Flush()
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}

	exp, err := experiment.New(registry, cfg, logger)
	if err != nil {
		return err
	}
	exp.Setup(registry.DefaultMetrics(cfg.Scene))

	fmt.Printf("running %s for %d ticks...\n", cfg.Scene, cfg.Ticks)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d  frames: %d\n", result.TicksTaken, len(result.Frames))
	if result.StaleReports > 0 {
		fmt.Printf("stale span reports: %d\n", result.StaleReports)
	}
	for _, e := range result.Errors {
		fmt.Printf("stopped: %v\n", e)
	}
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	return viz.RunLive(registry, cfg, frameRate, logger)
}

func sweepSeeds(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	ens := sim.NewEnsemble(experiment.Factory(registry, cfg, logger), numRuns, seedStart)
	ens.SetLimit(parallel)

	start := time.Now()
	results, err := ens.Run(cmd.Context(), sim.Config{Ticks: cfg.Ticks, Every: cfg.Every})
	if err != nil {
		return err
	}
	fmt.Printf("%d runs of %s in %v\n\n", len(results), cfg.Scene, time.Since(start))

	failed := 0
	for _, r := range results {
		if len(r.Errors) > 0 {
			failed++
		}
	}
	if failed > 0 {
		fmt.Printf("%d runs stopped early\n\n", failed)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, s := range sim.Summarize(results) {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Name, s.Mean, s.StdDev, s.Min, s.Max)
	}
	return w.Flush()
}

func scanParam(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  paramSteps,
	}, registry, logger)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, paramName)
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w, "\tSTALE\tOK")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f", r.ParamValue)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.4f", r.Metrics[name])
		}
		fmt.Fprintf(w, "\t%d\t%v\n", r.Stale, !r.Failed)
	}
	return w.Flush()
}

func runScript(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))

	results, err := automation.RunScenario(cmd.Context(), scenario, registry, st, logger)
	for i, r := range results {
		id := r.RunID
		if id == "" {
			id = "-"
		}
		fmt.Printf("  %d. %-8s ticks=%d frames=%d run=%s\n", i+1, r.Config.Scene, r.Result.TicksTaken, len(r.Result.Frames), id)
	}
	return err
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(ranges) == 0 {
		return fmt.Errorf("at least one --range is required")
	}
	if _, err := metrics.ByName(metricName); err != nil {
		return err
	}
	names := make([]string, 0, len(ranges))
	values := make([][]float64, 0, len(ranges))
	for _, r := range ranges {
		name, vals, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		values = append(values, vals)
	}

	g, err := optim.NewGridSearch(names, values)
	if err != nil {
		return err
	}
	g.SetLogger(logger)

	best, val, err := g.Search(cmd.Context(), optim.ExperimentBuilder(registry, cfg, logger), metricName)
	if err != nil {
		return err
	}
	fmt.Printf("best %s: %.6f\n", metricName, val)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
	}
	return nil
}

func benchScenes(cmd *cobra.Command, args []string) error {
	scenes := registry.ListScenes()
	if len(args) > 0 {
		scenes = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENE\tPOINTS\tSPANS\tTICKS\tTIME\tTICKS/SEC")
	for _, name := range scenes {
		cfg := config.DefaultConfig()
		cfg.Scene = name
		exp, err := experiment.New(registry, cfg, logger)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		start := time.Now()
		n := 0
		for ; n < benchTicks && ctx.Err() == nil; n++ {
			if err := exp.Simulator().Step(); err != nil {
				logger.Debug("bench step", "scene", name, "err", err)
			}
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%v\t%.0f\n",
			name, len(exp.Engine().Points()), len(exp.Engine().Spans()), n, elapsed, float64(n)/elapsed.Seconds())
	}
	return w.Flush()
}
