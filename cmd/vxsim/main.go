package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/gui"
	"github.com/san-kum/vxsim/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// run settings
	ticks      int
	every      int
	seed       int64
	configFile string
	preset     string

	// world overrides
	gravity     float64
	breeze      float64
	rigidity    int
	friction    float64
	bounceLoss  float64
	skidLoss    float64
	collide     bool
	orientation string

	// viewers
	withAudio bool

	// inspection
	pointID    int
	axisName   string
	againstRun string
	frameIndex int
	outPath    string
	width      int
	height     int

	// batch
	numRuns    int
	seedStart  int64
	parallel   int
	paramName  string
	paramMin   float64
	paramMax   float64
	paramSteps int
	transient  int
	ranges     []string
	metricName string

	frameRate  int
	benchTicks int
)

var (
	registry = experiment.NewRegistry()
	logger   = slog.New(slog.DiscardHandler)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vxsim",
		Short: "verlet particle simulation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to interactive GUI mode when no command given
			return gui.RunInteractive(registry, config.DefaultConfig(), logger, gui.Options{Audio: withAudio})
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vxsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&withAudio, "audio", false, "play a pad that follows kinetic energy")

	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "list available scenes",
		RunE:  listScenes,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scene]",
		Short: "list available presets for a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scene: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run a scene and save the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runScene,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a point's coordinates over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	addTrackFlags(plotCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and phase analysis of a point",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	addTrackFlags(analyzeCmd)
	analyzeCmd.Flags().StringVar(&againstRun, "against", "", "second run for a divergence estimate")

	bifurcateCmd := &cobra.Command{
		Use:   "bifurcate [scene]",
		Short: "turning values of a point across a world setting",
		Args:  cobra.ExactArgs(1),
		RunE:  bifurcate,
	}
	addRunFlags(bifurcateCmd)
	addTrackFlags(bifurcateCmd)
	addParamFlags(bifurcateCmd)
	bifurcateCmd.Flags().IntVar(&transient, "transient", 100, "recorded samples to discard")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a frame or a point trajectory to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&frameIndex, "frame", -1, "recorded frame index, negative counts from the end")
	exportSVGCmd.Flags().IntVar(&width, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&height, "height", 600, "image height")
	exportSVGCmd.Flags().IntVar(&pointID, "point", 0, "draw this point's trajectory instead of a frame")
	exportSVGCmd.Flags().StringVar(&axisName, "axis", "y", "trajectory axis (x, y, z)")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run a scene with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "frame rate")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "terminal scene picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(registry, logger)
		},
	}

	guiCmd := &cobra.Command{
		Use:   "gui [scene]",
		Short: "run a scene in a window",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scene := "ragdoll"
			if len(args) > 0 {
				scene = args[0]
			}
			cfg, err := buildConfig(cmd, scene)
			if err != nil {
				return err
			}
			opts := gui.Options{Audio: withAudio}
			if len(args) == 0 {
				return gui.RunInteractive(registry, cfg, logger, opts)
			}
			return gui.Run(registry, cfg, logger, opts)
		},
	}
	addRunFlags(guiCmd)
	guiCmd.Flags().BoolVar(&withAudio, "audio", false, "play a pad that follows kinetic energy")

	sweepCmd := &cobra.Command{
		Use:   "sweep [scene]",
		Short: "run a scene over many seeds in parallel",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepSeeds,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	sweepCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "first seed")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "maximum concurrent runs (0 = unlimited)")

	scanCmd := &cobra.Command{
		Use:   "scan [scene]",
		Short: "run a scene across values of one world setting",
		Args:  cobra.ExactArgs(1),
		RunE:  scanParam,
	}
	addRunFlags(scanCmd)
	addParamFlags(scanCmd)

	scriptCmd := &cobra.Command{
		Use:   "script [file]",
		Short: "run a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScript,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune [scene]",
		Short: "grid search world settings for the lowest metric",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneScene,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringArrayVar(&ranges, "range", nil, "name=min:max:steps or name=v1,v2 (repeatable)")
	tuneCmd.Flags().StringVar(&metricName, "metric", "energy", "metric to minimise")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "measure ticks per second",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScenes,
	}
	benchCmd.Flags().IntVar(&benchTicks, "ticks", 2000, "ticks per scene")

	rootCmd.AddCommand(scenesCmd, presetsCmd, runCmd, listCmd, plotCmd, analyzeCmd, bifurcateCmd,
		exportJSONCmd, exportSVGCmd, liveCmd, tuiCmd, guiCmd, sweepCmd, scanCmd, scriptCmd, tuneCmd, benchCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func setupLogger() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&ticks, "ticks", config.DefaultTicks, "ticks to simulate")
	f.IntVar(&every, "every", config.DefaultEvery, "record one frame per this many ticks")
	f.Int64Var(&seed, "seed", config.DefaultSeed, "random seed")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")

	f.Float64Var(&gravity, "gravity", 0, "gravity per tick")
	f.Float64Var(&breeze, "breeze", 0, "breeze strength")
	f.IntVar(&rigidity, "rigidity", 0, "constraint passes per tick")
	f.Float64Var(&friction, "friction", 0, "velocity kept per tick")
	f.Float64Var(&bounceLoss, "bounce-loss", 0, "velocity kept on a bounce")
	f.Float64Var(&skidLoss, "skid-loss", 0, "horizontal velocity kept on the floor")
	f.BoolVar(&collide, "collide", false, "points collide with each other")
	f.StringVar(&orientation, "orientation", "", "screen or world")
}

func addTrackFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&pointID, "point", 0, "point id (default: first point)")
	cmd.Flags().StringVar(&axisName, "axis", "y", "axis (x, y, z)")
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&paramName, "param", "gravity", "world setting: "+strings.Join(config.WorldParams, ", "))
	cmd.Flags().Float64Var(&paramMin, "min", 0, "first value")
	cmd.Flags().Float64Var(&paramMax, "max", 1, "last value")
	cmd.Flags().IntVar(&paramSteps, "steps", 5, "number of values")
}

// buildConfig layers the defaults, a preset, a config file and finally any
// flags that were set explicitly.
func buildConfig(cmd *cobra.Command, scene string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Scene = scene

	if preset != "" {
		p := config.GetPreset(scene, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scene))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if loaded.Scene != scene {
			return nil, fmt.Errorf("config is for scene %s, not %s", loaded.Scene, scene)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("every") {
		cfg.Every = every
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	w := &cfg.World
	if flags.Changed("gravity") {
		w.Gravity = config.Float(gravity)
	}
	if flags.Changed("breeze") {
		w.Breeze = config.Float(breeze)
	}
	if flags.Changed("rigidity") {
		w.Rigidity = config.Int(rigidity)
	}
	if flags.Changed("friction") {
		w.Friction = config.Float(friction)
	}
	if flags.Changed("bounce-loss") {
		w.BounceLoss = config.Float(bounceLoss)
	}
	if flags.Changed("skid-loss") {
		w.SkidLoss = config.Float(skidLoss)
	}
	if flags.Changed("collide") {
		w.PointsCollide = config.Bool(collide)
	}
	if flags.Changed("orientation") {
		w.Orientation = orientation
	}
	return cfg, cfg.Validate()
}
