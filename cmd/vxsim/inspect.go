package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/vxsim/internal/analysis"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/export"
	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/storage"
	"github.com/san-kum/vxsim/internal/verlet"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tTICKS\tEVERY\tSEED\tFRAMES\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if len(run.Errors) > 0 {
			status = "stopped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Every,
			run.Seed,
			run.Frames,
			status,
		)
	}
	return w.Flush()
}

func parseAxis(s string) (verlet.Axis, error) {
	switch s {
	case "x":
		return verlet.AxisX, nil
	case "y":
		return verlet.AxisY, nil
	case "z":
		return verlet.AxisZ, nil
	}
	return 0, fmt.Errorf("unknown axis: %s", s)
}

// firstPoint is the id used when --point is not given.
func firstPoint(st *storage.Store, runID string) (int, error) {
	if pointID != 0 {
		return pointID, nil
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return 0, err
	}
	if len(frames) == 0 || len(frames[0].Points) == 0 {
		return 0, fmt.Errorf("run %s has no points", runID)
	}
	return frames[0].Points[0].ID, nil
}

func loadTrack(st *storage.Store, runID string, axis verlet.Axis) ([]float64, []uint64, int, error) {
	id, err := firstPoint(st, runID)
	if err != nil {
		return nil, nil, 0, err
	}
	values, ticks, err := st.LoadTrack(runID, id, axis)
	return values, ticks, id, err
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("frames: %d\n\n", meta.Frames)

	axes := []verlet.Axis{verlet.AxisX, verlet.AxisY}
	if meta.Dimensions == 3 {
		axes = append(axes, verlet.AxisZ)
	}
	if cmd.Flags().Changed("axis") {
		a, err := parseAxis(axisName)
		if err != nil {
			return err
		}
		axes = []verlet.Axis{a}
	}

	for _, axis := range axes {
		values, _, id, err := loadTrack(st, runID, axis)
		if err != nil {
			return err
		}
		if len(values) == 0 {
			return fmt.Errorf("no data to plot")
		}
		graph := asciigraph.Plot(values,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("point %d %s vs tick", id, axis)),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	axis, err := parseAxis(axisName)
	if err != nil {
		return err
	}
	values, _, id, err := loadTrack(st, runID, axis)
	if err != nil {
		return err
	}
	if len(values) < 4 {
		return fmt.Errorf("need at least 4 frames, have %d", len(values))
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s  point: %d  axis: %s\n\n", meta.Scene, id, axis)

	// one sample per recorded frame, so the rate is 1/every per tick
	every := max(meta.Every, 1)
	rate := 1 / float64(every)
	freq, power := analysis.DominantFrequency(values, rate)
	ps := analysis.PowerSpectrum(values)

	graph := asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", axis)),
	)
	fmt.Println(graph)
	fmt.Println()
	if freq > 0 {
		fmt.Printf("dominant frequency: %.6f cycles/tick (period %.1f ticks, power %.3f)\n\n", freq, 1/freq, power)
	} else {
		fmt.Print("no oscillation found\n\n")
	}

	fmt.Println("phase portrait (position vs change per frame):")
	fmt.Println(analysis.PhasePortraitToASCII(analysis.NewPhasePortrait(values), 60, 20))

	if againstRun != "" {
		other, _, err := st.LoadTrack(againstRun, id, axis)
		if err != nil {
			return err
		}
		lambda := analysis.LyapunovExponent(values, other, float64(every))
		fmt.Printf("divergence from %s: %.6f per tick\n", againstRun, lambda)
	}
	return nil
}

func bifurcate(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	axis, err := parseAxis(axisName)
	if err != nil {
		return err
	}

	track := func(param float64) ([]float64, error) {
		cfg := base.Clone()
		if err := cfg.World.SetParam(paramName, param); err != nil {
			return nil, err
		}
		exp, err := experiment.New(registry, cfg, logger)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return nil, err
		}
		id := pointID
		if id == 0 && len(result.Frames) > 0 && len(result.Frames[0].Points) > 0 {
			id = result.Frames[0].Points[0].ID
		}
		series := make([]float64, 0, len(result.Frames))
		for i := range result.Frames {
			if p, ok := result.Frames[i].Point(id); ok {
				series = append(series, p.Position[axis])
			}
		}
		return series, nil
	}

	data, err := analysis.BifurcationDiagram(track, paramMin, paramMax, paramSteps, transient)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s from %g to %g\n\n", base.Scene, paramName, paramMin, paramMax)
	fmt.Println(analysis.BifurcationToASCII(data, 80, 20))
	for _, p := range data {
		fmt.Printf("  %s=%-8.4f %d values\n", paramName, p.Param, len(p.Values))
	}
	return nil
}

// output opens the --out file, or stdout when it is empty.
func output() (io.WriteCloser, error) {
	if outPath == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outPath)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if outPath != "" {
		if err := export.ExportJSON(outPath, st, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "exported to %s\n", outPath)
		return nil
	}
	return export.WriteJSON(os.Stdout, st, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var doc string
	if pointID != 0 {
		axis, err := parseAxis(axisName)
		if err != nil {
			return err
		}
		values, ticks, err := st.LoadTrack(runID, pointID, axis)
		if err != nil {
			return err
		}
		doc = export.TrajectoryToSVG(export.Track(ticks, values), width, height, "#00ffff")
		if doc == "" {
			return fmt.Errorf("point %d has fewer than 2 samples", pointID)
		}
	} else {
		frames, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		if len(frames) == 0 {
			return fmt.Errorf("run %s has no frames", runID)
		}
		idx := frameIndex
		if idx < 0 {
			idx += len(frames)
		}
		if idx < 0 || idx >= len(frames) {
			return fmt.Errorf("frame %d out of range (0-%d)", frameIndex, len(frames)-1)
		}
		min, max := runBounds(frames)
		doc, err = export.FrameToSVG(&frames[idx], min, max, width, height, render.DefaultView())
		if err != nil {
			return err
		}
	}

	out, err := output()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(out, doc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// runBounds is the box covering every frame, so that frames exported from
// one run share a scale.
func runBounds(frames []verlet.Frame) (min, max verlet.Vec3) {
	min, max = render.Bounds(&frames[0])
	for i := range frames[1:] {
		lo, hi := render.Bounds(&frames[i+1])
		for a := 0; a < 3; a++ {
			if lo[a] < min[a] {
				min[a] = lo[a]
			}
			if hi[a] > max[a] {
				max[a] = hi[a]
			}
		}
	}
	return min, max
}
