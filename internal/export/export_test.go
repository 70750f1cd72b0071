package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/sim"
	"github.com/san-kum/vxsim/internal/storage"
	"github.com/san-kum/vxsim/internal/verlet"
)

func twoSkinFrame() *verlet.Frame {
	a := verlet.Vec3{0, 0, 0}
	b := verlet.Vec3{10, 0, 0}
	c := verlet.Vec3{10, 10, 0}
	return &verlet.Frame{
		Dimensions: 2,
		Points: []verlet.PointState{
			{ID: 1, Position: a, Mass: 1, Fixed: true},
			{ID: 2, Position: b, Mass: 1, Radius: 2},
			{ID: 3, Position: c, Mass: 1, Color: "#ff8800"},
		},
		Spans: []verlet.SpanState{
			{ID: 1, Point1: 1, Point2: 2, A: a, B: b, RestLength: 10},
			{ID: 2, Point1: 2, Point2: 3, A: b, B: c, RestLength: 10, Hidden: true},
		},
		Skins: []verlet.SkinState{
			{ID: 1, PointID: []int{1, 2, 3}, Outline: []verlet.Vec3{a, b, c}, Style: verlet.DefaultStyle()},
			{ID: 2, PointID: []int{1, 3}, Outline: []verlet.Vec3{a, c}, Style: verlet.Style{Fill: "#fff", Outline: "#0B419E", Thickness: 5}},
		},
	}
}

func TestFrameToSVG(t *testing.T) {
	svg, err := FrameToSVG(twoSkinFrame(), verlet.Vec3{}, verlet.Vec3{}, 200, 100, render.DefaultView())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if n := strings.Count(svg, "<polygon"); n != 2 {
		t.Errorf("expected one polygon per skin, got %d", n)
	}
	if n := strings.Count(svg, "<line"); n != 1 {
		t.Errorf("expected hidden span to be skipped, got %d lines", n)
	}
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("expected 3 circles, got %d", n)
	}
	if !strings.Contains(svg, `stroke="#0B419E"`) || !strings.Contains(svg, svgFixedColor) {
		t.Error("styles not applied")
	}
	if !strings.Contains(svg, `stroke="#ff8800"`) {
		t.Error("point colour not applied")
	}
}

func TestSVGReusable(t *testing.T) {
	s := NewSVG(100, 100)
	f := twoSkinFrame()
	if err := render.Draw(s, f, render.DefaultView()); err != nil {
		t.Fatal(err)
	}
	first := s.String()
	if err := render.Draw(s, f, render.DefaultView()); err != nil {
		t.Fatal(err)
	}
	if s.String() != first {
		t.Error("second draw should replace the first document")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	pts := Track([]uint64{0, 10, 20}, []float64{1, 4, 2})
	if len(pts) != 3 || pts[1].X != 10 || pts[1].Y != 4 {
		t.Fatalf("unexpected track %+v", pts)
	}
	svg := TrajectoryToSVG(pts, 300, 100, "#00ff00")
	if !strings.Contains(svg, "<path") || strings.Count(svg, " L") != 2 {
		t.Errorf("unexpected path: %s", svg)
	}
	if TrajectoryToSVG(pts[:1], 300, 100, "#fff") != "" {
		t.Error("single point should produce no svg")
	}
}

func TestWriteJSON(t *testing.T) {
	st := storage.New(filepath.Join(t.TempDir(), "runs"))
	f := *twoSkinFrame()
	result := &sim.Result{Frames: []verlet.Frame{f}, Metrics: map[string]float64{"strain": 0.1}}
	cfg := config.DefaultConfig()
	runID, err := st.Save(cfg, result)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, st, runID); err != nil {
		t.Fatalf("write json: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if data.Scene != cfg.Scene || data.Metrics["strain"] != 0.1 {
		t.Errorf("unexpected header %+v", data)
	}
	if len(data.Frames) != 1 || len(data.Frames[0].Points) != 3 {
		t.Fatalf("unexpected frames %+v", data.Frames)
	}
	if data.Frames[0].Points[2].Position != [3]float64{10, 10, 0} {
		t.Errorf("point 3 = %v", data.Frames[0].Points[2].Position)
	}
	if len(data.Topology.Spans) != 2 || len(data.Topology.Skins) != 2 {
		t.Errorf("unexpected topology %+v", data.Topology)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, st, runID); err != nil {
		t.Fatalf("export json: %v", err)
	}
}
