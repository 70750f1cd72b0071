package render

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/vxsim/internal/verlet"
)

func sampleFrame() *verlet.Frame {
	return &verlet.Frame{
		Tick:       3,
		Dimensions: 2,
		Points: []verlet.PointState{
			{ID: 1, Position: verlet.Vec3{0, 0, 0}, Radius: 1},
			{ID: 2, Position: verlet.Vec3{10, 20, 0}, Radius: 2},
			{ID: 3, Position: verlet.Vec3{5, 5, 0}, Materiality: verlet.Immaterial},
		},
		Spans: []verlet.SpanState{
			{ID: 1, Point1: 1, Point2: 2},
			{ID: 2, Point1: 1, Point2: 3, Hidden: true},
			{ID: 3, Point1: 2, Point2: 9, Stale: true},
		},
		Skins: []verlet.SkinState{
			{ID: 1, PointID: []int{1, 2, 3}},
			{ID: 2, PointID: []int{1, 9}, Stale: true},
		},
	}
}

func TestDrawHonoursView(t *testing.T) {
	tests := []struct {
		name                 string
		view                 View
		skins, spans, points int
	}{
		{"default", DefaultView(), 1, 1, 2},
		{"hidden", View{Points: true, Spans: true, Skins: true, Hidden: true}, 1, 2, 3},
		{"points only", View{Points: true}, 0, 0, 2},
		{"nothing", View{}, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var h Headless
			if err := Draw(&h, sampleFrame(), tt.view); err != nil {
				t.Fatal(err)
			}
			if h.Frames != 1 || h.Tick != 3 {
				t.Errorf("begin not called correctly: %+v", h)
			}
			if h.Skins != tt.skins || h.Spans != tt.spans || h.Points != tt.points {
				t.Errorf("got skins=%d spans=%d points=%d, want %d %d %d",
					h.Skins, h.Spans, h.Points, tt.skins, tt.spans, tt.points)
			}
		})
	}
}

type failingTarget struct{ Headless }

func (failingTarget) End() error { return errors.New("display lost") }

func TestDrawLogged(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var ok Headless
	DrawLogged(&ok, sampleFrame(), DefaultView(), log)
	if ok.Frames != 1 || buf.Len() != 0 {
		t.Errorf("clean draw should log nothing, got %q", buf.String())
	}

	bad := &failingTarget{}
	DrawLogged(bad, sampleFrame(), DefaultView(), log)
	if bad.Frames != 1 {
		t.Error("failing target should still be drawn")
	}
	out := buf.String()
	if !strings.Contains(out, "draw failed") || !strings.Contains(out, "display lost") || !strings.Contains(out, "tick=3") {
		t.Errorf("unexpected log output %q", out)
	}

	DrawLogged(bad, sampleFrame(), DefaultView(), nil)
}

func TestBounds(t *testing.T) {
	min, max := Bounds(sampleFrame())
	if min != (verlet.Vec3{-1, -1, 0}) {
		t.Errorf("min = %v", min)
	}
	if max != (verlet.Vec3{12, 22, 0}) {
		t.Errorf("max = %v", max)
	}

	zmin, zmax := Bounds(&verlet.Frame{})
	if zmin != (verlet.Vec3{}) || zmax != (verlet.Vec3{}) {
		t.Errorf("empty frame bounds = %v %v", zmin, zmax)
	}
}

func TestWorldBoundsPrefersRanges(t *testing.T) {
	cfg := verlet.DefaultConfig(2)
	cfg.Ranges[verlet.AxisX] = verlet.Between(-50, 50)
	min, max := WorldBounds(cfg, sampleFrame())
	if min[0] != -50 || max[0] != 50 {
		t.Errorf("x bounds = %v..%v", min[0], max[0])
	}
	if min[1] != -1 || max[1] != 22 {
		t.Errorf("y bounds should follow points, got %v..%v", min[1], max[1])
	}
}

func TestViewportMap(t *testing.T) {
	v := NewViewport(verlet.Vec3{0, 0, 0}, verlet.Vec3{100, 50, 0}, 200, 200, false)
	// scale 2, centred vertically with 50px padding
	x, y := v.Map(verlet.Vec3{100, 0, 0})
	if x != 200 || y != 50 {
		t.Errorf("Map = %v,%v; want 200,50", x, y)
	}
	if got := v.Scale(3); got != 6 {
		t.Errorf("Scale(3) = %v", got)
	}

	flipped := NewViewport(verlet.Vec3{0, 0, 0}, verlet.Vec3{100, 50, 0}, 200, 200, true)
	_, y = flipped.Map(verlet.Vec3{0, 0, 0})
	if y != 150 {
		t.Errorf("flipped origin y = %v, want 150", y)
	}
}

func TestViewportDegenerateBox(t *testing.T) {
	v := NewViewport(verlet.Vec3{5, 5, 0}, verlet.Vec3{5, 5, 0}, 10, 10, false)
	x, y := v.Map(verlet.Vec3{5, 5, 0})
	if math.IsNaN(x) || math.IsNaN(y) {
		t.Errorf("degenerate box produced NaN")
	}
}
