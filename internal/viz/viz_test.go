package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/verlet"
)

func TestCanvasSetAndUnset(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(3, 5)
	if !c.Lit(3, 5) {
		t.Fatal("expected dot to be lit")
	}
	if c.Grid[1][1] == brailleBlank {
		t.Error("expected cell (1,1) to change")
	}
	c.Unset(3, 5)
	if c.Lit(3, 5) {
		t.Error("expected dot to be cleared")
	}
	c.Set(-1, 0)
	c.Set(100, 100)
	if c.Lit(100, 100) {
		t.Error("off-canvas dots must be ignored")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawLine(0, 3, 9, 3)
	for x := 0; x <= 9; x++ {
		if !c.Lit(x, 3) {
			t.Errorf("dot (%d,3) not lit", x)
		}
	}
	c.Clear()
	if c.Lit(0, 3) {
		t.Error("expected clear canvas")
	}
}

func TestCanvasDrawsFrame(t *testing.T) {
	c := NewCanvas(10, 10)
	c.Min = verlet.Vec3{0, 0, 0}
	c.Max = verlet.Vec3{20, 20, 0}

	f := &verlet.Frame{
		Dimensions: 2,
		Points:     []verlet.PointState{{ID: 1, Position: verlet.Vec3{5, 5, 0}}},
		Spans:      []verlet.SpanState{{ID: 1, A: verlet.Vec3{0, 0, 0}, B: verlet.Vec3{10, 0, 0}}},
	}
	if err := render.Draw(c, f, render.DefaultView()); err != nil {
		t.Fatal(err)
	}
	// 20x40 dots with a 20x20 world: unit scale, 10 dots of vertical margin.
	if !c.Lit(5, 15) {
		t.Error("expected point at (5,15)")
	}
	for x := 0; x <= 10; x++ {
		if !c.Lit(x, 10) {
			t.Errorf("span dot (%d,10) not lit", x)
		}
	}
}

func TestCameraProjectsCentre(t *testing.T) {
	c := NewCamera()
	c.Fit(verlet.Vec3{-1, -1, -1}, verlet.Vec3{1, 1, 1})
	x, y, _, ok := c.Project(verlet.Vec3{0, 0, 0}, 100, 60)
	if !ok || x != 50 || y != 30 {
		t.Errorf("expected (50,30) on screen, got (%d,%d) ok=%v", x, y, ok)
	}

	c.ZoomIn()
	if c.Zoom <= 1 {
		t.Errorf("expected zoom above 1, got %f", c.Zoom)
	}
}

func TestNextThemeCycles(t *testing.T) {
	defer SetTheme(ThemePhosphor.Name)
	start := CurrentTheme.Name
	seen := map[string]bool{start: true}
	for range Themes {
		NextTheme()
		seen[CurrentTheme.Name] = true
	}
	if len(seen) != len(Themes) {
		t.Errorf("expected %d themes, saw %d", len(Themes), len(seen))
	}
	if CurrentTheme.Name != start {
		t.Errorf("expected to return to %s, got %s", start, CurrentTheme.Name)
	}
}

func TestSparklineEmpty(t *testing.T) {
	if got := Sparkline(nil, 5); got != strings.Repeat("─", 5) {
		t.Errorf("unexpected empty sparkline %q", got)
	}
}

func newTestModel(t *testing.T, scene string) Model {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Scene = scene
	m, err := NewModel(experiment.NewRegistry(), cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func tick(m Model) Model {
	next, _ := m.Update(TickMsg(time.Now()))
	return next.(Model)
}

func TestModelTicks(t *testing.T) {
	m := newTestModel(t, "ragdoll")
	for i := 0; i < 3; i++ {
		m = tick(m)
	}
	if got := m.exp.Engine().TickCount(); got != 3 {
		t.Errorf("expected 3 ticks, got %d", got)
	}
	if len(m.history) != 4 {
		t.Errorf("expected 4 frames of history, got %d", len(m.history))
	}
	if m.View() == "" {
		t.Error("expected a rendered view")
	}
}

func TestModelPauseAndScrub(t *testing.T) {
	m := newTestModel(t, "rope")
	for i := 0; i < 5; i++ {
		m = tick(m)
	}
	m = press(m, "[")
	if m.running {
		t.Error("scrubbing should pause")
	}
	if m.current().Tick != 4 {
		t.Errorf("expected frame 4, got %d", m.current().Tick)
	}
	m = tick(m)
	if got := m.exp.Engine().TickCount(); got != 5 {
		t.Errorf("paused model must not tick, got %d", got)
	}
	m = press(m, "]")
	m = press(m, "]")
	if m.playHead != -1 {
		t.Errorf("expected live playback, got head %d", m.playHead)
	}
}

func TestModelTunesWorld(t *testing.T) {
	m := newTestModel(t, "rope")
	before := m.exp.Engine().Config().Gravity
	m = press(m, "up")
	if got := m.exp.Engine().Config().Gravity; got <= before {
		t.Errorf("expected gravity above %f, got %f", before, got)
	}

	m = press(m, "tab")
	m = press(m, "tab")
	rigidity := m.exp.Engine().Config().Rigidity
	m = press(m, "up")
	if got := m.exp.Engine().Config().Rigidity; got != rigidity+1 {
		t.Errorf("expected rigidity %d, got %d", rigidity+1, got)
	}
}

func TestModelReset(t *testing.T) {
	m := newTestModel(t, "cube")
	m = tick(m)
	m = tick(m)
	m = press(m, "r")
	if got := m.exp.Engine().TickCount(); got != 0 {
		t.Errorf("expected a fresh engine, got tick %d", got)
	}
	if len(m.history) != 1 {
		t.Errorf("expected history reset, got %d", len(m.history))
	}
}

func TestMenuStartsScene(t *testing.T) {
	app := NewInteractiveApp(experiment.NewRegistry(), nil)
	next, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := next.(model)
	if m.state != stateConfig {
		t.Fatalf("expected config state, got %d", m.state)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(model)
	if m.state != stateSim {
		t.Fatalf("expected sim state, err %v", m.err)
	}
	if m.liveModel.cfg.Scene != m.selected {
		t.Errorf("expected %s, got %s", m.selected, m.liveModel.cfg.Scene)
	}
}
