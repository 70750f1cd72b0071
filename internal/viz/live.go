package viz

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/metrics"
	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/verlet"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	defaultFPS      = 60
)

type TickMsg time.Time

// param is a world setting that can be tuned while the scene runs.
type param struct {
	name string
	step float64
	get  func(verlet.Config) float64
	set  func(*verlet.Config, float64)
}

var tunable = []param{
	{"gravity", 0.05,
		func(c verlet.Config) float64 { return c.Gravity },
		func(c *verlet.Config, v float64) { c.Gravity = v }},
	{"breeze", 0.5,
		func(c verlet.Config) float64 { return c.Breeze },
		func(c *verlet.Config, v float64) { c.Breeze = max(v, 0) }},
	{"rigidity", 1,
		func(c verlet.Config) float64 { return float64(c.Rigidity) },
		func(c *verlet.Config, v float64) { c.Rigidity = max(int(v), 0) }},
	{"friction", 0.001,
		func(c verlet.Config) float64 { return c.Friction },
		func(c *verlet.Config, v float64) { c.Friction = min(max(v, 0), 1) }},
	{"bounce", 0.05,
		func(c verlet.Config) float64 { return c.BounceLoss },
		func(c *verlet.Config, v float64) { c.BounceLoss = max(v, 0) }},
}

// Model runs one scene in the terminal. It keeps a rolling history of
// frames that can be scrubbed while paused.
type Model struct {
	reg *experiment.Registry
	cfg *config.Config
	exp *experiment.Experiment
	log *slog.Logger

	width, height int
	fps           int
	canvas        *Canvas
	camera        *Camera
	view          render.View

	frame         verlet.Frame
	history       []verlet.Frame
	playHead      int
	energyHistory []float64
	speedHistory  []float64

	running   bool
	selected  int
	recording bool
	frames    []*image.Paletted
	showHelp  bool
	status    string
	err       error
}

// NewModel builds the configured scene and returns a viewer for it. log may
// be nil.
func NewModel(reg *experiment.Registry, cfg *config.Config, log *slog.Logger) (Model, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := Model{
		reg:      reg,
		cfg:      cfg.Clone(),
		log:      log,
		width:    width,
		height:   height,
		fps:      defaultFPS,
		canvas:   NewCanvas(width, height),
		camera:   NewCamera(),
		view:     render.DefaultView(),
		running:  true,
		playHead: -1,
	}
	m.canvas.Camera = m.camera
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// SetFPS changes the tick rate. Values below 1 are ignored.
func (m *Model) SetFPS(fps int) {
	if fps > 0 {
		m.fps = fps
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.selected = (m.selected + 1) % len(tunable)
		case "up", "k":
			m.adjust(1)
		case "down", "j":
			m.adjust(-1)
		case "e":
			m.explode()
		case "1":
			m.view.Points = !m.view.Points
		case "2":
			m.view.Spans = !m.view.Spans
		case "3":
			m.view.Skins = !m.view.Skins
		case "h":
			m.view.Hidden = !m.view.Hidden
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		case "t":
			NextTheme()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running {
			if m.playHead == -1 {
				m.step()
			} else {
				m.playHead++
				if m.playHead >= len(m.history) {
					m.playHead = -1
				}
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, m.tick()
	}
	return m, nil
}

// reset rebuilds the scene from the run config.
func (m *Model) reset() error {
	exp, err := experiment.New(m.reg, m.cfg, m.log)
	if err != nil {
		return err
	}
	m.exp = exp
	m.err = nil
	m.status = ""
	m.playHead = -1
	m.history = m.history[:0]
	m.energyHistory = m.energyHistory[:0]
	m.speedHistory = m.speedHistory[:0]
	m.frame = exp.Engine().Snapshot()

	min, max := render.WorldBounds(exp.Engine().Config(), &m.frame)
	m.canvas.Min, m.canvas.Max = min, max
	m.camera.Fit(min, max)
	m.record()
	return nil
}

// step advances the world by one tick. A non-finite coordinate pauses the
// viewer; stale span reports are ignored.
func (m *Model) step() {
	if m.err != nil {
		return
	}
	err := m.exp.Simulator().Step()
	if err != nil && errors.Is(err, verlet.ErrNonFinite) {
		m.err = err
		m.running = false
	}
	m.frame = m.exp.Engine().Snapshot()
	m.record()
}

// record appends the current frame to history. Frames are not pooled since
// history keeps them.
func (m *Model) record() {
	m.history = pushBounded(m.history, m.frame)
	m.energyHistory = pushBounded(m.energyHistory, metrics.Kinetic(&m.frame))
	m.speedHistory = pushBounded(m.speedHistory, metrics.MaxSpeed(&m.frame))
}

func pushBounded[T any](s []T, v T) []T {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.playHead = len(m.history) - 1
		m.running = false
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

func (m *Model) adjust(dir float64) {
	p := tunable[m.selected]
	err := m.exp.Engine().Configure(func(c *verlet.Config) {
		p.set(c, p.get(*c)+dir*p.step)
	})
	if err != nil {
		m.status = err.Error()
	}
}

// explode throws every free point away from the centre of the world.
func (m *Model) explode() {
	centre := m.canvas.Min.Add(m.canvas.Max).Mul(0.5)
	n := m.exp.Engine().ApplyRadialImpulse(centre, 8)
	m.status = fmt.Sprintf("pushed %d points", n)
}

func (m *Model) current() *verlet.Frame {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return &m.history[m.playHead]
	}
	return &m.frame
}

func (m *Model) draw() {
	render.DrawLogged(m.canvas, m.current(), m.view, m.log)
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	path := m.cfg.Scene + ".gif"
	if err := m.saveGIF(path); err != nil {
		m.status = err.Error()
	} else {
		m.status = "saved " + path
	}
	m.recording = false
	m.frames = nil
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()
	f := m.current()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(GradientText(strings.ToUpper(m.cfg.Scene), CurrentTheme.Primary, CurrentTheme.Accent)) + "\n")
	s.WriteString(m.statusLine() + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Tick", fmt.Sprintf("%d", f.Tick))
	row("Points", fmt.Sprintf("%d", len(f.Points)))
	row("Spans", fmt.Sprintf("%d", len(f.Spans)))
	row("Energy", fmt.Sprintf("%.2f", metrics.Kinetic(f)))
	s.WriteString(labelStyle.Render("Speed") + Sparkline(m.speedHistory, 20) + "\n")
	stats := m.exp.Engine().Stats()
	if stats.DegenerateSpans+stats.DegeneratePairs+stats.StaleSpans+stats.StaleSkins > 0 {
		row("Skipped", fmt.Sprintf("%d/%d/%d/%d", stats.DegenerateSpans, stats.DegeneratePairs, stats.StaleSpans, stats.StaleSkins))
	}

	s.WriteString("\nWORLD\n")
	cfg := m.exp.Engine().Config()
	for i, p := range tunable {
		line := fmt.Sprintf("%-10s %.3f", p.name, p.get(cfg))
		if i == m.selected {
			s.WriteString(activeStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	s.WriteString("\n" + viewFlags(m.view) + "\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString(valueStyle.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nT:Theme G:Record ?:Help\n[ ]:Scrub ↑↓:Tune"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

func (m Model) statusLine() string {
	switch {
	case m.recording:
		return recordStyle.Render(fmt.Sprintf("REC %d", len(m.frames)))
	case m.playHead != -1:
		back := len(m.history) - 1 - m.playHead
		if m.running {
			return pausedStyle.Render(fmt.Sprintf("REPLAYING (-%d)", back))
		}
		return pausedStyle.Render(fmt.Sprintf("REPLAY PAUSED (-%d)", back))
	case !m.running:
		return pausedStyle.Render("PAUSED")
	}
	return runningStyle.Render("RUNNING")
}

func viewFlags(v render.View) string {
	flag := func(key, name string, on bool) string {
		if on {
			return activeStyle.Render(key + ":" + name)
		}
		return menuDimStyle.Render(key + ":" + name)
	}
	return strings.Join([]string{
		flag("1", "points", v.Points),
		flag("2", "spans", v.Spans),
		flag("3", "skins", v.Skins),
		flag("h", "hidden", v.Hidden),
	}, " ")
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Rebuild the scene        ║
║  Q        - Quit                     ║
║  Tab      - Cycle world settings     ║
║  Up/K     - Increase setting         ║
║  Down/J   - Decrease setting         ║
║  [ ]      - Scrub history            ║
║  E        - Push points outward      ║
║  1 2 3 H  - Points/spans/skins/hidden║
║  x y z +- - Rotate/zoom 3D camera    ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

// captureFrame rasterises the canvas into a two colour GIF frame.
func (m *Model) captureFrame() {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	imgW, imgH := m.canvas.Width*charW, m.canvas.Height*charH
	r, g, b := parseHex(string(CurrentTheme.Canvas))
	palette := color.Palette{color.Black, color.RGBA{uint8(r), uint8(g), uint8(b), 255}}
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), palette)

	w, h := m.canvas.Dots()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !m.canvas.Lit(x, y) {
				continue
			}
			for py := 0; py < dotH; py++ {
				for px := 0; px < dotW; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}

// RunLive shows one scene until the user quits.
func RunLive(reg *experiment.Registry, cfg *config.Config, fps int, log *slog.Logger) error {
	m, err := NewModel(reg, cfg, log)
	if err != nil {
		return err
	}
	m.SetFPS(fps)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
