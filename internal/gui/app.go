package gui

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/vxsim/internal/audio"
	"github.com/san-kum/vxsim/internal/audio/device"
	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
	"github.com/san-kum/vxsim/internal/metrics"
	"github.com/san-kum/vxsim/internal/render"
	"github.com/san-kum/vxsim/internal/verlet"
)

// Theme Colors (Monochrome Hyper-Minimalist)
var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColFixed   = rl.NewColor(255, 85, 85, 255)
)

const (
	screenW = 1280
	screenH = 720

	defaultGrabRadius = 20
	maxTelemetry      = 200
	fontPath          = "/usr/share/fonts/liberation/LiberationMono-Regular.ttf"
)

// Options are the window settings that do not belong to a run config.
type Options struct {
	// Audio plays a pad that follows the world's kinetic energy.
	Audio bool
}

// grabber is implemented by scenes that choose their own pick-up distance.
type grabber interface {
	GrabRadius(e *verlet.Engine) float64
}

type App struct {
	reg *experiment.Registry
	cfg *config.Config
	exp *experiment.Experiment
	log *slog.Logger

	Camera    rl.Camera3D
	Running   bool
	InMenu    bool
	Scenes    []string
	Selected  int
	View      render.View
	Telemetry []float64
	Font      rl.Font
	Status    string

	frame   verlet.Frame
	target  glTarget
	space   space
	centre  rl.Vector3
	extent  float32
	yaw     float64
	pitch   float64
	grabbed *verlet.Point
	grabZ   float32

	synth  *audio.Synth
	player *device.Player
}

func initWindow() {
	rl.InitWindow(screenW, screenH, "vxsim")
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// loadFont uses Liberation Mono when installed and the raylib font otherwise.
func loadFont() rl.Font {
	if _, err := os.Stat(fontPath); err != nil {
		return rl.GetFontDefault()
	}
	font := rl.LoadFontEx(fontPath, 32, nil, 0)
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp creates the window state. With interactive set the app opens on the
// scene menu, otherwise it builds cfg immediately.
func NewApp(reg *experiment.Registry, cfg *config.Config, interactive bool, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	app := &App{
		reg:       reg,
		cfg:       cfg.Clone(),
		log:       log,
		Scenes:    reg.ListScenes(),
		View:      render.DefaultView(),
		Font:      loadFont(),
		InMenu:    interactive,
		Running:   !interactive,
		Telemetry: make([]float64, 0, maxTelemetry),
	}
	if !interactive {
		if err := app.loadScene(cfg.Scene); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Run opens a window on one scene and blocks until it is closed.
func Run(reg *experiment.Registry, cfg *config.Config, log *slog.Logger, opts Options) error {
	return run(reg, cfg, false, log, opts)
}

// RunInteractive opens the window on the scene menu.
func RunInteractive(reg *experiment.Registry, cfg *config.Config, log *slog.Logger, opts Options) error {
	return run(reg, cfg, true, log, opts)
}

func run(reg *experiment.Registry, cfg *config.Config, interactive bool, log *slog.Logger, opts Options) error {
	initWindow()
	defer rl.CloseWindow()
	app, err := NewApp(reg, cfg, interactive, log)
	if err != nil {
		return err
	}
	if opts.Audio {
		app.startAudio()
		defer app.stopAudio()
	}
	app.RunLoop()
	return nil
}

// startAudio opens the output device. Without one the app stays silent.
func (a *App) startAudio() {
	synth := audio.NewSynth()
	player, err := device.Open(synth)
	if err != nil {
		a.log.Warn("audio disabled", "err", err)
		a.Status = "no audio output"
		return
	}
	a.synth, a.player = synth, player
}

func (a *App) stopAudio() {
	if a.player == nil {
		return
	}
	if err := a.player.Close(); err != nil {
		a.log.Warn("audio close", "err", err)
	}
	a.synth, a.player = nil, nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if a.Update() {
			return
		}
		a.Draw()
	}
}

func (a *App) loadScene(name string) error {
	a.cfg.Scene = name
	exp, err := experiment.New(a.reg, a.cfg, a.log)
	if err != nil {
		return err
	}
	a.exp = exp
	a.grabbed = nil
	a.Status = ""
	a.Telemetry = a.Telemetry[:0]
	a.frame = exp.Engine().Snapshot()
	a.space = space{dims: a.frame.Dimensions, orient: a.frame.Orientation}

	min, max := render.WorldBounds(exp.Engine().Config(), &a.frame)
	lo, hi := a.space.toGL(min), a.space.toGL(max)
	a.centre = rl.Vector3Scale(rl.Vector3Add(lo, hi), 0.5)
	a.extent = rl.Vector3Length(rl.Vector3Subtract(hi, lo)) / 2
	if a.extent == 0 {
		a.extent = 10
	}
	a.yaw, a.pitch = 0, 0
	if a.space.dims == 3 {
		a.yaw, a.pitch = 0.6, 0.35
	}
	a.Camera = rl.NewCamera3D(rl.Vector3{}, a.centre, rl.NewVector3(0, 1, 0), 45.0, rl.CameraPerspective)
	a.placeCamera(2.4 * a.extent)
	a.log.Info("scene loaded", "scene", name, "points", len(a.frame.Points))
	return nil
}

// placeCamera orbits the camera around the world centre at distance d.
func (a *App) placeCamera(d float32) {
	cp, sp := math.Cos(a.pitch), math.Sin(a.pitch)
	cy, sy := math.Cos(a.yaw), math.Sin(a.yaw)
	offset := rl.NewVector3(float32(sy*cp), float32(sp), float32(cy*cp))
	a.Camera.Target = a.centre
	a.Camera.Position = rl.Vector3Add(a.centre, rl.Vector3Scale(offset, d))
}

func (a *App) cameraDistance() float32 {
	return rl.Vector3Distance(a.Camera.Position, a.Camera.Target)
}

// Update handles input and steps the world. It reports whether the app
// should exit.
func (a *App) Update() bool {
	if rl.IsKeyPressed(rl.KeyQ) {
		return true
	}
	if a.InMenu {
		a.updateMenu()
		return false
	}
	if rl.IsKeyPressed(rl.KeyEscape) {
		a.InMenu = true
		a.Running = false
		return false
	}

	a.updateGrab()
	a.updateCamera()

	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		if err := a.loadScene(a.cfg.Scene); err != nil {
			a.Status = err.Error()
		}
		a.Running = true
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.View.Hidden = !a.View.Hidden
	}
	if rl.IsKeyPressed(rl.KeyM) && a.synth != nil {
		a.synth.SetMuted(!a.synth.Muted())
	}
	if rl.IsKeyPressed(rl.KeyE) {
		n := a.exp.Engine().ApplyRadialImpulse(a.space.fromGL(a.centre), 8)
		a.Status = fmt.Sprintf("pushed %d points", n)
	}

	if a.Running {
		a.step()
	}
	return false
}

func (a *App) step() {
	err := a.exp.Simulator().Step()
	if err != nil && errors.Is(err, verlet.ErrNonFinite) {
		a.Running = false
		a.Status = err.Error()
		a.log.Warn("simulation stopped", "err", err)
	}
	a.frame = a.exp.Engine().Snapshot()
	energy := metrics.Kinetic(&a.frame)
	if a.synth != nil {
		a.synth.SetEnergy(energy)
	}
	a.Telemetry = append(a.Telemetry, energy)
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
}

func (a *App) updateMenu() {
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressed(rl.KeyJ) {
		a.Selected = (a.Selected + 1) % len(a.Scenes)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressed(rl.KeyK) {
		a.Selected = (a.Selected - 1 + len(a.Scenes)) % len(a.Scenes)
	}
	if rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeySpace) {
		if err := a.loadScene(a.Scenes[a.Selected]); err != nil {
			a.Status = err.Error()
			return
		}
		a.InMenu = false
		a.Running = true
	}
}

// updateGrab lets the left mouse button pick up the nearest material point
// and drag it across the plane it was grabbed in.
func (a *App) updateGrab() {
	if !rl.IsMouseButtonDown(rl.MouseLeftButton) {
		a.grabbed = nil
		return
	}
	ray := rl.GetMouseRay(rl.GetMousePosition(), a.Camera)

	if a.grabbed == nil {
		if !rl.IsMouseButtonPressed(rl.MouseLeftButton) {
			return
		}
		hit, ok := planeHit(ray, a.centre.Z)
		if !ok {
			return
		}
		radius := float64(defaultGrabRadius)
		if g, ok := a.exp.Scene().(grabber); ok {
			radius = g.GrabRadius(a.exp.Engine())
		}
		p, ok := a.exp.Engine().NearestPoint(a.space.fromGL(hit), radius, true)
		if !ok {
			return
		}
		a.grabbed = p
		a.grabZ = a.space.toGL(p.Position).Z
		return
	}

	if a.grabbed.Removed() {
		a.grabbed = nil
		return
	}
	hit, ok := planeHit(ray, a.grabZ)
	if !ok {
		return
	}
	if err := a.exp.Engine().Teleport(a.grabbed.ID, a.space.fromGL(hit)); err != nil {
		a.grabbed = nil
	}
}

// updateCamera orbits with the right mouse button and zooms with the wheel.
func (a *App) updateCamera() {
	d := a.cameraDistance()
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		delta := rl.GetMouseDelta()
		a.yaw -= float64(delta.X) * 0.005
		a.pitch = math.Max(-1.4, math.Min(1.4, a.pitch+float64(delta.Y)*0.005))
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		d = float32(math.Max(float64(a.extent)*0.2, float64(d*(1-wheel*0.1))))
	}
	a.placeCamera(d)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.InMenu {
		a.drawMenu()
	} else {
		a.drawSim()
		a.DrawHUD()
	}

	rl.EndDrawing()
}

func (a *App) drawSim() {
	rl.BeginMode3D(a.Camera)
	render.DrawLogged(&a.target, &a.frame, a.View, a.log)
	if a.grabbed != nil {
		pos := a.space.toGL(a.grabbed.Position)
		rl.DrawCircle3D(pos, float32(a.grabbed.Radius)+4, rl.NewVector3(0, 0, 1), 0, rl.NewColor(255, 255, 255, 100))
	}
	rl.EndMode3D()
}

func (a *App) DrawHUD() {
	a.drawText("vxsim", 30, 30, 24, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.cfg.Scene), 120, 34, 16, ColText)

	a.DrawTelemetry()
	a.drawLevels()

	status := "RUNNING"
	col := ColSelect
	if !a.Running {
		status = "PAUSED"
		col = ColTextDim
	}
	a.drawText(status, 1150, 30, 16, col)
	a.drawText(fmt.Sprintf("tick %d  points %d  spans %d", a.frame.Tick, len(a.frame.Points), len(a.frame.Spans)), 30, 60, 14, ColText)
	if a.Status != "" {
		a.drawText(a.Status, 30, 84, 14, ColAccent)
	}

	a.drawText("[SPACE] PAUSE  [R] RESET  [E] PUSH  [H] HIDDEN  [M] MUTE  [ESC] MENU  [Q] QUIT", 560, 680, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, 680, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots kinetic energy over the recent ticks.
func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 30, 600
	width, height := 400, 60

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("E: %.2e", a.Telemetry[len(a.Telemetry)-1]), rectX+width+10, rectY+height-10, 14, ColText)
}

// drawLevels shows the bass, mid and high share of the audio output.
func (a *App) drawLevels() {
	if a.synth == nil {
		return
	}
	lv := a.synth.Levels()
	x, y, h := 1150, 600, 60
	for i, v := range []float64{lv.Bass, lv.Mid, lv.High} {
		bar := int32(v * float64(h))
		rl.DrawRectangle(int32(x+i*24), int32(y+h)-bar, 16, bar, ColAccent)
	}
	label := "AUDIO"
	if a.synth.Muted() {
		label = "MUTED"
	}
	a.drawText(label, x, y+h+8, 14, ColTextDim)
}

func (a *App) drawMenu() {
	a.drawText("vxsim", 50, 50, 40, ColSelect)
	a.drawText("Select Scene", 50, 100, 16, ColTextDim)

	y := 160
	for i, name := range a.Scenes {
		desc := ""
		if scene, err := a.reg.GetScene(name); err == nil {
			desc = scene.Description()
		}
		if i == a.Selected {
			a.drawText(fmt.Sprintf("> %-10s %s", name, desc), 50, y, 20, ColSelect)
		} else {
			a.drawText(fmt.Sprintf("  %-10s %s", name, desc), 50, y, 20, ColText)
		}
		y += 28
	}
	if a.Status != "" {
		a.drawText(a.Status, 50, y+20, 16, ColFixed)
	}

	a.drawText("ARROWS: NAVIGATE  ENTER: SELECT  Q: QUIT", 850, 680, 14, ColTextDim)
}
