package viz

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
)

const (
	stateMenu = iota
	stateConfig
	stateSim
)

// menuParams are the settings editable before a scene starts.
var menuParams = []string{"seed", "gravity", "breeze", "rigidity", "friction"}

type model struct {
	reg           *experiment.Registry
	log           *slog.Logger
	state, cursor int
	scenes        []string
	selected      string
	presets       []string
	preset        int
	params        map[string]float64
	paramCursor   int
	editing       bool
	editBuf       string
	err           error
	width, height int
	liveModel     Model
}

func NewInteractiveApp(reg *experiment.Registry, log *slog.Logger) *model {
	return &model{
		reg:    reg,
		log:    log,
		state:  stateMenu,
		scenes: reg.ListScenes(),
		params: map[string]float64{},
		width:  width,
		height: height,
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	default:
		if m.state == stateSim {
			newLive, cmd := m.liveModel.Update(msg)
			m.liveModel = newLive.(Model)
			return m, cmd
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		newLive, cmd := m.liveModel.Update(msg)
		m.liveModel = newLive.(Model)
		return m, cmd
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenes)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenes) == 0 {
			return m, nil
		}
		m.selected = m.scenes[m.cursor]
		m.presets = append([]string{"default"}, config.ListPresets(m.selected)...)
		m.state, m.paramCursor, m.preset, m.err = stateConfig, 0, 0, nil
		m.loadParams()
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			if val, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
				m.params[menuParams[m.paramCursor]] = val
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(menuParams)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing, m.editBuf = true, strconv.FormatFloat(m.params[menuParams[m.paramCursor]], 'f', -1, 64)
	case "p":
		m.preset = (m.preset + 1) % len(m.presets)
		m.loadParams()
	case "s":
		cmd := m.start()
		return m, cmd
	case "left", "h":
		m.params[menuParams[m.paramCursor]] -= paramStep(menuParams[m.paramCursor])
	case "right", "l":
		m.params[menuParams[m.paramCursor]] += paramStep(menuParams[m.paramCursor])
	}
	return m, nil
}

func paramStep(name string) float64 {
	switch name {
	case "seed", "rigidity":
		return 1
	case "friction":
		return 0.001
	case "gravity":
		return 0.05
	}
	return 0.5
}

// baseConfig is the selected preset, or the defaults for the scene.
func (m *model) baseConfig() *config.Config {
	if m.preset > 0 {
		if cfg := config.GetPreset(m.selected, m.presets[m.preset]); cfg != nil {
			return cfg
		}
	}
	cfg := config.DefaultConfig()
	cfg.Scene = m.selected
	return cfg
}

// loadParams fills the editable settings from the scene's world with the
// preset applied on top.
func (m *model) loadParams() {
	cfg := m.baseConfig()
	scene, err := m.reg.GetScene(m.selected)
	if err != nil {
		m.err = err
		return
	}
	world, err := cfg.World.Apply(scene.World())
	if err != nil {
		m.err = err
		return
	}
	m.params["seed"] = float64(cfg.Seed)
	m.params["gravity"] = world.Gravity
	m.params["breeze"] = world.Breeze
	m.params["rigidity"] = float64(world.Rigidity)
	m.params["friction"] = world.Friction
}

func (m *model) start() tea.Cmd {
	cfg := m.baseConfig()
	cfg.Seed = int64(m.params["seed"])
	cfg.World.Gravity = config.Float(m.params["gravity"])
	cfg.World.Breeze = config.Float(m.params["breeze"])
	cfg.World.Rigidity = config.Int(int(m.params["rigidity"]))
	cfg.World.Friction = config.Float(m.params["friction"])

	live, err := NewModel(m.reg, cfg, m.log)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.liveModel = live
	m.state = stateSim
	return m.liveModel.Init()
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.liveModel.View()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle.Render("VXSIM") + "\n    " + labelStyle.Render("verlet particle engine") + "\n    " + labelStyle.Render("──────────────────────") + "\n\n")
	for i, name := range m.scenes {
		desc := ""
		if scene, err := m.reg.GetScene(name); err == nil {
			desc = scene.Description()
		}
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", activeStyle.Render("▸"), menuItemStyle.Render(fmt.Sprintf("%-10s", name)), valueStyle.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", menuDimStyle.Render(fmt.Sprintf("  %-10s", name)), menuDimStyle.Render(desc)))
		}
	}
	b.WriteString("\n    " + keyHints("j/k", "navigate", "enter", "select", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString("\n\n    " + headerStyle.Render(strings.ToUpper(m.selected)) + "\n    " + labelStyle.Render("preset: ") + valueStyle.Render(m.presets[m.preset]) + "\n    " + labelStyle.Render("──────────────────────") + "\n\n")
	for i, name := range menuParams {
		valStr := fmt.Sprintf("%8.3f", m.params[name])
		if m.editing && i == m.paramCursor {
			valStr = fmt.Sprintf("%8s", m.editBuf+"_")
		}
		if i == m.paramCursor {
			b.WriteString(fmt.Sprintf("    %s %s %s\n", activeStyle.Render("▸"), menuItemStyle.Render(fmt.Sprintf("%-10s", name)), valueStyle.Render(valStr)))
		} else {
			b.WriteString(fmt.Sprintf("    %s %s\n", menuDimStyle.Render(fmt.Sprintf("  %-10s", name)), menuDimStyle.Render(valStr)))
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHints("j/k", "select", "h/l", "adjust", "p", "preset", "s", "start", "esc", "back") + "\n")
	return b.String()
}

// keyHints renders alternating key and action pairs.
func keyHints(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(activeStyle.Render(pairs[i]) + helpStyle.Render(" "+pairs[i+1]+"  "))
	}
	return b.String()
}

func RunInteractive(reg *experiment.Registry, log *slog.Logger) error {
	_, err := tea.NewProgram(NewInteractiveApp(reg, log), tea.WithAltScreen()).Run()
	return err
}
