package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	canvasStyle   lipgloss.Style
	statsStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	labelStyle    lipgloss.Style
	valueStyle    lipgloss.Style
	activeStyle   lipgloss.Style
	graphStyle    lipgloss.Style
	helpStyle     lipgloss.Style
	runningStyle  lipgloss.Style
	pausedStyle   lipgloss.Style
	recordStyle   lipgloss.Style
	errorStyle    lipgloss.Style
	menuItemStyle lipgloss.Style
	menuDimStyle  lipgloss.Style

	sparkHigh, sparkMid, sparkLow lipgloss.Style
)

func init() {
	applyTheme(CurrentTheme)
}

func applyTheme(t Theme) {
	canvasStyle = lipgloss.NewStyle().Padding(1, 2).Foreground(t.Canvas)
	statsStyle = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(1, 2).
		Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	activeStyle = lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	graphStyle = lipgloss.NewStyle().Foreground(t.Primary).Padding(1, 0)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1)
	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Success)
	pausedStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Warning)
	recordStyle = lipgloss.NewStyle().Bold(true).Foreground(t.Error).Blink(true)
	errorStyle = lipgloss.NewStyle().Foreground(t.Error)
	menuItemStyle = lipgloss.NewStyle().Foreground(t.Text)
	menuDimStyle = lipgloss.NewStyle().Foreground(t.Muted)
	sparkHigh = lipgloss.NewStyle().Foreground(t.Error)
	sparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	sparkLow = lipgloss.NewStyle().Foreground(t.Success)
}

// GradientText colours each rune of text along a gradient between two hex colours.
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	var result strings.Builder
	n := len(runes)
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		b := int(float64(sb) + t*float64(eb-sb))

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(r, g, b)))
		result.WriteString(style.Render(string(c)))
	}
	return result.String()
}

// Sparkline renders values as block characters, sampled to width. High
// values are drawn hot.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		switch {
		case norm > 0.7:
			result.WriteString(sparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(sparkMid.Render(c))
		default:
			result.WriteString(sparkLow.Render(c))
		}
	}
	return result.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
	val := 0
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = min(max(v, 0), 255)
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}
