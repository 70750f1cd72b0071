package analysis

import (
	"math"
	"strings"
)

// PhasePoint is one sample in a phase plane.
type PhasePoint struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	Points []PhasePoint
}

// NewPhasePortrait pairs every sample of a coordinate with its change since
// the previous sample, which is the Verlet velocity when samples are one
// tick apart.
func NewPhasePortrait(values []float64) *PhasePortrait2D {
	if len(values) < 2 {
		return &PhasePortrait2D{}
	}
	p := &PhasePortrait2D{Points: make([]PhasePoint, 0, len(values)-1)}
	for i := 1; i < len(values); i++ {
		p.Points = append(p.Points, PhasePoint{X: values[i], Y: values[i] - values[i-1]})
	}
	return p
}

// PhasePortraitToASCII converts phase portrait to ASCII art
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := newGrid(width, height)
	for _, p := range portrait.Points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			canvas[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if col >= 0 && col < width && canvas[row][col] == ' ' {
				canvas[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if row >= 0 && row < height && canvas[row][col] == ' ' {
				canvas[row][col] = '─'
			}
		}
	}
	return gridString(canvas)
}

// PoincareSection records (x, y) whenever cross passes upward through
// threshold. The three series are sampled together.
func PoincareSection(cross, x, y []float64, threshold float64) *PhasePortrait2D {
	n := min(len(cross), len(x), len(y))
	section := &PhasePortrait2D{}
	for i := 1; i < n; i++ {
		if cross[i-1] < threshold && cross[i] >= threshold {
			section.Points = append(section.Points, PhasePoint{X: x[i], Y: y[i]})
		}
	}
	return section
}

func newGrid(width, height int) [][]rune {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}
	return canvas
}

func gridString(canvas [][]rune) string {
	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
