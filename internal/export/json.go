package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/vxsim/internal/storage"
	"github.com/san-kum/vxsim/internal/verlet"
)

type ExportData struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Seed       int64              `json:"seed"`
	Ticks      int                `json:"ticks"`
	Every      int                `json:"every"`
	Dimensions int                `json:"dimensions"`
	Metrics    map[string]float64 `json:"metrics"`
	Topology   *storage.Topology  `json:"topology"`
	Frames     []FrameData        `json:"frames"`
}

type FrameData struct {
	Tick   uint64      `json:"tick"`
	Points []PointData `json:"points"`
}

type PointData struct {
	ID       int        `json:"id"`
	Position [3]float64 `json:"position"`
	Fixed    bool       `json:"fixed,omitempty"`
}

// Collect gathers a stored run into one document.
func Collect(st *storage.Store, runID string) (*ExportData, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	topo, err := st.LoadTopology(runID)
	if err != nil {
		return nil, err
	}
	frames, err := st.LoadFrames(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		ID:         meta.ID,
		Scene:      meta.Scene,
		Seed:       meta.Seed,
		Ticks:      meta.Ticks,
		Every:      meta.Every,
		Dimensions: meta.Dimensions,
		Metrics:    meta.Metrics,
		Topology:   topo,
		Frames:     make([]FrameData, len(frames)),
	}
	for i, f := range frames {
		data.Frames[i] = frameData(f)
	}
	return data, nil
}

func frameData(f verlet.Frame) FrameData {
	fd := FrameData{Tick: f.Tick, Points: make([]PointData, len(f.Points))}
	for i, p := range f.Points {
		fd.Points[i] = PointData{ID: p.ID, Position: p.Position, Fixed: p.Fixed}
	}
	return fd
}

func ExportJSON(path string, st *storage.Store, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, st, runID)
}

// WriteJSON writes the run to w, for example os.Stdout.
func WriteJSON(w io.Writer, st *storage.Store, runID string) error {
	data, err := Collect(st, runID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
