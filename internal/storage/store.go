package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/sim"
	"github.com/san-kum/vxsim/internal/verlet"
)

const (
	metadataFile = "metadata.json"
	pointsFile   = "points.csv"
	topologyFile = "topology.json"
)

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scene      string             `json:"scene"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Ticks      int                `json:"ticks"`
	Every      int                `json:"every"`
	Dimensions int                `json:"dimensions"`
	WorldSpace bool               `json:"world_space,omitempty"`
	Frames     int                `json:"frames"`
	Stale      int                `json:"stale_reports,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Topology is the span and skin layout of the final frame of a run, plus
// the colour of every point that has one.
type Topology struct {
	Spans  []SpanRecord   `json:"spans"`
	Skins  []SkinRecord   `json:"skins"`
	Colors map[int]string `json:"colors,omitempty"`
}

type SpanRecord struct {
	ID         int     `json:"id"`
	Point1     int     `json:"point1"`
	Point2     int     `json:"point2"`
	RestLength float64 `json:"rest_length"`
	Hidden     bool    `json:"hidden,omitempty"`
}

type SkinRecord struct {
	ID     int          `json:"id"`
	Points []int        `json:"points"`
	Style  verlet.Style `json:"style"`
}

// Save writes a run to a new directory named after the scene and the
// current time and returns that name.
func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID, runDir, err := s.newRunDir(cfg.Scene)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scene:     cfg.Scene,
		Timestamp: s.now(),
		Seed:      cfg.Seed,
		Ticks:     cfg.Ticks,
		Every:     cfg.Every,
		Frames:    len(result.Frames),
		Stale:     result.StaleReports,
		Metrics:   result.Metrics,
	}
	for _, e := range result.Errors {
		meta.Errors = append(meta.Errors, e.Error())
	}
	final := result.Final()
	if final != nil {
		meta.Dimensions = final.Dimensions
		meta.WorldSpace = final.Orientation == verlet.WorldSpace
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, topologyFile), topologyOf(final)); err != nil {
		return "", err
	}
	if err := writePoints(filepath.Join(runDir, pointsFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

// newRunDir creates scene_<unix>, adding a numeric suffix when two runs
// land in the same second.
func (s *Store) newRunDir(scene string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%d", scene, s.now().Unix())
	runID := base
	for i := 2; ; i++ {
		dir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return runID, dir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, i)
	}
}

func topologyOf(f *verlet.Frame) Topology {
	t := Topology{Spans: []SpanRecord{}, Skins: []SkinRecord{}}
	if f == nil {
		return t
	}
	for _, sp := range f.Spans {
		t.Spans = append(t.Spans, SpanRecord{
			ID:         sp.ID,
			Point1:     sp.Point1,
			Point2:     sp.Point2,
			RestLength: sp.RestLength,
			Hidden:     sp.Hidden,
		})
	}
	for _, p := range f.Points {
		if p.Color == "" {
			continue
		}
		if t.Colors == nil {
			t.Colors = make(map[int]string)
		}
		t.Colors[p.ID] = p.Color
	}
	for _, sk := range f.Skins {
		t.Skins = append(t.Skins, SkinRecord{
			ID:     sk.ID,
			Points: append([]int(nil), sk.PointID...),
			Style:  sk.Style,
		})
	}
	return t
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var pointsHeader = []string{"tick", "point", "x", "y", "z", "fixed"}

func writePoints(path string, frames []verlet.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(pointsHeader); err != nil {
		return err
	}
	for _, fr := range frames {
		tick := strconv.FormatUint(fr.Tick, 10)
		for _, p := range fr.Points {
			row := []string{
				tick,
				strconv.Itoa(p.ID),
				strconv.FormatFloat(p.Position[0], 'f', 6, 64),
				strconv.FormatFloat(p.Position[1], 'f', 6, 64),
				strconv.FormatFloat(p.Position[2], 'f', 6, 64),
				strconv.FormatBool(p.Fixed),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, metadataFile), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTopology(runID string) (*Topology, error) {
	var t Topology
	if err := readJSON(filepath.Join(s.baseDir, runID, topologyFile), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// LoadFrames rebuilds the recorded frames of a run. Spans and skins come
// from the stored topology and are resolved against each frame's points.
// Velocities are not stored, so Previous equals Position.
func (s *Store) LoadFrames(runID string) ([]verlet.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	topo, err := s.LoadTopology(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, pointsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(pointsHeader)
	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []verlet.Frame{}, nil
		}
		return nil, err
	}

	orientation := verlet.ScreenSpace
	if meta.WorldSpace {
		orientation = verlet.WorldSpace
	}
	frames := make([]verlet.Frame, 0, meta.Frames)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		tick, p, err := parsePoint(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", pointsFile, line, err)
		}
		if n := len(frames); n == 0 || frames[n-1].Tick != tick {
			frames = append(frames, verlet.Frame{Tick: tick, Dimensions: meta.Dimensions, Orientation: orientation})
		}
		cur := &frames[len(frames)-1]
		cur.Points = append(cur.Points, p)
	}

	for i := range frames {
		resolve(&frames[i], topo)
	}
	return frames, nil
}

func parsePoint(record []string) (uint64, verlet.PointState, error) {
	var p verlet.PointState
	tick, err := strconv.ParseUint(record[0], 10, 64)
	if err != nil {
		return 0, p, err
	}
	if p.ID, err = strconv.Atoi(record[1]); err != nil {
		return 0, p, err
	}
	for i := 0; i < 3; i++ {
		if p.Position[i], err = strconv.ParseFloat(record[2+i], 64); err != nil {
			return 0, p, err
		}
	}
	if p.Fixed, err = strconv.ParseBool(record[5]); err != nil {
		return 0, p, err
	}
	p.Previous = p.Position
	p.Mass = 1
	return tick, p, nil
}

func resolve(f *verlet.Frame, topo *Topology) {
	pos := make(map[int]verlet.Vec3, len(f.Points))
	for i := range f.Points {
		p := &f.Points[i]
		pos[p.ID] = p.Position
		p.Color = topo.Colors[p.ID]
	}
	for _, sp := range topo.Spans {
		a, okA := pos[sp.Point1]
		b, okB := pos[sp.Point2]
		f.Spans = append(f.Spans, verlet.SpanState{
			ID:         sp.ID,
			Point1:     sp.Point1,
			Point2:     sp.Point2,
			A:          a,
			B:          b,
			RestLength: sp.RestLength,
			Strength:   1,
			Hidden:     sp.Hidden,
			Stale:      !okA || !okB,
		})
	}
	for _, sk := range topo.Skins {
		st := verlet.SkinState{ID: sk.ID, PointID: sk.Points, Style: sk.Style}
		for _, id := range sk.Points {
			at, ok := pos[id]
			st.Outline = append(st.Outline, at)
			st.Stale = st.Stale || !ok
		}
		f.Skins = append(f.Skins, st)
	}
}

// LoadTrack returns one coordinate of one point over the recorded frames.
func (s *Store) LoadTrack(runID string, pointID int, axis verlet.Axis) ([]float64, []uint64, error) {
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return nil, nil, err
	}
	values := make([]float64, 0, len(frames))
	ticks := make([]uint64, 0, len(frames))
	for _, f := range frames {
		p, ok := f.Point(pointID)
		if !ok {
			continue
		}
		values = append(values, p.Position[axis])
		ticks = append(ticks, f.Tick)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("run %s has no point %d", runID, pointID)
	}
	return values, ticks, nil
}
