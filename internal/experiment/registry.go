package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/vxsim/internal/metrics"
	"github.com/san-kum/vxsim/internal/scenes"
	"github.com/san-kum/vxsim/internal/sim"
)

type Registry struct {
	scenes map[string]func() scenes.Scene
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes: make(map[string]func() scenes.Scene),
	}

	r.scenes["marbles"] = func() scenes.Scene { return scenes.NewMarbles() }
	r.scenes["ragdoll"] = func() scenes.Scene { return scenes.NewRagdoll() }
	r.scenes["shards"] = func() scenes.Scene { return scenes.NewShards() }
	r.scenes["cube"] = func() scenes.Scene { return scenes.NewCube() }
	r.scenes["rope"] = func() scenes.Scene { return scenes.NewRope() }

	return r
}

// Register adds or replaces a scene constructor.
func (r *Registry) Register(name string, fn func() scenes.Scene) {
	r.scenes[name] = fn
}

func (r *Registry) GetScene(name string) (scenes.Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListScenes() []string {
	names := make([]string, 0, len(r.scenes))
	for name := range r.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(scene string) []sim.Metric {
	return metrics.Default()
}
