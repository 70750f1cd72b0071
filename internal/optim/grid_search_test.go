package optim

import (
	"context"
	"testing"

	"github.com/san-kum/vxsim/internal/config"
	"github.com/san-kum/vxsim/internal/experiment"
)

func TestParseRange(t *testing.T) {
	name, values, err := ParseRange("gravity=0:1:5")
	if err != nil {
		t.Fatal(err)
	}
	if name != "gravity" || len(values) != 5 || values[4] != 1 || values[1] != 0.25 {
		t.Errorf("unexpected %s %v", name, values)
	}

	name, values, err = ParseRange("rigidity=2, 5,10")
	if err != nil {
		t.Fatal(err)
	}
	if name != "rigidity" || len(values) != 3 || values[1] != 5 {
		t.Errorf("unexpected %s %v", name, values)
	}

	for _, bad := range []string{"gravity", "=1,2", "gravity=a:b:c", "gravity=1,x"} {
		if _, _, err := ParseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestNewGridSearchValidates(t *testing.T) {
	if _, err := NewGridSearch([]string{"gravity"}, nil); err == nil {
		t.Error("expected mismatched lengths error")
	}
	if _, err := NewGridSearch([]string{"gravity"}, [][]float64{{}}); err == nil {
		t.Error("expected empty range error")
	}
}

func TestSearchFindsCalmestGravity(t *testing.T) {
	base := config.DefaultConfig()
	base.Scene = "rope"
	base.Ticks = 60
	base.Every = 10

	g, err := NewGridSearch([]string{"gravity"}, [][]float64{{0.6, 0, 0.3}})
	if err != nil {
		t.Fatal(err)
	}
	best, val, err := g.Search(context.Background(), ExperimentBuilder(experiment.NewRegistry(), base, nil), "energy")
	if err != nil {
		t.Fatal(err)
	}
	if best["gravity"] != 0 {
		t.Errorf("expected zero gravity to be calmest, got %v (%f)", best, val)
	}
}

func TestSearchUnknownMetric(t *testing.T) {
	base := config.DefaultConfig()
	base.Scene = "rope"
	base.Ticks = 5
	base.Every = 5

	g, _ := NewGridSearch([]string{"gravity"}, [][]float64{{0.1}})
	if _, _, err := g.Search(context.Background(), ExperimentBuilder(experiment.NewRegistry(), base, nil), "nope"); err == nil {
		t.Error("expected error when no run reports the metric")
	}
}
