package config

import (
	"fmt"
	"math"
)

// WorldParams are the world settings that can be set by name.
var WorldParams = []string{"gravity", "rigidity", "friction", "bounce_loss", "skid_loss", "breeze"}

// SetParam sets a named world override. Rigidity is rounded to the nearest
// pass count.
func (w *WorldConfig) SetParam(name string, v float64) error {
	switch name {
	case "gravity":
		w.Gravity = Float(v)
	case "rigidity":
		w.Rigidity = Int(int(math.Round(v)))
	case "friction":
		w.Friction = Float(v)
	case "bounce_loss":
		w.BounceLoss = Float(v)
	case "skid_loss":
		w.SkidLoss = Float(v)
	case "breeze":
		w.Breeze = Float(v)
	default:
		return fmt.Errorf("unknown world param: %s", name)
	}
	return nil
}
