package config

import "sort"

var Presets = map[string]map[string]*Config{
	"marbles": {
		"calm": {
			Scene: "marbles", Ticks: 1200, Every: 10, Seed: 1,
		},
		"storm": {
			Scene: "marbles", Ticks: 2400, Every: 10, Seed: 7,
			World: WorldConfig{Gravity: Float(0.8), Breeze: Float(6)},
		},
		"zero-g": {
			Scene: "marbles", Ticks: 1200, Every: 10, Seed: 3,
			World: WorldConfig{Gravity: Float(0), BounceLoss: Float(1)},
		},
	},
	"ragdoll": {
		"still": {
			Scene: "ragdoll", Ticks: 1500, Every: 10, Seed: 1,
			World: WorldConfig{Breeze: Float(0)},
		},
		"windy": {
			Scene: "ragdoll", Ticks: 3000, Every: 10, Seed: 1,
			World: WorldConfig{Breeze: Float(16)},
		},
		"floppy": {
			Scene: "ragdoll", Ticks: 1500, Every: 10, Seed: 1,
			World: WorldConfig{Rigidity: Int(3)},
		},
	},
	"shards": {
		"cycle": {
			Scene: "shards", Ticks: 1200, Every: 5, Seed: 1,
		},
		"long": {
			Scene: "shards", Ticks: 4800, Every: 10, Seed: 1,
		},
	},
	"cube": {
		"trapped": {
			Scene: "cube", Ticks: 1800, Every: 10, Seed: 1,
		},
		"moon": {
			Scene: "cube", Ticks: 1800, Every: 10, Seed: 1,
			World: WorldConfig{Gravity: Float(0.05)},
		},
		"bouncy": {
			Scene: "cube", Ticks: 1800, Every: 10, Seed: 1,
			World: WorldConfig{BounceLoss: Float(1), SkidLoss: Float(0.95)},
		},
	},
	"rope": {
		"stiff": {
			Scene: "rope", Ticks: 1200, Every: 5, Seed: 1,
			World: WorldConfig{Rigidity: Int(30)},
		},
		"slack": {
			Scene: "rope", Ticks: 1200, Every: 5, Seed: 1,
			World: WorldConfig{Rigidity: Int(2)},
		},
		"gusty": {
			Scene: "rope", Ticks: 2400, Every: 10, Seed: 5,
			World: WorldConfig{Breeze: Float(4)},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(scene, preset string) *Config {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	cfg, ok := scenePresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(scene string) []string {
	scenePresets, ok := Presets[scene]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenePresets))
	for name := range scenePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
