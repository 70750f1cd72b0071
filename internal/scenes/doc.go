// Package scenes contains the demonstration worlds: marbles, a ragdoll,
// exploding shards, a 3D cube and a rope. Each scene supplies its own world
// settings, populates an engine and may drive it between ticks.
package scenes
