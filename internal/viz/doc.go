// Package viz draws running scenes in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view of one scene with history scrubbing and tuning
//   - [Canvas]: braille pixel canvas implementing render.Target
//   - [Camera]: perspective projection for three dimensional worlds
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Rebuild the scene
//	Tab   - Select a world setting, Up/Down to change it
//	E     - Push every free point away from the centre
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[ ]   - Scrub through recent frames
//
// # Recording
//
// GIF recordings are saved to the current directory as <scene>.gif.
package viz
