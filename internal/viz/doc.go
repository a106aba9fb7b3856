// Package viz provides a terminal view of a running lattice simulation.
//
// The view is a Bubble Tea program that steps the solver on every tick and
// draws the selected field:
//
//   - [Model]: the watch application
//   - [HeatMap]: colored half-block rendering of a field
//   - [Canvas]: Braille canvas used for the phase map
//   - Theme selection with 5 built-in color ramps
//
// # Key Bindings
//
//	Space - Pause/Resume
//	N     - Single step while paused
//	F/Tab - Cycle displayed field
//	P     - Toggle phase map
//	+/-   - Steps per frame
//	S     - Save the field as PNG
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
