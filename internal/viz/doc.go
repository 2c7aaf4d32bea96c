// Package viz renders simulation runs in the terminal.
//
//   - [Plot]: asciigraph line plot of every sampled series
//   - [Summary] and [RunTable]: lipgloss tables for runs and stored runs
//   - [LiveModel]: Bubble Tea program stepping a simulation in real time
//
// # Key Bindings
//
//	Space - Pause/Resume stepping
//	R     - Reset to the initial amounts
//	+/-   - Double/halve steps per frame
//	T     - Cycle color themes
//	Q     - Quit
package viz
