// Package viz provides terminal-based views over run directories.
//
// The package implements a live watcher using the Bubble Tea framework:
//
//   - [Model]: watcher application with a run picker and a tail view
//   - [Plot]: ASCII chart of one extracted series
//   - [Sparkline]: compact inline chart for secondary series
//
// The tail view re-reads the run's result file on a timer, so a watcher
// can be attached to a run that is still being integrated.
//
// # Key Bindings
//
//	Tab   - Cycle the plotted field
//	Space - Pause/resume tailing
//	Esc   - Back to the run picker
//	Q     - Quit
package viz
