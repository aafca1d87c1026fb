// Package ode defines the contract between the run lifecycle and the
// numerical integration engines.
//
// The package holds the shared vocabulary for simulating ordinary
// differential equations (dY/dt = f(t, Y)):
//
//   - [State]: vector representing system state
//   - [Model]: the right-hand side a universe payload must provide
//   - [System]: what an engine drives during a run (model + result recording)
//   - [Integrator]: run-to-completion engine interface
//   - [Stats]: counters reported by a finished integration
//   - [StepLimitError]: structured early-termination condition
//
// Engines live in internal/integrators; universe payloads in
// internal/universe. The lifecycle manager in internal/sim only ever sees
// these interfaces.
package ode
