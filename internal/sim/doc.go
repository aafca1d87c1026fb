// Package sim manages the lifecycle of simulation runs.
//
// A run starts from a configuration file (.conf, JSON), moves through
// validation and workspace setup, and ends with a classified outcome:
//
//   - [LoadSource] / [CollectSources]: read and validate definitions,
//     creating nothing on disk
//   - [Build] / [BuildAll]: allocate the versioned run directory, persist
//     the reproducibility copy, open the result sink, build the engine
//   - [Simulation.Launch]: drive the engine to completion and classify
//     what happened
//
// Setup is fail-fast: any invalid source or resource failure aborts the
// whole batch before anything launches. Launch is fault-tolerant: an
// engine failure is logged and folded into the [Outcome], and the batch
// moves on. The one exception is a failure to initialize the engine, which
// means the run could never start and is returned as an error.
//
// The universe payload U is opaque to this package beyond being an
// [ode.Model]; the shipped CLI instantiates U as *universe.Spec.
package sim
