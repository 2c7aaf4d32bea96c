// Package sim is the mass-action kinetics engine.
//
//   - [Simulation]: concentrations, reactions and pending additions; [Simulation.Step]
//     performs one explicit Euler step over all reactions at once
//   - [Runner]: drives a simulation over a duration and samples trajectories
//   - [Ensemble]: runs clones of one simulation concurrently
//
// # Example
//
//	s, _ := dsl.ParseSimulation(chemicals, reactions, additions)
//	runner := sim.NewRunner(s)
//	result, _ := runner.Run(ctx, sim.Config{Dt: 0.001, Duration: 1})
//
// # Thread Safety
//
// A Simulation is owned by the goroutine stepping it. Clones share only
// immutable data and may be stepped in parallel.
package sim
