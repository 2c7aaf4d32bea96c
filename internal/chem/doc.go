// Package chem holds the static data model of a reaction network.
//
// The types here are created once while a simulation is parsed and are not
// mutated afterwards:
//
//   - [Registry]: name-keyed set of [Chemical] values with stable handles
//   - [Component]: a chemical with its stoichiometric coefficient
//   - [Reaction]: one reversible reaction with forward and equilibrium constants
//   - [Schedule]: one-shot [Addition] events ordered by declaration
//
// # Identity
//
// A [Chemical] is compared by handle. Handles are dense indices into the
// registry that issued them, so engine state can be kept in plain slices
// indexed by [ID].
package chem
