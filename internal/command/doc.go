// Package command synthesizes rest-to-rest acceleration commands.
//
// A [Move] is planned as a bang-coast-bang (trapezoidal velocity) profile,
// collapsing to bang-bang (triangular velocity) when the coast phase would
// have non-positive duration. A non-empty [Shaper] superposes one copy of
// the four-switch bang-coast-bang profile per impulse, delayed by the impulse
// time and scaled by its amplitude. Shaped commands never collapse to
// bang-bang.
//
// Every profile is a sum of scaled unit steps. The unit step is 0 at the
// switch time itself and 1 strictly after it.
package command
