// Package continuous implements the Continuous Execution Manager (§4.5):
// one independent worker per running continuous node, each driven by its
// own interval timer, reporting typed ExecutionResult messages back to the
// manager over a channel, and obeying the exhaustive ContinuousState
// transition table defined in types.CanTransition.
package continuous
