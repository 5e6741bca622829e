// Package engine holds the pure scheduling policies of the practice engine:
// per-attempt progression, SRS interval math, exercise selection, and batch
// difficulty scoring. Nothing in this package touches storage or the clock
// beyond values passed in.
package engine

// Defaults is the insufficient-data policy: the neutral values substituted
// when a word has too little history for a metric to be meaningful. Keeping
// them in one value object makes the fallbacks a testable contract instead
// of inline literals.
type Defaults struct {
	// ConsistencyScore is assumed below MinAttemptsForStats attempts.
	ConsistencyScore float64
	// RecentPerformance is assumed when no recent attempts exist.
	RecentPerformance float64
	// ResponseTimeSec is assumed before any timed answer arrives.
	ResponseTimeSec float64
	// MinAttemptsForStats gates variance-based metrics.
	MinAttemptsForStats int32
}

// DefaultPolicy returns the standard neutral values.
func DefaultPolicy() Defaults {
	return Defaults{
		ConsistencyScore:    50,
		RecentPerformance:   50,
		ResponseTimeSec:     10,
		MinAttemptsForStats: 5,
	}
}
