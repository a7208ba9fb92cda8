package generator

// #region constants

// DefaultMaxAttempts is the attempt budget when none is configured.
const DefaultMaxAttempts = 3

// #endregion

// #region policy

// RetryPolicy decides whether another attempt is allowed and which templates
// it must avoid.
type RetryPolicy struct {
	maxAttempts int
}

// NewRetryPolicy returns a policy allowing maxAttempts total attempts.
// Non-positive values fall back to the default of 3.
func NewRetryPolicy(maxAttempts int) *RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryPolicy{maxAttempts: maxAttempts}
}

// MaxAttempts returns the attempt bound.
func (r *RetryPolicy) MaxAttempts() int {
	return r.maxAttempts
}

// #endregion

// #region should-retry

// ShouldRetry reports whether another attempt is allowed after attempts.
// The returned set lists every template that already failed, so the next
// draw never repeats a known-bad candidate.
func (r *RetryPolicy) ShouldRetry(attempts []Attempt) (bool, map[string]bool) {
	if len(attempts) == 0 {
		return false, nil
	}

	// Max attempts reached
	if len(attempts) >= r.maxAttempts {
		return false, nil
	}

	latest := attempts[len(attempts)-1]
	if latest.Failure == FailureNone {
		return false, nil
	}

	// Collect tried templates
	tried := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		if a.SituationID != "" {
			tried[a.SituationID] = true
		}
	}
	return true, tried
}

// #endregion
