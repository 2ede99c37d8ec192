package poll

// Backoff counts consecutive tick failures. Below the threshold,
// failures only mean the checkpoint is not advanced and the next tick
// retries the same window. At the threshold, the caller doubles its
// tick interval and the counter resets. The interval is never
// restored automatically; that one-way degradation is deliberate and
// requires a restart to undo.
type Backoff struct {
	threshold int
	failures  int
}

// NewBackoff creates a controller that trips after threshold
// consecutive failures.
func NewBackoff(threshold int) *Backoff {
	if threshold < 1 {
		threshold = 1
	}
	return &Backoff{threshold: threshold}
}

// Failure records one failed tick and reports whether the tick
// interval should double now. The counter resets when it trips.
func (b *Backoff) Failure() bool {
	b.failures++
	if b.failures >= b.threshold {
		b.failures = 0
		return true
	}
	return false
}

// Success resets the failure counter.
func (b *Backoff) Success() {
	b.failures = 0
}

// Failures returns the current consecutive failure count.
func (b *Backoff) Failures() int {
	return b.failures
}
