// Package tracker keeps the short-term memory used to avoid repetition.
package tracker

// #region constants

const (
	// DomainHistory is how many recent domains the ring buffer remembers.
	DomainHistory = 15
	// EncounterWindow is how many ticks a recorded situation stays excluded.
	EncounterWindow = 30
	// DefaultRecentWindow is the domain lookback the selector uses.
	DefaultRecentWindow = 2
)

// #endregion constants

// #region context

// Context is per-player session state. It is not safe for concurrent use;
// callers serialize generate/record cycles themselves. A nil *Context reads as
// an empty history and ignores writes.
type Context struct {
	domains   [DomainHistory]string
	head      int // next write position
	size      int
	encounter map[string]uint64
	counter   uint64
}

// New returns an empty context.
func New() *Context {
	return &Context{encounter: make(map[string]uint64)}
}

// Record appends domain to the ring buffer, stamps situationID with the current
// counter and advances it. Stamps more than EncounterWindow ticks old are evicted.
func (c *Context) Record(domain, situationID string) {
	if c == nil {
		return
	}
	c.domains[c.head] = domain
	c.head = (c.head + 1) % DomainHistory
	if c.size < DomainHistory {
		c.size++
	}

	if c.encounter == nil {
		c.encounter = make(map[string]uint64)
	}
	c.encounter[situationID] = c.counter
	c.Advance()
}

// Advance moves the counter one tick without recording anything. Hosts call it
// for turns served from outside the library so encounters keep aging.
func (c *Context) Advance() {
	if c == nil {
		return
	}
	c.counter++
	for id, at := range c.encounter {
		if c.counter-at > EncounterWindow {
			delete(c.encounter, id)
		}
	}
}

// IsDomainRecent reports whether domain is among the last window recorded
// domains. A window of zero or less is never recent.
func (c *Context) IsDomainRecent(domain string, window int) bool {
	if c == nil {
		return false
	}
	n := min(window, c.size)
	for i := 1; i <= n; i++ {
		idx := (c.head - i + DomainHistory) % DomainHistory
		if c.domains[idx] == domain {
			return true
		}
	}
	return false
}

// IsEncountered reports whether id was recorded within the aging window.
func (c *Context) IsEncountered(id string) bool {
	if c == nil {
		return false
	}
	at, ok := c.encounter[id]
	return ok && c.counter-at <= EncounterWindow
}

// Counter returns the number of ticks so far, recorded or advanced.
func (c *Context) Counter() uint64 {
	if c == nil {
		return 0
	}
	return c.counter
}

// RecentDomains returns up to n recorded domains, newest first.
func (c *Context) RecentDomains(n int) []string {
	if c == nil {
		return nil
	}
	n = min(n, c.size)
	out := make([]string, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, c.domains[(c.head-i+DomainHistory)%DomainHistory])
	}
	return out
}

// #endregion context
