package search

// TabuList is a bounded-lifetime memory of forbidden move reversals. Each
// entry maps a canonical move key to the iteration at which it expires; the
// key is forbidden while the current iteration is below the expiry.
type TabuList struct {
	entries map[string]int
}

// NewTabuList creates an empty tabu list.
func NewTabuList() *TabuList {
	return &TabuList{entries: make(map[string]int)}
}

// Add marks a move key forbidden until the expiry iteration. With expiry
// equal to the current iteration (tenure zero) the key is never forbidden.
func (t *TabuList) Add(key string, expiry int) {
	if existing, ok := t.entries[key]; ok && existing >= expiry {
		return
	}
	t.entries[key] = expiry
}

// Forbidden reports whether the key is tabu at the given iteration.
func (t *TabuList) Forbidden(key string, now int) bool {
	expiry, ok := t.entries[key]
	return ok && now < expiry
}

// Expire drops all entries whose expiry has passed, keeping memory bounded
// by the tenure times the neighborhood commit rate.
func (t *TabuList) Expire(now int) {
	for key, expiry := range t.entries {
		if expiry <= now {
			delete(t.entries, key)
		}
	}
}

// Reset clears the list, used on reinitialization.
func (t *TabuList) Reset() {
	t.entries = make(map[string]int)
}

// Len returns the number of active entries.
func (t *TabuList) Len() int {
	return len(t.entries)
}
