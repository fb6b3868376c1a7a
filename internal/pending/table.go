// Package pending correlates companion results with the sessions whose
// requests produced them.
package pending

import "sync"

// Table maps in-flight request ids to session ids. Entries live until their
// result arrives; there is no expiry.
type Table struct {
	mu      sync.Mutex
	entries map[string]string
}

// New creates an empty table.
func New() *Table {
	return &Table{entries: make(map[string]string)}
}

// Register records that requestID was sent on behalf of sessionID.
func (t *Table) Register(requestID, sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[requestID] = sessionID
}

// Resolve returns and forgets the session for requestID. Unknown ids report
// false and leave the table untouched.
func (t *Table) Resolve(requestID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessionID, ok := t.entries[requestID]
	if ok {
		delete(t.entries, requestID)
	}
	return sessionID, ok
}

// Len returns the number of outstanding requests.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
