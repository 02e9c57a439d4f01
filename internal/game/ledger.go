package game

import "sync"

// Ledger is the append-only chronological history of snapshots. Readers may
// run concurrently with appends and always see whole entries.
type Ledger struct {
	mu      sync.RWMutex
	entries []Snapshot
}

func NewLedger(entries ...Snapshot) *Ledger {
	l := &Ledger{}
	l.entries = append(l.entries, entries...)
	return l
}

func (l *Ledger) Append(entries ...Snapshot) {
	l.mu.Lock()
	l.entries = append(l.entries, entries...)
	l.mu.Unlock()
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Entries returns a copy of the full history.
func (l *Ledger) Entries() []Snapshot {
	return l.Since(0)
}

// Since returns a copy of the entries from index i on.
func (l *Ledger) Since(i int) []Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 {
		i = 0
	}
	if i >= len(l.entries) {
		return []Snapshot{}
	}
	out := make([]Snapshot, len(l.entries)-i)
	copy(out, l.entries[i:])
	return out
}
