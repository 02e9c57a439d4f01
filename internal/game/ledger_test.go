package game

import (
	"sync"
	"testing"
)

func TestLedgerSinceReturnsCopies(t *testing.T) {
	l := NewLedger(NewSnapshot(LangEN))
	next := NewSnapshot(LangEN)
	next.TurnsRemaining = 4
	l.Append(next)

	tail := l.Since(1)
	if len(tail) != 1 || tail[0].TurnsRemaining != 4 {
		t.Fatalf("unexpected tail %+v", tail)
	}
	tail[0].Cash = 0
	if got := l.Entries(); got[len(got)-1].Cash != StartingCash {
		t.Fatalf("caller mutation leaked into ledger")
	}
	if got := l.Since(5); len(got) != 0 {
		t.Fatalf("since past end=%d entries", len(got))
	}
	if got := l.Since(-3); len(got) != 2 {
		t.Fatalf("negative index should clamp to 0, got %d", len(got))
	}
}

func TestLedgerConcurrentReaders(t *testing.T) {
	l := NewLedger()
	var wg sync.WaitGroup
	const appends = 500

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := NewSnapshot(LangEN)
		for i := 0; i < appends; i++ {
			s.Knowledge = float64(i)
			l.Append(s)
		}
	}()
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < appends; i++ {
				entries := l.Entries()
				for j, e := range entries {
					if e.Knowledge != float64(j) {
						t.Errorf("entry %d knowledge=%.0f", j, e.Knowledge)
						return
					}
				}
			}
		}()
	}
	wg.Wait()
	if l.Len() != appends {
		t.Fatalf("len=%d want %d", l.Len(), appends)
	}
}
