package kb

import (
	"fmt"
	"sync"
)

// EventType indicates what kind of change happened in the ledger.
type EventType int

const (
	EventTrialRecorded EventType = iota
)

// TrialRecord is the outcome of one seeded trial.
type TrialRecord struct {
	Index      int
	Seed       int64
	Days       int
	Vaccinated int
}

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type  EventType
	Trial TrialRecord
}

// TrialLedger is an in-memory, thread-safe store of trial outcomes,
// ordered by trial index.
type TrialLedger struct {
	mu sync.RWMutex

	trials []TrialRecord
	seeds  map[int64]int

	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewTrialLedger constructs an empty ledger.
func NewTrialLedger() *TrialLedger {
	return &TrialLedger{
		seeds: make(map[int64]int),
	}
}

// Record appends a trial. Trials must arrive in index order and a seed may
// only be used once per ledger.
func (l *TrialLedger) Record(rec TrialRecord) error {
	l.mu.Lock()
	if rec.Index != len(l.trials) {
		l.mu.Unlock()
		return fmt.Errorf("trial index %d out of order, expected %d", rec.Index, len(l.trials))
	}
	if prev, exists := l.seeds[rec.Seed]; exists {
		l.mu.Unlock()
		return fmt.Errorf("seed %d already used by trial %d", rec.Seed, prev)
	}
	l.trials = append(l.trials, rec)
	l.seeds[rec.Seed] = rec.Index
	event := Event{Type: EventTrialRecorded, Trial: rec}
	subs := append([]subscriber(nil), l.subs...)
	l.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub.fn(event)
	}
	return nil
}

// Len returns the number of recorded trials.
func (l *TrialLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trials)
}

// Trials returns a snapshot slice of all trials in index order.
func (l *TrialLedger) Trials() []TrialRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]TrialRecord(nil), l.trials...)
}

// Seeds returns the seeds in the order they were used.
func (l *TrialLedger) Seeds() []int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	res := make([]int64, 0, len(l.trials))
	for _, t := range l.trials {
		res = append(res, t.Seed)
	}
	return res
}

// MeanDays returns the arithmetic mean of the recorded durations. It
// returns an error when the ledger is empty.
func (l *TrialLedger) MeanDays() (float64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.trials) == 0 {
		return 0, fmt.Errorf("no trials recorded")
	}
	total := 0
	for _, t := range l.trials {
		total += t.Days
	}
	return float64(total) / float64(len(l.trials)), nil
}

// Subscribe registers a callback for ledger events. It returns an
// unsubscribe function; calling it more than once is harmless.
func (l *TrialLedger) Subscribe(fn func(Event)) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.subs = append(l.subs, subscriber{id: id, fn: fn})

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, sub := range l.subs {
			if sub.id == id {
				l.subs = append(l.subs[:i], l.subs[i+1:]...)
				return
			}
		}
	}
}
