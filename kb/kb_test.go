package kb

import (
	"sync"
	"testing"
)

func TestRecordAndMean(t *testing.T) {
	ledger := NewTrialLedger()
	for i, days := range []int{2, 3, 7} {
		if err := ledger.Record(TrialRecord{Index: i, Seed: int64(100 + i), Days: days}); err != nil {
			t.Fatalf("Record(%d) error: %v", i, err)
		}
	}

	mean, err := ledger.MeanDays()
	if err != nil {
		t.Fatalf("MeanDays error: %v", err)
	}
	if mean != 4 {
		t.Fatalf("MeanDays = %v, want 4", mean)
	}

	seeds := ledger.Seeds()
	want := []int64{100, 101, 102}
	if len(seeds) != len(want) {
		t.Fatalf("Seeds() = %v, want %v", seeds, want)
	}
	for i := range want {
		if seeds[i] != want[i] {
			t.Fatalf("Seeds() = %v, want %v", seeds, want)
		}
	}
}

func TestMeanDaysEmpty(t *testing.T) {
	if _, err := NewTrialLedger().MeanDays(); err == nil {
		t.Fatalf("expected error for empty ledger")
	}
}

func TestRecordRejectsOutOfOrderIndex(t *testing.T) {
	ledger := NewTrialLedger()
	if err := ledger.Record(TrialRecord{Index: 1, Seed: 5}); err == nil {
		t.Fatalf("expected out-of-order Record to fail")
	}
}

func TestRecordRejectsDuplicateSeed(t *testing.T) {
	ledger := NewTrialLedger()
	if err := ledger.Record(TrialRecord{Index: 0, Seed: 5}); err != nil {
		t.Fatalf("first Record error: %v", err)
	}
	if err := ledger.Record(TrialRecord{Index: 1, Seed: 5}); err == nil {
		t.Fatalf("expected duplicate seed to fail")
	}
	if ledger.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", ledger.Len())
	}
}

func TestTrialsReturnsCopy(t *testing.T) {
	ledger := NewTrialLedger()
	_ = ledger.Record(TrialRecord{Index: 0, Seed: 1, Days: 4})
	trials := ledger.Trials()
	trials[0].Days = 99
	if got := ledger.Trials()[0].Days; got != 4 {
		t.Fatalf("ledger mutated through snapshot: Days = %d", got)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	ledger := NewTrialLedger()

	var (
		mu     sync.Mutex
		events []Event
	)
	unsub := ledger.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	if err := ledger.Record(TrialRecord{Index: 0, Seed: 10, Days: 3}); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	mu.Lock()
	if len(events) != 1 {
		mu.Unlock()
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Type != EventTrialRecorded || events[0].Trial.Seed != 10 {
		mu.Unlock()
		t.Fatalf("unexpected event: %#v", events[0])
	}
	mu.Unlock()

	unsub()
	_ = ledger.Record(TrialRecord{Index: 1, Seed: 11, Days: 3})

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected no events after unsubscribe, got %d", len(events))
	}
}

func TestUnsubscribeInRegistrationOrder(t *testing.T) {
	ledger := NewTrialLedger()

	var a, b, c int
	unA := ledger.Subscribe(func(Event) { a++ })
	unB := ledger.Subscribe(func(Event) { b++ })
	ledger.Subscribe(func(Event) { c++ })

	unA()
	unB()
	unA()
	if err := ledger.Record(TrialRecord{Index: 0, Seed: 1, Days: 2}); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if a != 0 || b != 0 {
		t.Fatalf("unsubscribed listeners notified: a=%d b=%d", a, b)
	}
	if c != 1 {
		t.Fatalf("remaining listener notified %d times, want 1", c)
	}
}
