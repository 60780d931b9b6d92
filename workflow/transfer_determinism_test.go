package workflow

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

// NOTE: These tests are intentionally DB-free. They validate the intended
// command semantics:
// - resubmitting a transfer command_ref never creates a second transfer
// - re-approving an approved transfer never moves credit twice
// - a phase transition guarded under the row lock applies exactly once
//
// Full DB integration tests should be added in an environment that can run
// MySQL + Redis.

type fakeTransferEngine struct {
	mu        sync.Mutex
	byRef     map[string]int // command_ref -> transfer id
	approved  map[int]bool
	nextId    int
	creates   int
	movements int
	source    decimal.Decimal
}

func newFakeTransferEngine(source decimal.Decimal) *fakeTransferEngine {
	return &fakeTransferEngine{
		byRef:    map[string]int{},
		approved: map[int]bool{},
		source:   source,
	}
}

// submit models CreateTransfer: the unique command_ref index makes
// resubmission return the transfer already created for it.
func (e *fakeTransferEngine) submit(commandRef string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id, ok := e.byRef[commandRef]; ok {
		return id
	}
	e.nextId++
	e.byRef[commandRef] = e.nextId
	e.creates++
	return e.nextId
}

// approve models ApproveTransfer: the status re-check under the serialized
// section makes a second approval a no-op instead of a second movement.
func (e *fakeTransferEngine) approve(id int, amount decimal.Decimal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.approved[id] {
		return
	}
	e.approved[id] = true
	e.source = e.source.Sub(amount)
	e.movements++
}

func TestTransferResubmissionIsAppliedOnce(t *testing.T) {
	for run := 0; run < 100; run++ {
		e := newFakeTransferEngine(decimal.NewFromInt(1000000))
		amount := decimal.NewFromInt(250000)

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id := e.submit("cmd-2026-0042")
				e.approve(id, amount)
			}()
		}
		wg.Wait()

		if e.creates != 1 {
			t.Fatalf("run=%d expected 1 created transfer, got %d", run, e.creates)
		}
		if e.movements != 1 {
			t.Fatalf("run=%d expected 1 credit movement, got %d", run, e.movements)
		}
		if want := decimal.NewFromInt(750000); !e.source.Equal(want) {
			t.Fatalf("run=%d source = %s, want %s", run, e.source, want)
		}
	}
}

func TestDistinctCommandRefsCreateDistinctTransfers(t *testing.T) {
	e := newFakeTransferEngine(decimal.NewFromInt(1000000))
	amount := decimal.NewFromInt(100000)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		ref := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := e.submit(ref)
			e.approve(id, amount)
			e.approve(id, amount) // duplicate decision
		}()
	}
	wg.Wait()

	if e.creates != 3 {
		t.Fatalf("expected 3 created transfers, got %d", e.creates)
	}
	if e.movements != 3 {
		t.Fatalf("expected 3 credit movements, got %d", e.movements)
	}
	if want := decimal.NewFromInt(700000); !e.source.Equal(want) {
		t.Fatalf("source = %s, want %s", e.source, want)
	}
}
