package scheduler

import (
	"testing"

	"github.com/rocky-lang/rocky/encoder"
	"github.com/rocky-lang/rocky/vm"
)

func haltOnlyImage(t *testing.T) []byte {
	t.Helper()
	heap := encoder.NewMemoryHeap()
	code := encoder.EncodeInstruction(encoder.HLT)
	image, err := encoder.BuildImage(heap, code)
	if err != nil {
		t.Fatalf("BuildImage failed: %v", err)
	}
	return image
}

func TestSpawnRunsAndCollectsEvents(t *testing.T) {
	s := &Scheduler{}
	m := vm.NewVM()
	m.SetProgram(haltOnlyImage(t))

	events := s.Spawn(m).Wait()

	if len(events) != 2 {
		t.Fatalf("expected Start + GracefulStop events, got %d: %v", len(events), events)
	}
	if events[0].Kind != vm.EventStart {
		t.Errorf("expected first event to be Start, got %v", events[0].Kind)
	}
	if events[len(events)-1].Kind != vm.EventGracefulStop {
		t.Errorf("expected last event to be GracefulStop, got %v", events[len(events)-1].Kind)
	}
}

func TestSpawnAllRunsMultipleVMsIndependently(t *testing.T) {
	s := &Scheduler{}
	machines := make([]*vm.VM, 3)
	for i := range machines {
		machines[i] = vm.NewVM()
		machines[i].SetProgram(haltOnlyImage(t))
	}

	handles := s.SpawnAll(machines)
	if len(handles) != 3 {
		t.Fatalf("expected 3 handles, got %d", len(handles))
	}

	for i, h := range handles {
		events := h.Wait()
		if len(events) != 2 {
			t.Errorf("machine %d: expected 2 events, got %d", i, len(events))
		}
	}
}
