// Package scheduler fans a VM run out onto its own goroutine: fire and
// forget, one worker per VM, no preemption or cancellation, no thread
// pool or pid bookkeeping — Go's goroutines are cheap enough that the
// scheduler's only real job is collecting the finished event log.
package scheduler

import "github.com/rocky-lang/rocky/vm"

// Scheduler hands out Handles, one per spawned VM run. The zero value is
// ready to use.
type Scheduler struct {
	nextID uint64
}

// Handle is a running VM's fire-and-forget handle. Wait blocks until the
// VM halts or crashes and returns its full event log.
type Handle struct {
	ID     uint64
	events chan []vm.Event
}

// Wait blocks for the VM to finish and returns its event log.
func (h *Handle) Wait() []vm.Event {
	return <-h.events
}

// Spawn starts machine's Run on its own goroutine and returns a handle to
// collect the result.
func (s *Scheduler) Spawn(machine *vm.VM) *Handle {
	s.nextID++
	h := &Handle{ID: s.nextID, events: make(chan []vm.Event, 1)}

	go func() {
		h.events <- machine.Run()
	}()

	return h
}

// SpawnAll starts one goroutine per machine, returning their handles in
// the same order, for the CLI's thread-hint fan-out (`-t N`).
func (s *Scheduler) SpawnAll(machines []*vm.VM) []*Handle {
	handles := make([]*Handle, len(machines))
	for i, m := range machines {
		handles[i] = s.Spawn(m)
	}
	return handles
}
