//go:build headless

package arcanee

import "testing"

func TestAudioCommandQueuePushPopPreservesOrder(t *testing.T) {
	q := NewAudioCommandQueue()
	for i := 0; i < 5; i++ {
		if !q.Push(AudioCommand{Kind: CmdSetMasterVolume, Value: float64(i)}) {
			t.Fatalf("push %d failed unexpectedly", i)
		}
	}
	for i := 0; i < 5; i++ {
		cmd, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d: expected a command", i)
		}
		if cmd.Value != float64(i) {
			t.Fatalf("pop %d: expected value %d, got %v (order not preserved)", i, i, cmd.Value)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected empty queue after draining all pushed commands")
	}
}

func TestAudioCommandQueueRejectsPushWhenFull(t *testing.T) {
	q := NewAudioCommandQueue()
	capacity := len(q.buf)
	for i := 0; i < capacity; i++ {
		if !q.Push(AudioCommand{Kind: CmdStopAll}) {
			t.Fatalf("push %d: expected success while under capacity", i)
		}
	}
	if q.Push(AudioCommand{Kind: CmdStopAll}) {
		t.Fatal("expected push to fail once the queue is full")
	}
}

func TestAudioCommandQueueDrainIntoAppliesAllInOrder(t *testing.T) {
	q := NewAudioCommandQueue()
	q.Push(AudioCommand{Kind: CmdSetMasterVolume, Value: 1})
	q.Push(AudioCommand{Kind: CmdSetMasterVolume, Value: 2})
	q.Push(AudioCommand{Kind: CmdSetMasterVolume, Value: 3})

	var seen []float64
	q.DrainInto(func(cmd AudioCommand) { seen = append(seen, cmd.Value) })

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Fatalf("expected [1 2 3] in order, got %v", seen)
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected queue to be empty after DrainInto")
	}
}

func TestAudioCommandQueuePushAfterDrainReusesSlots(t *testing.T) {
	q := NewAudioCommandQueue()
	capacity := len(q.buf)
	for i := 0; i < capacity; i++ {
		q.Push(AudioCommand{Kind: CmdStopAll})
	}
	q.DrainInto(func(AudioCommand) {})
	for i := 0; i < capacity; i++ {
		if !q.Push(AudioCommand{Kind: CmdStopAll}) {
			t.Fatalf("push %d after drain: expected the ring to accept a full round again", i)
		}
	}
}
