package feed

import (
	"context"
	"sync"
	"testing"
	"time"
)

func testUpdate(slot uint64) AccountUpdate {
	return AccountUpdate{Slot: slot}
}

func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue()
	for i := uint64(1); i <= 5; i++ {
		if !q.Enqueue(testUpdate(i)) {
			t.Fatalf("Enqueue(%d) returned false", i)
		}
	}

	ctx := context.Background()
	for i := uint64(1); i <= 5; i++ {
		msg, ok := q.Dequeue(ctx)
		if !ok {
			t.Fatalf("Dequeue() returned false at %d", i)
		}
		if got := msg.(AccountUpdate).Slot; got != i {
			t.Errorf("Dequeue() slot = %d, want %d", got, i)
		}
	}

	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueCloseDrainsPending(t *testing.T) {
	q := NewQueue()
	q.Enqueue(testUpdate(1))
	q.Enqueue(testUpdate(2))
	q.Close()

	if q.Enqueue(testUpdate(3)) {
		t.Error("Enqueue() after Close should return false")
	}

	ctx := context.Background()
	for i := uint64(1); i <= 2; i++ {
		msg, ok := q.Dequeue(ctx)
		if !ok {
			t.Fatalf("Dequeue() should drain pending message %d", i)
		}
		if got := msg.(AccountUpdate).Slot; got != i {
			t.Errorf("Dequeue() slot = %d, want %d", got, i)
		}
	}

	if _, ok := q.Dequeue(ctx); ok {
		t.Error("Dequeue() on closed empty queue should return false")
	}
}

func TestQueueDequeueHonorsContext(t *testing.T) {
	q := NewQueue()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, ok := q.Dequeue(ctx); ok {
			t.Error("Dequeue() should return false on cancellation")
		}
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue() did not return after context cancellation")
	}
}

func TestQueueBlocksUntilEnqueue(t *testing.T) {
	q := NewQueue()
	got := make(chan uint64, 1)

	go func() {
		msg, ok := q.Dequeue(context.Background())
		if ok {
			got <- msg.(AccountUpdate).Slot
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(testUpdate(42))

	select {
	case slot := <-got:
		if slot != 42 {
			t.Errorf("Dequeue() slot = %d, want 42", slot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dequeue() never observed the enqueued message")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Enqueue(testUpdate(1))
			}
		}()
	}
	wg.Wait()
	q.Close()

	count := 0
	ctx := context.Background()
	for {
		_, ok := q.Dequeue(ctx)
		if !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("drained %d messages, want %d", count, producers*perProducer)
	}
}

func TestQueueCloseIsIdempotent(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Close()
}
