package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/kayung-developer/QuantumEdge/order"
)

// Exercises concurrent adds, ticks, pushes, and reads under -race.
func TestStoreConcurrentAccess(t *testing.T) {
	f := newFakeFetcher()
	s := newTestStore(f)
	defer s.Close()

	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("ord-%d", i)
		f.mu.Lock()
		f.responses[id] = order.Order{ID: id, Status: order.StatusAccepted}
		f.mu.Unlock()
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(order.Order{ID: fmt.Sprintf("ord-%d", i), Status: order.StatusSubmitted})
		}(i)
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pollOnce(context.Background())
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
			_ = s.ActiveCount()
			_ = s.Groups()
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.ApplyUpdate(order.Order{ID: fmt.Sprintf("ord-%d", i), Status: order.StatusPartialFilled})
		}(i)
	}
	wg.Wait()

	if got := len(s.Snapshot()); got != 20 {
		t.Fatalf("expected 20 tracked orders, got %d", got)
	}
}
