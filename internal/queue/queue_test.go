package queue

import (
	"sync"
	"testing"
)

type mutation struct {
	ID   int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[mutation]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
	if got := q.Drain(); got != nil {
		t.Errorf("expected nil drain on empty queue, got %v", got)
	}
}

func TestQueue_TryPop(t *testing.T) {
	q := New[mutation]()

	if _, ok := q.TryPop(); ok {
		t.Error("expected TryPop on empty queue to fail")
	}

	q.Push(mutation{ID: 1, Name: "borders"}, mutation{ID: 2, Name: "stars"})
	first, ok := q.TryPop()
	if !ok || first.ID != 1 || first.Name != "borders" {
		t.Errorf("expected {1, borders}, got %+v (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_DrainKeepsOrder(t *testing.T) {
	q := New[mutation]()
	q.Push(mutation{ID: 1}, mutation{ID: 2})
	q.Push(mutation{ID: 3})

	got := q.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	for i, m := range got {
		if m.ID != i+1 {
			t.Errorf("item %d: expected ID %d, got %d", i, i+1, m.ID)
		}
	}
	if q.Len() != 0 {
		t.Error("expected empty queue after Drain")
	}
	if q.Pushed() != 3 {
		t.Errorf("expected 3 pushed, got %d", q.Pushed())
	}
}

func TestQueue_ConcurrentPushDrain(t *testing.T) {
	q := New[mutation]()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			q.Push(mutation{ID: id})
		}(i)
	}

	results := make(chan int, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- len(q.Drain())
		}()
	}
	wg.Wait()
	close(results)

	total := q.Len()
	for n := range results {
		total += n
	}
	if total != 100 {
		t.Errorf("expected 100 items across drains, got %d", total)
	}
}
