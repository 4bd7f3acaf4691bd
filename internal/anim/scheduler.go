// Package anim drives tweens from an explicit per-frame scheduler.
package anim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/globe-viz/globe/internal/anim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Handle identifies a scheduled tween.
type Handle uint64

type entry struct {
	id      Handle
	tween   Tween
	elapsed time.Duration
	started bool
}

// Scheduler advances every registered tween once per Step, in insertion order.
// Step must only be called from the frame loop; Add and Remove may be called
// from the same goroutine between frames.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	nextID  Handle

	frames   metric.Int64Counter
	stepTime metric.Float64Histogram
	active   metric.Int64ObservableGauge
}

// NewScheduler creates a scheduler reporting to the global OTel meter
// (no-op if not configured).
func NewScheduler() (*Scheduler, error) {
	s := &Scheduler{}
	m := meter()

	var err error
	s.frames, err = m.Int64Counter(
		"anim.frames",
		metric.WithDescription("Frames stepped by the scheduler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frame counter: %w", err)
	}

	s.stepTime, err = m.Float64Histogram(
		"anim.step.duration",
		metric.WithDescription("Wall time spent stepping tweens"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating step histogram: %w", err)
	}

	s.active, err = m.Int64ObservableGauge(
		"anim.entries",
		metric.WithDescription("Tweens currently scheduled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating entries gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(s.active, int64(s.Len()))
			return nil
		},
		s.active,
	)
	if err != nil {
		return nil, fmt.Errorf("registering entries callback: %w", err)
	}

	return s, nil
}

// Add schedules tw and returns its handle.
func (s *Scheduler) Add(tw Tween) (Handle, error) {
	if err := tw.validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.entries = append(s.entries, &entry{id: s.nextID, tween: tw})
	return s.nextID, nil
}

// Remove drops the tween with handle h. Unknown handles are ignored.
func (s *Scheduler) Remove(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.entries {
		if e.id == h {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Len returns the number of scheduled tweens.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Step advances every tween by dt, writes its target and runs its update
// callback. Finished tweens are written one last time and removed.
func (s *Scheduler) Step(dt time.Duration) {
	start := time.Now()

	s.mu.Lock()
	entries := make([]*entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	var finished []Handle
	for _, e := range entries {
		e.elapsed += dt
		p, started, done := e.tween.progress(e.elapsed)
		if !started {
			continue
		}
		if !e.started {
			if e.tween.FromCurrent {
				e.tween.From = e.tween.Target.get()
			}
			e.started = true
		}

		v := lerp(e.tween.From, e.tween.To, p)
		e.tween.Target.set(v)
		if done {
			finished = append(finished, e.id)
		}
	}

	for _, h := range finished {
		s.Remove(h)
	}

	ctx := context.Background()
	s.frames.Add(ctx, 1)
	s.stepTime.Record(ctx, time.Since(start).Seconds())
}
