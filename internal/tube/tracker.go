package tube

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/globe-viz/globe/internal/tube"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Tracker hands out IDs for geometry buffers and counts the ones still alive.
// Every geometry passed to Track must eventually be given to Release, or the
// live count grows without bound across an endless animation.
type Tracker struct {
	mu     sync.Mutex
	nextID uint64
	live   map[uint64]int // id -> vertex count

	liveGauge metric.Int64UpDownCounter
	released  metric.Int64Counter
}

// NewTracker creates a Tracker reporting to the global OTel meter.
func NewTracker() (*Tracker, error) {
	t := &Tracker{live: make(map[uint64]int)}

	m := meter()
	var err error

	t.liveGauge, err = m.Int64UpDownCounter(
		"tube.geometries.live",
		metric.WithDescription("Geometry buffers currently alive"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating live geometry counter: %w", err)
	}

	t.released, err = m.Int64Counter(
		"tube.geometries.released",
		metric.WithDescription("Total geometry buffers released"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating released geometry counter: %w", err)
	}

	return t, nil
}

// Track assigns g an ID and records it as alive.
func (t *Tracker) Track(g *Geometry) *Geometry {
	t.mu.Lock()
	t.nextID++
	g.ID = t.nextID
	t.live[g.ID] = g.VertexCount()
	t.mu.Unlock()

	t.liveGauge.Add(context.Background(), 1)
	return g
}

// Release frees g's buffers. Releasing nil or an already released geometry
// is a no-op.
func (t *Tracker) Release(g *Geometry) {
	if g == nil {
		return
	}

	t.mu.Lock()
	_, ok := t.live[g.ID]
	delete(t.live, g.ID)
	t.mu.Unlock()

	if !ok {
		return
	}
	g.Positions, g.Normals, g.UVs, g.Indices, g.Path = nil, nil, nil, nil, nil
	t.liveGauge.Add(context.Background(), -1)
	t.released.Add(context.Background(), 1)
}

// Live returns the number of tracked geometries not yet released.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// LiveVertices returns the total vertex count of live geometries.
func (t *Tracker) LiveVertices() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := 0
	for _, n := range t.live {
		total += n
	}
	return total
}
