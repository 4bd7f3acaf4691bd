package render

import (
	"context"
	"fmt"
	"time"

	"github.com/globe-viz/globe/internal/scene"
)

// Sink consumes a frame. It must finish with f before returning, since tube
// buffers are released by later frames.
type Sink func(f *scene.Frame, step time.Duration) error

// Step advances sc by dt and hands the frame to every sink. step passed to
// sinks is the wall time spent producing the frame.
func Step(sc *scene.Context, dt time.Duration, sinks []Sink) (*scene.Frame, error) {
	start := time.Now()
	f := sc.Frame(dt)
	step := time.Since(start)

	for _, s := range sinks {
		if err := s(f, step); err != nil {
			return f, fmt.Errorf("frame %d: %w", f.Number, err)
		}
	}
	return f, nil
}

// HeadlessOptions controls RunHeadless.
type HeadlessOptions struct {
	Hz    float64
	Ticks int // stop after this many frames; 0 runs until ctx is done
}

func (o HeadlessOptions) interval() time.Duration {
	hz := o.Hz
	if hz <= 0 {
		hz = 60
	}
	return time.Duration(float64(time.Second) / hz)
}

// RunHeadless steps sc on a ticker without a window. Every frame advances
// simulated time by exactly one interval, so runs are reproducible however
// late the ticker fires.
func RunHeadless(ctx context.Context, sc *scene.Context, opts HeadlessOptions, sinks ...Sink) error {
	dt := opts.interval()
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	sc.Logger.Info("headless frame loop started", "demo", sc.Name, "interval", dt, "ticks", opts.Ticks)
	for n := 0; opts.Ticks <= 0 || n < opts.Ticks; n++ {
		select {
		case <-ctx.Done():
			sc.Logger.Info("headless frame loop stopped", "frames", sc.Frames())
			return nil
		case <-ticker.C:
		}
		if _, err := Step(sc, dt, sinks); err != nil {
			return err
		}
	}
	sc.Logger.Info("headless frame loop finished", "frames", sc.Frames())
	return nil
}
