package scene

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/globe-viz/globe/internal/anim"
	"github.com/globe-viz/globe/internal/queue"
	"github.com/globe-viz/globe/internal/tube"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mutation changes the scene between frames. Background work such as the
// border loader hands mutations to the frame loop through Enqueue.
type Mutation func(*Scene) error

// FrameHook runs once per frame after tweens are stepped.
type FrameHook func(dt time.Duration)

// Context is the state of one running demo: scene, camera, scheduler,
// geometry tracker and the deferred mutation queue. It is passed explicitly
// to builders and to the frame loop.
type Context struct {
	Name      string
	Scene     *Scene
	Camera    *Camera
	Scheduler *anim.Scheduler
	Tubes     *tube.Tracker
	Logger    *slog.Logger

	mutations *queue.Queue[Mutation]
	hooks     []FrameHook
	closers   []func()

	frames  atomic.Uint64
	elapsed atomic.Int64 // nanoseconds
}

// NewContext creates a context with an empty scene and a default camera.
func NewContext(name string, logger *slog.Logger) (*Context, error) {
	sched, err := anim.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	tubes, err := tube.NewTracker()
	if err != nil {
		return nil, fmt.Errorf("creating tube tracker: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Context{
		Name:      name,
		Scene:     New(),
		Camera:    NewCamera(75, 16.0/9.0, 0.1, 1000, r3.Vec{Z: 5}),
		Scheduler: sched,
		Tubes:     tubes,
		Logger:    logger,
		mutations: queue.New[Mutation](),
	}, nil
}

// Enqueue schedules m to run at the start of the next frame. It is safe to
// call from any goroutine.
func (c *Context) Enqueue(m Mutation) {
	c.mutations.Push(m)
}

// Pending returns the number of mutations waiting for the next frame.
func (c *Context) Pending() int {
	return c.mutations.Len()
}

// OnFrame registers a hook run every frame after tweens are stepped.
func (c *Context) OnFrame(h FrameHook) {
	c.hooks = append(c.hooks, h)
}

// OnClose registers cleanup run by Close in reverse order.
func (c *Context) OnClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Frames returns how many frames have been produced.
func (c *Context) Frames() uint64 {
	return c.frames.Load()
}

// Elapsed returns the simulated time since the first frame.
func (c *Context) Elapsed() time.Duration {
	return time.Duration(c.elapsed.Load())
}

// Frame advances the demo by dt and returns a snapshot for sinks. Queued
// mutations are applied first, then tweens, hooks and the camera.
func (c *Context) Frame(dt time.Duration) *Frame {
	for _, m := range c.mutations.Drain() {
		if err := m(c.Scene); err != nil {
			c.Logger.Warn("scene mutation failed", "error", err)
		}
	}

	c.Scheduler.Step(dt)
	for _, h := range c.hooks {
		h(dt)
	}
	c.Camera.Update(dt)

	c.elapsed.Add(int64(dt))
	n := c.frames.Add(1)
	return c.Snapshot(n)
}

// Close runs registered cleanup, releasing per-frame geometry.
func (c *Context) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
