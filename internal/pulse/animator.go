package pulse

import (
	"github.com/globe-viz/globe/internal/curve"
	"github.com/globe-viz/globe/internal/tube"
	"github.com/globe-viz/globe/pkg/core"
)

// Config tunes an Animator.
type Config struct {
	MaxLen    float64
	Divisions int
	Tube      tube.Options
}

// DefaultConfig returns the stock pulse settings.
func DefaultConfig() Config {
	return Config{MaxLen: DefaultMaxLen, Divisions: DefaultDivisions, Tube: DefaultTube}
}

// Animator rebuilds the tube of one arc's pulse every frame. It is driven by
// a single frame loop and is not safe for concurrent use.
type Animator struct {
	arc     curve.Curve
	cfg     Config
	tracker *tube.Tracker

	window  core.PulseWindow
	current *tube.Geometry
}

// NewAnimator validates cfg and returns an animator for arc.
func NewAnimator(arc curve.Curve, cfg Config, tracker *tube.Tracker) (*Animator, error) {
	if err := ValidateMaxLen(cfg.MaxLen); err != nil {
		return nil, err
	}
	if cfg.Divisions <= 0 {
		cfg.Divisions = DefaultDivisions
	}
	return &Animator{arc: arc, cfg: cfg, tracker: tracker}, nil
}

// Update recomputes the window for progress, releases the previous frame's
// tube and builds the new one. A collapsed window leaves no tube.
func (a *Animator) Update(progress float64) *tube.Geometry {
	a.window = Advance(progress, a.cfg.MaxLen)

	var next *tube.Geometry
	if !a.window.Collapsed() {
		pts := Resample(a.arc, a.window, a.cfg.Divisions)
		// Resample always yields at least two points
		seg, err := curve.NewCatmullRom(pts)
		if err == nil {
			next = a.tracker.Track(tube.New(seg, a.cfg.Tube))
		}
	}

	a.tracker.Release(a.current)
	a.current = next
	return next
}

// Window returns the window computed by the last Update.
func (a *Animator) Window() core.PulseWindow {
	return a.window
}

// Geometry returns the current tube, or nil when nothing is visible.
func (a *Animator) Geometry() *tube.Geometry {
	return a.current
}

// MaxLen returns the configured maximum pulse length.
func (a *Animator) MaxLen() float64 {
	return a.cfg.MaxLen
}

// Close releases the current tube.
func (a *Animator) Close() {
	a.tracker.Release(a.current)
	a.current = nil
}
