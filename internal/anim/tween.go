package anim

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

// Forever repeats a tween until the scheduler is dropped.
const Forever = -1

// Tween animates Target from From to To. Scalar tweens use the X component;
// ScalarTween fills it in. When FromCurrent is set, From is read from the
// target on the first active frame instead.
type Tween struct {
	Target      Target
	From, To    r3.Vec
	FromCurrent bool
	Duration    time.Duration
	Delay       time.Duration
	Repeat      int // extra iterations, Forever for infinite
	Yoyo        bool
	Ease        Ease
}

// ScalarTween builds a tween of a float from a to b that reports every value
// to onUpdate.
func ScalarTween(p *float64, a, b float64, d time.Duration, onUpdate func(float64)) Tween {
	return Tween{Target: Scalar(p, onUpdate), From: r3.Vec{X: a}, To: r3.Vec{X: b}, Duration: d, Ease: Power1Out}
}

func (tw *Tween) validate() error {
	if !tw.Target.valid() {
		return ErrNoTarget
	}
	if tw.Duration <= 0 {
		return fmt.Errorf("tween duration must be positive, got %v", tw.Duration)
	}
	if tw.Repeat < Forever {
		return fmt.Errorf("tween repeat must be >= %d, got %d", Forever, tw.Repeat)
	}
	if tw.Ease == nil {
		tw.Ease = Power1Out
	}
	return nil
}

// progress returns the eased progress at elapsed time since start, whether the
// tween has begun, and whether it has finished.
func (tw *Tween) progress(elapsed time.Duration) (p float64, started, done bool) {
	local := elapsed - tw.Delay
	if local < 0 {
		return 0, false, false
	}

	iter := int64(local / tw.Duration)
	frac := float64(local%tw.Duration) / float64(tw.Duration)

	if tw.Repeat != Forever && iter > int64(tw.Repeat) {
		iter, frac, done = int64(tw.Repeat), 1, true
	}
	if tw.Yoyo && iter%2 == 1 {
		frac = 1 - frac
	}
	return tw.Ease(frac), true, done
}

func lerp(a, b r3.Vec, p float64) r3.Vec {
	return r3.Add(a, r3.Scale(p, r3.Sub(b, a)))
}
