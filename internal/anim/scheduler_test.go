package anim

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newScheduler(t *testing.T) *Scheduler {
	t.Helper()
	s, err := NewScheduler()
	require.NoError(t, err)
	return s
}

func TestAdd_Validation(t *testing.T) {
	s := newScheduler(t)

	_, err := s.Add(Tween{Duration: time.Second})
	assert.ErrorIs(t, err, ErrNoTarget)

	var v float64
	_, err = s.Add(Tween{Target: Scalar(&v, nil)})
	assert.Error(t, err)

	_, err = s.Add(Tween{Target: Scalar(&v, nil), Duration: time.Second, Repeat: -2})
	assert.Error(t, err)

	assert.Equal(t, 0, s.Len())
}

func TestStep_LinearScalarWithDelay(t *testing.T) {
	s := newScheduler(t)

	var v float64
	var seen []float64
	_, err := s.Add(Tween{
		Target:   Scalar(&v, func(x float64) { seen = append(seen, x) }),
		From:     r3.Vec{X: 0},
		To:       r3.Vec{X: 1.3},
		Duration: 5 * time.Second,
		Delay:    500 * time.Millisecond,
		Repeat:   Forever,
		Ease:     Linear,
	})
	require.NoError(t, err)

	s.Step(250 * time.Millisecond)
	assert.Equal(t, 0.0, v)
	assert.Empty(t, seen, "no updates before the delay elapses")

	s.Step(250*time.Millisecond + 2500*time.Millisecond)
	assert.InDelta(t, 0.65, v, 1e-12)

	// wraps around after one full duration
	s.Step(5 * time.Second)
	assert.InDelta(t, 0.65, v, 1e-12)
	require.Len(t, seen, 2)
	assert.Equal(t, v, seen[1], "callback sees the written value")
	assert.Equal(t, 1, s.Len(), "infinite tweens are never removed")
}

func TestStep_FiniteTweenFinishes(t *testing.T) {
	s := newScheduler(t)

	pos := r3.Vec{}
	_, err := s.Add(Tween{
		Target:   Vector(&pos, nil),
		To:       r3.Vec{X: 2, Y: 4, Z: 6},
		Duration: time.Second,
		Ease:     Linear,
	})
	require.NoError(t, err)

	s.Step(500 * time.Millisecond)
	assert.InDelta(t, 1, pos.X, 1e-12)
	assert.InDelta(t, 3, pos.Z, 1e-12)

	s.Step(2 * time.Second)
	assert.Equal(t, r3.Vec{X: 2, Y: 4, Z: 6}, pos)
	assert.Equal(t, 0, s.Len())
}

func TestStep_Yoyo(t *testing.T) {
	s := newScheduler(t)

	scale := r3.Vec{X: 1, Y: 1, Z: 1}
	_, err := s.Add(Tween{
		Target:      Vector(&scale, nil),
		FromCurrent: true,
		To:          r3.Vec{X: 1.8, Y: 1.8, Z: 1.8},
		Duration:    1200 * time.Millisecond,
		Repeat:      Forever,
		Yoyo:        true,
		Ease:        Linear,
	})
	require.NoError(t, err)

	s.Step(600 * time.Millisecond)
	assert.InDelta(t, 1.4, scale.Y, 1e-12)

	// 300ms into the second, reversed iteration
	s.Step(900 * time.Millisecond)
	assert.InDelta(t, 1.6, scale.Y, 1e-12)

	// back at the start of the third iteration
	s.Step(900 * time.Millisecond)
	assert.InDelta(t, 1.0, scale.Y, 1e-12)
}

func TestStep_FiniteYoyoEndsAtFrom(t *testing.T) {
	s := newScheduler(t)

	var v float64
	_, err := s.Add(Tween{Target: Scalar(&v, nil), From: r3.Vec{X: 2}, To: r3.Vec{X: 5}, Duration: time.Second, Repeat: 1, Yoyo: true})
	require.NoError(t, err)

	s.Step(10 * time.Second)
	assert.Equal(t, 2.0, v)
	assert.Equal(t, 0, s.Len())
}

func TestStep_RotationTarget(t *testing.T) {
	s := newScheduler(t)

	rot := r3.Vec{}
	var applied []r3.Vec
	_, err := s.Add(Tween{
		Target:   Rotation(&rot, func(e r3.Vec) { applied = append(applied, e) }),
		To:       r3.Vec{Y: 2 * math.Pi},
		Duration: 80 * time.Second,
		Repeat:   Forever,
		Ease:     Linear,
	})
	require.NoError(t, err)

	s.Step(20 * time.Second)
	assert.InDelta(t, math.Pi/2, rot.Y, 1e-12)
	require.Len(t, applied, 1)
	assert.Equal(t, rot, applied[0])
	assert.Equal(t, KindRotation, Rotation(&rot, nil).Kind)
	assert.Equal(t, "rotation", KindRotation.String())
}

func TestStep_SequentialOrder(t *testing.T) {
	s := newScheduler(t)

	var order []int
	var a, b float64
	for i, p := range []*float64{&a, &b} {
		idx := i
		_, err := s.Add(Tween{Target: Scalar(p, func(float64) { order = append(order, idx) }),
			To: r3.Vec{X: 1}, Duration: time.Second, Repeat: Forever})
		require.NoError(t, err)
	}

	s.Step(time.Millisecond)
	s.Step(time.Millisecond)
	assert.Equal(t, []int{0, 1, 0, 1}, order)
}

func TestRemove(t *testing.T) {
	s := newScheduler(t)

	var v float64
	h, err := s.Add(ScalarTween(&v, 0, 1, time.Second, nil))
	require.NoError(t, err)

	s.Remove(h)
	s.Remove(h)
	s.Step(500 * time.Millisecond)

	assert.Equal(t, 0.0, v)
	assert.Equal(t, 0, s.Len())
}

func TestEase(t *testing.T) {
	assert.Equal(t, 0.25, Linear(0.25))
	assert.InDelta(t, 0.75, Power1Out(0.5), 1e-12)
	assert.Equal(t, 1.0, Power1Out(1))

	e, ok := EaseByName("none")
	require.True(t, ok)
	assert.Equal(t, 0.3, e(0.3))

	e, ok = EaseByName("power1.out")
	require.True(t, ok)
	assert.InDelta(t, 0.75, e(0.5), 1e-12)

	_, ok = EaseByName("elastic")
	assert.False(t, ok)
}

func TestScalarTween_TypedCallback(t *testing.T) {
	s := newScheduler(t)

	var v float64
	var got []float64
	tw := ScalarTween(&v, 1, 3, time.Second, func(x float64) { got = append(got, x) })
	tw.Ease = Linear
	_, err := s.Add(tw)
	require.NoError(t, err)

	s.Step(250 * time.Millisecond)
	s.Step(250 * time.Millisecond)
	assert.Equal(t, []float64{1.5, 2}, got)
	assert.Equal(t, KindScalar, tw.Target.Kind)
}

func TestVectorTarget_CallbackAfterWrite(t *testing.T) {
	s := newScheduler(t)

	pos := r3.Vec{}
	var seen r3.Vec
	_, err := s.Add(Tween{
		Target:   Vector(&pos, func(r3.Vec) { seen = pos }),
		To:       r3.Vec{X: 4},
		Duration: time.Second,
		Ease:     Linear,
	})
	require.NoError(t, err)

	s.Step(500 * time.Millisecond)
	assert.Equal(t, r3.Vec{X: 2}, seen, "target is written before the callback runs")
}
