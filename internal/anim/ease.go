package anim

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(float64) float64

// Linear is the identity ease ("none").
func Linear(p float64) float64 { return p }

// Power1Out decelerates towards the end. It is the default tween ease.
func Power1Out(p float64) float64 { return 1 - (1-p)*(1-p) }

// EaseByName resolves the ease names accepted in configuration.
func EaseByName(name string) (Ease, bool) {
	switch name {
	case "none", "linear":
		return Linear, true
	case "", "power1.out":
		return Power1Out, true
	}
	return nil, false
}
