package render

import (
	"errors"
	"time"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// WindowOptions controls RunWindow.
type WindowOptions struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

// game adapts a scene context to ebiten.Game.
type game struct {
	sc    *scene.Context
	sinks []Sink
	dt    time.Duration

	frame  *scene.Frame
	prims  []Primitive
	width  int
	height int
}

// RunWindow opens a desktop window and runs the frame loop at opts.TPS
// until the window closes. It blocks and must be called from the main
// goroutine.
func RunWindow(sc *scene.Context, opts WindowOptions, sinks ...Sink) error {
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	g := &game{
		sc:     sc,
		sinks:  sinks,
		dt:     time.Second / time.Duration(opts.TPS),
		width:  opts.Width,
		height: opts.Height,
	}

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(opts.TPS)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (g *game) Update() error {
	f, err := Step(g.sc, g.dt, g.sinks)
	if err != nil {
		return err
	}
	g.frame = f
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.frame == nil {
		return
	}
	screen.Fill(Background(g.frame))

	g.prims = Project(g.frame, g.width, g.height, g.prims)
	for _, p := range g.prims {
		switch p.Shape {
		case ShapeDot:
			vector.DrawFilledCircle(screen, p.X0, p.Y0, p.Radius, p.Color, true)
		case ShapeLine:
			vector.StrokeLine(screen, p.X0, p.Y0, p.X1, p.Y1, p.Width, p.Color, true)
		}
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.sc.Camera.SetAspect(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
