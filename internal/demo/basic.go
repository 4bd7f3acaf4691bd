package demo

import (
	"context"
	"time"

	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform shows three boxes in a group that is moved, rotated and scaled
// as a whole.
func Transform(_ context.Context, sc *scene.Context, opts Options) error {
	group := scene.NewGroup("group")
	group.Transform.Rotation = r3.Vec{X: 0.25, Y: 0.5, Z: 0.5}
	group.Transform.Scale = r3.Vec{X: 0.5, Y: 0.5, Z: 0.5}

	unit := scene.Box{Width: 1, Height: 1, Depth: 1}
	red := scene.NewBox("box1", unit, scene.Material{Color: 0xff0000, Opacity: 1})
	red.Transform.Position.X = 2
	green := scene.NewBox("box2", unit, scene.Material{Color: 0x00ff00, Opacity: 1})
	blue := scene.NewBox("box3", unit, scene.Material{Color: 0x0000ff, Opacity: 1})
	blue.Transform.Position.X = -2
	group.Add(red, green, blue)

	sc.Scene.Add(group, axes(1))
	*sc.Camera = *scene.NewCamera(75, opts.aspect(), 0.1, 2000, r3.Vec{X: 1, Y: 1, Z: 3})
	return nil
}

// axes draws the three coordinate axes as short red, green and blue lines.
func axes(size float64) *scene.Node {
	g := scene.NewGroup("axes")
	for _, a := range []struct {
		name  string
		dir   r3.Vec
		color core.Color
	}{
		{"axes/x", r3.Vec{X: size}, 0xff0000},
		{"axes/y", r3.Vec{Y: size}, 0x00ff00},
		{"axes/z", r3.Vec{Z: size}, 0x0000ff},
	} {
		g.Add(scene.NewLineLoop(a.name, []core.Vec3{{}, a.dir}, scene.Material{Color: a.color, Opacity: 1}))
	}
	return g
}

// earthSpin is the rotation added every frame, independent of frame time.
const earthSpin = 0.002

// Earth is a textured sphere spinning under a directional light.
func Earth(_ context.Context, sc *scene.Context, opts Options) error {
	earth := scene.NewSphere("earth", scene.Sphere{Radius: 1, WidthSegments: 64, HeightSegments: 64}, scene.Material{
		Color: 0xffffff, Opacity: 1, Texture: "./earth2.jpg",
	})
	sun := scene.NewLight("sun", scene.Light{Kind: scene.Directional, Color: 0xffffff, Intensity: 1})
	sun.Transform.Position = r3.Vec{X: 5, Y: 3, Z: 5}
	sc.Scene.Add(
		earth,
		sun,
		scene.NewLight("ambient", scene.Light{Kind: scene.Ambient, Color: 0x404040, Intensity: 0.5}),
	)

	*sc.Camera = *scene.NewCamera(75, opts.aspect(), 0.1, 1000, r3.Vec{Z: 3})

	sc.OnFrame(func(time.Duration) {
		earth.Transform.Rotation.Y += earthSpin
	})
	return nil
}
