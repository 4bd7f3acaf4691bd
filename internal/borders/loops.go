package borders

import (
	"fmt"

	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/scene"
	"github.com/globe-viz/globe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Lift raises border lines slightly above the dotted surface.
const Lift = 1.002

// Color of the border lines.
const Color core.Color = 0x44ffaa

// Loops maps every ring of mp, holes included, onto a sphere of radius.
func Loops(mp geom.MultiPolygon, radius float64) [][]core.Vec3 {
	var loops [][]core.Vec3
	for i := 0; i < mp.NumPolygons(); i++ {
		for _, r := range geo.PolygonRings(mp.PolygonN(i)) {
			if pts := geo.RingToSphere(r, radius); len(pts) > 0 {
				loops = append(loops, pts)
			}
		}
	}
	return loops
}

// Nodes returns one line loop node per ring of every country, lifted to
// radius*Lift.
func Nodes(countries []Country, radius float64) []*scene.Node {
	var nodes []*scene.Node
	for _, c := range countries {
		label := c.Name
		if label == "" {
			label = c.ID
		}
		for i, pts := range Loops(c.Shape, radius*Lift) {
			name := fmt.Sprintf("border/%s/%d", label, i)
			nodes = append(nodes, scene.NewLineLoop(name, pts, scene.Material{Color: Color, Opacity: 1}))
		}
	}
	return nodes
}
