package geo

import (
	"fmt"

	"github.com/globe-viz/globe/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// RingFromLonLat builds a linear ring from [lon, lat] pairs, closing it when
// the last position does not repeat the first.
func RingFromLonLat(coords [][]float64) (geom.LineString, error) {
	if len(coords) < 3 {
		return geom.LineString{}, fmt.Errorf("ring must have at least 3 points, got %d", len(coords))
	}

	flatCoords := make([]float64, 0, (len(coords)+1)*2)
	for i, coord := range coords {
		if len(coord) < 2 {
			return geom.LineString{}, fmt.Errorf("coordinate %d has insufficient values", i)
		}
		flatCoords = append(flatCoords, coord[0], coord[1])
	}
	first, last := coords[0], coords[len(coords)-1]
	if first[0] != last[0] || first[1] != last[1] {
		flatCoords = append(flatCoords, first[0], first[1])
	}

	seq := geom.NewSequence(flatCoords, geom.DimXY)
	return geom.NewLineString(seq)
}

// RingToSphere maps every vertex of a lon/lat ring onto a sphere. The closing
// vertex is dropped because line loops close themselves.
func RingToSphere(ring geom.LineString, radius float64) []core.Vec3 {
	seq := ring.Coordinates()
	n := seq.Length()
	if n > 1 && seq.GetXY(0) == seq.GetXY(n-1) {
		n--
	}
	points := make([]core.Vec3, 0, n)
	for i := 0; i < n; i++ {
		xy := seq.GetXY(i)
		points = append(points, LatLonToVec3(xy.Y, xy.X, radius))
	}
	return points
}

// PolygonRings returns the exterior ring followed by the interior rings.
func PolygonRings(p geom.Polygon) []geom.LineString {
	rings := make([]geom.LineString, 0, 1+p.NumInteriorRings())
	rings = append(rings, p.ExteriorRing())
	for i := 0; i < p.NumInteriorRings(); i++ {
		rings = append(rings, p.InteriorRingN(i))
	}
	return rings
}
