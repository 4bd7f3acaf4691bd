// Package borders loads country outlines from a TopoJSON world atlas and turns
// them into line loops on the globe.
package borders

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/globe-viz/globe/internal/geo"
	geom "github.com/peterstace/simplefeatures/geom"
)

// ErrUnsupportedGeometry is returned for TopoJSON geometries other than
// Polygon and MultiPolygon.
var ErrUnsupportedGeometry = errors.New("unsupported topojson geometry")

// Topology is the top-level TopoJSON document.
type Topology struct {
	Type      string              `json:"type"`
	Transform *Transform          `json:"transform,omitempty"`
	Arcs      [][][]float64       `json:"arcs"`
	Objects   map[string]Geometry `json:"objects"`
}

// Transform dequantizes delta-encoded arc positions.
type Transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

// Geometry is a TopoJSON geometry object or collection.
type Geometry struct {
	Type       string          `json:"type"`
	ID         json.RawMessage `json:"id,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Arcs       json.RawMessage `json:"arcs,omitempty"`
	Geometries []Geometry      `json:"geometries,omitempty"`
}

// Country is one decoded feature.
type Country struct {
	ID    string
	Name  string
	Shape geom.MultiPolygon
}

// Decode parses a TopoJSON document and returns the features of the named
// object. Null geometries are skipped.
func Decode(data []byte, object string) ([]Country, error) {
	var topo Topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	if topo.Type != "Topology" {
		return nil, fmt.Errorf("expected type Topology, got %q", topo.Type)
	}
	obj, ok := topo.Objects[object]
	if !ok {
		return nil, fmt.Errorf("topology has no object %q", object)
	}

	arcs := decodeArcs(topo.Arcs, topo.Transform)

	geoms := []Geometry{obj}
	if obj.Type == "GeometryCollection" {
		geoms = obj.Geometries
	}

	countries := make([]Country, 0, len(geoms))
	for i, g := range geoms {
		if g.Type == "" || g.Type == "null" {
			continue
		}
		shape, err := decodeShape(g, arcs)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		countries = append(countries, Country{ID: rawID(g.ID), Name: name(g.Properties), Shape: shape})
	}
	return countries, nil
}

// decodeArcs returns every arc in absolute lon/lat, undoing quantization
// when a transform is present.
func decodeArcs(raw [][][]float64, t *Transform) [][][2]float64 {
	out := make([][][2]float64, len(raw))
	for i, arc := range raw {
		pts := make([][2]float64, 0, len(arc))
		var x, y float64
		for _, p := range arc {
			if len(p) < 2 {
				continue
			}
			if t == nil {
				pts = append(pts, [2]float64{p[0], p[1]})
				continue
			}
			x += p[0]
			y += p[1]
			pts = append(pts, [2]float64{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]})
		}
		out[i] = pts
	}
	return out
}

func decodeShape(g Geometry, arcs [][][2]float64) (geom.MultiPolygon, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return geom.MultiPolygon{}, fmt.Errorf("polygon arcs: %w", err)
		}
		poly, err := polygon(rings, arcs)
		if err != nil {
			return geom.MultiPolygon{}, err
		}
		return geom.NewMultiPolygon([]geom.Polygon{poly}, geom.DisableAllValidations)

	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return geom.MultiPolygon{}, fmt.Errorf("multipolygon arcs: %w", err)
		}
		out := make([]geom.Polygon, 0, len(polys))
		for _, rings := range polys {
			poly, err := polygon(rings, arcs)
			if err != nil {
				return geom.MultiPolygon{}, err
			}
			out = append(out, poly)
		}
		return geom.NewMultiPolygon(out, geom.DisableAllValidations)
	}
	return geom.MultiPolygon{}, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.Type)
}

func polygon(rings [][]int, arcs [][][2]float64) (geom.Polygon, error) {
	lines := make([]geom.LineString, 0, len(rings))
	for _, idx := range rings {
		coords, err := ring(idx, arcs)
		if err != nil {
			return geom.Polygon{}, err
		}
		ls, err := geo.RingFromLonLat(coords)
		if err != nil {
			return geom.Polygon{}, err
		}
		lines = append(lines, ls)
	}
	// borders are only drawn, so rings that self-touch at 110m are kept
	return geom.NewPolygon(lines, geom.DisableAllValidations)
}

// ring stitches arcs into one closed ring. A negative index ~i refers to arc
// i traversed backwards. Consecutive arcs share an endpoint, so it is kept
// once.
func ring(indices []int, arcs [][][2]float64) ([][]float64, error) {
	var coords [][]float64
	for _, i := range indices {
		reversed := i < 0
		if reversed {
			i = ^i
		}
		if i >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range (%d arcs)", i, len(arcs))
		}
		arc := arcs[i]
		if len(coords) > 0 {
			coords = coords[:len(coords)-1]
		}
		for k := range arc {
			p := arc[k]
			if reversed {
				p = arc[len(arc)-1-k]
			}
			coords = append(coords, []float64{p[0], p[1]})
		}
	}
	if len(coords) == 0 {
		return nil, errors.New("empty ring")
	}
	for len(coords) < 4 {
		coords = append(coords, coords[0])
	}
	return coords, nil
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func name(props map[string]any) string {
	if n, ok := props["name"].(string); ok {
		return n
	}
	return ""
}
