package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/globe-viz/globe/pkg/core"
	"github.com/wroge/wgs84"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

const deg2rad = math.Pi / 180

// EarthRadiusMeters is the mean earth radius used for surface distances.
const EarthRadiusMeters = 6_371_000.0

// LatLonToVec3 maps a geographic coordinate onto a sphere of the given radius.
// Latitude 90 is +Y; longitude -180 points along +X and -90 along +Z.
// Inputs are not validated; out of range values still produce a point on the sphere.
func LatLonToVec3(latDeg, lonDeg, radius float64) core.Vec3 {
	phi := (90 - latDeg) * deg2rad
	theta := (lonDeg + 180) * deg2rad
	return r3.Vec{
		X: -radius * math.Sin(phi) * math.Cos(theta),
		Y: radius * math.Cos(phi),
		Z: radius * math.Sin(phi) * math.Sin(theta),
	}
}

// ToVec3 maps p onto a sphere of the given radius.
func ToVec3(p core.GeoPoint, radius float64) core.Vec3 {
	return LatLonToVec3(p.LatDeg, p.LonDeg, radius)
}

// PointFromString parses a "lat,lon" string in degrees into a GeoPoint.
func PointFromString(coords string) (core.GeoPoint, error) {
	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) != 2 {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	p := core.GeoPoint{LatDeg: lat, LonDeg: lon}
	if !p.Valid() {
		return core.GeoPoint{}, ErrInvalidCoordinates
	}
	return p, nil
}

// ParseHub parses "Name=lat,lon" into a hub.
func ParseHub(s string) (core.Hub, error) {
	name, coords, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return core.Hub{}, fmt.Errorf("hub %q: want Name=lat,lon", s)
	}
	p, err := PointFromString(coords)
	if err != nil {
		return core.Hub{}, fmt.Errorf("hub %q: %w", name, err)
	}
	return core.Hub{Name: name, Location: p}, nil
}

// MercatorFromLonLat projects a WGS84 coordinate to Web Mercator (EPSG:3857) meters.
func MercatorFromLonLat(longitude, latitude float64) (x, y float64) {
	epsg := wgs84.EPSG()
	f := epsg.Transform(4326, 3857)
	x, y, _ = f(longitude, latitude, 0)
	return x, y
}

// Haversine returns the great-circle distance in meters between two points.
func Haversine(a, b core.GeoPoint) float64 {
	dLat := (b.LatDeg - a.LatDeg) * deg2rad
	dLon := (b.LonDeg - a.LonDeg) * deg2rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.LatDeg*deg2rad)*math.Cos(b.LatDeg*deg2rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
