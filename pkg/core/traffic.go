// pkg/core/traffic.go
package core

import "time"

// Hub is a named location on the globe that routes start or end at.
type Hub struct {
	Name     string   `json:"name"`
	Location GeoPoint `json:"location"`
}

// Route is a link drawn as an arc from one hub to another.
// Delay offsets the start of the route's pulse animation.
type Route struct {
	From  Hub           `json:"from"`
	To    Hub           `json:"to"`
	Delay time.Duration `json:"delay"`
}

// DefaultOrigin is the hub every default route starts at.
var DefaultOrigin = Hub{
	Name:     "Pune",
	Location: GeoPoint{LatDeg: 18.562809777239593, LonDeg: 73.78276311752121},
}

// DefaultTargets are the hubs the default routes end at.
var DefaultTargets = []Hub{
	{Name: "San Francisco", Location: GeoPoint{LatDeg: 37.7749, LonDeg: -122.4194}},
	{Name: "London", Location: GeoPoint{LatDeg: 51.5074, LonDeg: -0.1278}},
	{Name: "Tokyo", Location: GeoPoint{LatDeg: 35.6762, LonDeg: 139.6503}},
	{Name: "Sydney", Location: GeoPoint{LatDeg: -33.8688, LonDeg: 151.2093}},
}

// Routes builds one route from origin to every target. The n-th route starts
// base + n*step after the animation clock starts.
func Routes(origin Hub, targets []Hub, base, step time.Duration) []Route {
	routes := make([]Route, 0, len(targets))
	for i, t := range targets {
		routes = append(routes, Route{
			From:  origin,
			To:    t,
			Delay: base + time.Duration(i)*step,
		})
	}
	return routes
}
