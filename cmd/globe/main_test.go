package main

import (
	"testing"

	"github.com/globe-viz/globe/internal/config"
	"github.com/globe-viz/globe/internal/demo"
	"github.com/globe-viz/globe/internal/geo"
	"github.com/globe-viz/globe/internal/pulse"
	"github.com/globe-viz/globe/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_UnknownMode(t *testing.T) {
	err := run(t.TempDir(), "vr", "globe", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestHubInfo(t *testing.T) {
	hubs := hubInfo(core.Hub{Name: "Null Island"}, []core.Hub{core.DefaultTargets[1]})

	require.Len(t, hubs, 2)
	assert.Equal(t, "Null Island", hubs[0].Name)
	assert.InDelta(t, 0, hubs[0].MercatorX, 1e-6)
	assert.InDelta(t, 0, hubs[0].MercatorY, 1e-6)
	assert.Zero(t, hubs[0].DistanceKm)

	london := hubs[1]
	assert.Equal(t, "London", london.Name)
	assert.Less(t, london.MercatorX, 0.0)
	assert.Greater(t, london.MercatorY, 0.0)
	// roughly 5730 km from 0,0
	assert.InDelta(t, 5730, london.DistanceKm, 50)
}

func stockTraffic() config.TrafficConfig {
	return config.TrafficConfig{PulseMaxLen: 0.3, PulseEase: "none"}
}

func TestApplyTraffic_Defaults(t *testing.T) {
	var opts demo.Options
	require.NoError(t, applyTraffic(&opts, stockTraffic()))

	assert.Nil(t, opts.Origin)
	assert.Empty(t, opts.Targets)
	assert.Equal(t, 0.3, opts.Pulse.MaxLen)
	require.NotNil(t, opts.PulseEase)
	assert.Equal(t, 0.4, opts.PulseEase(0.4))

	origin, targets := routeHubs(opts)
	assert.Equal(t, core.DefaultOrigin, origin)
	assert.Equal(t, core.DefaultTargets, targets)
}

func TestApplyTraffic_Hubs(t *testing.T) {
	cfg := stockTraffic()
	cfg.Origin = "Berlin=52.52,13.405"
	cfg.Targets = []string{"Lagos=6.5244,3.3792", "Lima=-12.0464,-77.0428"}
	cfg.PulseEase = "power1.out"

	var opts demo.Options
	require.NoError(t, applyTraffic(&opts, cfg))

	origin, targets := routeHubs(opts)
	assert.Equal(t, "Berlin", origin.Name)
	assert.Equal(t, 13.405, origin.Location.LonDeg)
	require.Len(t, targets, 2)
	assert.Equal(t, "Lima", targets[1].Name)
	assert.Equal(t, -12.0464, targets[1].Location.LatDeg)
	assert.InDelta(t, 0.75, opts.PulseEase(0.5), 1e-12)
}

func TestApplyTraffic_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.TrafficConfig)
		target error
	}{
		{"pulse too long", func(c *config.TrafficConfig) { c.PulseMaxLen = 1.5 }, pulse.ErrInvalidPulseLength},
		{"pulse zero", func(c *config.TrafficConfig) { c.PulseMaxLen = 0 }, pulse.ErrInvalidPulseLength},
		{"origin out of range", func(c *config.TrafficConfig) { c.Origin = "Nowhere=95,0" }, geo.ErrInvalidCoordinates},
		{"target missing name", func(c *config.TrafficConfig) { c.Targets = []string{"1,2"} }, nil},
		{"unknown ease", func(c *config.TrafficConfig) { c.PulseEase = "bounce" }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := stockTraffic()
			tt.mutate(&cfg)

			var opts demo.Options
			err := applyTraffic(&opts, cfg)
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}
