package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"demo": "transform",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, "transform", GetString("demo"))
	assert.Equal(t, "10.0.0.1", GetDBConfig().Host)
	assert.Equal(t, "5433", GetDBConfig().Port)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", GetString("logLevel"))
	assert.Equal(t, "./globelogs", GetString("logsDir"))
	assert.Equal(t, "globe", GetString("demo"))

	assert.Equal(t, RenderConfig{Hz: 60, Width: 1280, Height: 720}, GetRenderConfig())
	assert.Equal(t, StreamConfig{Address: ":8080", Rate: 30}, GetStreamConfig())
	assert.Equal(t, ExportConfig{OutputDir: "./recordings", Compress: true, Every: 1, MaxFrames: 600}, GetExportConfig())

	b := GetBordersConfig()
	assert.True(t, b.Enabled)
	assert.Equal(t, "countries", b.Object)
	assert.Contains(t, b.URL, "countries-110m.json")

	c := GetCacheConfig()
	assert.Equal(t, "sqlite", c.Type)
	assert.Equal(t, 168*time.Hour, c.TTL)

	assert.Equal(t, DBConfig{Host: "localhost", Port: "5432", Username: "postgres", Password: "postgres", Database: "globe"}, GetDBConfig())

	i := GetInfluxConfig()
	assert.False(t, i.Enabled)
	assert.Equal(t, "globe-metrics", i.Org)

	assert.Equal(t, GraylogConfig{Address: "localhost:12201"}, GetGraylogConfig())

	o := GetOTelConfig()
	assert.False(t, o.Enabled)
	assert.Equal(t, "globe", o.ServiceName)
	assert.Equal(t, 5*time.Second, o.BatchTimeout)
	assert.True(t, o.Insecure)
	assert.Equal(t, 30*time.Second, o.MetricInterval)

	assert.Equal(t, MonitorConfig{StatusDir: "./globelogs", Interval: time.Second}, GetMonitorConfig())

	tc := GetTrafficConfig()
	assert.Empty(t, tc.Origin)
	assert.Empty(t, tc.Targets)
	assert.Equal(t, 0.3, tc.PulseMaxLen)
	assert.Equal(t, "none", tc.PulseEase)
}

func TestGetTrafficConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"globe": {
			"origin": "Berlin=52.52,13.405",
			"targets": ["Lagos=6.5244,3.3792", "Lima=-12.0464,-77.0428"]
		},
		"pulse": { "maxLen": 0.5, "ease": "power1.out" }
	}`)
	require.NoError(t, Load(dir))

	assert.Equal(t, TrafficConfig{
		Origin:      "Berlin=52.52,13.405",
		Targets:     []string{"Lagos=6.5244,3.3792", "Lima=-12.0464,-77.0428"},
		PulseMaxLen: 0.5,
		PulseEase:   "power1.out",
	}, GetTrafficConfig())
}

func TestGetMonitorConfig_DirKey(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"monitor": {"enabled": true, "dir": "/tmp/globe-status", "interval": "250ms"}}`)))

	assert.Equal(t, MonitorConfig{Enabled: true, StatusDir: "/tmp/globe-status", Interval: 250 * time.Millisecond}, GetMonitorConfig())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadDefaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	LoadDefaults()
	assert.Equal(t, 60.0, GetFloat("render.hz"))
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-globe",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false,
			"metrics": true
		}
	}`)
	require.NoError(t, Load(dir))

	oc := GetOTelConfig()
	assert.True(t, oc.Enabled)
	assert.Equal(t, "my-globe", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.False(t, oc.Insecure)
	assert.True(t, oc.Metrics)
}

func TestGetCacheConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{"cache": {"type": "none", "ttl": "1h"}}`)))

	c := GetCacheConfig()
	assert.Equal(t, "none", c.Type)
	assert.Equal(t, time.Hour, c.TTL)
}

func TestGetters(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	viper.Set("testInt", 42)
	viper.Set("testBool", true)
	viper.Set("testFloat", 1.5)

	assert.Equal(t, "testValue", GetString("testKey"))
	assert.Equal(t, 42, GetInt("testInt"))
	assert.True(t, GetBool("testBool"))
	assert.Equal(t, 1.5, GetFloat("testFloat"))
}
