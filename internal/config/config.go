// Package config loads settings from globe.cfg.json through viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "globe.cfg.json"

// RenderConfig holds frame loop settings.
type RenderConfig struct {
	Hz     float64
	Width  int
	Height int
	Ticks  int // headless tick limit, 0 runs until cancelled
}

// StreamConfig holds WebSocket server settings.
type StreamConfig struct {
	Address string
	Rate    float64 // frames per second sent to clients
}

// ExportConfig holds frame export settings.
type ExportConfig struct {
	OutputDir string
	Compress  bool
	Every     int
	MaxFrames int
}

// BordersConfig controls the country border overlay.
type BordersConfig struct {
	Enabled bool
	URL     string
	Object  string
}

// CacheConfig selects the dataset cache backend.
type CacheConfig struct {
	Type       string
	SqlitePath string
	TTL        time.Duration
}

// DBConfig holds Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// InfluxConfig holds InfluxDB settings.
type InfluxConfig struct {
	Enabled    bool
	Protocol   string
	Host       string
	Port       string
	Token      string
	Org        string
	BackupPath string
}

// GraylogConfig holds GELF output settings.
type GraylogConfig struct {
	Enabled bool
	Address string
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	BatchTimeout   time.Duration
	Endpoint       string
	Insecure       bool
	Metrics        bool
	MetricInterval time.Duration
}

// TrafficConfig holds the globe routes and the pulse look. Hubs are written
// as "Name=lat,lon"; an empty origin or target list keeps the built-in hubs.
type TrafficConfig struct {
	Origin      string
	Targets     []string
	PulseMaxLen float64
	PulseEase   string
}

// MonitorConfig holds status monitor settings.
type MonitorConfig struct {
	Enabled   bool
	StatusDir string
	Interval  time.Duration
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./globelogs")
	viper.SetDefault("demo", "globe")

	viper.SetDefault("globe.origin", "")
	viper.SetDefault("globe.targets", []string{})
	viper.SetDefault("pulse.maxLen", 0.3)
	viper.SetDefault("pulse.ease", "none")

	viper.SetDefault("render.hz", 60.0)
	viper.SetDefault("render.width", 1280)
	viper.SetDefault("render.height", 720)
	viper.SetDefault("render.ticks", 0)

	viper.SetDefault("stream.address", ":8080")
	viper.SetDefault("stream.rate", 30.0)

	viper.SetDefault("export.outputDir", "./recordings")
	viper.SetDefault("export.compress", true)
	viper.SetDefault("export.every", 1)
	viper.SetDefault("export.maxFrames", 600)

	viper.SetDefault("borders.enabled", true)
	viper.SetDefault("borders.url", "https://cdn.jsdelivr.net/npm/world-atlas@2/countries-110m.json")
	viper.SetDefault("borders.object", "countries")

	viper.SetDefault("cache.type", "sqlite")
	viper.SetDefault("cache.sqlitePath", "./globe_cache.db")
	viper.SetDefault("cache.ttl", "168h")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "globe")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "globe-metrics")
	viper.SetDefault("influx.backupPath", "./influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "globe")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
	viper.SetDefault("otel.metrics", false)
	viper.SetDefault("otel.metricInterval", "30s")

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.dir", "./globelogs")
	viper.SetDefault("monitor.interval", "1s")
}

// Load reads configuration from the JSON file in configDir and sets default
// values. A missing file is an error.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// LoadDefaults sets default values without reading a file.
func LoadDefaults() {
	setDefaults()
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat returns a float config value.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetRenderConfig returns the frame loop settings.
func GetRenderConfig() RenderConfig {
	return RenderConfig{
		Hz:     viper.GetFloat64("render.hz"),
		Width:  viper.GetInt("render.width"),
		Height: viper.GetInt("render.height"),
		Ticks:  viper.GetInt("render.ticks"),
	}
}

// GetTrafficConfig returns the route and pulse settings.
func GetTrafficConfig() TrafficConfig {
	return TrafficConfig{
		Origin:      viper.GetString("globe.origin"),
		Targets:     viper.GetStringSlice("globe.targets"),
		PulseMaxLen: viper.GetFloat64("pulse.maxLen"),
		PulseEase:   viper.GetString("pulse.ease"),
	}
}

// GetStreamConfig returns the WebSocket server settings.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		Address: viper.GetString("stream.address"),
		Rate:    viper.GetFloat64("stream.rate"),
	}
}

// GetExportConfig returns the frame export settings.
func GetExportConfig() ExportConfig {
	return ExportConfig{
		OutputDir: viper.GetString("export.outputDir"),
		Compress:  viper.GetBool("export.compress"),
		Every:     viper.GetInt("export.every"),
		MaxFrames: viper.GetInt("export.maxFrames"),
	}
}

// GetBordersConfig returns the border overlay settings.
func GetBordersConfig() BordersConfig {
	return BordersConfig{
		Enabled: viper.GetBool("borders.enabled"),
		URL:     viper.GetString("borders.url"),
		Object:  viper.GetString("borders.object"),
	}
}

// GetCacheConfig returns the dataset cache settings.
func GetCacheConfig() CacheConfig {
	return CacheConfig{
		Type:       viper.GetString("cache.type"),
		SqlitePath: viper.GetString("cache.sqlitePath"),
		TTL:        viper.GetDuration("cache.ttl"),
	}
}

// GetDBConfig returns the Postgres settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Protocol:   viper.GetString("influx.protocol"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetGraylogConfig returns the GELF settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
		Metrics:        viper.GetBool("otel.metrics"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
	}
}

// GetMonitorConfig returns the status monitor settings.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:   viper.GetBool("monitor.enabled"),
		StatusDir: viper.GetString("monitor.dir"),
		Interval:  viper.GetDuration("monitor.interval"),
	}
}
