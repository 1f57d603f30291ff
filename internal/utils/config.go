package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/benmeehan/geotrack/pkg/file"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment variables that override secrets in the configuration file.
const (
	EnvMapsAPIKey    = "GEOTRACK_MAPS_API_KEY"
	EnvRedisPassword = "GEOTRACK_REDIS_PASSWORD"
	EnvPostgresDSN   = "GEOTRACK_POSTGRES_DSN"
	EnvMQTTBroker    = "GEOTRACK_MQTT_BROKER"
)

// Config represents the structure of the configuration file.
type Config struct {
	Logging struct {
		Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"` // Minimum log level
		File  string `yaml:"file"`                                                          // Optional log file, stdout when empty
	} `yaml:"logging"`

	Identity struct {
		File string `yaml:"file"` // Path to the tracker identity file
	} `yaml:"identity"`

	Storage struct {
		Backend  string `yaml:"backend" validate:"oneof=memory file redis postgres"` // History slot backend
		Key      string `yaml:"key" validate:"required"`                             // Slot key holding the history
		FilePath string `yaml:"file_path"`                                           // JSON document for the file backend
		Redis    struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" validate:"gte=0"`
		} `yaml:"redis"`
		Postgres struct {
			DSN   string `yaml:"dsn"`
			Table string `yaml:"table"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Location struct {
		Provider          string        `yaml:"provider" validate:"oneof=gps google fixed"` // Position sensor implementation
		Interval          time.Duration `yaml:"interval" validate:"gt=0"`                   // Automatic polling period
		AutoStart         bool          `yaml:"auto_start"`                                 // Start automatic polling in agent mode
		GPSDevicePort     string        `yaml:"gps_device_port"`                            // UNIX port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate" validate:"gte=0"`             // Baud rate for the GPS sensor
		GPSReadTimeout    time.Duration `yaml:"gps_read_timeout"`                           // Serial read timeout per fix
		GPSFixTimeout     time.Duration `yaml:"gps_fix_timeout" validate:"gte=0"`           // Give up on a request without a fix after this long
		MapsAPIKey        string        `yaml:"maps_api_key"`                               // Google Maps API key
		ModemIndex        int           `yaml:"modem_index" validate:"gte=0"`               // ModemManager index for cell tower hints
		FixedLatitude     float64       `yaml:"fixed_latitude" validate:"latitude"`
		FixedLongitude    float64       `yaml:"fixed_longitude" validate:"longitude"`
	} `yaml:"location"`

	Map struct {
		CenterLatitude  float64 `yaml:"center_latitude" validate:"latitude"`
		CenterLongitude float64 `yaml:"center_longitude" validate:"longitude"`
		Zoom            int     `yaml:"zoom" validate:"gte=0,lte=22"`       // Initial zoom
		FocusZoom       int     `yaml:"focus_zoom" validate:"gte=0,lte=22"` // Zoom used when a marker is shown
		MaxZoom         int     `yaml:"max_zoom" validate:"gte=0,lte=22"`
		TileURL         string  `yaml:"tile_url" validate:"required"`
		Attribution     string  `yaml:"attribution"`
	} `yaml:"map"`

	MQTT struct {
		Enabled        bool          `yaml:"enabled"`                          // Publish fixes to the broker
		Broker         string        `yaml:"broker"`                           // MQTT broker address
		ClientID       string        `yaml:"client_id"`                        // MQTT client ID prefix
		CACertificate  string        `yaml:"ca_certificate"`                   // Path to the CA certificate
		Topic          string        `yaml:"topic"`                            // Topic fixes are published to
		QOS            int           `yaml:"qos" validate:"gte=0,lte=2"`       // MQTT QoS level for location messages
		PublishTimeout time.Duration `yaml:"publish_timeout" validate:"gte=0"` // Wait for broker acknowledgement
	} `yaml:"mqtt"`

	Metrics struct {
		Enabled       bool   `yaml:"enabled"`        // Serve prometheus metrics
		ListenAddress string `yaml:"listen_address"` // host:port for the /metrics endpoint
	} `yaml:"metrics"`
}

// LoadConfig loads the YAML configuration from the specified file, applies defaults
// and environment overrides, and validates the result.
// Variables from a .env file next to the working directory are loaded first; existing
// environment variables take precedence.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	_ = godotenv.Load(".env")
	config.applyDefaults()
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Identity.File == "" {
		c.Identity.File = "data/identity.json"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.Key == "" {
		c.Storage.Key = "locationHistory"
	}
	if c.Storage.FilePath == "" {
		c.Storage.FilePath = "data/geotrack.json"
	}
	if c.Location.Provider == "" {
		c.Location.Provider = "fixed"
	}
	if c.Location.Interval == 0 {
		c.Location.Interval = time.Minute
	}
	if c.Location.GPSDeviceBaudRate == 0 {
		c.Location.GPSDeviceBaudRate = 9600
	}
	if c.Location.GPSReadTimeout == 0 {
		c.Location.GPSReadTimeout = 5 * time.Second
	}
	if c.Location.GPSFixTimeout == 0 {
		c.Location.GPSFixTimeout = 30 * time.Second
	}
	if c.Map.Zoom == 0 {
		c.Map.Zoom = 13
	}
	if c.Map.FocusZoom == 0 {
		c.Map.FocusZoom = 13
	}
	if c.Map.MaxZoom == 0 {
		c.Map.MaxZoom = 19
	}
	if c.Map.TileURL == "" {
		c.Map.TileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	}
	if c.Map.Attribution == "" {
		c.Map.Attribution = "© OpenStreetMap"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "geotrack"
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "geotrack/location"
	}
	if c.MQTT.PublishTimeout == 0 {
		c.MQTT.PublishTimeout = 5 * time.Second
	}
	if c.Metrics.ListenAddress == "" {
		c.Metrics.ListenAddress = ":9464"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvMapsAPIKey); v != "" {
		c.Location.MapsAPIKey = v
	}
	if v := os.Getenv(EnvRedisPassword); v != "" {
		c.Storage.Redis.Password = v
	}
	if v := os.Getenv(EnvPostgresDSN); v != "" {
		c.Storage.Postgres.DSN = v
	}
	if v := os.Getenv(EnvMQTTBroker); v != "" {
		c.MQTT.Broker = v
	}
}

// Validate checks field constraints and the settings each selected backend needs.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var errs []error
	switch c.Storage.Backend {
	case "redis":
		if c.Storage.Redis.Address == "" {
			errs = append(errs, errors.New("storage.redis.address is required for the redis backend"))
		}
	case "postgres":
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is required for the postgres backend"))
		}
	}
	if c.Location.Provider == "gps" && c.Location.GPSDevicePort == "" {
		errs = append(errs, errors.New("location.gps_device_port is required for the gps provider"))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}
	if c.Map.FocusZoom > c.Map.MaxZoom || c.Map.Zoom > c.Map.MaxZoom {
		errs = append(errs, errors.New("map zoom levels must not exceed map.max_zoom"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
