package barrier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// InputPaths names the five input feature sets.
type InputPaths struct {
	Perimeter  string `yaml:"perimeter"`
	Rail       string `yaml:"rail"`
	Trail      string `yaml:"trail"`
	Road       string `yaml:"road"`
	AgencyRoad string `yaml:"agencyRoad"`
}

// MQTTConfig configures the optional run-event feed. An empty broker
// disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"clientId"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config is the run configuration loaded from YAML.
type Config struct {
	Inputs InputPaths `yaml:"inputs"`

	BufferMeters      float64 `yaml:"bufferMeters"`
	MinFragmentMeters float64 `yaml:"minFragmentMeters"`
	AOIMarginMeters   float64 `yaml:"aoiMarginMeters"`
	TileMeters        float64 `yaml:"tileMeters"`
	Workers           int     `yaml:"workers"`

	ScratchDir string `yaml:"scratchDir"`
	OutputDir  string `yaml:"outputDir"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// LoadConfig loads the run configuration from a YAML file and applies
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills unset tunables with their defaults.
func (c *Config) ApplyDefaults() {
	if c.BufferMeters == 0 {
		c.BufferMeters = DefaultBufferMeters
	}
	if c.MinFragmentMeters == 0 {
		c.MinFragmentMeters = DefaultMinFragmentMeters
	}
	if c.AOIMarginMeters == 0 {
		c.AOIMarginMeters = DefaultAOIMarginMeters
	}
	if c.TileMeters == 0 {
		c.TileMeters = DefaultTileMeters
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.ScratchDir == "" {
		c.ScratchDir = "processing"
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
}

// Validate checks required fields and parameter ranges. Parameter problems
// are input errors: the run aborts before any processing.
func (c *Config) Validate() error {
	if c.Inputs.Perimeter == "" {
		return fmt.Errorf("inputs.perimeter is required")
	}
	if c.Inputs.Rail == "" {
		return fmt.Errorf("inputs.rail is required")
	}
	if c.Inputs.Trail == "" {
		return fmt.Errorf("inputs.trail is required")
	}
	if c.Inputs.Road == "" {
		return fmt.Errorf("inputs.road is required")
	}
	if c.Inputs.AgencyRoad == "" {
		return fmt.Errorf("inputs.agencyRoad is required")
	}
	if c.BufferMeters <= 0 {
		return fmt.Errorf("bufferMeters must be positive, got %v", c.BufferMeters)
	}
	if c.MinFragmentMeters <= 0 {
		return fmt.Errorf("minFragmentMeters must be positive, got %v", c.MinFragmentMeters)
	}
	if c.AOIMarginMeters <= 0 {
		return fmt.Errorf("aoiMarginMeters must be positive, got %v", c.AOIMarginMeters)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// Params extracts the pipeline tunables from the configuration.
func (c *Config) Params() Params {
	return Params{
		BufferMeters:      c.BufferMeters,
		MinFragmentMeters: c.MinFragmentMeters,
		AOIMarginMeters:   c.AOIMarginMeters,
		Tiles: TileOptions{
			TileMeters: c.TileMeters,
			Workers:    c.Workers,
		},
	}
}
