package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jsphweid/fingerbot/actuator"
	"github.com/jsphweid/fingerbot/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	StorageDir string `yaml:"storage_dir"` // where received files are kept
	DeviceName string `yaml:"device_name"` // advertised BLE name
	HTTPAddr   string `yaml:"http_addr"`   // bench HTTP transport
	LogLevel   string `yaml:"log_level"`

	Driver DriverConfig `yaml:"driver"`

	Motors []actuator.MotorMapping `yaml:"motors"`
}

type DriverConfig struct {
	Kind       string `yaml:"kind"` // log, serial or midi
	SerialPort string `yaml:"serial_port"`
	Baud       int    `yaml:"baud"`
	MidiPort   string `yaml:"midi_port"`
}

func Default() Config {
	return Config{
		StorageDir: constants.GetStorageDir(),
		DeviceName: "fingerbot",
		HTTPAddr:   ":8080",
		LogLevel:   "info",
		Driver: DriverConfig{
			Kind: "log",
			Baud: 115200,
		},
	}
}

// Load reads a YAML config over the defaults. A missing file yields the
// defaults. STORAGE_PATH wins over the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if env := os.Getenv("STORAGE_PATH"); env != "" {
		cfg.StorageDir = env
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Driver.Kind {
	case "log":
	case "serial":
		if c.Driver.SerialPort == "" {
			return errors.New("driver.serial_port is required for the serial driver")
		}
		if c.Driver.Baud <= 0 {
			return fmt.Errorf("driver.baud must be positive, got %d", c.Driver.Baud)
		}
	case "midi":
		if c.Driver.MidiPort == "" {
			return errors.New("driver.midi_port is required for the midi driver")
		}
	default:
		return fmt.Errorf("unknown driver kind %q", c.Driver.Kind)
	}
	seen := make(map[int]bool)
	for _, m := range c.Motors {
		if seen[m.ID] {
			return fmt.Errorf("motor %d is configured twice", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}
