package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"navlink/internal/newtonm2"
)

type Config struct {
	LogLevel string         `yaml:"log_level"`
	Receiver ReceiverConfig `yaml:"receiver"`
	Record   RecordConfig   `yaml:"record"`
	Replay   ReplayConfig   `yaml:"replay"`
	PPS      PPSConfig      `yaml:"pps"`
}

type ReceiverConfig struct {
	// Device is the serial device path of the receiver's data port.
	Device string `yaml:"device"`
	Baud   int    `yaml:"baud"`

	// ImuType names the inertial unit behind the receiver (e.g.
	// "adis16488", "stim300").
	ImuType string `yaml:"imu_type"`
	// FrameMapping is the physical mounting selector; 0 means default.
	FrameMapping int `yaml:"frame_mapping"`
}

type RecordConfig struct {
	Enable bool   `yaml:"enable"`
	Path   string `yaml:"path"`
}

type ReplayConfig struct {
	Enable bool    `yaml:"enable"`
	Path   string  `yaml:"path"`
	Speed  float64 `yaml:"speed"`
	Loop   bool    `yaml:"loop"`
}

type PPSConfig struct {
	Enable  bool `yaml:"enable"`
	GPIOPin int  `yaml:"gpio_pin"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Receiver.Device == "" && !cfg.Replay.Enable {
		return Config{}, fmt.Errorf("receiver.device is required unless replay is enabled")
	}
	if cfg.Receiver.Baud == 0 {
		cfg.Receiver.Baud = 115200
	}
	if cfg.Receiver.ImuType == "" {
		return Config{}, fmt.Errorf("receiver.imu_type is required")
	}
	if newtonm2.ParseImuType(cfg.Receiver.ImuType) == newtonm2.ImuUnknown {
		return Config{}, fmt.Errorf("receiver.imu_type %q is not a known device", cfg.Receiver.ImuType)
	}
	switch cfg.Receiver.FrameMapping {
	case 0:
		cfg.Receiver.FrameMapping = newtonm2.FrameMappingDefault
	case newtonm2.FrameMappingDefault, newtonm2.FrameMappingRotated:
	default:
		return Config{}, fmt.Errorf("receiver.frame_mapping must be %d or %d",
			newtonm2.FrameMappingDefault, newtonm2.FrameMappingRotated)
	}

	if cfg.Record.Enable && cfg.Record.Path == "" {
		return Config{}, fmt.Errorf("record.path is required when record.enable is true")
	}

	if cfg.Replay.Enable {
		if cfg.Replay.Path == "" {
			return Config{}, fmt.Errorf("replay.path is required when replay.enable is true")
		}
		if cfg.Replay.Speed == 0 {
			cfg.Replay.Speed = 1
		}
		if cfg.Replay.Speed < 0 {
			return Config{}, fmt.Errorf("replay.speed must be > 0")
		}
	}

	if cfg.Record.Enable && cfg.Replay.Enable {
		return Config{}, fmt.Errorf("record and replay cannot both be enabled")
	}

	if cfg.PPS.Enable && cfg.PPS.GPIOPin <= 0 {
		return Config{}, fmt.Errorf("pps.gpio_pin is required when pps.enable is true")
	}

	return cfg, nil
}
