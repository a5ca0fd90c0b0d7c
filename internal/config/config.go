package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/drivelink/internal/logging"
	"github.com/danmuck/drivelink/internal/protocol/command"
)

// DriveConfig holds drivectl defaults. Every field can be overridden by a
// command line flag.
type DriveConfig struct {
	Vehicle            string `toml:"vehicle"`
	LogLevel           string `toml:"log_level"`
	SDKFlags           uint8  `toml:"sdk_flags"`
	SpeedMMPerSec      int16  `toml:"speed_mm_s"`
	AccelMMPerSec2     int16  `toml:"accel_mm_s2"`
	LaneSpeedMMPerSec  uint16 `toml:"lane_speed_mm_s"`
	LaneAccelMMPerSec2 uint16 `toml:"lane_accel_mm_s2"`
	TrackMaterial      string `toml:"track_material"`
}

func DefaultDriveConfig() DriveConfig {
	return DriveConfig{
		Vehicle:            "drivelink",
		LogLevel:           "info",
		SDKFlags:           uint8(command.SDKOverrideLocalization),
		SpeedMMPerSec:      1000,
		AccelMMPerSec2:     25000,
		LaneSpeedMMPerSec:  100,
		LaneAccelMMPerSec2: 1000,
		TrackMaterial:      "plastic",
	}
}

// fileConfig mirrors DriveConfig with wide integer types so out-of-range
// values are reported instead of wrapped.
type fileConfig struct {
	Vehicle            string `toml:"vehicle"`
	LogLevel           string `toml:"log_level"`
	SDKFlags           int64  `toml:"sdk_flags"`
	SpeedMMPerSec      int64  `toml:"speed_mm_s"`
	AccelMMPerSec2     int64  `toml:"accel_mm_s2"`
	LaneSpeedMMPerSec  int64  `toml:"lane_speed_mm_s"`
	LaneAccelMMPerSec2 int64  `toml:"lane_accel_mm_s2"`
	TrackMaterial      string `toml:"track_material"`
}

// LoadDriveConfig overlays the keys present in path on DefaultDriveConfig.
func LoadDriveConfig(path string) (DriveConfig, error) {
	cfg := DefaultDriveConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return DriveConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logging.Warnf("config.LoadDriveConfig ignoring unknown keys=%v path=%q", undecoded, path)
	}

	if meta.IsDefined("vehicle") {
		cfg.Vehicle = strings.TrimSpace(raw.Vehicle)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("track_material") {
		cfg.TrackMaterial = strings.ToLower(strings.TrimSpace(raw.TrackMaterial))
	}
	if meta.IsDefined("sdk_flags") {
		if err := inRange("sdk_flags", raw.SDKFlags, 0, math.MaxUint8); err != nil {
			return DriveConfig{}, err
		}
		cfg.SDKFlags = uint8(raw.SDKFlags)
	}
	if meta.IsDefined("speed_mm_s") {
		if err := inRange("speed_mm_s", raw.SpeedMMPerSec, math.MinInt16, math.MaxInt16); err != nil {
			return DriveConfig{}, err
		}
		cfg.SpeedMMPerSec = int16(raw.SpeedMMPerSec)
	}
	if meta.IsDefined("accel_mm_s2") {
		if err := inRange("accel_mm_s2", raw.AccelMMPerSec2, math.MinInt16, math.MaxInt16); err != nil {
			return DriveConfig{}, err
		}
		cfg.AccelMMPerSec2 = int16(raw.AccelMMPerSec2)
	}
	if meta.IsDefined("lane_speed_mm_s") {
		if err := inRange("lane_speed_mm_s", raw.LaneSpeedMMPerSec, 0, math.MaxUint16); err != nil {
			return DriveConfig{}, err
		}
		cfg.LaneSpeedMMPerSec = uint16(raw.LaneSpeedMMPerSec)
	}
	if meta.IsDefined("lane_accel_mm_s2") {
		if err := inRange("lane_accel_mm_s2", raw.LaneAccelMMPerSec2, 0, math.MaxUint16); err != nil {
			return DriveConfig{}, err
		}
		cfg.LaneAccelMMPerSec2 = uint16(raw.LaneAccelMMPerSec2)
	}

	if err := ValidateDriveConfig(cfg); err != nil {
		return DriveConfig{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func ValidateDriveConfig(cfg DriveConfig) error {
	if strings.TrimSpace(cfg.Vehicle) == "" {
		return fmt.Errorf("drive config missing vehicle")
	}
	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("drive config unknown log_level %q", cfg.LogLevel)
	}
	if _, err := cfg.Material(); err != nil {
		return err
	}
	return nil
}

// Material maps track_material to its wire value.
func (c DriveConfig) Material() (command.TrackMaterial, error) {
	switch c.TrackMaterial {
	case "plastic":
		return command.TrackPlastic, nil
	case "vinyl":
		return command.TrackVinyl, nil
	default:
		return 0, fmt.Errorf("drive config unknown track_material %q", c.TrackMaterial)
	}
}

func inRange(key string, v, lo, hi int64) error {
	if v < lo || v > hi {
		return fmt.Errorf("config %s=%d out of range [%d, %d]", key, v, lo, hi)
	}
	return nil
}
