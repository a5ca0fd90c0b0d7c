package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/drivelink/internal/protocol/command"
	"github.com/danmuck/drivelink/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drivectl.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDriveConfigDefaultsAndOverrides(t *testing.T) {
	testlog.Start(t)
	path := writeConfig(t, `
vehicle = "skull"
speed_mm_s = 600
lane_accel_mm_s2 = 1500
track_material = "Vinyl"
`)
	cfg, err := LoadDriveConfig(path)
	require.NoError(t, err)

	want := DefaultDriveConfig()
	want.Vehicle = "skull"
	want.SpeedMMPerSec = 600
	want.LaneAccelMMPerSec2 = 1500
	want.TrackMaterial = "vinyl"
	assert.Equal(t, want, cfg)

	material, err := cfg.Material()
	require.NoError(t, err)
	assert.Equal(t, command.TrackVinyl, material)
}

func TestLoadDriveConfigRejectsOutOfRange(t *testing.T) {
	testlog.Start(t)
	for _, body := range []string{
		"speed_mm_s = 40000",
		"accel_mm_s2 = -40000",
		"lane_speed_mm_s = -1",
		"sdk_flags = 256",
		`track_material = "carpet"`,
		`log_level = "loud"`,
		`vehicle = " "`,
	} {
		_, err := LoadDriveConfig(writeConfig(t, body))
		assert.Error(t, err, body)
	}
}

func TestLoadDriveConfigMissingFile(t *testing.T) {
	_, err := LoadDriveConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestTemplateRoundTrip(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "drivectl.toml")
	require.NoError(t, WriteTemplate(path, false))
	require.Error(t, WriteTemplate(path, false))
	require.NoError(t, WriteTemplate(path, true))

	cfg, err := LoadDriveConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultDriveConfig(), cfg)
}
