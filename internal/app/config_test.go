package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	config := NewConfig()

	assert.Equal(t, "fibonacci", config.Emulation.DefaultProgram)
	assert.Equal(t, 1_000_000, config.Emulation.MaxInstructions)
	assert.Equal(t, "vic20", config.Machine.Profile)
	assert.Equal(t, "terminal", config.Video.Backend)
	assert.Equal(t, "INFO", config.Debug.LogLevel)
	assert.False(t, config.IsLoaded())
	assert.NoError(t, config.validate())
}

func TestLoadFromFileCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "sim6502.json")

	config := NewConfig()
	require.NoError(t, config.LoadFromFile(path))
	assert.FileExists(t, path)
	assert.Equal(t, path, config.GetConfigPath())

	reloaded := NewConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.True(t, reloaded.IsLoaded())
	assert.Equal(t, config.Emulation, reloaded.Emulation)
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim6502.json")

	config := NewConfig()
	config.Emulation.DefaultProgram = "weekday"
	config.Emulation.MaxInstructions = 5000
	config.Machine.Profile = "c64"
	config.Video.Backend = "headless"
	config.Debug.Breakpoint = "$1009"
	config.Debug.TraceAddress = "0x1004"
	require.NoError(t, config.SaveToFile(path))

	loaded := NewConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, config.Emulation, loaded.Emulation)
	assert.Equal(t, config.Machine, loaded.Machine)
	assert.Equal(t, config.Video, loaded.Video)
	assert.Equal(t, config.Debug, loaded.Debug)
}

func TestConfigSaveWithoutPath(t *testing.T) {
	assert.Error(t, NewConfig().Save())
}

func TestValidateRepairsValues(t *testing.T) {
	config := NewConfig()
	config.Emulation.MaxInstructions = -5
	config.Emulation.SliceInstructions = -1
	config.Video.Scale = 0
	config.Video.HeadlessFrames = 0
	config.Debug.LogLevel = "chatty"

	require.NoError(t, config.validate())
	assert.Equal(t, 1_000_000, config.Emulation.MaxInstructions)
	assert.Equal(t, 0, config.Emulation.SliceInstructions)
	assert.Equal(t, 1, config.Video.Scale)
	assert.Equal(t, 120, config.Video.HeadlessFrames)
	assert.Equal(t, "INFO", config.Debug.LogLevel)

	config.Debug.LogLevel = "debug"
	require.NoError(t, config.validate())
	assert.Equal(t, "DEBUG", config.Debug.LogLevel)
}

func TestValidateRejectsValues(t *testing.T) {
	tests := []struct {
		name   string
		field  string
		modify func(*Config)
	}{
		{"backend", "video.backend", func(c *Config) { c.Video.Backend = "sdl2" }},
		{"profile", "machine.profile", func(c *Config) { c.Machine.Profile = "pet" }},
		{"load address", "emulation.load_address", func(c *Config) { c.Emulation.LoadAddress = "$10000" }},
		{"boot address", "emulation.boot_address", func(c *Config) { c.Emulation.BootAddress = "start" }},
		{"trace address", "debug.trace_address", func(c *Config) { c.Debug.TraceAddress = "0xZZ" }},
		{"breakpoint", "debug.breakpoint", func(c *Config) { c.Debug.Breakpoint = "-1" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := NewConfig()
			test.modify(config)

			err := config.validate()
			var configErr *ConfigError
			require.True(t, errors.As(err, &configErr), "expected ConfigError, got %v", err)
			assert.Equal(t, test.field, configErr.Field)
		})
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{not json"), 0644))
	assert.Error(t, NewConfig().LoadFromFile(broken))

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`{"video": {"backend": "sdl2"}}`), 0644))
	err := NewConfig().LoadFromFile(invalid)
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestConfigClone(t *testing.T) {
	config := NewConfig()
	config.configPath = "/tmp/sim6502.json"
	config.Machine.Autotype = "RUN\n"

	clone := config.Clone()
	assert.Equal(t, config.Machine, clone.Machine)
	assert.Equal(t, config.GetConfigPath(), clone.GetConfigPath())

	clone.Machine.Autotype = "LIST\n"
	assert.Equal(t, "RUN\n", config.Machine.Autotype, "clone must not share state")
}

func TestParseAddress(t *testing.T) {
	valid := map[string]uint16{
		"$1000":   0x1000,
		"0x1000":  0x1000,
		"0XFFFC":  0xFFFC,
		"4096":    0x1000,
		" $00ff ": 0x00FF,
		"0":       0,
		"65535":   0xFFFF,
	}
	for input, expected := range valid {
		address, err := ParseAddress(input)
		if assert.NoError(t, err, input) {
			assert.Equal(t, expected, address, input)
		}
	}

	for _, input := range []string{"", "$", "0x", "65536", "$10000", "-1", "1000h", "$G0"} {
		_, err := ParseAddress(input)
		assert.Error(t, err, input)
	}
}
