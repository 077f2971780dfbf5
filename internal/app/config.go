// Package app provides configuration management for the 6502 emulator.
package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"sim6502/internal/graphics"
	"sim6502/internal/machine"
)

// Config holds all application configuration
type Config struct {
	Emulation EmulationConfig `json:"emulation"`
	Machine   MachineConfig   `json:"machine"`
	Video     VideoConfig     `json:"video"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// EmulationConfig contains settings for bare program runs
type EmulationConfig struct {
	DefaultProgram    string `json:"default_program"`
	LoadAddress       string `json:"load_address"` // "$1000", "0x1000" or "4096"
	BootAddress       string `json:"boot_address"`
	MaxInstructions   int    `json:"max_instructions"`
	SliceInstructions int    `json:"slice_instructions"` // 0 keeps the machine's own slice
}

// MachineConfig selects the retro machine profile
type MachineConfig struct {
	Profile  string `json:"profile"` // "vic20", "c64"
	ROMDir   string `json:"rom_dir"`
	Autotype string `json:"autotype"` // Typed into the machine after boot
}

// VideoConfig contains front end configuration
type VideoConfig struct {
	Backend        string `json:"backend"` // "terminal", "ebitengine", "headless"
	Scale          int    `json:"scale"`
	Fullscreen     bool   `json:"fullscreen"`
	VSync          bool   `json:"vsync"`
	HeadlessFrames int    `json:"headless_frames"`
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	Trace         bool   `json:"trace"`
	TraceAddress  string `json:"trace_address"`
	Breakpoint    string `json:"breakpoint"`
	LoopDetection bool   `json:"loop_detection"`
	Session       bool   `json:"session"` // Write trace.log and dumps to OutputDir
	OutputDir     string `json:"output_dir"`
	LogLevel      string `json:"log_level"` // "DEBUG", "INFO", "WARN", "ERROR"
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	States string `json:"states"`
	Config string `json:"config"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Emulation: EmulationConfig{
			DefaultProgram:    "fibonacci",
			LoadAddress:       "$1000",
			BootAddress:       "$1000",
			MaxInstructions:   1_000_000,
			SliceInstructions: 0,
		},
		Machine: MachineConfig{
			Profile: "vic20",
			ROMDir:  "./roms",
		},
		Video: VideoConfig{
			Backend:        string(graphics.BackendTerminal),
			Scale:          2,
			Fullscreen:     false,
			VSync:          true,
			HeadlessFrames: 120,
		},
		Debug: DebugConfig{
			Trace:         false,
			LoopDetection: false,
			Session:       false,
			OutputDir:     "./debug",
			LogLevel:      "INFO",
		},
		Paths: PathsConfig{
			States: "./states",
			Config: GetDefaultConfigDir(),
		},
		loaded: false,
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the current values.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

// Save saves the configuration to the current config file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("no config file path set")
	}

	return c.SaveToFile(c.configPath)
}

// validate repairs out-of-range numbers and rejects values that cannot be
// used at all
func (c *Config) validate() error {
	if c.Emulation.MaxInstructions <= 0 {
		c.Emulation.MaxInstructions = 1_000_000
	}
	if c.Emulation.SliceInstructions < 0 {
		c.Emulation.SliceInstructions = 0
	}

	if c.Video.Scale <= 0 {
		c.Video.Scale = 1
	}
	if c.Video.HeadlessFrames <= 0 {
		c.Video.HeadlessFrames = 120
	}

	switch strings.ToUpper(c.Debug.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		c.Debug.LogLevel = strings.ToUpper(c.Debug.LogLevel)
	default:
		c.Debug.LogLevel = "INFO"
	}

	switch graphics.BackendType(c.Video.Backend) {
	case "", graphics.BackendTerminal, graphics.BackendEbitengine, graphics.BackendHeadless:
	default:
		return &ConfigError{Field: "video.backend", Value: c.Video.Backend, Err: errors.New("unknown backend")}
	}

	if c.Machine.Profile != "" {
		if _, err := machine.GetProfile(c.Machine.Profile); err != nil {
			return &ConfigError{Field: "machine.profile", Value: c.Machine.Profile, Err: err}
		}
	}

	addresses := []struct {
		field string
		value string
	}{
		{"emulation.load_address", c.Emulation.LoadAddress},
		{"emulation.boot_address", c.Emulation.BootAddress},
		{"debug.trace_address", c.Debug.TraceAddress},
		{"debug.breakpoint", c.Debug.Breakpoint},
	}
	for _, a := range addresses {
		if a.value == "" {
			continue
		}
		if _, err := ParseAddress(a.value); err != nil {
			return &ConfigError{Field: a.field, Value: a.value, Err: err}
		}
	}

	return nil
}

// ParseAddress accepts "$FFFE", "0xFFFE" or decimal and checks the result
// fits in 16 bits
func ParseAddress(s string) (uint16, error) {
	text := strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(text, "$"):
		text, base = text[1:], 16
	case strings.HasPrefix(text, "0x"), strings.HasPrefix(text, "0X"):
		text, base = text[2:], 16
	}

	value, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint16(value), nil
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	// Marshal to JSON and back to create deep copy
	data, err := json.Marshal(c)
	if err != nil {
		return NewConfig()
	}

	clone := &Config{}
	if err := json.Unmarshal(data, clone); err != nil {
		return NewConfig()
	}

	// Copy non-serialized fields
	clone.configPath = c.configPath
	clone.loaded = c.loaded

	return clone
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/sim6502.json"
}

// GetDefaultConfigDir returns the default configuration directory
func GetDefaultConfigDir() string {
	return "./config"
}

// ConfigError represents configuration-related errors
type ConfigError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field '%s' with value '%v': %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
