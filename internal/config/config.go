package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DisplayConfig describes the OLED panel and its bus attachment.
type DisplayConfig struct {
	// Transport selects the panel bus. Supported values:
	//   - "i2c" (default)
	//   - "spi"
	Transport string `yaml:"transport" json:"transport"`

	// Bus is the periph.io bus name, e.g. "1" or "/dev/i2c-1" for I2C,
	// "SPI0.0" for SPI. Empty selects the platform default.
	Bus string `yaml:"bus" json:"bus"`

	// Addr is the I2C slave address. Ignored for SPI.
	Addr uint16 `yaml:"addr" json:"addr"`

	// DCPin and ResetPin are GPIO names for the SPI data/command and
	// reset lines. Ignored for I2C.
	DCPin    string `yaml:"dc_pin" json:"dc_pin"`
	ResetPin string `yaml:"reset_pin" json:"reset_pin"`

	// FrameRate is the panel sync rate in frames per second.
	FrameRate int `yaml:"frame_rate" json:"frame_rate"`

	// Contrast is the panel contrast (0x01-0xFF).
	Contrast uint8 `yaml:"contrast" json:"contrast"`

	// Flip rotates the panel 180 degrees for upside-down mounting.
	Flip bool `yaml:"flip" json:"flip"`

	// ChargePump enables the internal charge pump (SSD1306-style boards).
	ChargePump bool `yaml:"charge_pump" json:"charge_pump"`

	// SleepCron and WakeCron, when both set, blank and unblank the panel
	// on a cron schedule to limit OLED burn-in overnight.
	SleepCron string `yaml:"sleep" json:"sleep"`
	WakeCron  string `yaml:"wake" json:"wake"`
}

// ExposureConfig holds the darkroom timing defaults.
type ExposureConfig struct {
	// BaseMS is the default exposure time in milliseconds.
	BaseMS uint32 `yaml:"base_ms" json:"base_ms"`

	// StopResolution is the f-stop step size. Supported values:
	//   - "full", "half", "third" (default), "sixth"
	StopResolution string `yaml:"stop_resolution" json:"stop_resolution"`

	// TestStripSteps is the number of steps on each side of the base time
	// in a generated test strip.
	TestStripSteps int `yaml:"test_strip_steps" json:"test_strip_steps"`
}

// RelayConfig describes the enlarger lamp relay.
type RelayConfig struct {
	// Pin is the GPIO name driving the relay, e.g. "GPIO17".
	Pin string `yaml:"pin" json:"pin"`

	// ActiveLow inverts the drive for relay boards that switch on low.
	ActiveLow bool `yaml:"active_low" json:"active_low"`
}

// InputConfig names the GPIO lines for the front-panel controls.
type InputConfig struct {
	RunPin    string `yaml:"run_pin" json:"run_pin"`
	FocusPin  string `yaml:"focus_pin" json:"focus_pin"`
	UpPin     string `yaml:"up_pin" json:"up_pin"`
	DownPin   string `yaml:"down_pin" json:"down_pin"`
	CancelPin string `yaml:"cancel_pin" json:"cancel_pin"`

	// Footswitch is an optional extra run trigger.
	Footswitch string `yaml:"footswitch" json:"footswitch"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the status/control API.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of "debug", "info", "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	Display  DisplayConfig  `yaml:"display" json:"display"`
	Exposure ExposureConfig `yaml:"exposure" json:"exposure"`
	Relay    RelayConfig    `yaml:"relay" json:"relay"`
	Input    InputConfig    `yaml:"input" json:"input"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   "127.0.0.1:8080",
		LogLevel: "info",
		Display: DisplayConfig{
			Transport: "i2c",
			Addr:      0x3C,
			FrameRate: 30,
			Contrast:  0x6F,
			SleepCron: "0 1 * * *",
			WakeCron:  "0 8 * * *",
		},
		Exposure: ExposureConfig{
			BaseMS:         8000,
			StopResolution: "third",
			TestStripSteps: 3,
		},
		Relay: RelayConfig{
			Pin: "GPIO17",
		},
		Input: InputConfig{
			RunPin:    "GPIO5",
			FocusPin:  "GPIO6",
			UpPin:     "GPIO13",
			DownPin:   "GPIO19",
			CancelPin: "GPIO26",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	switch c.Display.Transport {
	case "i2c", "spi":
		// ok
	default:
		c.Display.Transport = "i2c"
	}
	if c.Display.Addr == 0 {
		c.Display.Addr = 0x3C
	}
	if c.Display.FrameRate <= 0 {
		c.Display.FrameRate = 30
	}
	if c.Display.Contrast == 0 {
		c.Display.Contrast = 0x6F
	}
	switch c.Exposure.StopResolution {
	case "full", "half", "third", "sixth":
		// ok
	default:
		c.Exposure.StopResolution = "third"
	}
	if c.Exposure.BaseMS == 0 {
		c.Exposure.BaseMS = 8000
	}
	if c.Exposure.TestStripSteps <= 0 {
		c.Exposure.TestStripSteps = 3
	}
	if c.Relay.Pin == "" {
		c.Relay.Pin = "GPIO17"
	}
}

// Validate rejects configurations Normalize cannot repair.
func (c *Config) Validate() error {
	if c.Display.Transport == "spi" {
		if c.Display.DCPin == "" || c.Display.ResetPin == "" {
			return errors.New("config: spi transport requires dc_pin and reset_pin")
		}
	}
	if (c.Display.SleepCron == "") != (c.Display.WakeCron == "") {
		return errors.New("config: sleep and wake schedules must be set together")
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there with 0600
// perms and returned; otherwise the file is unmarshaled and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path, atomically via
// a temp file + rename, with final 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".nbtimer-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
