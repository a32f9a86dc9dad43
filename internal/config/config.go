package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the full runtime configuration, loaded from (in ascending
// priority) defaults, a config file, LEDCORE_-prefixed env vars, and
// CLI flags.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Render      RenderConfig      `mapstructure:"render"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Persistence PersistenceConfig `mapstructure:"persistence"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// RenderConfig controls the render loop and the pixel sink it drives.
type RenderConfig struct {
	// Mock forces the in-memory sink and the coarse 50ms tick regime
	// regardless of what hardware is attached.
	Mock bool `mapstructure:"mock"`

	// Sink selects the real pixel sink when Mock is false: "spi",
	// "gpio", or "serial". Ignored when Mock is true.
	Sink string `mapstructure:"sink"`

	// DefaultLayout is the layout loaded at startup: "scale" or "hex".
	DefaultLayout string `mapstructure:"default_layout"`

	// DefaultEffect is the effect class activated at startup when no
	// persisted state exists yet.
	DefaultEffect string `mapstructure:"default_effect"`

	// Scale geometry, used when DefaultLayout == "scale".
	ScaleXCount int     `mapstructure:"scale_x_count"`
	ScaleYCount int     `mapstructure:"scale_y_count"`
	PanelCount  int     `mapstructure:"panel_count"`
	Spacing     float64 `mapstructure:"spacing"`
	ScaleLength float64 `mapstructure:"scale_length"`
	ScaleWidth  float64 `mapstructure:"scale_width"`

	// HexLayoutPath is the exported cell->leds table loaded when
	// DefaultLayout == "hex". A missing file is fatal at startup.
	HexLayoutPath string `mapstructure:"hex_layout_path"`

	// SPIBus names the SPI port (e.g. "SPI0.0"; empty picks the first
	// registered bus), used when Sink == "spi".
	SPIBus string `mapstructure:"spi_bus"`

	// GPIO settings, used when Sink == "gpio".
	GPIOPin int `mapstructure:"gpio_pin"`

	// Serial settings, used when Sink == "serial".
	SerialPort string `mapstructure:"serial_port"`
	SerialBaud int    `mapstructure:"serial_baud"`
}

// LoggerConfig mirrors logger.Config's fields for file-based config.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	LogDir     string `mapstructure:"log_dir"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PersistenceConfig controls where the state blob is saved.
type PersistenceConfig struct {
	Path string `mapstructure:"path"`
}

// Flags holds the parsed command-line overrides.
type Flags struct {
	Mock       bool
	Real       bool
	Debug      bool
	Port       int
	ConfigPath string
}

// ParseFlags defines and parses the ledcore CLI flags: --mock/--real,
// --debug, --port, --config.
func ParseFlags(args []string) (*Flags, error) {
	fs := pflag.NewFlagSet("ledcore", pflag.ContinueOnError)
	f := &Flags{}
	fs.BoolVar(&f.Mock, "mock", false, "force the in-memory mock pixel sink")
	fs.BoolVar(&f.Real, "real", false, "force a real hardware pixel sink")
	fs.BoolVar(&f.Debug, "debug", false, "log achieved render FPS once a second")
	fs.IntVar(&f.Port, "port", 0, "HTTP listen port (0 = use config)")
	fs.StringVar(&f.ConfigPath, "config", "", "path to a config file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// Load reads configuration from configPath (if non-empty), falling
// back to ./configs and the user config dir, then overlays defaults
// and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("ledcore")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath(getConfigDir())
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: failed to read config: %w", err)
		}
		// Config file not found; using defaults.
	}

	v.SetEnvPrefix("LEDCORE")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	return &cfg, nil
}

// ApplyFlags overlays CLI flag overrides onto a loaded Config, giving
// flags the highest priority of any configuration source.
func ApplyFlags(cfg *Config, f *Flags) {
	if f.Mock {
		cfg.Render.Mock = true
	}
	if f.Real {
		cfg.Render.Mock = false
	}
	if f.Port != 0 {
		cfg.Server.Port = f.Port
	}
	if f.Debug {
		cfg.Logger.Level = "debug"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5001)

	v.SetDefault("render.mock", false)
	v.SetDefault("render.sink", "spi")
	v.SetDefault("render.default_layout", "scale")
	v.SetDefault("render.default_effect", "SingleColor")
	v.SetDefault("render.scale_x_count", 14)
	v.SetDefault("render.scale_y_count", 8)
	v.SetDefault("render.panel_count", 3)
	v.SetDefault("render.spacing", 1.0)
	v.SetDefault("render.scale_length", 60.0)
	v.SetDefault("render.scale_width", 50.0)
	v.SetDefault("render.hex_layout_path", filepath.Join(getConfigDir(), "hex_layout.json"))
	v.SetDefault("render.spi_bus", "")
	v.SetDefault("render.gpio_pin", 18)
	v.SetDefault("render.serial_port", "/dev/ttyUSB0")
	v.SetDefault("render.serial_baud", 115200)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_dir", "./logs")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age_days", 7)
	v.SetDefault("logger.compress", true)

	v.SetDefault("persistence.path", filepath.Join(getConfigDir(), "state.json"))
}

func getConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ledcore"
	}
	return filepath.Join(home, ".ledcore")
}
