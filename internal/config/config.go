package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "sysmoni"

// Config carries runtime options for sysmoni.
type Config struct {
	Interval  time.Duration `koanf:"interval"`
	Mode      string        `koanf:"mode"` // auto, full or compact
	Mouse     bool          `koanf:"mouse"`
	EnableGPU bool          `koanf:"gpu"`
	LogFile   string        `koanf:"log_file"`
	LogLevel  string        `koanf:"log_level"`
	Keys      Keys          `koanf:"keys"`

	// Flag-only options.
	Once       bool   `koanf:"-"`
	ConfigFile string `koanf:"-"`
}

// Keys customizes the root keymap on top of the built-in bindings.
type Keys struct {
	Bind   []KeyBind  `koanf:"bind"`
	Alias  []KeyAlias `koanf:"alias"`
	Unbind []string   `koanf:"unbind"`
	// NoQuantifiers turns off count prefixes such as 3<Down>.
	NoQuantifiers bool `koanf:"no_quantifiers"`
}

// KeyBind binds a key sequence to a named action.
type KeyBind struct {
	Context string `koanf:"context"`
	Keys    string `koanf:"keys"`
	Action  string `koanf:"action"`
}

// KeyAlias makes Target behave like Source.
type KeyAlias struct {
	Context string `koanf:"context"`
	Source  string `koanf:"source"`
	Target  string `koanf:"target"`
}

func Default() Config {
	return Config{
		Interval:  time.Second,
		Mode:      "auto",
		Mouse:     true,
		EnableGPU: true,
		LogLevel:  "info",
	}
}

// FromFlags builds the configuration from defaults, config files, flags and
// environment overrides, in increasing priority.
func FromFlags(args []string) (Config, error) {
	cfg := Default()
	fv := cfg
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.DurationVar(&fv.Interval, "interval", fv.Interval, "refresh interval")
	fs.StringVar(&fv.Mode, "mode", fv.Mode, "display mode: auto|full|compact")
	fs.BoolVar(&fv.Mouse, "mouse", fv.Mouse, "enable mouse input")
	fs.BoolVar(&fv.EnableGPU, "gpu", fv.EnableGPU, "enable GPU sampling")
	fs.StringVar(&fv.LogFile, "log-file", fv.LogFile, "write logs to this file")
	fs.StringVar(&fv.LogLevel, "log-level", fv.LogLevel, "log level: debug|info|warn|error")
	fs.BoolVar(&fv.Once, "once", fv.Once, "print one snapshot and exit")
	fs.StringVar(&fv.ConfigFile, "config", "", "path to config.toml")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if err := Load(&cfg, fv.ConfigFile); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interval":
			cfg.Interval = fv.Interval
		case "mode":
			cfg.Mode = fv.Mode
		case "mouse":
			cfg.Mouse = fv.Mouse
		case "gpu":
			cfg.EnableGPU = fv.EnableGPU
		case "log-file":
			cfg.LogFile = fv.LogFile
		case "log-level":
			cfg.LogLevel = fv.LogLevel
		}
	})
	cfg.Once = fv.Once
	cfg.ConfigFile = fv.ConfigFile

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Load merges config files into cfg. An explicit path must exist; otherwise
// the XDG config file and ./config.toml are read when present, the latter
// winning.
func Load(cfg *Config, explicit string) error {
	k := koanf.New(".")

	paths := getConfigPaths()
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return fmt.Errorf("config file: %w", err)
		}
		paths = []string{explicit}
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return fmt.Errorf("load %s: %w", path, err)
			}
		}
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	cfg.LogFile = expandPath(cfg.LogFile)
	return nil
}

func getConfigPaths() []string {
	return []string{
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		"config.toml",
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SYSMONI_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Interval = parsed
		} else if parsed, err2 := time.ParseDuration(v + "s"); err2 == nil {
			cfg.Interval = parsed
		}
	}
	if v := os.Getenv("SYSMONI_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("SYSMONI_GPU"); v == "0" {
		cfg.EnableGPU = false
	}
	if v := os.Getenv("SYSMONI_LOG_FILE"); v != "" {
		cfg.LogFile = expandPath(v)
	}
}

// Validate rejects values the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Mode {
	case "auto", "full", "compact":
	default:
		errs = append(errs, fmt.Errorf("invalid mode %q", c.Mode))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("interval must be positive, got %s", c.Interval))
	}
	return errors.Join(errs...)
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
