package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "SHOPSWIPE_"

// Config controls runtime behavior for the storefront.
type Config struct {
	CatalogPath  string        `env:"CATALOG"`
	DataDir      string        `env:"DATA_DIR"`
	LogPath      string        `env:"LOG"`
	ASCIIOnly    bool          `env:"ASCII"`
	Debug        bool          `env:"DEBUG"`
	DemoScenario string        `env:"DEMO"`
	Autoplay     time.Duration `env:"AUTOPLAY"`
	UI           UIConfig
}

type UIConfig struct {
	StyleVariant string `env:"STYLE"`
	MotionLevel  string `env:"MOTION"`
	MouseScope   string `env:"MOUSE"`
}

// DefaultConfig leaves StyleVariant empty so a saved theme can fill it.
func DefaultConfig() Config {
	return Config{
		UI: UIConfig{
			MotionLevel: "full",
			MouseScope:  "scoped",
		},
	}
}

// LoadEnv overlays SHOPSWIPE_* variables onto cfg. A nil environ reads the
// process environment.
func LoadEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.UI.StyleVariant {
	case "", "midnight", "daylight", "receipt":
	default:
		return fmt.Errorf("invalid ui style variant %q", c.UI.StyleVariant)
	}
	if c.UI.StyleVariant == "" {
		c.UI.StyleVariant = "midnight"
	}
	switch c.UI.MotionLevel {
	case "", "off", "reduced", "full":
	default:
		return fmt.Errorf("invalid ui motion level %q", c.UI.MotionLevel)
	}
	if c.UI.MotionLevel == "" {
		c.UI.MotionLevel = "full"
	}
	switch c.UI.MouseScope {
	case "", "off", "scoped", "full":
	default:
		return fmt.Errorf("invalid ui mouse scope %q", c.UI.MouseScope)
	}
	if c.UI.MouseScope == "" {
		c.UI.MouseScope = "scoped"
	}
	if c.Autoplay < 0 {
		return fmt.Errorf("invalid autoplay interval %s", c.Autoplay)
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.New("cannot resolve user home directory")
		}
		c.DataDir = filepath.Join(home, ".local", "share", "shopswipe")
	}

	return nil
}
