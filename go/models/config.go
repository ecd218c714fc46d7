package models

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/shibukawa/configdir"
	"gopkg.in/yaml.v2"
)

const ConfigFile = "config.yaml"

type Config struct {
	Color          bool   `yaml:"color"`
	Bits           int    `yaml:"bits"`
	Syntax         string `yaml:"syntax"`
	HexWidth       int    `yaml:"hex_width"`
	HistogramWidth int    `yaml:"histogram_width"`
	Verbose        bool   `yaml:"verbose"`
	LogLayers      string `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Color:          isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()),
		Syntax:         "intel",
		HexWidth:       16,
		HistogramWidth: 64,
	}
}

// ParseConfig overlays YAML config data onto the defaults.
func ParseConfig(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfig reads config.yaml from the first readbin config folder
// that has one. A missing file yields the defaults.
func LoadConfig() (*Config, error) {
	dirs := configdir.New("readbin", "readbin")
	folder := dirs.QueryFolderContainsFile(ConfigFile)
	if folder == nil {
		return DefaultConfig(), nil
	}
	data, err := folder.ReadFile(ConfigFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", ConfigFile)
	}
	return ParseConfig(data)
}

func (c *Config) Validate() error {
	switch c.Bits {
	case 0, 16, 32, 64:
	default:
		return errors.Errorf("invalid bits: %d", c.Bits)
	}
	switch c.Syntax {
	case "intel", "gnu":
	default:
		return errors.Errorf("invalid syntax: %q", c.Syntax)
	}
	if c.HexWidth <= 0 || c.HexWidth%8 != 0 {
		return errors.Errorf("hex width must be a positive multiple of 8: %d", c.HexWidth)
	}
	if c.HistogramWidth <= 0 {
		return errors.Errorf("invalid histogram width: %d", c.HistogramWidth)
	}
	return nil
}
