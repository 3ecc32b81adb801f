// Package config loads the board-tester configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"board-tester/internal/layout"

	"github.com/BurntSushi/toml"
)

// AppName names the per-user configuration directory.
const AppName = "board-tester"

// FileName is the configuration file name inside Dir().
const FileName = "config.toml"

// Config holds the settings read from config.toml.
type Config struct {
	LayoutsDir   string `toml:"layouts_dir"`
	DBPath       string `toml:"db_path"`
	ExportDir    string `toml:"export_dir"`
	ExportFormat string `toml:"export_format"`
	LogToDB      bool   `toml:"log_to_db"`
	OCR          bool   `toml:"ocr"`
	Blank        Blank  `toml:"blank"`
}

// Blank is the default canvas for new layouts.
type Blank struct {
	Width  int  `toml:"width"`
	Height int  `toml:"height"`
	Grid   bool `toml:"grid"`
	Size   int  `toml:"grid_size"`
}

// Canvas returns the blank canvas configuration for new layouts.
func (b Blank) Canvas() layout.CanvasConfig {
	c := layout.BlankCanvas()
	if b.Width > 0 && b.Height > 0 {
		c.Width, c.Height = b.Width, b.Height
	}
	c.Grid.Enabled = b.Grid
	if b.Size > 0 {
		c.Grid.Size = b.Size
	}
	return c
}

// Dir returns the per-user configuration directory.
func Dir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppName)
}

// DefaultPath returns the location of config.toml.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		LayoutsDir:   "layouts",
		DBPath:       filepath.Join("data", "test_log.db"),
		ExportDir:    "exports",
		ExportFormat: "xlsx",
		LogToDB:      true,
		OCR:          true,
		Blank: Blank{
			Width:  layout.DefaultBlankWidth,
			Height: layout.DefaultBlankHeight,
			Grid:   true,
			Size:   layout.SavedGridSize,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// An empty path means DefaultPath().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	cfg.ExportFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(cfg.ExportFormat)), ".")
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.ExportFormat {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("export_format must be xlsx or csv, got %q", c.ExportFormat)
	}
	if c.Blank.Width < 0 || c.Blank.Height < 0 || c.Blank.Size < 0 {
		return errors.New("blank canvas size must not be negative")
	}
	return nil
}

// Write saves c to path in TOML, creating the directory.
func (c Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
