package main

import (
	"errors"
	"fmt"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"techsketch/internal/editor"
	"techsketch/internal/geom"
	"techsketch/internal/history"
	"techsketch/internal/shape"
	"techsketch/internal/util"
)

// Config is the YAML configuration document.
type Config struct {
	Grid    GridConfig    `yaml:"grid"`
	Style   StyleConfig   `yaml:"style"`
	History HistoryConfig `yaml:"history"`
	Log     LogConfig     `yaml:"log"`
	Cell    CellConfig    `yaml:"cell"`
}

type GridConfig struct {
	CellSize float64 `yaml:"cellSize"`
	Visible  bool    `yaml:"visible"`
	Snap     bool    `yaml:"snap"`
}

type StyleConfig struct {
	StrokeWidth float64 `yaml:"strokeWidth"`
	StrokeColor string  `yaml:"strokeColor"`
	FillColor   string  `yaml:"fillColor"`
}

type HistoryConfig struct {
	Limit int `yaml:"limit"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// CellConfig is the number of canvas pixels behind one terminal cell.
type CellConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

func defaultConfig() *Config {
	return &Config{
		Grid:    GridConfig{CellSize: geom.DefaultGridCell, Visible: true, Snap: true},
		Style:   StyleConfig{StrokeWidth: 2, StrokeColor: "#000000"},
		History: HistoryConfig{Limit: history.DefaultLimit},
		Log:     LogConfig{Level: "info", File: "techsketch.log"},
		Cell:    CellConfig{Width: defaultCellWidth, Height: defaultCellHeight},
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".techsketch.yaml"
	}
	return filepath.Join(home, ".techsketch.yaml")
}

// loadConfig reads path over the defaults. A missing file yields the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate clamps numeric settings into range and rejects malformed colours.
func (c *Config) Validate() error {
	c.Grid.CellSize = geom.ClampCellSize(c.Grid.CellSize)
	if c.Style.StrokeWidth < editor.MinStrokeWidth {
		c.Style.StrokeWidth = editor.MinStrokeWidth
	}
	if c.Style.StrokeWidth > editor.MaxStrokeWidth {
		c.Style.StrokeWidth = editor.MaxStrokeWidth
	}
	if c.History.Limit <= 0 {
		c.History.Limit = history.DefaultLimit
	}
	if c.Cell.Width <= 0 {
		c.Cell.Width = defaultCellWidth
	}
	if c.Cell.Height <= 0 {
		c.Cell.Height = defaultCellHeight
	}
	if c.Log.File == "" {
		c.Log.File = "techsketch.log"
	}
	if _, err := parseColor(c.Style.StrokeColor); err != nil {
		return fmt.Errorf("style.strokeColor: %w", err)
	}
	if c.Style.FillColor != "" {
		if _, err := parseColor(c.Style.FillColor); err != nil {
			return fmt.Errorf("style.fillColor: %w", err)
		}
	}
	return nil
}

func (c *Config) grid() geom.Grid {
	return geom.Grid{CellSize: c.Grid.CellSize, Visible: c.Grid.Visible, Snap: c.Grid.Snap}
}

// style assumes Validate has accepted the colours.
func (c *Config) style() shape.Style {
	s := shape.Style{StrokeWidth: c.Style.StrokeWidth}
	s.Stroke, _ = parseColor(c.Style.StrokeColor)
	if c.Style.FillColor != "" {
		s.Fill, _ = parseColor(c.Style.FillColor)
	}
	return s
}

func (c *Config) logLevel() util.LogLevel {
	return util.ParseLogLevel(c.Log.Level)
}

// parseColor accepts #rgb, #rrggbb and #rrggbbaa.
func parseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("malformed colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
