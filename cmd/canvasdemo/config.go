package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/canvas2d"
)

// Config is the demo's TOML configuration.
type Config struct {
	Window struct {
		Title  string `toml:"title"`
		Width  int    `toml:"width"`
		Height int    `toml:"height"`
	} `toml:"window"`

	Renderer struct {
		MemoryBudgetMiB int64 `toml:"memory_budget_mib"`
		BatchCapacity   int   `toml:"batch_capacity"`
		GlyphRuns       int   `toml:"glyph_runs"`
		Debug           bool  `toml:"debug"`
	} `toml:"renderer"`

	Demo struct {
		Sprites  int     `toml:"sprites"`
		ShowHUD  bool    `toml:"show_hud"`
		LogLevel string  `toml:"log_level"`
		Duration float32 `toml:"tween_seconds"`
	} `toml:"demo"`
}

func defaultConfig() Config {
	var c Config
	c.Window.Title = "canvas2d demo"
	c.Window.Width = 640
	c.Window.Height = 480
	c.Renderer.BatchCapacity = canvas2d.DefaultBatchCapacity
	c.Renderer.GlyphRuns = canvas2d.DefaultGlyphRunCache
	c.Demo.Sprites = 200
	c.Demo.ShowHUD = true
	c.Demo.LogLevel = "info"
	c.Demo.Duration = 2
	return c
}

// loadConfig reads path over the defaults. An empty path returns the
// defaults unchanged.
func loadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return c, fmt.Errorf("config %s: window size %dx%d", path, c.Window.Width, c.Window.Height)
	}
	return c, nil
}

func (c Config) logLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Demo.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// options maps the renderer section onto manager options.
func (c Config) options(log *slog.Logger, text canvas2d.TextRasterizer) []canvas2d.Option {
	return []canvas2d.Option{
		canvas2d.WithMemoryBudget(c.Renderer.MemoryBudgetMiB << 20),
		canvas2d.WithBatchCapacity(c.Renderer.BatchCapacity),
		canvas2d.WithGlyphRunCache(c.Renderer.GlyphRuns),
		canvas2d.WithDebug(c.Renderer.Debug),
		canvas2d.WithLogger(log),
		canvas2d.WithTextRasterizer(text),
	}
}
