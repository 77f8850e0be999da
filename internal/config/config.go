package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	PixelsPerSecond float64 `yaml:"pixels_per_second"`
	DuckUnderVideo  bool    `yaml:"duck_under_video"`
	DuckVolume      float64 `yaml:"duck_volume"`
	SeekTolerance   float64 `yaml:"seek_tolerance"`
	Filter          string  `yaml:"filter"`
	Workers         int     `yaml:"workers"`
	FontSize        float64 `yaml:"font_size"`
	BurnIn          bool    `yaml:"burn_in"`
	DPI             int     `yaml:"pdf_dpi"`
	PageDuration    float64 `yaml:"page_duration"`
	ShowStats       bool    `yaml:"show_stats"`
	MediaRoot       string  `yaml:"media_root"`
	BuildVersion    string  `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Width:           1280,
		Height:          720,
		FPS:             30,
		PixelsPerSecond: 20,
		DuckUnderVideo:  true,
		DuckVolume:      0.2,
		SeekTolerance:   0.3,
		DPI:             150,
		PageDuration:    5,
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (если задан), затем .env и переменные окружения CUTLINE_*.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env не обязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"CUTLINE_WIDTH":   &c.Width,
		"CUTLINE_HEIGHT":  &c.Height,
		"CUTLINE_FPS":     &c.FPS,
		"CUTLINE_WORKERS": &c.Workers,
		"CUTLINE_PDF_DPI": &c.DPI,
	}
	floats := map[string]*float64{
		"CUTLINE_PIXELS_PER_SECOND": &c.PixelsPerSecond,
		"CUTLINE_DUCK_VOLUME":       &c.DuckVolume,
		"CUTLINE_SEEK_TOLERANCE":    &c.SeekTolerance,
		"CUTLINE_FONT_SIZE":         &c.FontSize,
		"CUTLINE_PAGE_DURATION":     &c.PageDuration,
	}
	bools := map[string]*bool{
		"CUTLINE_DUCK_UNDER_VIDEO": &c.DuckUnderVideo,
		"CUTLINE_BURN_IN":          &c.BurnIn,
		"CUTLINE_SHOW_STATS":       &c.ShowStats,
	}
	strs := map[string]*string{
		"CUTLINE_FILTER":     &c.Filter,
		"CUTLINE_MEDIA_ROOT": &c.MediaRoot,
	}

	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}
	for key, dst := range floats {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid canvas %dx%d", c.Width, c.Height)
	}
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("canvas %dx%d must have even dimensions", c.Width, c.Height)
	}
	if c.FPS <= 0 || c.FPS > 240 {
		return fmt.Errorf("fps %d out of range", c.FPS)
	}
	if c.DuckVolume < 0 || c.DuckVolume > 1 {
		return fmt.Errorf("duck_volume %v out of range [0,1]", c.DuckVolume)
	}
	if c.SeekTolerance < 0 {
		return fmt.Errorf("seek_tolerance must not be negative")
	}
	if c.PageDuration <= 0 {
		return fmt.Errorf("page_duration must be positive")
	}
	return nil
}

// ApplyPreset переключает холст на именованный формат.
func (c *Config) ApplyPreset(name string) error {
	switch name {
	case "":
	case "16:9":
		c.Width, c.Height = 1280, 720
	case "9:16":
		c.Width, c.Height = 720, 1280
	case "4:5":
		c.Width, c.Height = 1080, 1350
	case "1:1":
		c.Width, c.Height = 1080, 1080
	default:
		return fmt.Errorf("unknown format preset %q", name)
	}
	return nil
}

// FrameBytes — размер одного RGBA-холста в байтах.
func (c *Config) FrameBytes() uint64 {
	return uint64(c.Width) * uint64(c.Height) * 4
}
