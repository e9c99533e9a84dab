package config

import (
	"fmt"
	"image/color"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the analyser service.
type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Classification parameters. PaintColor is the brush colour the drawing
	// surface uses for pearlite regions; a mask pixel counts as marked when
	// its alpha exceeds AlphaThreshold and its colour lies within
	// ColorTolerance (Euclidean RGB distance) of PaintColor.
	PaintColor     color.NRGBA
	AlphaThreshold uint8
	ColorTolerance float64

	// Brush radius bounds enforced on stroke input.
	MinBrushRadius int
	MaxBrushRadius int

	// Report thumbnail bounding box in pixels.
	ThumbnailMaxWidth  int
	ThumbnailMaxHeight int

	// Optional Azure blob source for lab-hosted micrographs.
	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// AzureEnabled reports whether a blob-backed micrograph source is configured.
func (c *Config) AzureEnabled() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 20*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 25*1024*1024), // 25MB, micrographs are large
		PaintColor:         color.NRGBA{R: 220, G: 50, B: 50, A: 255},
		AlphaThreshold:     uint8(parseIntOrDefault("ALPHA_THRESHOLD", 50)),
		ColorTolerance:     parseFloatOrDefault("COLOR_TOLERANCE", 80.0),
		MinBrushRadius:     int(parseIntOrDefault("MIN_BRUSH_RADIUS", 2)),
		MaxBrushRadius:     int(parseIntOrDefault("MAX_BRUSH_RADIUS", 50)),
		ThumbnailMaxWidth:  int(parseIntOrDefault("THUMBNAIL_MAX_WIDTH", 900)),
		ThumbnailMaxHeight: int(parseIntOrDefault("THUMBNAIL_MAX_HEIGHT", 600)),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
	}

	if paint := os.Getenv("PAINT_COLOR"); paint != "" {
		c, err := parseHexColor(paint)
		if err != nil {
			return nil, fmt.Errorf("invalid PAINT_COLOR: %w", err)
		}
		cfg.PaintColor = c
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout)
	}
	if cfg.MinBrushRadius < 1 || cfg.MaxBrushRadius < cfg.MinBrushRadius {
		return nil, fmt.Errorf("invalid brush radius bounds (min=%d, max=%d)",
			cfg.MinBrushRadius, cfg.MaxBrushRadius)
	}
	if cfg.ColorTolerance < 0 {
		return nil, fmt.Errorf("COLOR_TOLERANCE must be >= 0 (got %f)", cfg.ColorTolerance)
	}
	if cfg.ThumbnailMaxWidth < 1 || cfg.ThumbnailMaxHeight < 1 {
		return nil, fmt.Errorf("thumbnail bounds must be positive (got %dx%d)",
			cfg.ThumbnailMaxWidth, cfg.ThumbnailMaxHeight)
	}
	return cfg, nil
}

// parseHexColor parses "#rrggbb" or "rrggbb" into an opaque NRGBA colour.
func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("expected 6 hex digits, got %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, err
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
