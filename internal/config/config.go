// Package config loads the meshctm configuration file.
//
// The file lives at $MESHCTM_CONFIG or, failing that, at
// <user config dir>/meshctm/config.yaml. YAML and TOML are both accepted;
// the extension decides. Pointer fields distinguish "not set" from zero.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/meshctm/internal/logger"
	"github.com/samcharles93/meshctm/internal/meshio"
	"github.com/samcharles93/meshctm/pkg/ctm"
)

// EnvPath overrides the default config file location.
const EnvPath = "MESHCTM_CONFIG"

var ErrUnknownExtension = errors.New("config: unknown file extension")

type Config struct {
	Log    Log    `yaml:"log" toml:"log"`
	Export Export `yaml:"export" toml:"export"`
	Limits Limits `yaml:"limits" toml:"limits"`
	Server Server `yaml:"server" toml:"server"`
	Watch  Watch  `yaml:"watch" toml:"watch"`
}

type Log struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  *int   `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups *int   `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays *int   `yaml:"max_age_days" toml:"max_age_days"`
	Compress   *bool  `yaml:"compress" toml:"compress"`
}

// Export holds defaults for files written by convert, watch and the API.
type Export struct {
	Method             string   `yaml:"method" toml:"method"`
	Level              *int     `yaml:"level" toml:"level"`
	VertexPrecision    *float32 `yaml:"vertex_precision" toml:"vertex_precision"`
	VertexPrecisionRel *float32 `yaml:"vertex_precision_rel" toml:"vertex_precision_rel"`
	NormalPrecision    *float32 `yaml:"normal_precision" toml:"normal_precision"`
	TexCoordPrecision  *float32 `yaml:"texcoord_precision" toml:"texcoord_precision"`
	ColorPrecision     *float32 `yaml:"color_precision" toml:"color_precision"`
}

type Limits struct {
	MaxMaps     *int `yaml:"max_maps" toml:"max_maps"`
	MaxElements *int `yaml:"max_elements" toml:"max_elements"`
}

type Server struct {
	Address     string   `yaml:"address" toml:"address"`
	StoreDir    string   `yaml:"store_dir" toml:"store_dir"`
	MaxUploadMB *int64   `yaml:"max_upload_mb" toml:"max_upload_mb"`
	RateLimit   *float64 `yaml:"rate_limit" toml:"rate_limit"`
	RateBurst   *int     `yaml:"rate_burst" toml:"rate_burst"`
}

type Watch struct {
	// Settle is a Go duration string such as "750ms".
	Settle string `yaml:"settle" toml:"settle"`
}

// DefaultPath returns the file Load reads when given an empty path.
func DefaultPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "meshctm", "config.yaml")
}

// Load reads the config file at path, or DefaultPath when path is empty.
// A missing file yields a zero Config and no error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data according to ext (".yaml", ".yml" or ".toml").
func Parse(data []byte, ext string) (Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: yaml: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: toml: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownExtension, ext)
	}
	return cfg, nil
}

// CTMOptions returns the engine limits.
func (c Config) CTMOptions() ctm.Options {
	o := ctm.DefaultOptions()
	if c.Limits.MaxMaps != nil {
		o.MaxMaps = *c.Limits.MaxMaps
	}
	if c.Limits.MaxElements != nil {
		o.MaxElements = *c.Limits.MaxElements
	}
	return o
}

// ExportOptions returns the export defaults. An unknown method name is an
// error.
func (c Config) ExportOptions() (meshio.ExportOptions, error) {
	o := meshio.DefaultExportOptions()
	e := c.Export
	if e.Method != "" {
		m, err := ctm.ParseMethod(e.Method)
		if err != nil {
			return o, fmt.Errorf("config: export.method: %w", err)
		}
		o.Method = m
	}
	if e.Level != nil {
		o.Level = *e.Level
	}
	if e.VertexPrecision != nil {
		o.VertexPrecision = *e.VertexPrecision
	}
	if e.VertexPrecisionRel != nil {
		o.VertexPrecisionRel = *e.VertexPrecisionRel
	}
	if e.NormalPrecision != nil {
		o.NormalPrecision = *e.NormalPrecision
	}
	if e.TexCoordPrecision != nil {
		o.TexCoordPrecision = *e.TexCoordPrecision
	}
	if e.ColorPrecision != nil {
		o.ColorPrecision = *e.ColorPrecision
	}
	return o, nil
}

// LoggerOptions returns logging settings. Empty fields fall back to the
// logger's own defaults (info level, pretty console).
func (c Config) LoggerOptions() logger.Options {
	o := logger.Options{Level: c.Log.Level, Format: c.Log.Format}
	if c.Log.File != "" {
		o.File = logger.FileOptions{
			Path:       c.Log.File,
			MaxSizeMB:  deref(c.Log.MaxSizeMB, 50),
			MaxBackups: deref(c.Log.MaxBackups, 3),
			MaxAgeDays: deref(c.Log.MaxAgeDays, 28),
			Compress:   deref(c.Log.Compress, false),
		}
	}
	return o
}

// SettleDelay is how long the watcher waits after the last event on a path.
func (c Config) SettleDelay() (time.Duration, error) {
	if c.Watch.Settle == "" {
		return 500 * time.Millisecond, nil
	}
	d, err := time.ParseDuration(c.Watch.Settle)
	if err != nil {
		return 0, fmt.Errorf("config: watch.settle: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("config: watch.settle: negative duration %s", d)
	}
	return d, nil
}

// MaxUploadBytes bounds request bodies accepted by the API.
func (s Server) MaxUploadBytes() int64 {
	return deref(s.MaxUploadMB, 64) << 20
}

// Limit returns the upload rate in requests per second and the burst size.
// A zero rate disables limiting.
func (s Server) Limit() (float64, int) {
	return deref(s.RateLimit, 0), deref(s.RateBurst, 4)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
