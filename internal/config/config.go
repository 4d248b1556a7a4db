package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/docwire/internal/docproto"
	"github.com/danmuck/docwire/internal/logging"
	"github.com/danmuck/docwire/internal/protocol/frame"
	"github.com/danmuck/docwire/internal/protocol/schema"
	"github.com/rs/zerolog"
)

// DefaultPath is where commands look for a config when none is given.
const DefaultPath = "docwire.toml"

type Config struct {
	Codec   CodecConfig  `toml:"codec"`
	Frame   FrameConfig  `toml:"frame"`
	Log     LogConfig    `toml:"log"`
	Server  ServerConfig `toml:"server"`
	Schemas []string     `toml:"schemas"`
}

type CodecConfig struct {
	MaxDepth int `toml:"max_depth"`
}

type FrameConfig struct {
	MaxSchemaBytes  uint64 `toml:"max_schema_bytes"`
	MaxPayloadBytes uint64 `toml:"max_payload_bytes"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type ServerConfig struct {
	Addr        string   `toml:"addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func Default() Config {
	limits := frame.DefaultLimits()
	return Config{
		Codec: CodecConfig{MaxDepth: docproto.DefaultMaxDepth},
		Frame: FrameConfig{
			MaxSchemaBytes:  limits.MaxSchemaBytes,
			MaxPayloadBytes: limits.MaxPayloadBytes,
		},
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:        ":9400",
			CorsOrigins: []string{"http://localhost:3000"},
		},
		Schemas: []string{},
	}
}

// Load overlays the keys defined in the TOML file at path onto Default and
// validates the result. Relative schema paths resolve against the file's
// directory.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw Config
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config load failed (%s): unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("codec", "max_depth") {
		cfg.Codec.MaxDepth = raw.Codec.MaxDepth
	}
	if meta.IsDefined("frame", "max_schema_bytes") {
		cfg.Frame.MaxSchemaBytes = raw.Frame.MaxSchemaBytes
	}
	if meta.IsDefined("frame", "max_payload_bytes") {
		cfg.Frame.MaxPayloadBytes = raw.Frame.MaxPayloadBytes
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = raw.Server.CorsOrigins
	}
	if meta.IsDefined("schemas") {
		cfg.Schemas = make([]string, 0, len(raw.Schemas))
		for _, p := range raw.Schemas {
			p = strings.TrimSpace(p)
			if p != "" && !filepath.IsAbs(p) {
				p = filepath.Join(filepath.Dir(path), p)
			}
			cfg.Schemas = append(cfg.Schemas, p)
		}
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default when the
// default path is simply missing.
func LoadOrDefault(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && path == DefaultPath {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	return Load(path)
}

func Validate(cfg Config) error {
	if cfg.Codec.MaxDepth < 1 {
		return fmt.Errorf("codec.max_depth must be positive, got %d", cfg.Codec.MaxDepth)
	}
	if cfg.Frame.MaxSchemaBytes == 0 {
		return fmt.Errorf("frame.max_schema_bytes must be positive")
	}
	if cfg.Frame.MaxPayloadBytes == 0 {
		return fmt.Errorf("frame.max_payload_bytes must be positive")
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	for i, p := range cfg.Schemas {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("schemas[%d] is empty", i)
		}
	}
	return nil
}

// CodecOptions maps the codec section to conversion options.
func (c Config) CodecOptions() []docproto.Option {
	return []docproto.Option{docproto.WithMaxDepth(c.Codec.MaxDepth)}
}

func (c Config) FrameLimits() frame.Limits {
	return frame.Limits{
		MaxSchemaBytes:  c.Frame.MaxSchemaBytes,
		MaxPayloadBytes: c.Frame.MaxPayloadBytes,
	}
}

// LogLevel returns the configured level, info when unset.
func (c Config) LogLevel() zerolog.Level {
	level, ok := logging.ParseLevel(c.Log.Level)
	if !ok {
		return zerolog.InfoLevel
	}
	return level
}

// Registry returns the builtin schemas plus every schema file listed in the
// config, loaded in order.
func (c Config) Registry() (*schema.Registry, error) {
	reg := schema.Builtin()
	for _, p := range c.Schemas {
		if err := reg.LoadFile(p); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
