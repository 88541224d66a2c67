// Package config loads gqlboot settings from defaults, a YAML file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read as configuration.
// GQLBOOT_SERVER__ADDR sets server.addr.
const EnvPrefix = "GQLBOOT_"

type Config struct {
	// Visibility is the field visibility setting: empty, "no-introspection",
	// or a comma separated list of field patterns hidden from introspection.
	Visibility string `koanf:"field_visibility"`
	Server     Server `koanf:"server"`
	Otel       Otel   `koanf:"otel"`
	Log        Log    `koanf:"log"`
}

type Server struct {
	Addr          string        `koanf:"addr"`
	Pretty        bool          `koanf:"pretty"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxBodyBytes  int64         `koanf:"max_body_bytes"`
	DocumentCache int           `koanf:"document_cache"`
	GraphiQL      bool          `koanf:"graphiql"`
}

type Otel struct {
	Endpoint string `koanf:"endpoint"`
	Service  string `koanf:"service"`
}

type Log struct {
	Level       string `koanf:"level"`
	Development bool   `koanf:"development"`
}

// FieldVisibility returns the configured field visibility setting.
func (c *Config) FieldVisibility() string { return c.Visibility }

// Defaults returns the settings used when nothing else is configured.
func Defaults() map[string]any {
	return map[string]any{
		"field_visibility":      "",
		"server.addr":           ":8080",
		"server.pretty":         false,
		"server.timeout":        10 * time.Second,
		"server.max_body_bytes": int64(0),
		"server.document_cache": 256,
		"server.graphiql":       true,
		"otel.endpoint":         "",
		"otel.service":          "gqlboot",
		"log.level":             "info",
		"log.development":       false,
	}
}

// flagKeys maps command line flag names to configuration keys. Flags not
// listed here are not configuration.
var flagKeys = map[string]string{
	"field-visibility": "field_visibility",
	"addr":             "server.addr",
	"pretty":           "server.pretty",
	"timeout":          "server.timeout",
	"max-body-bytes":   "server.max_body_bytes",
	"document-cache":   "server.document_cache",
	"graphiql":         "server.graphiql",
	"otel-endpoint":    "otel.endpoint",
	"otel-service":     "otel.service",
	"log-level":        "log.level",
	"log-development":  "log.development",
}

// Load reads the configuration. path may be empty, in which case no file is
// read. Only flags that were explicitly set override other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// envKey turns GQLBOOT_SERVER__MAX_BODY_BYTES into server.max_body_bytes.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// RegisterFlags adds the configuration flags to fs. Their defaults mirror
// Defaults so help output is accurate.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("field-visibility", "", `field visibility: "no-introspection" or comma separated field patterns`)
	fs.String("addr", ":8080", "listen address")
	fs.Bool("pretty", false, "indent JSON responses")
	fs.Duration("timeout", 10*time.Second, "default request timeout")
	fs.Int64("max-body-bytes", 0, "request body limit in bytes, 0 for none")
	fs.Int("document-cache", 256, "number of parsed query documents to cache")
	fs.Bool("graphiql", true, "serve GraphiQL to browsers")
	fs.String("otel-endpoint", "", "OTLP gRPC endpoint, empty disables tracing")
	fs.String("otel-service", "gqlboot", "service name reported to OpenTelemetry")
	fs.String("log-level", "info", "log level")
	fs.Bool("log-development", false, "human friendly development logging")
}
