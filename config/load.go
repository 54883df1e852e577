package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "REBALANCE_"

// Sources lists where a configuration is read from. Later sources override
// earlier ones. Empty paths are skipped.
type Sources struct {
	// File is a YAML file.
	File string

	// DotEnv is a .env file whose variables act as environment defaults.
	DotEnv string

	// Environ replaces the process environment when not nil.
	Environ []string
}

// Load builds a configuration from defaults, the YAML file, the .env file and
// the environment, and clamps the result.
func Load(src Sources) (Config, error) {
	cfg := Defaults()

	if src.File != "" {
		if err := readYAML(src.File, &cfg); err != nil {
			return cfg, err
		}
	}

	vars, err := environment(src)
	if err != nil {
		return cfg, err
	}

	err = env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	})
	if err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	cfg.Clamp()

	return cfg, nil
}

// Decode parses a YAML document over the defaults and clamps the result.
func Decode(data []byte) (Config, error) {
	return Merge(Defaults(), data)
}

// Merge parses a YAML document over base and clamps the result. Fields the
// document leaves out keep the values of base.
func Merge(base Config, data []byte) (Config, error) {
	cfg := base.Clone()

	if err := decodeYAML(data, &cfg); err != nil {
		return base, err
	}

	cfg.Clamp()

	return cfg, nil
}

// Parse parses a YAML document over the defaults as written, without
// clamping.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()

	err := decodeYAML(data, &cfg)

	return cfg, err
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	if err := decodeYAML(data, cfg); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}

	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}

	return nil
}

func environment(src Sources) (map[string]string, error) {
	environ := src.Environ
	if environ == nil {
		environ = os.Environ()
	}

	vars := make(map[string]string, len(environ))

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	if src.DotEnv == "" {
		return vars, nil
	}

	dot, err := godotenv.Read(src.DotEnv)
	if errors.Is(err, os.ErrNotExist) {
		return vars, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.DotEnv, err)
	}

	for k, v := range dot {
		if _, set := vars[k]; !set {
			vars[k] = v
		}
	}

	return vars, nil
}

// Encode renders cfg as YAML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(cfg); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	return buf.Bytes(), nil
}
