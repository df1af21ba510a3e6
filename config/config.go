// Package config loads the optional fiox configuration file. Values from the
// file act as defaults; command-line flags override them.
//
//	log_file: /tmp/fiox.log
//	parse_numbers: true
//	append: false
//	buffer_size: 262144
//	max_depth: 512
//	color: true
//	strict: false
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	fiox "github.com/reoring/fiox"
	"github.com/reoring/fiox/decode"
)

// EnvVar names the environment variable consulted when no --config is given.
const EnvVar = "FIOX_CONFIG"

// MinBufferSize is the smallest accepted input buffer.
const MinBufferSize = 4 << 10

// Config holds the tunables shared by convert and validate.
type Config struct {
	LogFile      string `yaml:"log_file"`
	ParseNumbers bool   `yaml:"parse_numbers"`
	Append       bool   `yaml:"append"`
	BufferSize   int    `yaml:"buffer_size"`
	MaxDepth     int    `yaml:"max_depth"`
	Color        bool   `yaml:"color"`
	Strict       bool   `yaml:"strict"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		BufferSize: decode.DefaultBufferSize,
		Color:      true,
	}
}

// Discover returns the config path to load: the explicit path when set, else
// $FIOX_CONFIG. An empty result means no file.
func Discover(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(EnvVar)
}

// Load reads the YAML file at path on top of Default. An empty path yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, configError(path, "failed to open config file", err)
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		if fe, ok := fiox.AsError(err); ok {
			fe.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default. Unknown keys are errors.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, configError("", "invalid config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	if c.BufferSize < MinBufferSize {
		return configError("", fmt.Sprintf("buffer_size must be at least %d, got %d", MinBufferSize, c.BufferSize), nil)
	}
	if c.MaxDepth < 0 {
		return configError("", fmt.Sprintf("max_depth must not be negative, got %d", c.MaxDepth), nil)
	}
	return nil
}

func configError(path, msg string, cause error) *fiox.Error {
	return &fiox.Error{Code: fiox.CodeConfig, Path: path, Message: msg, Cause: cause, Offset: -1}
}
