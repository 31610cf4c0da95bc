package maptool

import (
	"errors"
	"os"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/jamesrr39/tmxkit/tmxfile"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("InvalidConfig")

const (
	DefaultConfigPath  = "~/.config/tmxkit/config.yaml"
	DefaultConcurrency = 4
)

// Config holds the tool defaults. Command-line flags take precedence over it.
type Config struct {
	Encoding      string `yaml:"encoding"`
	Compression   string `yaml:"compression"`
	EmbedTilesets bool   `yaml:"embedTilesets"`
	// Concurrency is how many maps batch checks work on at once.
	Concurrency uint `yaml:"concurrency"`
	// TraceDir, if set, is where a trace file is written for every run.
	TraceDir string `yaml:"traceDir"`
}

func DefaultConfig() *Config {
	return &Config{Concurrency: DefaultConcurrency}
}

// LoadConfig reads the YAML config at path. A leading "~/" is expanded to the user's home directory.
// A missing file gives the defaults.
func LoadConfig(fs gofs.Fs, path string) (*Config, errorsx.Error) {
	expanded, err := userextra.ExpandUser(path)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	config := DefaultConfig()
	data, err := fs.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, errorsx.Wrap(err, "path", expanded)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, errorsx.Wrap(ErrInvalidConfig, "path", expanded, "reason", err.Error())
	}

	config.TraceDir, err = userextra.ExpandUser(config.TraceDir)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, errorsx.Wrap(validateErr, "path", expanded)
	}
	return config, nil
}

func (c *Config) Validate() errorsx.Error {
	switch c.Encoding {
	case "", tmxfile.EncodingXML, tmxfile.EncodingCSV, tmxfile.EncodingBase64:
	default:
		return errorsx.Wrap(ErrInvalidConfig, "encoding", c.Encoding)
	}
	switch c.Compression {
	case "", tmxfile.CompressionNone, tmxfile.CompressionZlib, tmxfile.CompressionGzip, tmxfile.CompressionZstd:
	default:
		return errorsx.Wrap(ErrInvalidConfig, "compression", c.Compression)
	}
	if c.Concurrency == 0 {
		return errorsx.Wrap(ErrInvalidConfig, "concurrency", c.Concurrency)
	}
	return nil
}

func (c *Config) SerializerOptions() tmxfile.Options {
	return tmxfile.Options{
		Encoding:      c.Encoding,
		Compression:   c.Compression,
		EmbedTilesets: c.EmbedTilesets,
	}
}
