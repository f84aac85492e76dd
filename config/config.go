// Package config reads the TOML configuration of a reclaim device and the simulated driver behind
// it.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/vkngwrapper/reclaim"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

// Demo controls the frame loop of reclaim-demo
type Demo struct {
	Frames int `toml:"frames"`
	// FramesInFlight is the number of submissions the loop lets the simulated GPU fall behind by
	FramesInFlight int `toml:"frames_in_flight"`
	// Boxes is the number of primitives in each bottom-level acceleration structure
	Boxes    int    `toml:"boxes"`
	LogLevel string `toml:"log_level"`
}

type Config struct {
	Device reclaim.CreateOptions `toml:"device"`
	SimGPU simgpu.Options        `toml:"simgpu"`
	Demo   Demo                  `toml:"demo"`
}

// Default is the configuration used for every key a document leaves out
func Default() Config {
	return Config{
		SimGPU: simgpu.DefaultOptions(),
		Demo: Demo{
			Frames:         8,
			FramesInFlight: 2,
			Boxes:          64,
			LogLevel:       "info",
		},
	}
}

// Load decodes a TOML document on top of Default. Keys that do not name a setting are an error.
func Load(r io.Reader) (Config, error) {
	cfg := Default()

	decoder := toml.NewDecoder(r).DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, errors.Wrapf(err, "unknown configuration keys:\n%s", strict.String())
		}
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read configuration %s", path)
	}

	cfg, err := Load(bytes.NewReader(data))
	if err != nil {
		return Config{}, errors.Wrapf(err, "in %s", path)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Device.MaxImages < 0 || c.Device.MaxSamplers < 0 || c.Device.MaxPendingRecyclers < 0 {
		return errors.New("device limits cannot be negative")
	}
	if c.SimGPU.MaxBufferSize <= 0 {
		return errors.Newf("simgpu.max_buffer_size must be positive, got %d", c.SimGPU.MaxBufferSize)
	}
	if c.Demo.Frames < 0 || c.Demo.FramesInFlight < 1 || c.Demo.Boxes < 1 {
		return errors.Newf("demo needs a non-negative frame count, a frame in flight and a box, got %+v", c.Demo)
	}
	return nil
}

// Encode writes the configuration as TOML
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
