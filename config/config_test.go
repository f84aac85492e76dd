package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/reclaim"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

const document = `
[device]
flags = "DeviceCreateSynchronizedPools | DeviceCreateDisableRayTracing"
max_images = 1024
max_pending_recyclers = 32

[simgpu]
completion_mode = "manual"
discrete_memory = true
max_sampler_anisotropy = 8.0

[demo]
frames = 3
log_level = "debug"
`

func TestLoad(t *testing.T) {
	cfg, err := Load(strings.NewReader(document))
	require.NoError(t, err)

	require.Equal(t, reclaim.DeviceCreateSynchronizedPools|reclaim.DeviceCreateDisableRayTracing, cfg.Device.Flags)
	require.Equal(t, 1024, cfg.Device.MaxImages)
	require.Zero(t, cfg.Device.MaxSamplers)
	require.Equal(t, 32, cfg.Device.MaxPendingRecyclers)

	require.Equal(t, simgpu.CompleteManually, cfg.SimGPU.CompletionMode)
	require.True(t, cfg.SimGPU.DiscreteMemory)
	require.Equal(t, float32(8), cfg.SimGPU.MaxSamplerAnisotropy)
	// untouched keys keep their defaults
	require.Equal(t, "simgpu", cfg.SimGPU.DeviceName)
	require.True(t, cfg.SimGPU.RayTracing)
	require.Equal(t, simgpu.DefaultOptions().MaxBufferSize, cfg.SimGPU.MaxBufferSize)

	require.Equal(t, 3, cfg.Demo.Frames)
	require.Equal(t, 2, cfg.Demo.FramesInFlight)
	require.Equal(t, "debug", cfg.Demo.LogLevel)
}

func TestLoadEmptyIsDefault(t *testing.T) {
	cfg, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	testCases := map[string]string{
		"UnknownKey":       "[device]\nmax_textures = 4\n",
		"UnknownFlag":      "[device]\nflags = \"DeviceCreateEverything\"\n",
		"UnknownMode":      "[simgpu]\ncompletion_mode = \"eventually\"\n",
		"NegativeLimit":    "[device]\nmax_samplers = -1\n",
		"NoFramesInFlight": "[demo]\nframes_in_flight = 0\n",
		"Malformed":        "[device\n",
	}

	for name, doc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Device.Flags = reclaim.DeviceCreateDisableRayTracing | reclaim.DeviceCreateSynchronizedPools
	cfg.Device.MaxSamplers = 64
	cfg.SimGPU.CompletionMode = simgpu.CompleteImmediately

	var buf bytes.Buffer
	require.NoError(t, cfg.Encode(&buf))
	require.Contains(t, buf.String(), "DeviceCreateDisableRayTracing|DeviceCreateSynchronizedPools")
	require.Contains(t, buf.String(), "immediate")

	path := filepath.Join(t.TempDir(), "reclaim.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Device.Flags, loaded.Device.Flags)
	require.Equal(t, cfg.Device.MaxSamplers, loaded.Device.MaxSamplers)
	require.Equal(t, cfg.SimGPU, loaded.SimGPU)
	require.Equal(t, cfg.Demo, loaded.Demo)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
