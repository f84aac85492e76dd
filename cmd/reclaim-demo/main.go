// Command reclaim-demo drives a reclaim device on the simulated GPU for a number of frames. Every
// frame bump-allocates its uploads, uploads a texture, rebuilds a bottom-level acceleration
// structure and compacts the one built a few frames earlier, while everything it destroys waits
// in the recycler chain until the GPU is done with it.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim"
	"github.com/vkngwrapper/reclaim/config"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/driver/simgpu"
)

const (
	textureSize = 16
	waitTimeout = 5 * time.Second
)

type frameUpload struct {
	boxes   reclaim.BufferSpan[reclaim.AABB]
	texels  reclaim.BufferSpan[byte]
	scratch reclaim.BufferSpan[byte]
	results reclaim.BufferSpan[uint64]
}

// uploadFrame lays out one frame's upload buffer. It runs twice per frame, once to size the buffer
// and once to fill it.
func uploadFrame(span *reclaim.BufferSpan[byte], boxes []reclaim.AABB, texels []byte, scratchSize int) frameUpload {
	return frameUpload{
		boxes:   reclaim.BumpWrite(span, boxes, 16),
		texels:  reclaim.BumpWrite(span, texels, 4),
		scratch: reclaim.BumpSlice[byte](span, scratchSize, 256),
		results: reclaim.BumpSlice[uint64](span, 1, 8),
	}
}

func makeBoxes(frame, count int) []reclaim.AABB {
	boxes := make([]reclaim.AABB, count)
	for i := range boxes {
		x := float32(i) + float32(frame)*0.25
		boxes[i] = reclaim.AABB{MinX: x, MinY: 0, MinZ: 0, MaxX: x + 1, MaxY: 1, MaxZ: 1}
	}
	return boxes
}

func makeTexels(frame int) []byte {
	texels := make([]byte, textureSize*textureSize*4)
	for y := 0; y < textureSize; y++ {
		for x := 0; x < textureSize; x++ {
			i := (y*textureSize + x) * 4
			if (x/4+y/4+frame)%2 == 0 {
				texels[i], texels[i+1], texels[i+2] = 0xFF, 0xFF, 0xFF
			}
			texels[i+3] = 0xFF
		}
	}
	return texels
}

// slot is the state of one frame in flight
type slot struct {
	future  reclaim.Future
	upload  *reclaim.Buffer
	results reclaim.BufferSpan[uint64]
	built   bool
}

type demo struct {
	logger *slog.Logger
	cfg    config.Demo
	device *reclaim.Device

	// blas holds the acceleration structures as built, compacted their compacted copies
	blas        *reclaim.AccelStructPool
	compacted   *reclaim.AccelStructPool
	scratchSize int

	slots []slot
}

func newDemo(logger *slog.Logger, cfg config.Demo, device *reclaim.Device) (*demo, error) {
	d := &demo{
		logger: logger,
		cfg:    cfg,
		device: device,
		slots:  make([]slot, cfg.FramesInFlight),
	}

	if !device.RayTracingEnabled() {
		logger.Warn("ray tracing is disabled, frames will only upload textures")
		return d, nil
	}

	var sizing reclaim.AccelStructBuildDesc
	sizing.AddGeometry(uint32(cfg.Boxes), driver.AccelStructGeometry{Type: driver.GeometryTypeAABBs})
	sizing.CalculateSizes(device, driver.AccelStructTypeBottomLevel, driver.AccelStructBuildAllowCompaction)
	d.scratchSize = sizing.BuildScratchSize

	capacity := sizing.AccelStructSize * cfg.FramesInFlight
	d.blas = device.CreateAccelStructPool()
	if _, err := d.blas.CreateStorage(capacity, false); err != nil {
		return nil, errors.Wrap(err, "failed to create acceleration structure storage")
	}
	d.compacted = device.CreateAccelStructPool()
	if _, err := d.compacted.CreateStorage(capacity, false); err != nil {
		return nil, errors.Wrap(err, "failed to create compacted acceleration structure storage")
	}

	logger.Info("acceleration structure pools created",
		slog.Int("capacity", capacity),
		slog.Int("scratch", d.scratchSize),
	)
	return d, nil
}

// reclaimSlot waits for the frame that last used s and returns the compacted size it read back
func (d *demo) reclaimSlot(s *slot) (uint64, error) {
	res, err := s.future.Wait(waitTimeout)
	if err != nil {
		return 0, err
	}
	if res == core1_0.VKTimeout {
		return 0, errors.Newf("frame %d did not complete within %s", s.future.Timestamp(), waitTimeout)
	}

	var compactedSize uint64
	if s.upload != nil {
		if s.built {
			compactedSize = s.results.At(0)
		}
		s.upload.Destroy()
		s.upload = nil
	}
	return compactedSize, nil
}

func (d *demo) frame(index int) error {
	node := index % len(d.slots)
	s := &d.slots[node]

	compactedSize, err := d.reclaimSlot(s)
	if err != nil {
		return err
	}
	released := d.device.GarbageCollect()

	boxes := makeBoxes(index, d.cfg.Boxes)
	texels := makeTexels(index)

	upload := d.device.CreateBuffer(0, reclaim.BufferHostMemSeqWrite|reclaim.BufferDeferredAlloc, 0)
	span := reclaim.WholeSpan[byte](upload)
	uploadFrame(&span, boxes, texels, d.scratchSize)
	span.CommitBumpAlloc(reclaim.BufferHostMemSeqWrite, 0)
	data := uploadFrame(&span, boxes, texels, d.scratchSize)

	texture, err := d.device.CreateImage(reclaim.ImageDesc{
		Format: core1_0.FormatR8G8B8A8SRGB,
		Size:   driver.Extent3D{Width: textureSize, Height: textureSize, Depth: 1},
	})
	if err != nil {
		upload.Destroy()
		return err
	}
	defer texture.Destroy()

	cmd := d.device.CreateCommandList()
	defer cmd.Destroy()

	cmd.CopyBufferToImage(data.texels, texture, 0)

	if d.blas != nil {
		if compactedSize > 0 {
			if _, err := d.blas.Compact(cmd, node, d.compacted, node, int(compactedSize)); err != nil {
				upload.Destroy()
				return errors.Wrapf(err, "failed to compact node %d", node)
			}
			cmd.Barrier(reclaim.BarrierAllCommands)
		}

		var desc reclaim.AccelStructBuildDesc
		desc.AddBoxes(data.boxes)
		desc.CalculateSizes(d.device, driver.AccelStructTypeBottomLevel, driver.AccelStructBuildAllowCompaction)
		if _, err := d.blas.Build(cmd, node, &desc, data.scratch); err != nil {
			upload.Destroy()
			return errors.Wrapf(err, "failed to build node %d", node)
		}
		cmd.Barrier(reclaim.BarrierAllCommands)
		d.blas.GetCompactedSizes(cmd, []int{node}, data.results)
	}

	s.future = cmd.Submit(reclaim.SubmitOptions{})
	s.upload = upload
	s.results = data.results
	s.built = d.blas != nil

	d.logger.Debug("frame submitted",
		slog.Int("frame", index),
		slog.Uint64("timestamp", s.future.Timestamp()),
		slog.Int("upload", upload.Size()),
		slog.Uint64("compacted", compactedSize),
		slog.Int("released", released),
	)
	return nil
}

func (d *demo) finish() error {
	for i := range d.slots {
		if _, err := d.reclaimSlot(&d.slots[i]); err != nil {
			return err
		}
	}
	d.device.GarbageCollect()

	if d.blas != nil {
		fmt.Println(d.blas.BuildStatsString(true))
		fmt.Println(d.compacted.BuildStatsString(true))
		d.blas.Destroy()
		d.compacted.Destroy()
	}
	return nil
}

func newLogger(level string) (*slog.Logger, error) {
	charm := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "reclaim",
	})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}
	charm.SetLevel(parsed)
	return slog.New(charm), nil
}

func run() error {
	configPath := flag.String("config", "", "TOML configuration file")
	frames := flag.Int("frames", -1, "number of frames to run, overriding the configuration")
	printConfig := flag.Bool("print-config", false, "print the effective configuration and exit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadFile(*configPath)
		if err != nil {
			return err
		}
	}
	if *frames >= 0 {
		cfg.Demo.Frames = *frames
	}
	if *printConfig {
		return cfg.Encode(os.Stdout)
	}

	logger, err := newLogger(cfg.Demo.LogLevel)
	if err != nil {
		return err
	}

	sim := simgpu.New(logger, cfg.SimGPU)
	device, err := reclaim.New(logger, sim, cfg.Device)
	if err != nil {
		return err
	}

	d, err := newDemo(logger, cfg.Demo, device)
	if err != nil {
		device.Destroy()
		return err
	}

	start := time.Now()
	for i := 0; i < cfg.Demo.Frames; i++ {
		if err := d.frame(i); err != nil {
			device.Destroy()
			return errors.Wrapf(err, "frame %d", i)
		}
	}
	if err := d.finish(); err != nil {
		device.Destroy()
		return err
	}

	fmt.Println(device.BuildStatsString())
	device.Destroy()

	stats := sim.Stats()
	logger.Info("done",
		slog.Int("frames", cfg.Demo.Frames),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("submissions", stats.Submissions),
		slog.Int("builds", stats.Builds),
		slog.Int("copies", stats.Copies),
	)

	if violations := sim.Violations(); len(violations) > 0 {
		for _, violation := range violations {
			logger.Error("simgpu violation", slog.String("violation", violation))
		}
		return errors.Newf("%d usage violations", len(violations))
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "reclaim-demo: %+v\n", err)
		os.Exit(1)
	}
}
