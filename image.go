package reclaim

import (
	"log/slog"
	"math/bits"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
)

// ImageKind selects the dimensionality of an image and of its default view
type ImageKind int32

const (
	Image2D ImageKind = iota
	Image1D
	Image3D
	Image2DArray
	ImageCube
	ImageCubeArray
)

var imageKindMapping = map[ImageKind]string{
	Image2D:        "Image2D",
	Image1D:        "Image1D",
	Image3D:        "Image3D",
	Image2DArray:   "Image2DArray",
	ImageCube:      "ImageCube",
	ImageCubeArray: "ImageCubeArray",
}

func (k ImageKind) String() string {
	return imageKindMapping[k]
}

func (k ImageKind) layered() bool {
	return k == Image2DArray || k == ImageCube || k == ImageCubeArray
}

func (k ImageKind) cube() bool {
	return k == ImageCube || k == ImageCubeArray
}

func (k ImageKind) imageType() core1_0.ImageType {
	switch k {
	case Image1D:
		return core1_0.ImageType1D
	case Image3D:
		return core1_0.ImageType3D
	default:
		return core1_0.ImageType2D
	}
}

func (k ImageKind) viewType() core1_0.ImageViewType {
	switch k {
	case Image1D:
		return core1_0.ImageViewType1D
	case Image3D:
		return core1_0.ImageViewType3D
	case Image2DArray:
		return core1_0.ImageViewType2DArray
	case ImageCube:
		return core1_0.ImageViewTypeCube
	case ImageCubeArray:
		return core1_0.ImageViewTypeCubeArray
	default:
		return core1_0.ImageViewType2D
	}
}

// ParseSwizzle reads a four character component mapping such as "RGB1" or "RRRA". Each character
// is one of 0, 1, R, G, B, A, or X, Y, Z, W as aliases for R, G, B, A. The empty string is the
// identity mapping.
func ParseSwizzle(swizzle string) (core1_0.ComponentMapping, error) {
	if swizzle == "" {
		return core1_0.ComponentMapping{}, nil
	}
	if len(swizzle) != 4 {
		return core1_0.ComponentMapping{}, errors.Newf("swizzle %q must have exactly 4 components", swizzle)
	}

	var components [4]core1_0.ComponentSwizzle
	for i, c := range strings.ToUpper(swizzle) {
		switch c {
		case '0':
			components[i] = core1_0.ComponentSwizzleZero
		case '1':
			components[i] = core1_0.ComponentSwizzleOne
		case 'R', 'X':
			components[i] = core1_0.ComponentSwizzleRed
		case 'G', 'Y':
			components[i] = core1_0.ComponentSwizzleGreen
		case 'B', 'Z':
			components[i] = core1_0.ComponentSwizzleBlue
		case 'A', 'W':
			components[i] = core1_0.ComponentSwizzleAlpha
		default:
			return core1_0.ComponentMapping{}, errors.Newf("swizzle %q has unknown component %q", swizzle, c)
		}
	}

	return core1_0.ComponentMapping{R: components[0], G: components[1], B: components[2], A: components[3]}, nil
}

// ImageDesc describes an image. For layered kinds, Size.Depth is the number of layers.
type ImageDesc struct {
	Kind   ImageKind
	Format core1_0.Format
	Size   driver.Extent3D
	// MipLevels is clamped to the length of the full mip chain. 0 means a single level.
	MipLevels int
	Usage     core1_0.ImageUsageFlags
	// Swizzle applies to the image's default view, see ParseSwizzle
	Swizzle string
}

// ViewDesc selects a subresource range and format of an image for SubView. A MipLevels or
// NumLayers of 0 covers every level or layer from the offset, and an undefined Format uses the
// image's format. ShaderUsage selects the descriptor bindings the view is written to.
type ViewDesc struct {
	Kind        ImageKind
	Format      core1_0.Format
	Swizzle     string
	MipOffset   int
	MipLevels   int
	LayerOffset int
	NumLayers   int
	ShaderUsage core1_0.ImageUsageFlags
}

// ImageView is an additional view of an image created by Image.SubView. It is owned by its image.
type ImageView struct {
	handle     driver.ImageView
	descriptor ImageHandle
	desc       ViewDesc
}

func (v *ImageView) Handle() driver.ImageView {
	return v.handle
}

// Descriptor is the view's slot in the descriptor heap, or 0 if it has no shader usage
func (v *ImageView) Descriptor() ImageHandle {
	return v.descriptor
}

type Image struct {
	resourceBase

	handle     driver.Image
	view       driver.ImageView
	descriptor ImageHandle
	kind       ImageKind
	info       driver.ImageCreateInfo
	aspect     core1_0.ImageAspectFlags
	views      *swiss.Map[ViewDesc, *ImageView]
}

func mipChainLength(kind ImageKind, size driver.Extent3D) int {
	maxAxis := size.Width
	switch kind {
	case Image1D:
	case Image3D:
		maxAxis = max(size.Width, size.Depth)
	default:
		maxAxis = max(size.Width, size.Height)
	}
	return bits.Len(uint(maxAxis))
}

func imageCreateInfo(desc ImageDesc) driver.ImageCreateInfo {
	extent := driver.Extent3D{Width: max(desc.Size.Width, 1), Height: max(desc.Size.Height, 1), Depth: max(desc.Size.Depth, 1)}
	layers := 1
	if desc.Kind.layered() {
		layers = extent.Depth
		extent.Depth = 1
	} else if desc.Kind != Image3D {
		extent.Depth = 1
	}
	if desc.Kind == Image1D {
		extent.Height = 1
	}

	usage := desc.Usage
	if usage == 0 {
		usage = core1_0.ImageUsageSampled | core1_0.ImageUsageTransferDst | core1_0.ImageUsageTransferSrc
	}

	return driver.ImageCreateInfo{
		Type:           desc.Kind.imageType(),
		Format:         desc.Format,
		Extent:         extent,
		MipLevels:      min(max(desc.MipLevels, 1), mipChainLength(desc.Kind, extent)),
		ArrayLayers:    layers,
		Samples:        core1_0.Samples1,
		Usage:          usage,
		CubeCompatible: desc.Kind.cube(),
	}
}

// CreateImage creates an image with a default view covering every subresource. If the image is
// sampled or storage, the view is given a descriptor heap slot, and a full heap returns
// ErrDescriptorHeapFull. Other failures are fatal.
//
// The image is transitioned to the general layout by the device prologue, which executes ahead of
// the next submitted command list.
func (d *Device) CreateImage(desc ImageDesc) (*Image, error) {
	swizzle, err := ParseSwizzle(desc.Swizzle)
	if err != nil {
		return nil, err
	}

	info := imageCreateInfo(desc)
	img := &Image{
		resourceBase: resourceBase{device: d},
		kind:         desc.Kind,
		info:         info,
		aspect:       driver.FormatAspect(desc.Format),
		views:        swiss.NewMap[ViewDesc, *ImageView](4),
	}

	handle, res, err := d.driver.CreateImage(info)
	if err := d.check("Device::CreateImage", res, err); err != nil {
		return nil, err
	}
	img.handle = handle

	view, res, err := d.driver.CreateImageView(driver.ImageViewCreateInfo{
		Image:      handle,
		ViewType:   desc.Kind.viewType(),
		Format:     desc.Format,
		Components: swizzle,
		Range:      img.fullRange(),
	})
	if err := d.check("Device::CreateImageView", res, err); err != nil {
		d.driver.DestroyImage(handle)
		return nil, err
	}
	img.view = view

	if info.Usage&(core1_0.ImageUsageSampled|core1_0.ImageUsageStorage) != 0 {
		img.descriptor, err = d.heap.CreateHandle(view, info.Usage)
		if err != nil {
			d.driver.DestroyImageView(view)
			d.driver.DestroyImage(handle)
			return nil, err
		}
	}

	d.prologueList().imageBarrier(driver.ImageBarrier{
		MemoryBarrier: driver.MemoryBarrier{
			SrcStages: core1_0.PipelineStageTopOfPipe,
			DstStages: core1_0.PipelineStageAllCommands,
			DstAccess: core1_0.AccessMemoryRead | core1_0.AccessMemoryWrite,
		},
		Image:     handle,
		OldLayout: core1_0.ImageLayoutUndefined,
		NewLayout: core1_0.ImageLayoutGeneral,
		Range:     img.fullRange(),
	})

	d.logger.Debug("Device::CreateImage",
		slog.String("kind", desc.Kind.String()),
		slog.Int("width", info.Extent.Width),
		slog.Int("height", info.Extent.Height),
		slog.Int("mips", info.MipLevels),
		slog.Int("layers", info.ArrayLayers),
	)
	return img, nil
}

func (i *Image) fullRange() driver.ImageSubresourceRange {
	return driver.ImageSubresourceRange{
		Aspect:     i.aspect,
		LevelCount: i.info.MipLevels,
		LayerCount: i.info.ArrayLayers,
	}
}

// SubView returns a view of part of the image, creating it on first use. Views are cached by their
// description and released with the image.
func (i *Image) SubView(desc ViewDesc) (*ImageView, error) {
	if desc.MipLevels == 0 {
		desc.MipLevels = i.info.MipLevels - desc.MipOffset
	}
	if desc.NumLayers == 0 {
		desc.NumLayers = i.info.ArrayLayers - desc.LayerOffset
	}
	if desc.Format == core1_0.FormatUndefined {
		desc.Format = i.info.Format
	}
	if desc.MipOffset < 0 || desc.MipLevels <= 0 || desc.MipOffset+desc.MipLevels > i.info.MipLevels ||
		desc.LayerOffset < 0 || desc.NumLayers <= 0 || desc.LayerOffset+desc.NumLayers > i.info.ArrayLayers {
		return nil, errors.Newf("view %+v is outside the image's %d mips and %d layers", desc, i.info.MipLevels, i.info.ArrayLayers)
	}

	if view, ok := i.views.Get(desc); ok {
		return view, nil
	}

	swizzle, err := ParseSwizzle(desc.Swizzle)
	if err != nil {
		return nil, err
	}

	d := i.device
	handle, res, err := d.driver.CreateImageView(driver.ImageViewCreateInfo{
		Image:      i.handle,
		ViewType:   desc.Kind.viewType(),
		Format:     desc.Format,
		Components: swizzle,
		Range: driver.ImageSubresourceRange{
			Aspect:         i.aspect,
			BaseMipLevel:   desc.MipOffset,
			LevelCount:     desc.MipLevels,
			BaseArrayLayer: desc.LayerOffset,
			LayerCount:     desc.NumLayers,
		},
	})
	if err := d.check("Image::SubView", res, err); err != nil {
		return nil, err
	}

	view := &ImageView{handle: handle, desc: desc}
	if desc.ShaderUsage&(core1_0.ImageUsageSampled|core1_0.ImageUsageStorage) != 0 {
		view.descriptor, err = d.heap.CreateHandle(handle, desc.ShaderUsage)
		if err != nil {
			d.driver.DestroyImageView(handle)
			return nil, err
		}
	}

	i.views.Put(desc, view)
	return view, nil
}

func (i *Image) Destroy() {
	i.device.enqueue(i)
}

func (i *Image) release() {
	d := i.device
	i.views.Iter(func(_ ViewDesc, view *ImageView) bool {
		if view.descriptor != 0 {
			d.heap.DestroyHandle(view.descriptor)
		}
		d.driver.DestroyImageView(view.handle)
		return false
	})
	i.views.Clear()

	if i.descriptor != 0 {
		d.heap.DestroyHandle(i.descriptor)
	}
	if i.view != driver.NullHandle {
		d.driver.DestroyImageView(i.view)
	}
	if i.handle != driver.NullHandle {
		d.driver.DestroyImage(i.handle)
	}
}

func (i *Image) Handle() driver.Image {
	return i.handle
}

// View is the default view covering the whole image
func (i *Image) View() driver.ImageView {
	return i.view
}

// Descriptor is the default view's slot in the descriptor heap, or 0 if the image has neither
// sampled nor storage usage
func (i *Image) Descriptor() ImageHandle {
	return i.descriptor
}

func (i *Image) Kind() ImageKind {
	return i.kind
}

func (i *Image) Format() core1_0.Format {
	return i.info.Format
}

func (i *Image) Usage() core1_0.ImageUsageFlags {
	return i.info.Usage
}

func (i *Image) Aspect() core1_0.ImageAspectFlags {
	return i.aspect
}

func (i *Image) MipLevels() int {
	return i.info.MipLevels
}

func (i *Image) Layers() int {
	return i.info.ArrayLayers
}

// MipExtent is the size of a mip level
func (i *Image) MipExtent(level int) driver.Extent3D {
	return driver.Extent3D{
		Width:  max(i.info.Extent.Width>>level, 1),
		Height: max(i.info.Extent.Height>>level, 1),
		Depth:  max(i.info.Extent.Depth>>level, 1),
	}
}
