package reclaim

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/driver"
	"github.com/vkngwrapper/reclaim/memutils"
)

const accelStructAlignment = 256

// AABB is the layout of one procedural primitive read by AccelStructBuildDesc.AddBoxes
type AABB struct {
	MinX, MinY, MinZ float32
	MaxX, MaxY, MaxZ float32
}

// AccelStructInstance is the layout of one top-level instance read by
// AccelStructBuildDesc.AddInstances
type AccelStructInstance struct {
	// Transform is a row-major 3x4 matrix
	Transform [12]float32
	// CustomIndexAndMask holds a 24-bit custom index and an 8-bit visibility mask in the top byte
	CustomIndexAndMask uint32
	// SBTOffsetAndFlags holds a 24-bit shader binding table offset and driver.GeometryInstanceFlags
	// in the top byte
	SBTOffsetAndFlags uint32
	// AccelStructReference is the device address of a bottom-level acceleration structure
	AccelStructReference uint64
}

// AccelStructBuildDesc lists the geometries of an acceleration structure build. CalculateSizes must
// be called after the geometries are added and before the build.
type AccelStructBuildDesc struct {
	Geometries      []driver.AccelStructGeometry
	PrimitiveCounts []uint32

	// Sizes are filled by CalculateSizes, each rounded up to 256 bytes so that they can be summed
	AccelStructSize   int
	BuildScratchSize  int
	UpdateScratchSize int

	Flags driver.AccelStructBuildFlags
	Type  driver.AccelStructType
}

// AddTriangles adds a triangle geometry read from vertices. The position of each vertex is read
// positionOffset bytes into V. An empty indices span makes the geometry non-indexed. transform is
// the device address of a 3x4 transform matrix, or 0.
func AddTriangles[V any, I IndexElement](desc *AccelStructBuildDesc, vertices BufferSpan[V], indices BufferSpan[I], positionFormat core1_0.Format, positionOffset int, transform uint64) {
	geometry := driver.AccelStructGeometry{
		Type:          driver.GeometryTypeTriangles,
		VertexFormat:  positionFormat,
		VertexData:    vertices.DeviceAddr(0) + uint64(positionOffset),
		VertexStride:  sizeOf[V](),
		MaxVertex:     uint32(max(vertices.Len()-1, 0)),
		IndexType:     driver.IndexTypeNone,
		TransformData: transform,
	}

	triangles := vertices.Len() / 3
	if indices.Len() > 0 {
		geometry.IndexType = indexType[I]()
		geometry.IndexData = indices.DeviceAddr(0)
		triangles = indices.Len() / 3
	}

	desc.AddGeometry(uint32(triangles), geometry)
}

// AddGeometry adds a geometry built from count primitives
func (b *AccelStructBuildDesc) AddGeometry(count uint32, geometry driver.AccelStructGeometry) {
	b.Geometries = append(b.Geometries, geometry)
	b.PrimitiveCounts = append(b.PrimitiveCounts, count)
}

func (b *AccelStructBuildDesc) AddBoxes(boxes BufferSpan[AABB]) {
	b.AddGeometry(uint32(boxes.Len()), driver.AccelStructGeometry{
		Type:       driver.GeometryTypeAABBs,
		AABBData:   boxes.DeviceAddr(0),
		AABBStride: sizeOf[AABB](),
	})
}

func (b *AccelStructBuildDesc) AddInstances(instances BufferSpan[AccelStructInstance]) {
	b.AddGeometry(uint32(instances.Len()), driver.AccelStructGeometry{
		Type:         driver.GeometryTypeInstances,
		InstanceData: instances.DeviceAddr(0),
	})
}

func (b *AccelStructBuildDesc) NumGeometries() int {
	return len(b.Geometries)
}

func (b *AccelStructBuildDesc) setSizes(sizes driver.AccelStructBuildSizes, accelType driver.AccelStructType, flags driver.AccelStructBuildFlags) {
	b.AccelStructSize = memutils.AlignUp(sizes.AccelStructSize, accelStructAlignment)
	b.BuildScratchSize = memutils.AlignUp(sizes.BuildScratchSize, accelStructAlignment)
	b.UpdateScratchSize = memutils.AlignUp(sizes.UpdateScratchSize, accelStructAlignment)
	b.Type = accelType
	b.Flags = flags
}

// CalculateSizes queries the storage and scratch sizes needed to build the geometries added so far
func (b *AccelStructBuildDesc) CalculateSizes(d *Device, accelType driver.AccelStructType, flags driver.AccelStructBuildFlags) {
	sizes := d.driver.GetAccelStructBuildSizes(accelType, flags, b.Geometries, b.PrimitiveCounts)
	b.setSizes(sizes, accelType, flags)
}

// CalculateUpperBoundSizesForTLAS sizes a top-level build of up to maxInstances instances, so that
// the storage can be reserved before the instances are known
func (b *AccelStructBuildDesc) CalculateUpperBoundSizesForTLAS(d *Device, maxInstances uint32, flags driver.AccelStructBuildFlags) {
	geometries := []driver.AccelStructGeometry{{Type: driver.GeometryTypeInstances}}
	sizes := d.driver.GetAccelStructBuildSizes(driver.AccelStructTypeTopLevel, flags, geometries, []uint32{maxInstances})
	b.setSizes(sizes, driver.AccelStructTypeTopLevel, flags)
}
