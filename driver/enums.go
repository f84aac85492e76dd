package driver

import (
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

// Values from VK_KHR_acceleration_structure, which core does not wrap
const (
	BufferUsageAccelStructBuildInputReadOnly core1_0.BufferUsageFlags = 0x00080000
	BufferUsageAccelStructStorage            core1_0.BufferUsageFlags = 0x00100000

	IndexTypeNone core1_0.IndexType = 1000165000
)

// DescriptorBinding is a binding slot within the bindless descriptor set
type DescriptorBinding uint32

const (
	BindingSampledImages DescriptorBinding = iota
	BindingStorageImages
	BindingImmutableSamplers
	BindingSamplers
)

var descriptorBindingMapping = map[DescriptorBinding]string{
	BindingSampledImages:     "SampledImages",
	BindingStorageImages:     "StorageImages",
	BindingImmutableSamplers: "ImmutableSamplers",
	BindingSamplers:          "Samplers",
}

func (b DescriptorBinding) String() string {
	return descriptorBindingMapping[b]
}

type AccelStructType int32

const (
	AccelStructTypeTopLevel AccelStructType = iota
	AccelStructTypeBottomLevel
	AccelStructTypeGeneric
)

var accelStructTypeMapping = map[AccelStructType]string{
	AccelStructTypeTopLevel:    "TopLevel",
	AccelStructTypeBottomLevel: "BottomLevel",
	AccelStructTypeGeneric:     "Generic",
}

func (t AccelStructType) String() string {
	return accelStructTypeMapping[t]
}

type AccelStructBuildFlags int32

var accelStructBuildFlagsMapping = common.NewFlagStringMapping[AccelStructBuildFlags]()

func (f AccelStructBuildFlags) Register(str string) {
	accelStructBuildFlagsMapping.Register(f, str)
}
func (f AccelStructBuildFlags) String() string {
	return accelStructBuildFlagsMapping.FlagsToString(f)
}

const (
	AccelStructBuildAllowUpdate AccelStructBuildFlags = 1 << iota
	AccelStructBuildAllowCompaction
	AccelStructBuildPreferFastTrace
	AccelStructBuildPreferFastBuild
	AccelStructBuildLowMemory
)

type GeometryType int32

const (
	GeometryTypeTriangles GeometryType = iota
	GeometryTypeAABBs
	GeometryTypeInstances
)

var geometryTypeMapping = map[GeometryType]string{
	GeometryTypeTriangles: "Triangles",
	GeometryTypeAABBs:     "AABBs",
	GeometryTypeInstances: "Instances",
}

func (t GeometryType) String() string {
	return geometryTypeMapping[t]
}

type GeometryFlags int32

var geometryFlagsMapping = common.NewFlagStringMapping[GeometryFlags]()

func (f GeometryFlags) Register(str string) {
	geometryFlagsMapping.Register(f, str)
}
func (f GeometryFlags) String() string {
	return geometryFlagsMapping.FlagsToString(f)
}

const (
	GeometryOpaque GeometryFlags = 1 << iota
	GeometryNoDuplicateAnyHitInvocation
)

// GeometryInstanceFlags are packed into the top byte of AccelStructInstance.SBTOffsetAndFlags
type GeometryInstanceFlags uint32

var geometryInstanceFlagsMapping = common.NewFlagStringMapping[GeometryInstanceFlags]()

func (f GeometryInstanceFlags) Register(str string) {
	geometryInstanceFlagsMapping.Register(f, str)
}
func (f GeometryInstanceFlags) String() string {
	return geometryInstanceFlagsMapping.FlagsToString(f)
}

const (
	GeometryInstanceTriangleFacingCullDisable GeometryInstanceFlags = 1 << iota
	GeometryInstanceTriangleFlipFacing
	GeometryInstanceForceOpaque
	GeometryInstanceForceNoOpaque
)

// QueryType selects the post-build property written by CmdWriteAccelStructProperties
type QueryType int32

const (
	QueryTypeAccelStructCompactedSize QueryType = iota
	QueryTypeAccelStructSerializationSize
)

var queryTypeMapping = map[QueryType]string{
	QueryTypeAccelStructCompactedSize:     "AccelStructCompactedSize",
	QueryTypeAccelStructSerializationSize: "AccelStructSerializationSize",
}

func (t QueryType) String() string {
	return queryTypeMapping[t]
}

type CopyAccelStructMode int32

const (
	CopyAccelStructModeClone CopyAccelStructMode = iota
	CopyAccelStructModeCompact
)

func init() {
	AccelStructBuildAllowUpdate.Register("AllowUpdate")
	AccelStructBuildAllowCompaction.Register("AllowCompaction")
	AccelStructBuildPreferFastTrace.Register("PreferFastTrace")
	AccelStructBuildPreferFastBuild.Register("PreferFastBuild")
	AccelStructBuildLowMemory.Register("LowMemory")

	GeometryOpaque.Register("Opaque")
	GeometryNoDuplicateAnyHitInvocation.Register("NoDuplicateAnyHitInvocation")

	GeometryInstanceTriangleFacingCullDisable.Register("TriangleFacingCullDisable")
	GeometryInstanceTriangleFlipFacing.Register("TriangleFlipFacing")
	GeometryInstanceForceOpaque.Register("ForceOpaque")
	GeometryInstanceForceNoOpaque.Register("ForceNoOpaque")
}
