package reclaim

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/reclaim/memutils"
)

// BufferSpan is a typed view of count elements of a buffer, starting at a byte offset.
//
// A span over a buffer can also act as a bump allocator, handing out sub-spans with BumpSlice. A
// buffer created with BufferDeferredAlloc is sized in two passes: the first pass bumps without
// bounds checks, CommitBumpAlloc allocates exactly the bytes it used, and a second pass repeating
// the same calls receives the same offsets. Each copy of the committed span can run the second
// pass once.
type BufferSpan[T any] struct {
	buffer *Buffer
	offset int
	count  int

	// trace is shared by copies of the span, cursor is the index of the next BumpSlice call
	trace  *bumpTrace
	cursor int
}

func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

func alignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// Slice returns a span of count elements starting at byteOffset. A count of common.WholeSize
// extends the span to the end of the buffer.
func Slice[T any](buffer *Buffer, byteOffset, count int) BufferSpan[T] {
	elemSize := sizeOf[T]()
	if byteOffset < 0 || byteOffset > buffer.size {
		panic(errors.Newf("slice offset %d is outside buffer of size %d", byteOffset, buffer.size))
	}
	if !memutils.IsAligned(byteOffset, alignOf[T]()) {
		panic(errors.Newf("slice offset %d is not aligned to %d", byteOffset, alignOf[T]()))
	}

	if count == common.WholeSize {
		count = (buffer.size - byteOffset) / elemSize
	}
	if count < 0 || byteOffset+count*elemSize > buffer.size {
		panic(errors.Newf("slice of %d elements at offset %d overruns buffer of size %d", count, byteOffset, buffer.size))
	}

	return BufferSpan[T]{buffer: buffer, offset: byteOffset, count: count}
}

// WholeSpan returns a span covering the whole buffer
func WholeSpan[T any](buffer *Buffer) BufferSpan[T] {
	return Slice[T](buffer, 0, common.WholeSize)
}

// As reinterprets the span's bytes as elements of another type
func As[R, T any](s BufferSpan[T]) BufferSpan[R] {
	if !memutils.IsAligned(s.offset, alignOf[R]()) {
		panic(errors.Newf("span offset %d is not aligned to %d", s.offset, alignOf[R]()))
	}
	return BufferSpan[R]{buffer: s.buffer, offset: s.offset, count: s.SizeBytes() / sizeOf[R]()}
}

func (s BufferSpan[T]) Buffer() *Buffer {
	return s.buffer
}

func (s BufferSpan[T]) Len() int {
	return s.count
}

func (s BufferSpan[T]) SizeBytes() int {
	return s.count * sizeOf[T]()
}

// Offset returns the offset of the span within its buffer in elements
func (s BufferSpan[T]) Offset() int {
	return s.offset / sizeOf[T]()
}

func (s BufferSpan[T]) OffsetBytes() int {
	return s.offset
}

// DeviceAddr returns the device address of element index
func (s BufferSpan[T]) DeviceAddr(index int) uint64 {
	return s.buffer.address + uint64(s.offset+index*sizeOf[T]())
}

func (s BufferSpan[T]) IsHostVisible() bool {
	return s.buffer != nil && s.buffer.mapped != nil
}

// Subspan returns count elements starting at element start. A count of common.WholeSize extends
// the subspan to the end of this span.
func (s BufferSpan[T]) Subspan(start, count int) BufferSpan[T] {
	if count == common.WholeSize {
		count = s.count - start
	}
	if start < 0 || count < 0 || start+count > s.count {
		panic(errors.Newf("subspan [%d, %d) is outside span of %d elements", start, start+count, s.count))
	}
	return BufferSpan[T]{buffer: s.buffer, offset: s.offset + start*sizeOf[T](), count: count}
}

// Data returns the span's elements in the buffer's host mapping
func (s BufferSpan[T]) Data() []T {
	if !s.IsHostVisible() {
		panic(errors.New("attempted to access a span of a buffer that is not host visible"))
	}
	if s.count == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&s.buffer.mapped[s.offset])), s.count)
}

func (s BufferSpan[T]) At(index int) T {
	return s.Data()[index]
}

func (s BufferSpan[T]) Set(index int, value T) {
	s.Data()[index] = value
}

// BumpSlice carves count elements of R aligned to align bytes off the front of s and advances s
// past them. Once the buffer is allocated, the carved range must fit within s. While allocation is
// deferred there is no bound, and the calls are recorded so that CommitBumpAlloc can size the
// buffer and the next pass can be checked against them.
func BumpSlice[R, T any](s *BufferSpan[T], count, align int) BufferSpan[R] {
	if err := memutils.CheckPow2(align, "bump alignment"); err != nil {
		panic(err)
	}

	elemSize := sizeOf[R]()
	end := s.offset + s.SizeBytes()
	start := memutils.AlignUp(s.offset, align)

	if s.buffer.Allocated() {
		s.trace.check(s.cursor, bumpCall[R](count, align))

		if start+count*elemSize > end {
			panic(errors.Newf("bump allocation of %d bytes at offset %d overruns span ending at %d", count*elemSize, start, end))
		}
	} else {
		s.trace = s.trace.record(bumpCall[R](count, align))
	}

	s.cursor++
	s.offset = memutils.AlignUp(start+count*elemSize, alignOf[T]())
	if s.offset < end {
		s.count = (end - s.offset) / sizeOf[T]()
	} else {
		s.count = 0
	}

	return BufferSpan[R]{buffer: s.buffer, offset: start, count: count}
}

// BumpWrite carves a range with BumpSlice and copies src into it. Nothing is copied while the
// buffer's allocation is deferred.
func BumpWrite[R, T any](s *BufferSpan[T], src []R, align int) BufferSpan[R] {
	span := BumpSlice[R](s, len(src), align)
	if span.buffer.Allocated() {
		copy(span.Data(), src)
	}
	return span
}

// CommitBumpAlloc allocates the deferred buffer with exactly the bytes bumped so far and rewinds
// the span to cover them, ready for the second pass. Allocation failure is fatal.
func (s *BufferSpan[T]) CommitBumpAlloc(flags BufferFlags, usage core1_0.BufferUsageFlags) {
	res, err := s.buffer.Realloc(s.offset, flags&^BufferDeferredAlloc, usage)
	if s.buffer.device.check("BufferSpan::CommitBumpAlloc", res, err) != nil {
		return
	}

	s.count = s.offset / sizeOf[T]()
	s.offset = 0
	s.cursor = 0
	s.trace.commit()
}

// BumpTrace returns the BumpSlice calls made while the span's buffer was deferred. It is always
// empty when built with the reclaim_release tag.
func (s *BufferSpan[T]) BumpTrace() []BumpCall {
	return s.trace.calls()
}
