package gpu

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// Buffer is a named handle to device memory.
type Buffer struct {
	bufHandle cl.Mem
	device    *Device
	name      string
	size      int
}

// Size returns the buffer's allocated size in bytes.
func (b *Buffer) Size() int { return b.size }

// Release frees the underlying device memory object, if allocated.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
	}
}

// Handle returns the raw OpenCL memory object handle.
func (b *Buffer) Handle() cl.Mem { return b.bufHandle }

// elemBytes returns the byte length of a contiguous slice of T.
func elemBytes[T any](data []T) int {
	var zero T
	return len(data) * int(unsafe.Sizeof(zero))
}

// AllocateToFitData allocates b sized to hold data. Every buffer this
// repo allocates is backed by a flat []float64 or []uint32 (Encoder
// flattens geom.Point/geom.Box before handing them to OpenCL), so this
// is parameterized over the element type instead of reflecting on an
// interface{} argument.
func AllocateToFitData[T any](b *Buffer, data []T, flags cl.MemFlags) error {
	var errPtr *int32

	b.Release()

	dataLen := elemBytes(data)
	b.bufHandle = cl.CreateBuffer(*b.device.ctx, flags, cl.MemFlags(dataLen), nil, errPtr)
	if errPtr != nil && cl.ErrorCode(*errPtr) != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): could not allocate buffer %s of size %d (errCode %d)", b.device.Name, b.name, dataLen, cl.ErrorCode(*errPtr))
	}

	b.size = dataLen
	return nil
}

// WriteData copies data into the device buffer starting at the given
// byte offset.
func WriteData[T any](b *Buffer, data []T, offset int) error {
	dataLen := elemBytes(data)
	if offset+dataLen > b.size {
		return fmt.Errorf("gpu device (%s): insufficient buffer space (%d) in %s for data of length %d", b.device.Name, b.size, b.name, dataLen)
	}

	errCode := cl.EnqueueWriteBuffer(
		b.device.cmdQueue, b.bufHandle, cl.TRUE,
		uint64(offset), uint64(dataLen), unsafe.Pointer(&data[0]),
		0, nil, nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): error copying host data to buffer %s (errCode %d)", b.device.Name, b.name, errCode)
	}
	return nil
}

// ReadData copies size bytes (the whole buffer if size <= 0) starting
// at srcOffset back into hostBuffer at dstOffset.
func ReadData[T any](b *Buffer, srcOffset, dstOffset, size int, hostBuffer []T) error {
	if size <= 0 {
		size = b.size
	}

	errCode := cl.EnqueueReadBuffer(
		b.device.cmdQueue, b.bufHandle, cl.TRUE,
		uint64(srcOffset), uint64(size),
		unsafe.Pointer(uintptr(unsafe.Pointer(&hostBuffer[0]))+uintptr(dstOffset)),
		0, nil, nil,
	)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): error copying device data from %s to host buffer (errCode %d)", b.device.Name, b.name, errCode)
	}
	return nil
}
