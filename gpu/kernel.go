package gpu

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

// Kernel is a compiled, loaded OpenCL kernel bound to the device that
// owns it.
type Kernel struct {
	device *Device
	handle cl.Kernel
	name   string

	offsets         [2]uint64
	globalWorkSizes [2]uint64
	localWorkSizes  [2]uint64
}

// Release frees the underlying OpenCL kernel handle.
func (k *Kernel) Release() {
	if k.handle != nil {
		cl.ReleaseKernel(k.handle)
		k.handle = nil
	}
}

// PreferredGroupSize queries this kernel's preferred work-group size
// multiple on its device, falling back to the device's own
// PreferredGroupSize if the query is unsupported or returns 0. Encoder
// uses this to size box_reduce's local dimension instead of a constant
// chosen ahead of time.
func (k *Kernel) PreferredGroupSize() int {
	var multiple uint64
	var dataLen uint64
	errCode := cl.GetKernelWorkGroupInfo(
		k.handle, k.device.Id, cl.KERNEL_PREFERRED_WORK_GROUP_SIZE_MULTIPLE,
		8, unsafe.Pointer(&multiple), &dataLen,
	)
	if errCode != cl.SUCCESS || multiple == 0 {
		return k.device.PreferredGroupSize()
	}
	return int(multiple)
}

// LocalArg reserves n bytes of __local memory for a kernel parameter
// declared as a local-memory pointer, such as box_reduce's scratch
// argument.
type LocalArg int

// SetArgs binds args, in order, to the kernel's parameter list.
func (k *Kernel) SetArgs(args ...interface{}) error {
	var errCode cl.ErrorCode
	for argIndex, arg := range args {
		switch v := arg.(type) {
		case *Buffer:
			bufHandle := v.Handle()
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 8, unsafe.Pointer(&bufHandle))
		case LocalArg:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), uint64(v), nil)
		case int32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case uint32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case float32:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 4, unsafe.Pointer(&v))
		case float64:
			errCode = cl.SetKernelArg(k.handle, uint32(argIndex), 8, unsafe.Pointer(&v))
		default:
			return fmt.Errorf(
				"gpu device (%s): could not set arg %d for kernel %s; unsupported arg type: %s",
				k.device.Name, argIndex, k.name, reflect.TypeOf(arg).Name(),
			)
		}

		if errCode != cl.SUCCESS {
			return fmt.Errorf(
				"gpu device (%s): could not set arg %d for kernel %s (errCode %d)",
				k.device.Name, argIndex, k.name, errCode,
			)
		}
	}
	return nil
}

// Exec1D dispatches a 1-D range of globalWorkSize work items, offset
// items in. localWorkSize == 0 lets the driver pick a work-group size.
func (k *Kernel) Exec1D(offset, globalWorkSize, localWorkSize int) (time.Duration, error) {
	var errCode cl.ErrorCode
	var offsetPtr *uint64
	var localSizePtr *uint64

	if offset > 0 {
		k.offsets[0] = uint64(offset)
		offsetPtr = &k.offsets[0]
	}
	k.globalWorkSizes[0] = uint64(globalWorkSize)
	if localWorkSize != 0 {
		k.localWorkSizes[0] = uint64(localWorkSize)
		localSizePtr = &k.localWorkSizes[0]
	}

	tick := time.Now()
	errCode = cl.EnqueueNDRangeKernel(
		k.device.cmdQueue, k.handle, 1,
		offsetPtr, &k.globalWorkSizes[0], localSizePtr,
		0, nil, nil,
	)
	if errCode != cl.SUCCESS {
		return 0, fmt.Errorf("gpu device (%s): unable to execute kernel %s (errCode %d)", k.device.Name, k.name, errCode)
	}

	errCode = cl.Finish(k.device.cmdQueue)
	if errCode != cl.SUCCESS {
		return 0, fmt.Errorf("gpu device (%s): kernel %s did not complete successfully (errCode %d)", k.device.Name, k.name, errCode)
	}

	return time.Since(tick), nil
}
