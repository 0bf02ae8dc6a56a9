// Package gpu provides an OpenCL-backed accelerator for the two
// arithmetic-heavy construction phases that benefit most from wide SIMD
// execution: the scene-bound reduction (B1) and the per-box Morton-code
// computation (B2). It is an alternative to engine.CPU for those two
// passes, not a general replacement for the engine.Engine interface: a
// literal Go closure cannot be shipped to a kernel, so accelerated work
// is dispatched at the phase level through Encoder rather than through
// ParallelFor.
package gpu

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"

	"github.com/achilleasa/go-lbvh/log"
)

var logger = log.New("gpu")

// DeviceType classifies an enumerated OpenCL device.
type DeviceType uint8

// Supported device types.
const (
	CPUDevice   DeviceType = 1 << iota
	GPUDevice              = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

var indentRegex = regexp.MustCompile("(?m)^")

func (dt DeviceType) String() string {
	switch dt {
	case CPUDevice:
		return "CPU"
	case GPUDevice:
		return "GPU"
	case OtherDevice:
		return "Other"
	}
	panic("gpu: unsupported device type")
}

// Device is a handle to a single OpenCL-capable compute device, together
// with the context, command queue and compiled program it owns once
// initialized.
type Device struct {
	Name string
	Id   cl.DeviceId
	Type DeviceType

	compUnits     uint32
	clockSpeed    uint32
	workGroupSize uint64

	// Speed is a rough GFlops estimate used to rank devices when
	// selecting an accelerator automatically.
	Speed uint32

	ctx      *cl.Context
	cmdQueue cl.CommandQueue
	program  cl.Program
}

func (d Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d computation units, %d Mhz clock, %d GFlops approximate speed",
		d.Name, d.Type.String(), d.compUnits, d.clockSpeed, d.Speed,
	)
}

// Init compiles the kernel source found at programFile and prepares a
// context and command queue for this device. Calling Init on an
// already-initialized device is a no-op.
func (d *Device) Init(programFile string) error {
	var errCode cl.ErrorCode

	if d.ctx != nil {
		return nil
	}
	start := time.Now()

	d.ctx = cl.CreateContext(nil, 1, &d.Id, nil, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.Close()
		return fmt.Errorf("gpu device (%s): could not create context (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}

	d.cmdQueue = cl.CreateCommandQueue(*d.ctx, d.Id, 0, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.Close()
		return fmt.Errorf("gpu device (%s): could not create command queue (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}

	absProgramPath, err := filepath.Abs(programFile)
	if err != nil {
		defer d.Close()
		return err
	}

	f, err := os.Open(absProgramPath)
	if err != nil {
		defer d.Close()
		return err
	}
	defer f.Close()

	data, err := ioutil.ReadAll(f)
	if err != nil {
		defer d.Close()
		return err
	}
	progSrc := cl.Str(string(data) + "\x00")

	d.program = cl.CreateProgramWithSource(*d.ctx, 1, &progSrc, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.Close()
		return fmt.Errorf("gpu device (%s): could not create program (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}

	errCode = cl.BuildProgram(
		d.program,
		1,
		&d.Id,
		cl.Str(fmt.Sprintf("-I %s\x00", filepath.Dir(absProgramPath))),
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		var dataLen uint64
		buildLog := make([]byte, 120000)
		cl.GetProgramBuildInfo(d.program, d.Id, cl.PROGRAM_BUILD_LOG, uint64(len(buildLog)), unsafe.Pointer(&buildLog[0]), &dataLen)
		defer d.Close()
		return fmt.Errorf("gpu device (%s): could not build program (error: %s; code %d):\n%s", d.Name, ErrorName(errCode), errCode, string(buildLog[0:dataLen-1]))
	}

	logger.Debugf("gpu device (%s): initialized and compiled %s in %s", d.Name, programFile, time.Since(start))
	return nil
}

// Close releases the program, command queue and context held by d.
func (d *Device) Close() {
	if d.program != nil {
		cl.ReleaseProgram(d.program)
		d.program = nil
	}
	if d.cmdQueue != nil {
		cl.ReleaseCommandQueue(d.cmdQueue)
		d.cmdQueue = nil
	}
	if d.ctx != nil {
		cl.ReleaseContext(d.ctx)
		d.ctx = nil
	}
}

// Kernel loads the named kernel from d's compiled program.
func (d *Device) Kernel(name string) (*Kernel, error) {
	var errCode cl.ErrorCode
	handle := cl.CreateKernel(d.program, cl.Str(name+"\x00"), (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return nil, fmt.Errorf("gpu device (%s): could not load kernel %s (error: %s; code %d)", d.Name, name, ErrorName(errCode), errCode)
	}
	return &Kernel{device: d, handle: handle, name: name}, nil
}

// Buffer allocates an (initially unbacked) named device buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{device: d, name: name}
}

func (d *Device) detectSpeed() error {
	errCode := cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_COMPUTE_UNITS, 4, unsafe.Pointer(&d.compUnits), nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): could not query MAX_COMPUTE_UNITS (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}
	errCode = cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_CLOCK_FREQUENCY, 4, unsafe.Pointer(&d.clockSpeed), nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): could not query MAX_CLOCK_FREQUENCY (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}
	errCode = cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_WORK_GROUP_SIZE, 8, unsafe.Pointer(&d.workGroupSize), nil)
	if errCode != cl.SUCCESS {
		return fmt.Errorf("gpu device (%s): could not query MAX_WORK_GROUP_SIZE (error: %s; code %d)", d.Name, ErrorName(errCode), errCode)
	}
	d.Speed = d.compUnits * d.clockSpeed / 1000
	return nil
}

// PreferredGroupSize returns the largest power-of-two local work-group
// size, capped at 256, that this device's CL_DEVICE_MAX_WORK_GROUP_SIZE
// permits. Encoder uses this instead of hardcoding a group size so
// box_reduce's local layout adapts to the device actually selected.
func (d *Device) PreferredGroupSize() int {
	max := int(d.workGroupSize)
	if max <= 0 {
		return 1
	}
	size := 1
	for size*2 <= max && size < 256 {
		size *= 2
	}
	return size
}

// ErrorName renders an OpenCL error code as its symbolic name.
func ErrorName(errCode cl.ErrorCode) string {
	switch errCode {
	case 0:
		return "SUCCESS"
	case -1:
		return "DEVICE_NOT_FOUND"
	case -2:
		return "DEVICE_NOT_AVAILABLE"
	case -4:
		return "MEM_OBJECT_ALLOCATION_FAILURE"
	case -5:
		return "OUT_OF_RESOURCES"
	case -6:
		return "OUT_OF_HOST_MEMORY"
	case -11:
		return "BUILD_PROGRAM_FAILURE"
	case -30:
		return "INVALID_VALUE"
	case -34:
		return "INVALID_CONTEXT"
	case -38:
		return "INVALID_MEM_OBJECT"
	case -44:
		return "INVALID_PROGRAM"
	case -46:
		return "INVALID_KERNEL_NAME"
	case -48:
		return "INVALID_KERNEL"
	case -52:
		return "INVALID_KERNEL_ARGS"
	case -54:
		return "INVALID_WORK_GROUP_SIZE"
	case -63:
		return "INVALID_GLOBAL_WORK_SIZE"
	default:
		return fmt.Sprintf("unknown error code %d", errCode)
	}
}
