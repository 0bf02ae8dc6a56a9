package gpu

import (
	"fmt"

	"github.com/achilleasa/gopencl/v1.2/cl"

	"github.com/achilleasa/go-lbvh/geom"
)

// KernelSource is the path to the OpenCL program that backs Encoder. It
// is relative to the caller's working directory, matching how Device
// loads program source elsewhere in this package.
const KernelSource = "gpu/kernels/lbvh.cl"

// Encoder runs the scene-bound reduction (B1) and Morton-code encoding
// (B2) construction phases on an OpenCL device, as an alternative to
// running them through engine.CPU.
type Encoder struct {
	device       *Device
	mortonKernel *Kernel
	reduceKernel *Kernel
	groupSize    int
}

// NewEncoder initializes device with the kernel source at KernelSource
// and loads the morton_encode and box_reduce kernels.
func NewEncoder(device *Device) (*Encoder, error) {
	if err := device.Init(KernelSource); err != nil {
		return nil, err
	}

	mortonKernel, err := device.Kernel("morton_encode")
	if err != nil {
		return nil, err
	}
	reduceKernel, err := device.Kernel("box_reduce")
	if err != nil {
		return nil, err
	}

	groupSize := reduceKernel.PreferredGroupSize()
	logger.Debugf("gpu device (%s): box_reduce group size = %d", device.Name, groupSize)

	return &Encoder{device: device, mortonKernel: mortonKernel, reduceKernel: reduceKernel, groupSize: groupSize}, nil
}

// Release frees the kernels. The underlying device is not closed.
func (e *Encoder) Release() {
	e.mortonKernel.Release()
	e.reduceKernel.Release()
}

// EncodeMortonCodes computes the Morton code of each point against
// scene, matching morton.Encode's semantics but dispatched
// across the OpenCL device instead of a goroutine pool.
func (e *Encoder) EncodeMortonCodes(points []geom.Point, scene geom.Box) ([]uint32, error) {
	n := len(points)
	if n == 0 {
		return nil, nil
	}

	flatPoints := make([]float64, 3*n)
	for i, p := range points {
		flatPoints[3*i+0] = p.X
		flatPoints[3*i+1] = p.Y
		flatPoints[3*i+2] = p.Z
	}
	sceneMin := []float64{scene.Min.X, scene.Min.Y, scene.Min.Z}
	sceneMax := []float64{scene.Max.X, scene.Max.Y, scene.Max.Z}

	pointsBuf := e.device.Buffer("points")
	minBuf := e.device.Buffer("sceneMin")
	maxBuf := e.device.Buffer("sceneMax")
	codesBuf := e.device.Buffer("codes")
	defer pointsBuf.Release()
	defer minBuf.Release()
	defer maxBuf.Release()
	defer codesBuf.Release()

	if err := AllocateToFitData(pointsBuf, flatPoints, cl.MEM_READ_ONLY); err != nil {
		return nil, err
	}
	if err := WriteData(pointsBuf, flatPoints, 0); err != nil {
		return nil, err
	}
	if err := AllocateToFitData(minBuf, sceneMin, cl.MEM_READ_ONLY); err != nil {
		return nil, err
	}
	if err := WriteData(minBuf, sceneMin, 0); err != nil {
		return nil, err
	}
	if err := AllocateToFitData(maxBuf, sceneMax, cl.MEM_READ_ONLY); err != nil {
		return nil, err
	}
	if err := WriteData(maxBuf, sceneMax, 0); err != nil {
		return nil, err
	}

	codes := make([]uint32, n)
	if err := AllocateToFitData(codesBuf, codes, cl.MEM_WRITE_ONLY); err != nil {
		return nil, err
	}

	if err := e.mortonKernel.SetArgs(pointsBuf, minBuf, maxBuf, codesBuf); err != nil {
		return nil, err
	}
	if _, err := e.mortonKernel.Exec1D(0, n, 0); err != nil {
		return nil, err
	}

	if err := ReadData(codesBuf, 0, 0, 0, codes); err != nil {
		return nil, err
	}

	return codes, nil
}

// ReduceBoxes unions boxes into a single scene bound. len(boxes) must be
// a multiple of the encoder's work-group size; callers pad the input
// with empty boxes to satisfy this, matching box_reduce's fixed local
// work-group layout.
func (e *Encoder) ReduceBoxes(boxes []geom.Box) (geom.Box, error) {
	n := len(boxes)
	if n == 0 {
		return geom.EmptyBox(), nil
	}
	if n%e.groupSize != 0 {
		return geom.Box{}, fmt.Errorf("gpu: ReduceBoxes requires len(boxes) a multiple of %d, got %d", e.groupSize, n)
	}

	flat := make([]float64, 6*n)
	for i, b := range boxes {
		flat[6*i+0], flat[6*i+1], flat[6*i+2] = b.Min.X, b.Min.Y, b.Min.Z
		flat[6*i+3], flat[6*i+4], flat[6*i+5] = b.Max.X, b.Max.Y, b.Max.Z
	}

	numGroups := n / e.groupSize
	partials := make([]float64, 6*numGroups)

	boxesBuf := e.device.Buffer("boxes")
	partialsBuf := e.device.Buffer("partials")
	defer boxesBuf.Release()
	defer partialsBuf.Release()

	if err := AllocateToFitData(boxesBuf, flat, cl.MEM_READ_ONLY); err != nil {
		return geom.Box{}, err
	}
	if err := WriteData(boxesBuf, flat, 0); err != nil {
		return geom.Box{}, err
	}
	if err := AllocateToFitData(partialsBuf, partials, cl.MEM_WRITE_ONLY); err != nil {
		return geom.Box{}, err
	}

	if err := e.reduceKernel.SetArgs(boxesBuf, partialsBuf, LocalArg(6*e.groupSize*8)); err != nil {
		return geom.Box{}, err
	}
	if _, err := e.reduceKernel.Exec1D(0, n, e.groupSize); err != nil {
		return geom.Box{}, err
	}

	if err := ReadData(partialsBuf, 0, 0, 0, partials); err != nil {
		return geom.Box{}, err
	}

	result := geom.EmptyBox()
	for g := 0; g < numGroups; g++ {
		result = result.Expand(geom.Box{
			Min: geom.XYZ(partials[6*g+0], partials[6*g+1], partials[6*g+2]),
			Max: geom.XYZ(partials[6*g+3], partials[6*g+4], partials[6*g+5]),
		})
	}
	return result, nil
}
