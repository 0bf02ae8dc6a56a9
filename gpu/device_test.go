package gpu

import (
	"strings"
	"testing"
)

func TestSelectDevices(t *testing.T) {
	devList, err := SelectDevices(CPUDevice, "CPU")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) != 1 {
		t.Skipf("expected to find 1 CPU opencl device; got %d; check that opencl drivers are installed", len(devList))
	}
}

func TestDeviceInit(t *testing.T) {
	devList, err := SelectDevices(CPUDevice, "CPU")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) != 1 {
		t.Skipf("expected to find 1 CPU opencl device; got %d; check that opencl drivers are installed", len(devList))
	}

	dev := devList[0]
	if err := dev.Init(KernelSource); err != nil {
		t.Fatalf("error initializing device %q: %v", dev.Name, err)
	}
	defer dev.Close()

	if !strings.Contains(dev.Name, "CPU") {
		t.Fatalf("expected CPU device name %q to contain 'CPU'", dev.Name)
	}
	if dev.Type.String() != "CPU" {
		t.Fatalf("expected device type CPU; got %s", dev.Type.String())
	}
	if size := dev.PreferredGroupSize(); size < 1 {
		t.Fatalf("expected a positive preferred group size; got %d", size)
	}
}

func TestSelectFastest(t *testing.T) {
	dev, err := SelectFastest(AllDevices)
	if err != nil {
		t.Fatal(err)
	}
	if dev == nil {
		t.Skip("no opencl devices available")
	}

	all, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range all {
		if d.Speed > dev.Speed {
			t.Fatalf("SelectFastest returned %q (speed %d) but %q is faster (speed %d)", dev.Name, dev.Speed, d.Name, d.Speed)
		}
	}
}

func TestNewEncoderLoadsKernels(t *testing.T) {
	devList, err := SelectDevices(AllDevices, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(devList) == 0 {
		t.Skip("no opencl devices available")
	}

	enc, err := NewEncoder(devList[0])
	if err != nil {
		t.Fatalf("error creating encoder: %v", err)
	}
	defer enc.Release()
	defer devList[0].Close()

	// This test exercises device selection, program build and kernel
	// load end to end on whatever opencl hardware runs it; it does not
	// compare the encoder's output against morton.Encode.
}
