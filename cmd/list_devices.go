package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/achilleasa/go-lbvh/gpu"
)

// ListDevices enumerates the opencl platforms and devices available for
// the accelerator-backed construction phases.
func ListDevices(ctx *cli.Context) error {
	platforms, err := gpu.GetPlatformInfo()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Platform", "Device", "Type", "GFlops (est)"})

	for _, platform := range platforms {
		if len(platform.Devices) == 0 {
			table.Append([]string{platform.Name, "-", "-", "-"})
			continue
		}
		for _, dev := range platform.Devices {
			table.Append([]string{
				platform.Name,
				dev.Name,
				dev.Type.String(),
				strconv.Itoa(int(dev.Speed)),
			})
		}
	}

	table.Render()
	return nil
}
