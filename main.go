package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/achilleasa/go-lbvh/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = "go-lbvh"
	app.Usage = "build and query a parallel linear BVH over a set of boxes"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.IntFlag{
			Name:  "workers",
			Value: 0,
			Usage: "number of CPU workers to use (0 = one per available core)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "stats",
			Usage:     "build a BVH over a box file and report its size, bounds and build time",
			ArgsUsage: "boxes.csv",
			Before:    cmd.SetupLogging,
			Action:    cmd.Stats,
		},
		{
			Name:  "query",
			Usage: "run a single query against a BVH built from a box file",
			Subcommands: []cli.Command{
				{
					Name:      "spatial",
					Usage:     "find every box intersecting a target box",
					ArgsUsage: "boxes.csv",
					Before:    cmd.SetupLogging,
					Flags: []cli.Flag{
						cli.StringFlag{Name: "min", Usage: "target box min corner, \"x,y,z\""},
						cli.StringFlag{Name: "max", Usage: "target box max corner, \"x,y,z\""},
					},
					Action: cmd.QuerySpatial,
				},
				{
					Name:      "nearest",
					Usage:     "find the k boxes nearest to a point",
					ArgsUsage: "boxes.csv",
					Before:    cmd.SetupLogging,
					Flags: []cli.Flag{
						cli.StringFlag{Name: "point", Usage: "query point, \"x,y,z\""},
						cli.IntFlag{Name: "k", Value: 1, Usage: "number of neighbors to return"},
					},
					Action: cmd.QueryNearest,
				},
			},
		},
		{
			Name:   "list-devices",
			Usage:  "list opencl devices available for accelerator-backed construction",
			Before: cmd.SetupLogging,
			Action: cmd.ListDevices,
		},
	}

	if err := app.Run(os.Args); err != nil {
		os.Exit(1)
	}
}
