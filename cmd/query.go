package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/achilleasa/go-lbvh/lbvh"
)

// QuerySpatial builds a BVH over the box file named by the command's
// first argument and runs a single spatial query against the box
// described by --min/--max, printing the matching original indices.
func QuerySpatial(ctx *cli.Context) error {
	path, err := requireArg(ctx, 0, "usage: go-lbvh query spatial <box_file> --min x,y,z --max x,y,z")
	if err != nil {
		return err
	}
	boxes, err := loadBoxes(path)
	if err != nil {
		return err
	}

	min, err := parsePoint(ctx.String("min"))
	if err != nil {
		return cli.NewExitError("invalid --min: "+err.Error(), 1)
	}
	max, err := parsePoint(ctx.String("max"))
	if err != nil {
		return cli.NewExitError("invalid --max: "+err.Error(), 1)
	}

	eng := cmdEngine(ctx)
	bv := lbvh.New(eng, boxes)
	res := bv.Query(eng, []lbvh.Query{lbvh.SpatialBoxQuery(boxFromPoints(min, max))})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Original Index"})
	for _, idx := range res.Indices {
		table.Append([]string{strconv.Itoa(int(idx))})
	}
	table.Render()
	return nil
}

// QueryNearest builds a BVH over the box file named by the command's
// first argument and runs a single k-nearest query against --point,
// printing the matching original indices and distances.
func QueryNearest(ctx *cli.Context) error {
	path, err := requireArg(ctx, 0, "usage: go-lbvh query nearest <box_file> --point x,y,z --k N")
	if err != nil {
		return err
	}
	boxes, err := loadBoxes(path)
	if err != nil {
		return err
	}

	point, err := parsePoint(ctx.String("point"))
	if err != nil {
		return cli.NewExitError("invalid --point: "+err.Error(), 1)
	}
	k := ctx.Int("k")

	eng := cmdEngine(ctx)
	bv := lbvh.New(eng, boxes)
	res := bv.Query(eng, []lbvh.Query{lbvh.NearestQuery(point, k)})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Original Index", "Distance"})
	for i, idx := range res.Indices {
		idxStr := strconv.Itoa(int(idx))
		if idx < 0 {
			idxStr = "-"
		}
		table.Append([]string{idxStr, strconv.FormatFloat(res.Distances[i], 'g', -1, 64)})
	}
	table.Render()
	return nil
}

func requireArg(ctx *cli.Context, i int, usage string) (string, error) {
	if ctx.NArg() <= i {
		return "", cli.NewExitError(usage, 1)
	}
	return ctx.Args().Get(i), nil
}
