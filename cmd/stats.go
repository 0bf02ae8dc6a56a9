package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/achilleasa/go-lbvh/geom"
	"github.com/achilleasa/go-lbvh/lbvh"
	"github.com/achilleasa/go-lbvh/parallel"
)

// Stats builds a BVH over the box file named by the command's first
// argument and prints its size, bounds and construction time.
func Stats(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.NewExitError("usage: go-lbvh stats <box_file>", 1)
	}

	boxes, err := loadBoxes(ctx.Args().Get(0))
	if err != nil {
		return err
	}

	eng := cmdEngine(ctx)
	tick := time.Now()
	bv := lbvh.New(eng, boxes)
	elapsed := time.Since(tick)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"boxes", strconv.Itoa(bv.Size())})
	table.Append([]string{"workers", strconv.Itoa(eng.Workers())})
	table.Append([]string{"build time", elapsed.String()})
	if !bv.Empty() {
		b := bv.Bounds()
		table.Append([]string{"bounds.min", formatPoint(b.Min)})
		table.Append([]string{"bounds.max", formatPoint(b.Max)})

		// Distinct from bounds.min/max above: this reduces over box
		// centroids rather than box extents, so it shrinks when boxes
		// are large but clustered and grows when small boxes are
		// spread out.
		centroids := make([]geom.Point, len(boxes))
		for i, box := range boxes {
			centroids[i] = box.Centroid()
		}
		cb := parallel.MinMaxReduce(eng, centroids)
		table.Append([]string{"centroids.min", formatPoint(cb.Min)})
		table.Append([]string{"centroids.max", formatPoint(cb.Max)})
	}
	table.Render()
	return nil
}

func formatPoint(p geom.Point) string {
	return strconv.FormatFloat(p.X, 'g', -1, 64) + "," +
		strconv.FormatFloat(p.Y, 'g', -1, 64) + "," +
		strconv.FormatFloat(p.Z, 'g', -1, 64)
}
