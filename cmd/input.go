package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/achilleasa/go-lbvh/geom"
)

// loadBoxes reads one axis-aligned box per line from path, formatted as
// six comma-separated doubles "minx,miny,minz,maxx,maxy,maxz". Blank
// lines and lines starting with "#" are skipped.
func loadBoxes(path string) ([]geom.Box, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var boxes []geom.Box
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields, err := parseFloats(line, 6)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}

		boxes = append(boxes, geom.Box{
			Min: geom.XYZ(fields[0], fields[1], fields[2]),
			Max: geom.XYZ(fields[3], fields[4], fields[5]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return boxes, nil
}

// parsePoint parses "x,y,z" into a geom.Point.
func parsePoint(s string) (geom.Point, error) {
	fields, err := parseFloats(s, 3)
	if err != nil {
		return geom.Point{}, err
	}
	return geom.XYZ(fields[0], fields[1], fields[2]), nil
}

func boxFromPoints(min, max geom.Point) geom.Box {
	return geom.Box{Min: min, Max: max}
}

func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d (%q)", want, len(parts), s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
