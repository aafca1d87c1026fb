// Package export renders result tables in interchange formats: CSV for
// spreadsheets and downstream tooling, SVG for a quick trajectory picture.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSV writes the named columns as comma-separated rows with a header line,
// one row per record. Values round-trip exactly.
func CSV(w io.Writer, fields []string, columns [][]float64) error {
	if len(fields) != len(columns) {
		return fmt.Errorf("%d fields for %d columns", len(fields), len(columns))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}

	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	row := make([]string, len(columns))
	for i := 0; i < rows; i++ {
		for j, col := range columns {
			row[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

const (
	svgBackground = "#0a0a0a"
	svgStroke     = "#00ff88"
)

// SVG renders y against x as a single polyline path, axes scaled to the
// data bounds with ten percent padding on each side.
func SVG(w io.Writer, x, y []float64, width, height int) error {
	if len(x) != len(y) {
		return fmt.Errorf("x and y series differ in length: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return fmt.Errorf("need at least two points, got %d", len(x))
	}

	minX, maxX := x[0], x[0]
	minY, maxY := y[0], y[0]
	for i := range x {
		if x[i] < minX {
			minX = x[i]
		}
		if x[i] > maxX {
			maxX = x[i]
		}
		if y[i] < minY {
			minY = y[i]
		}
		if y[i] > maxY {
			maxY = y[i]
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	_, err := fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, svgBackground, svgStroke)
	if err != nil {
		return err
	}

	for i := range x {
		px := (x[i] - minX) / rangeX * float64(width)
		py := float64(height) - (y[i]-minY)/rangeY*float64(height)

		if i == 0 {
			_, err = fmt.Fprintf(w, "%.1f,%.1f", px, py)
		} else {
			_, err = fmt.Fprintf(w, " L%.1f,%.1f", px, py)
		}
		if err != nil {
			return err
		}
	}

	_, err = fmt.Fprint(w, "\"/>\n</svg>\n")
	return err
}
