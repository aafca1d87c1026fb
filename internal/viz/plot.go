package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// Plot renders one series as an ASCII chart with the field name as the
// caption. Series shorter than two points cannot be charted.
func Plot(series []float64, caption string, width, height int) (string, error) {
	if len(series) < 2 {
		return "", fmt.Errorf("series %s needs at least two points, got %d", caption, len(series))
	}
	if width < 10 {
		width = 10
	}
	if height < 2 {
		height = 2
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	), nil
}
