package charts

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Continuous color scales, low to high.
var (
	Viridis = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}
	Blues   = []string{"#deebf7", "#9ecae1", "#4292c6", "#2171b5", "#08306b"}
	RdYlGn  = []string{"#d73027", "#fc8d59", "#fee08b", "#d9ef8b", "#91cf60", "#1a9850"}
)

// colorScale maps each value onto the scale between the min and max value.
// NaN values get the lowest color.
func colorScale(values []float64, scale []string) []string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	out := make([]string, len(values))
	for i, v := range values {
		t := 0.0
		if !math.IsNaN(v) && hi > lo {
			t = (v - lo) / (hi - lo)
		}
		out[i] = interpolate(scale, t)
	}
	return out
}

func interpolate(scale []string, t float64) string {
	if len(scale) == 1 || t <= 0 {
		return scale[0]
	}
	if t >= 1 {
		return scale[len(scale)-1]
	}

	pos := t * float64(len(scale)-1)
	i := int(pos)
	lo, err := colorful.Hex(scale[i])
	if err != nil {
		return scale[i]
	}
	hi, err := colorful.Hex(scale[i+1])
	if err != nil {
		return scale[i]
	}
	return lo.BlendRgb(hi, pos-float64(i)).Clamped().Hex()
}
