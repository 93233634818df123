package tui

import (
	"github.com/guptarohit/asciigraph"
)

// EnergyChart plots a series, or returns "" while there are fewer than two samples
func EnergyChart(data []float64, width, height int, caption string) string {
	if len(data) < 2 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// Downsample keeps at most n evenly spaced samples, always including the last one
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}

	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step+0.5)]
	}
	out[n-1] = data[len(data)-1]
	return out
}
