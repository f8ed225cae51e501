package interpolate

import "math"

// GaussianSmooth returns a copy of the grid smoothed with a separable
// Gaussian kernel of the given standard deviation (in grid cells). The kernel
// extends four standard deviations and the grid is reflected at its edges.
// A sigma of zero or less returns the input unchanged.
func GaussianSmooth(grid [][]float64, sigma float64) [][]float64 {
	if sigma <= 0 || len(grid) == 0 {
		return grid
	}

	kernel := gaussianKernel(sigma)
	rows, cols := len(grid), len(grid[0])

	// Horizontal pass.
	tmp := make([][]float64, rows)
	for r := range grid {
		tmp[r] = convolveReflect(grid[r], kernel)
	}

	// Vertical pass, one column at a time.
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
	}
	col := make([]float64, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			col[r] = tmp[r][c]
		}
		smoothed := convolveReflect(col, kernel)
		for r := 0; r < rows; r++ {
			out[r][c] = smoothed[r]
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	radius := int(4*sigma + 0.5)
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	var sum float64
	for i := -radius; i <= radius; i++ {
		v := math.Exp(-float64(i*i) / (2 * sigma * sigma))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func convolveReflect(data, kernel []float64) []float64 {
	n := len(data)
	radius := len(kernel) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var acc float64
		for k := -radius; k <= radius; k++ {
			acc += kernel[k+radius] * data[reflectIndex(i+k, n)]
		}
		out[i] = acc
	}
	return out
}

// reflectIndex mirrors an out-of-range index back into [0, n) without
// repeating the edge sample, e.g. -1 -> 0, -2 -> 1, n -> n-1.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - i - 1
		}
	}
	return i
}
