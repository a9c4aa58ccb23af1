package formulas

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Min returns the smallest value, or 0 for an empty slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Min(data)
}

// Max returns the largest value, or 0 for an empty slice
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Max(data)
}

// Sum adds all values
func Sum(data []float64) float64 {
	return floats.Sum(data)
}

// MaxIndex returns the index of the largest value, or -1 for an empty slice.
// Ties resolve to the first occurrence.
func MaxIndex(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// NonZero returns the values that are not zero
func NonZero(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if v != 0 {
			out = append(out, v)
		}
	}
	return out
}
