package utils

import "math"

// RoundFloat rounds val to the given number of decimal places. Used for
// percentage figures in reports so JSON output stays readable.
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
