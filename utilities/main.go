package utilities

import (
	"math"
	"os"
)

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func RoundFloat(val float64, precision uint) float64 {
	if val == 0 {
		return 0.0
	}

	ratio := math.Pow(10, float64(precision))
	if val > 0 {
		return math.Round(val*ratio) / ratio
	}

	return math.Round(val*ratio-0.5) / ratio
}
