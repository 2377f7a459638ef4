package utils

import (
	"log"
	"math"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v", r)
			}
		}()
		fn()
	}()
}

func ToPointer[T any](value T) *T {
	return &value
}

// RoundTo2 rounds a float to two decimal places.
func RoundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
