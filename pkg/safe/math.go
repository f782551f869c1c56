// Package safe provides overflow-checked int64 arithmetic for the
// fixed-point money and quantity types used by ledger and accounting
// code (PriceMicros, QtySats). Hot-path market data uses plain
// float64 and does not go through this package.
package safe

import (
	"math"
)

// Add performs int64 addition and panics on overflow/underflow.
func Add(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("safe: Add overflow")
	}
	return a + b
}

// Sub performs int64 subtraction and panics on overflow/underflow.
func Sub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("safe: Sub overflow")
	}
	return a - b
}

// Mul performs int64 multiplication and panics on overflow/underflow.
func Mul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > 0 {
		if b > 0 {
			if a > math.MaxInt64/b {
				panic("safe: Mul overflow")
			}
		} else {
			if b < math.MinInt64/a {
				panic("safe: Mul overflow")
			}
		}
	} else {
		if b > 0 {
			if a < math.MinInt64/b {
				panic("safe: Mul overflow")
			}
		} else {
			if a < math.MaxInt64/b {
				panic("safe: Mul overflow")
			}
		}
	}
	return a * b
}

// Div performs int64 division and panics on division by zero or overflow.
func Div(a, b int64) int64 {
	if b == 0 {
		panic("safe: Div by zero")
	}
	if a == math.MinInt64 && b == -1 {
		panic("safe: Div overflow")
	}
	return a / b
}
