package conv

import (
	"fmt"
	"math"
)

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	return int(v), nil
}

// RoundUpSaturating rounds v up to the nearest multiple of mult, saturating
// at math.MaxInt instead of wrapping when the rounded value would overflow.
// mult must be positive.
func RoundUpSaturating(v, mult int) int {
	if mult <= 0 {
		return v
	}
	rem := v % mult
	if rem == 0 {
		return v
	}
	pad := mult - rem
	if v > math.MaxInt-pad {
		return math.MaxInt
	}
	return v + pad
}

// CeilDiv returns ceil(a/b) for positive a and b.
func CeilDiv(a, b int) int {
	return (a + b - 1) / b
}
