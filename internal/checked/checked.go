// Package checked provides overflow-checked integer arithmetic. All engine
// accumulators are signed or unsigned 64-bit; overflow in any size or
// offset computation is treated as fatal, never silently wrapped.
package checked

import "github.com/gobinsize/gobinsize/internal/bloatyerr"

// AddU64 adds two unsigned 64-bit values, erroring on wraparound.
func AddU64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, bloatyerr.Throw(bloatyerr.IntegerOverflow, "unsigned overflow: %d + %d", a, b)
	}
	return sum, nil
}

// SubU64 subtracts b from a, erroring if b > a.
func SubU64(a, b uint64) (uint64, error) {
	if b > a {
		return 0, bloatyerr.Throw(bloatyerr.IntegerOverflow, "unsigned underflow: %d - %d", a, b)
	}
	return a - b, nil
}

// AddI64 adds two signed 64-bit values, erroring on wraparound.
func AddI64(a, b int64) (int64, error) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, bloatyerr.Throw(bloatyerr.IntegerOverflow, "signed overflow: %d + %d", a, b)
	}
	return sum, nil
}

// SubI64 subtracts b from a (signed), erroring on wraparound.
func SubI64(a, b int64) (int64, error) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, bloatyerr.Throw(bloatyerr.IntegerOverflow, "signed overflow: %d - %d", a, b)
	}
	return diff, nil
}
