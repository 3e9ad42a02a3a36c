package checked

import (
	"math"
	"testing"

	"github.com/gobinsize/gobinsize/internal/bloatyerr"
)

func TestAddU64Overflow(t *testing.T) {
	if _, err := AddU64(math.MaxUint64, 1); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("AddU64(MaxUint64, 1) error = %v, want IntegerOverflow", err)
	}
	sum, err := AddU64(3, 4)
	if err != nil || sum != 7 {
		t.Errorf("AddU64(3, 4) = %d, %v, want 7, nil", sum, err)
	}
}

func TestSubU64Underflow(t *testing.T) {
	if _, err := SubU64(1, 2); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("SubU64(1, 2) error = %v, want IntegerOverflow", err)
	}
	diff, err := SubU64(10, 4)
	if err != nil || diff != 6 {
		t.Errorf("SubU64(10, 4) = %d, %v, want 6, nil", diff, err)
	}
}

func TestAddI64Overflow(t *testing.T) {
	if _, err := AddI64(math.MaxInt64, 1); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("AddI64(MaxInt64, 1) error = %v, want IntegerOverflow", err)
	}
	if _, err := AddI64(math.MinInt64, -1); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("AddI64(MinInt64, -1) error = %v, want IntegerOverflow", err)
	}
	sum, err := AddI64(-5, 3)
	if err != nil || sum != -2 {
		t.Errorf("AddI64(-5, 3) = %d, %v, want -2, nil", sum, err)
	}
}

func TestSubI64Overflow(t *testing.T) {
	if _, err := SubI64(math.MinInt64, 1); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("SubI64(MinInt64, 1) error = %v, want IntegerOverflow", err)
	}
	if _, err := SubI64(math.MaxInt64, -1); !bloatyerr.Is(err, bloatyerr.IntegerOverflow) {
		t.Errorf("SubI64(MaxInt64, -1) error = %v, want IntegerOverflow", err)
	}
	diff, err := SubI64(10, -5)
	if err != nil || diff != 15 {
		t.Errorf("SubI64(10, -5) = %d, %v, want 15, nil", diff, err)
	}
}
