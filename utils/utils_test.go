package utils

import (
	"fmt"
	"math"
	"strconv"
	"testing"
)

// ============================================================================
// INTEGER FORMATTING TESTS
// ============================================================================

func TestItoa(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{name: "Zero", input: 0, expected: "0"},
		{name: "Single digit", input: 5, expected: "5"},
		{name: "Two digits", input: 42, expected: "42"},
		{name: "Negative", input: -4096, expected: "-4096"},
		{name: "Large number", input: 987654321, expected: "987654321"},
		{name: "Maximum int32", input: 2147483647, expected: "2147483647"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Itoa(tt.input)
			if result != tt.expected {
				t.Errorf("Itoa(%d) = %q, expected %q", tt.input, result, tt.expected)
			}

			// Cross-verify with standard library
			if std := strconv.Itoa(tt.input); result != std {
				t.Errorf("Itoa(%d) = %q, strconv.Itoa = %q", tt.input, result, std)
			}
		})
	}
}

func TestItoa_EdgeCases(t *testing.T) {
	testCases := []int{1, 9, 10, 99, 100, 999, 1000, 9999, 10000, 65535, 65536}

	for _, n := range testCases {
		t.Run(fmt.Sprintf("boundary_%d", n), func(t *testing.T) {
			if got, want := Itoa(n), strconv.Itoa(n); got != want {
				t.Errorf("Itoa(%d) = %q, expected %q", n, got, want)
			}
		})
	}
}

func TestUtoa(t *testing.T) {
	testCases := []uint64{0, 7, 10, 4096, math.MaxUint32, math.MaxUint64}

	for _, u := range testCases {
		t.Run(fmt.Sprintf("value_%d", u), func(t *testing.T) {
			if got, want := Utoa(u), strconv.FormatUint(u, 10); got != want {
				t.Errorf("Utoa(%d) = %q, expected %q", u, got, want)
			}
		})
	}
}

func TestItoa_ZeroAllocation(t *testing.T) {
	allocs := testing.AllocsPerRun(1000, func() {
		_ = Itoa(12345)
	})

	if allocs > 1 { // Allow one allocation for string creation
		t.Errorf("Itoa() should minimize allocations: %f allocs/op", allocs)
	}
}

// ============================================================================
// MIXER TESTS
// ============================================================================

func TestMix64(t *testing.T) {
	if Mix64(0) != 0 {
		t.Fatalf("Mix64(0) = %X, want 0", Mix64(0))
	}

	seen := make(map[uint64]uint64, 65536)
	for i := uint64(1); i <= 65536; i++ {
		h := Mix64(i)
		if h != Mix64(i) {
			t.Fatalf("Mix64(%d) not deterministic", i)
		}
		if prev, ok := seen[h]; ok {
			t.Fatalf("Mix64 collision: %d and %d → %X", prev, i, h)
		}
		seen[h] = i
	}
}
