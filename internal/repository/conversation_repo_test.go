package repository

import "testing"

func TestNormalizePairOrdersLowFirst(t *testing.T) {
	low, high := normalizePair(42, 7)
	if low != 7 || high != 42 {
		t.Fatalf("expected (7, 42), got (%d, %d)", low, high)
	}
}

func TestNormalizePairIsSymmetric(t *testing.T) {
	aLow, aHigh := normalizePair(3, 11)
	bLow, bHigh := normalizePair(11, 3)
	if aLow != bLow || aHigh != bHigh {
		t.Fatalf("pair order changed the key: (%d, %d) vs (%d, %d)", aLow, aHigh, bLow, bHigh)
	}
}
