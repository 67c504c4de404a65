package normalize

import (
	"math"
	"testing"
)

func TestToMillionsIdentity(t *testing.T) {
	got, ok := ToMillions("5,120", "Net profit for the period ended AED 5,120 million")
	if !ok {
		t.Fatal("Expected successful conversion")
	}
	if got != 5120 {
		t.Errorf("Expected 5120, got %f", got)
	}

	// Re-normalizing an already-millions value with no hint is a no-op.
	again, ok := ToMillions("5120", "")
	if !ok || again != 5120 {
		t.Errorf("Expected idempotent 5120, got (%f, %v)", again, ok)
	}
}

func TestToMillionsBillions(t *testing.T) {
	got, ok := ToMillions("5.1", "net profit of 5.1 billion AED")
	if !ok || got != 5100 {
		t.Errorf("Expected 5100, got (%f, %v)", got, ok)
	}
	got, ok = ToMillions("383.8", "customer deposits 383.8bn")
	if !ok || math.Abs(got-383800) > 1e-9 {
		t.Errorf("Expected 383800, got (%f, %v)", got, ok)
	}
}

func TestToMillionsTrillions(t *testing.T) {
	got, ok := ToMillions("1.1", "total assets crossed 1.1 trillion")
	if !ok || got != 1100000 {
		t.Errorf("Expected 1100000, got (%f, %v)", got, ok)
	}
}

func TestToMillionsThousandsMarker(t *testing.T) {
	got, ok := ToMillions("2,500", "AED 2,500 '000")
	if !ok || math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Expected 2.5, got (%f, %v)", got, ok)
	}
}

func TestToMillionsStripsJunk(t *testing.T) {
	got, ok := ToMillions("AED 950", "")
	if !ok || got != 950 {
		t.Errorf("Expected 950, got (%f, %v)", got, ok)
	}
}

func TestToMillionsNoDigits(t *testing.T) {
	for _, literal := range []string{"", "n/a", "AED million", "--"} {
		if got, ok := ToMillions(literal, "some context"); ok || got != 0 {
			t.Errorf("Expected failure sentinel for %q, got (%f, %v)", literal, got, ok)
		}
	}
}

func TestToMillionsUnparseableResidue(t *testing.T) {
	if _, ok := ToMillions("1.2.3", ""); ok {
		t.Error("Expected failure for literal with two decimal points")
	}
}
