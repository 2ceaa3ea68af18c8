package extensions

import (
	"errors"
	"math"
	"testing"
)

func AssertAreEqual[T comparable](t *testing.T, name string, expected T, actual T) {
	t.Helper()
	if expected != actual {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}

func AssertNillability[T comparable](t *testing.T, name string, expected bool, actual *T) {
	t.Helper()
	if (actual == nil) != expected {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, (actual == nil))
	}
}

// AssertFloatNear fails when actual is nil or further than tolerance from expected
func AssertFloatNear(t *testing.T, name string, expected float64, actual *float64, tolerance float64) {
	t.Helper()
	if actual == nil {
		t.Fatalf("value mismatch for %s, expected %v, got nil", name, expected)
	}
	if math.Abs(expected-*actual) > tolerance {
		t.Fatalf("value mismatch for %s, expected %v, got %v", name, expected, *actual)
	}
}

func AssertErrorIs(t *testing.T, name string, expected error, actual error) {
	t.Helper()
	if !errors.Is(actual, expected) {
		t.Fatalf("error mismatch for %s, expected %v, got %v", name, expected, actual)
	}
}
