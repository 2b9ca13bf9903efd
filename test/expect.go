// This file is part of wipiemu.
//
// wipiemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// wipiemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with wipiemu.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"math"
	"testing"
)

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value != expectedValue {
		t.Errorf("equality test of type %T failed: '%v' does not equal '%v')", value, value, expectedValue)
	}
}

// ExpectInequality is used to test inequality between one value and
// another. ie. the opposite of ExpectEquality().
func ExpectInequality[T comparable](t *testing.T, value T, expectedValue T) {
	t.Helper()
	if value == expectedValue {
		t.Errorf("inequality test of type %T failed: '%v' does equal '%v')", value, value, expectedValue)
	}
}

// ExpectApproximate is used to test approximate equality between one value
// and another. The tolerance argument defines how close the two values must
// be as a fraction of the expected value.
func ExpectApproximate[T float64 | float32 | int](t *testing.T, value T, expectedValue T, tolerance float64) {
	t.Helper()

	tol := math.Abs(float64(expectedValue) * tolerance)
	if float64(value) < float64(expectedValue)-tol || float64(value) > float64(expectedValue)+tol {
		t.Errorf("approximation test of type %T failed: '%v' is outside the range '%v' +/- '%v'", value, value, expectedValue, tol)
	}
}

// ExpectSuccess tests argument v for a success condition. What success
// means depends on the type of the argument:
//
//	bool -> true
//	error -> nil
//
// A nil argument is treated as success.
func ExpectSuccess(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if !v {
			t.Errorf("expected success, got false")
			return false
		}
	case error:
		if v != nil {
			t.Errorf("expected success, got error: %v", v)
			return false
		}
	case nil:
	default:
		t.Fatalf("unsupported type (%T) for ExpectSuccess()", v)
		return false
	}

	return true
}

// ExpectFailure tests argument v for a failure condition. What failure
// means depends on the type of the argument:
//
//	bool -> false
//	error -> non-nil
func ExpectFailure(t *testing.T, v interface{}) bool {
	t.Helper()

	switch v := v.(type) {
	case bool:
		if v {
			t.Errorf("expected failure, got true")
			return false
		}
	case error:
		if v == nil {
			t.Errorf("expected failure, got nil error")
			return false
		}
	case nil:
		t.Errorf("expected failure, got nil")
		return false
	default:
		t.Fatalf("unsupported type (%T) for ExpectFailure()", v)
		return false
	}

	return true
}
