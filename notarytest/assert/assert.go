// Package assert holds minimal assert helpers for tests that do not want
// the full testify surface.
package assert

import (
	"reflect"
	"testing"
)

// Nil fails the test if the value is not nil.
func Nil(t testing.TB, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails the test if both values are not deep equal.
func Equal(t testing.TB, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

// Panics runs the function and fails the test if it does not panic.
func Panics(t testing.TB, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails the test unless got matches the wanted error kind. It
// understands the errors package Is semantics through the kinder
// interface.
func IsErr(t testing.TB, want kinder, got error) {
	t.Helper()
	if !want.Is(got) {
		t.Fatalf("want an error of kind %v, got %+v", want, got)
	}
}

type kinder interface {
	Is(error) bool
}
