// Package assert holds the minimal assertions the escrow tests rely on.
package assert

import (
	"reflect"

	"github.com/iov-one/tradelock/errors"
)

// Tester is the minimal subset of testing.TB needed to run most assert
// commands
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails the test if given value is not nil.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		// Use %+v so that if we are printing an error that supports
		// stack traces then a full stack trace is shown.
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) (isnil bool) {
	if value == nil {
		return true
	}

	defer func() {
		if recover() != nil {
			isnil = false
		}
	}()

	// The argument must be a chan, func, interface, map, pointer, or
	// slice value; if it is not, IsNil panics.
	isnil = reflect.ValueOf(value).IsNil()

	return isnil
}

// Equal fails the test if two values are not equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal \nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// True fails the test if the value is not true.
func True(t Tester, value bool) {
	t.Helper()
	if !value {
		t.Fatal("want true, got false")
	}
}

// False fails the test if the value is not false.
func False(t Tester, value bool) {
	t.Helper()
	if value {
		t.Fatal("want false, got true")
	}
}

// Panics will run given function and recover any panic. It will fail the
// test if given function call did not panic.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// IsErr fails the test if the error is not of the wanted kind, tested by
// the root error Is method call.
func IsErr(t Tester, want *errors.Error, err error) {
	t.Helper()
	if !want.Is(err) {
		t.Fatalf("want %q error, got %+v", want, err)
	}
}
