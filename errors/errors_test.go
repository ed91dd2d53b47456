package errors

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		kind    *Error
		err     error
		wantHit bool
	}{
		"root error is itself": {
			kind:    ErrNumber,
			err:     ErrNumber,
			wantHit: true,
		},
		"wrapped error matches the root": {
			kind:    ErrStatement,
			err:     Wrap(ErrStatement, "claimed balance"),
			wantHit: true,
		},
		"deeply wrapped error matches the root": {
			kind:    ErrUnauthorized,
			err:     Wrap(Wrap(ErrUnauthorized, "signature"), "envelope"),
			wantHit: true,
		},
		"different kind does not match": {
			kind:    ErrNotFound,
			err:     Wrap(ErrNumber, "consume"),
			wantHit: false,
		},
		"stdlib error does not match": {
			kind:    ErrNotFound,
			err:     fmt.Errorf("not found"),
			wantHit: false,
		},
		"nil error does not match a kind": {
			kind:    ErrNotFound,
			err:     nil,
			wantHit: false,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.kind.Is(tc.err); got != tc.wantHit {
				t.Fatalf("want %v, got %v", tc.wantHit, got)
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, "whatever"); err != nil {
		t.Fatalf("wrapping nil must return nil, got %+v", err)
	}
}

func TestWrapAttachesStackTraceOnce(t *testing.T) {
	err := Wrap(ErrHuman, "first")
	if stackTrace(err) == nil {
		t.Fatal("expected a stack trace")
	}
	st := stackTrace(err)
	err = Wrap(err, "second")
	if got := stackTrace(err); len(got) != len(st) {
		t.Fatal("stack trace must not be attached twice")
	}
}

func TestRecover(t *testing.T) {
	var err error
	func() {
		defer Recover(&err)
		panic("mayday")
	}()
	if !ErrPanic.Is(err) {
		t.Fatalf("want ErrPanic, got %+v", err)
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("appending nils must return nil, got %+v", err)
	}

	single := Wrap(ErrAmount, "negative")
	if err := Append(nil, single); err != single {
		t.Fatalf("single error must be returned unwrapped, got %+v", err)
	}

	combined := Append(
		Field("Amount", ErrAmount, ""),
		Field("Source", ErrEmpty, ""),
	)
	if got := FieldErrors(combined, "Amount"); len(got) != 1 {
		t.Fatalf("want one Amount error, got %d", len(got))
	}
	if got := FieldErrors(combined, "Destination"); len(got) != 0 {
		t.Fatalf("want no Destination error, got %d", len(got))
	}
}

func TestFieldErrorsOnCause(t *testing.T) {
	// A field error buried under a generic wrap must still be found.
	err := errors.WithMessage(Field("Ticker", ErrInput, "bad format"), "outer")
	found := FieldErrors(err, "Ticker")
	if len(found) != 1 {
		t.Fatalf("want 1, got %d", len(found))
	}
}
