package coin

import (
	"testing"

	"github.com/secureonelabs/opentxs-sub000/errors"
)

func TestAddSubtract(t *testing.T) {
	cases := map[string]struct {
		a, b    Coin
		want    Coin
		wantErr *errors.Error
	}{
		"plain addition": {
			a:    NewCoin(1, 2, "USD"),
			b:    NewCoin(3, 4, "USD"),
			want: NewCoin(4, 6, "USD"),
		},
		"fraction carries over": {
			a:    NewCoin(0, FracUnit-1, "USD"),
			b:    NewCoin(0, 2, "USD"),
			want: NewCoin(1, 1, "USD"),
		},
		"subtraction through zero": {
			a:    NewCoin(1, 0, "USD"),
			b:    NewCoin(-2, 0, "USD"),
			want: NewCoin(-1, 0, "USD"),
		},
		"zero coin without ticker is neutral": {
			a:    NewCoin(0, 0, ""),
			b:    NewCoin(5, 0, "GLD"),
			want: NewCoin(5, 0, "GLD"),
		},
		"instruments never mix": {
			a:       NewCoin(1, 0, "USD"),
			b:       NewCoin(1, 0, "GLD"),
			wantErr: errors.ErrAmount,
		},
		"overflow detected": {
			a:       NewCoin(MaxInt, 0, "USD"),
			b:       NewCoin(1, 0, "USD"),
			wantErr: errors.ErrOverflow,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := tc.a.Add(tc.b)
			if tc.wantErr != nil {
				if !tc.wantErr.Is(err) {
					t.Fatalf("want %v, got %+v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %+v", err)
			}
			if !got.Equals(tc.want) {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestMultiply(t *testing.T) {
	got, err := NewCoin(2, 0, "SHR").Multiply(1000)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(NewCoin(2000, 0, "SHR")) {
		t.Fatalf("want 2000 SHR, got %v", got)
	}

	if _, err := NewCoin(MaxInt, 0, "SHR").Multiply(2); !errors.ErrOverflow.Is(err) {
		t.Fatalf("want overflow, got %+v", err)
	}
}

func TestDivide(t *testing.T) {
	one, rest, err := NewCoin(4, 0, "EUR").Divide(3)
	if err != nil {
		t.Fatal(err)
	}
	if !one.Equals(NewCoin(1, FracUnit/3, "EUR")) {
		t.Fatalf("unexpected piece: %v", one)
	}
	if rest.IsZero() {
		t.Fatal("expected a leftover")
	}
}

func TestIsGTE(t *testing.T) {
	if !NewCoin(2, 0, "USD").IsGTE(NewCoin(1, FracUnit-1, "USD")) {
		t.Fatal("2 >= 1.9(9) must hold")
	}
	if NewCoin(1, 0, "USD").IsGTE(NewCoin(1, 1, "USD")) {
		t.Fatal("1 >= 1.000000001 must not hold")
	}
	if NewCoin(1, 0, "USD").IsGTE(NewCoin(1, 0, "GLD")) {
		t.Fatal("different instruments never compare")
	}
}

func TestValidate(t *testing.T) {
	if err := NewCoin(1, 0, "USD").Validate(); err != nil {
		t.Fatalf("valid coin: %+v", err)
	}
	if err := NewCoin(1, 0, "us").Validate(); err == nil {
		t.Fatal("lowercase ticker must be invalid")
	}
	if err := NewCoin(1, -5, "USD").Validate(); err == nil {
		t.Fatal("mismatched sign must be invalid")
	}
}
