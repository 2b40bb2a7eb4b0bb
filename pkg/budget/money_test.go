package budget

import (
	"errors"
	"testing"
)

func TestNewMoneyParsesDecimalStrings(test *testing.T) {
	test.Parallel()
	amount := mustMoney(test, " 120.50 ")
	if amount.String() != "120.5" {
		test.Fatalf("expected 120.5, got %s", amount.String())
	}
}

func TestNewMoneyRejectsGarbage(test *testing.T) {
	test.Parallel()
	if _, err := NewMoney("twelve"); !errors.Is(err, ErrInvalidMoney) {
		test.Fatalf("expected ErrInvalidMoney, got %v", err)
	}
}

func TestMoneyArithmetic(test *testing.T) {
	test.Parallel()
	a := mustMoney(test, "10.25")
	b := mustMoney(test, "0.75")
	if !a.Add(b).Equal(mustMoney(test, "11")) {
		test.Fatalf("add: got %s", a.Add(b))
	}
	if !a.Sub(b).Equal(mustMoney(test, "9.50")) {
		test.Fatalf("sub: got %s", a.Sub(b))
	}
	if !b.Sub(a).Abs().Equal(mustMoney(test, "9.50")) {
		test.Fatalf("abs: got %s", b.Sub(a).Abs())
	}
	if a.Cmp(b) <= 0 || b.Cmp(a) >= 0 || a.Cmp(a) != 0 {
		test.Fatalf("cmp ordering broken")
	}
	if !ZeroMoney().IsZero() || ZeroMoney().IsPositive() || ZeroMoney().IsNegative() {
		test.Fatalf("zero classification broken")
	}
	if !NewMoneyFromInt(-3).IsNegative() {
		test.Fatalf("expected negative")
	}
}

func TestMoneyTruncateCents(test *testing.T) {
	test.Parallel()
	if got := mustMoney(test, "33.3366").TruncateCents(); !got.Equal(mustMoney(test, "33.33")) {
		test.Fatalf("expected 33.33, got %s", got)
	}
	if got := mustMoney(test, "-0.019").TruncateCents(); !got.Equal(mustMoney(test, "-0.01")) {
		test.Fatalf("expected truncation toward zero, got %s", got)
	}
}

func TestPercentOfRoundsHalfEvenThenFloors(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name        string
		numerator   string
		denominator string
		want        int
	}{
		{name: "exact", numerator: "50", denominator: "100", want: 50},
		{name: "floors fraction", numerator: "333", denominator: "1000", want: 33},
		{name: "half even rounds up across integer", numerator: "9.9995", denominator: "10", want: 100},
		{name: "below rounding threshold", numerator: "9.99949", denominator: "10", want: 99},
		{name: "clamped above hundred", numerator: "250", denominator: "100", want: 100},
		{name: "zero denominator", numerator: "10", denominator: "0", want: 0},
		{name: "negative numerator", numerator: "-5", denominator: "100", want: 0},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			got := percentOf(mustMoney(test, testCase.numerator), mustMoney(test, testCase.denominator))
			if got != testCase.want {
				test.Fatalf("expected %d%%, got %d%%", testCase.want, got)
			}
		})
	}
}
