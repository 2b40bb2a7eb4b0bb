package budget

import (
	"errors"
	"testing"
)

func TestWalletIDValidation(test *testing.T) {
	test.Parallel()
	id := mustWalletID(test, "  wallet-1  ")
	if id.String() != "wallet-1" {
		test.Fatalf("expected normalized id, got %q", id.String())
	}
	if _, err := NewWalletID("   "); !errors.Is(err, ErrInvalidWalletID) {
		test.Fatalf("expected ErrInvalidWalletID, got %v", err)
	}
	if !(WalletID{}).IsZero() {
		test.Fatalf("expected zero id")
	}
}

func TestParseWalletType(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		raw     string
		want    WalletType
		wantErr error
	}{
		{name: "budget", raw: "budget", want: WalletTypeBudget},
		{name: "goal", raw: "goal", want: WalletTypeGoal},
		{name: "blank defaults to budget", raw: "  ", want: WalletTypeBudget},
		{name: "unknown tag", raw: "2", wantErr: ErrInvalidWalletType},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			got, err := ParseWalletType(testCase.raw)
			if testCase.wantErr != nil {
				if !errors.Is(err, testCase.wantErr) {
					test.Fatalf("expected %v, got %v", testCase.wantErr, err)
				}
				return
			}
			if err != nil {
				test.Fatalf("parse: %v", err)
			}
			if got != testCase.want {
				test.Fatalf("expected %s, got %s", testCase.want, got)
			}
		})
	}
}

func TestNewWalletDefaults(test *testing.T) {
	test.Parallel()
	wallet, err := NewWallet("Food", mustMoney(test, "100"), "")
	if err != nil {
		test.Fatalf("new wallet: %v", err)
	}
	if wallet.Type != WalletTypeBudget {
		test.Fatalf("expected default budget type, got %s", wallet.Type)
	}
	if !wallet.Spent.IsZero() || !wallet.Balance.IsZero() {
		test.Fatalf("expected zero spent/balance")
	}
	if _, err := NewWallet("Food", mustMoney(test, "-1"), WalletTypeBudget); !errors.Is(err, ErrInvalidLimit) {
		test.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := NewWallet("Food", mustMoney(test, "1"), WalletType("weird")); !errors.Is(err, ErrInvalidWalletType) {
		test.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}
}

func TestWalletValidate(test *testing.T) {
	test.Parallel()
	valid := Wallet{Name: "Food", Limit: mustMoney(test, "10"), Spent: ZeroMoney(), Type: WalletTypeBudget}
	if err := valid.Validate(); err != nil {
		test.Fatalf("expected valid wallet, got %v", err)
	}

	negativeLimit := valid
	negativeLimit.Limit = mustMoneyNegative(test)
	if err := negativeLimit.Validate(); !errors.Is(err, ErrInvalidLimit) {
		test.Fatalf("expected ErrInvalidLimit, got %v", err)
	}

	negativeSpent := valid
	negativeSpent.Spent = mustMoneyNegative(test)
	if err := negativeSpent.Validate(); !errors.Is(err, ErrInvalidSpent) {
		test.Fatalf("expected ErrInvalidSpent, got %v", err)
	}

	badType := valid
	badType.Type = WalletType("1")
	if err := badType.Validate(); !errors.Is(err, ErrInvalidWalletType) {
		test.Fatalf("expected ErrInvalidWalletType, got %v", err)
	}
}

func TestWalletOverBudget(test *testing.T) {
	test.Parallel()
	wallet := Wallet{Name: "Food", Limit: mustMoney(test, "100"), Spent: mustMoney(test, "100")}
	if wallet.OverBudget() {
		test.Fatalf("spending exactly the limit is not over budget")
	}
	wallet.Spent = mustMoney(test, "100.01")
	if !wallet.OverBudget() {
		test.Fatalf("expected over budget")
	}
	unlimited := Wallet{Name: "Misc", Limit: ZeroMoney(), Spent: mustMoney(test, "9999")}
	if unlimited.OverBudget() {
		test.Fatalf("zero limit means no limit")
	}
}

func TestWalletLinksCategory(test *testing.T) {
	test.Parallel()
	wallet := Wallet{Name: "Food", LinkedCategories: []string{"groceries", "cat-42"}}
	if !wallet.LinksCategory("Food", "") {
		test.Fatalf("expected match on wallet name")
	}
	if !wallet.LinksCategory("Weekly shop", "cat-42") {
		test.Fatalf("expected match on linked category id")
	}
	if !wallet.LinksCategory("groceries", "") {
		test.Fatalf("expected match on linked category name")
	}
	if wallet.LinksCategory("Rent", "cat-7") {
		test.Fatalf("expected no match")
	}
	if wallet.LinksCategory("", "") {
		test.Fatalf("blank category must never match")
	}
}

func TestCloneCategoriesDoesNotAlias(test *testing.T) {
	test.Parallel()
	wallet := Wallet{LinkedCategories: []string{"a", "b"}}
	cloned := wallet.CloneCategories()
	cloned[0] = "mutated"
	if wallet.LinkedCategories[0] != "a" {
		test.Fatalf("clone aliased the stored slice")
	}
	empty := Wallet{}
	if empty.CloneCategories() != nil {
		test.Fatalf("expected nil clone for nil source")
	}
}

func mustMoneyNegative(test *testing.T) Money {
	test.Helper()
	return mustMoney(test, "-1")
}
