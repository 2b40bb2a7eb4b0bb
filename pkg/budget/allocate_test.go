package budget

import "testing"

func testWallet(test *testing.T, id string, limit string) Wallet {
	test.Helper()
	return Wallet{ID: mustWalletID(test, id), Name: id, Limit: mustMoney(test, limit)}
}

func TestAllocateProportionalSharesSumExactly(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name   string
		amount string
		limits map[string]string
	}{
		{
			name:   "clean proportions",
			amount: "13000",
			limits: map[string]string{"w1": "10000", "w2": "3000"},
		},
		{
			name:   "repeating fractions",
			amount: "100",
			limits: map[string]string{"w1": "1", "w2": "1", "w3": "1"},
		},
		{
			name:   "sub-cent amount",
			amount: "0.05",
			limits: map[string]string{"w1": "70", "w2": "30"},
		},
		{
			name:   "all limits zero",
			amount: "10",
			limits: map[string]string{"w1": "0", "w2": "0", "w3": "0", "w4": "0", "w5": "0", "w6": "0", "w7": "0"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			wallets := make([]Wallet, 0, len(testCase.limits))
			for _, id := range []string{"w1", "w2", "w3", "w4", "w5", "w6", "w7"} {
				if limit, exists := testCase.limits[id]; exists {
					wallets = append(wallets, testWallet(test, id, limit))
				}
			}
			amount := mustMoney(test, testCase.amount)

			total := ZeroMoney()
			for _, share := range allocateProportional(amount, wallets) {
				if share.Amount.IsNegative() {
					test.Fatalf("negative share %s for %s", share.Amount, share.WalletID)
				}
				total = total.Add(share.Amount)
			}
			if !total.Equal(amount) {
				test.Fatalf("expected shares to sum to %s, got %s", amount, total)
			}
		})
	}
}

func TestAllocateProportionalZeroLimitGetsNothing(test *testing.T) {
	test.Parallel()
	wallets := []Wallet{
		testWallet(test, "w1", "0"),
		testWallet(test, "w2", "500"),
	}

	shares := allocateProportional(mustMoney(test, "200"), wallets)
	if !shares[0].Amount.IsZero() {
		test.Fatalf("expected zero share for zero-limit wallet, got %s", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(mustMoney(test, "200")) {
		test.Fatalf("expected full amount for limited wallet, got %s", shares[1].Amount)
	}
}

func TestAllocateProportionalRemainderTieBreaksByLowestID(test *testing.T) {
	test.Parallel()
	wallets := []Wallet{
		testWallet(test, "w2", "100"),
		testWallet(test, "w1", "100"),
		testWallet(test, "w3", "100"),
	}

	shares := allocateProportional(mustMoney(test, "100"), wallets)
	byID := map[string]Money{}
	for _, share := range shares {
		byID[share.WalletID.String()] = share.Amount
	}
	if !byID["w1"].Equal(mustMoney(test, "33.34")) {
		test.Fatalf("expected w1 to take the remainder, got %s", byID["w1"])
	}
	if !byID["w2"].Equal(mustMoney(test, "33.33")) || !byID["w3"].Equal(mustMoney(test, "33.33")) {
		test.Fatalf("expected plain shares for w2/w3, got %s / %s", byID["w2"], byID["w3"])
	}
}

func TestAllocateProportionalLargestLimitTakesRemainder(test *testing.T) {
	test.Parallel()
	wallets := []Wallet{
		testWallet(test, "w1", "100"),
		testWallet(test, "w2", "200"),
	}

	shares := allocateProportional(mustMoney(test, "100.01"), wallets)
	if !shares[0].Amount.Equal(mustMoney(test, "33.33")) {
		test.Fatalf("expected w1 share 33.33, got %s", shares[0].Amount)
	}
	if !shares[1].Amount.Equal(mustMoney(test, "66.68")) {
		test.Fatalf("expected w2 share 66.68 with remainder, got %s", shares[1].Amount)
	}
}
