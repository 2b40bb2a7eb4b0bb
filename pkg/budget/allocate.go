package budget

import "github.com/shopspring/decimal"

// allocationShare is one wallet's cut of a distributed income amount.
type allocationShare struct {
	WalletID WalletID
	Amount   Money
}

// allocateProportional apportions amount across the wallets in proportion to
// their limits, truncated at cent granularity. The rounding remainder goes
// to the largest-limit wallet, ties broken by ascending wallet id, so the
// shares always sum to amount exactly. When every limit is zero the amount
// is split equally instead.
func allocateProportional(amount Money, wallets []Wallet) []allocationShare {
	shares := make([]allocationShare, len(wallets))
	totalLimit := ZeroMoney()
	for _, wallet := range wallets {
		totalLimit = totalLimit.Add(wallet.Limit)
	}

	allocated := ZeroMoney()
	walletCount := decimal.NewFromInt(int64(len(wallets)))
	for index, wallet := range wallets {
		var share Money
		if totalLimit.IsPositive() {
			share = MoneyFromDecimal(amount.Decimal().Mul(wallet.Limit.Decimal()).Div(totalLimit.Decimal())).TruncateCents()
		} else {
			share = MoneyFromDecimal(amount.Decimal().Div(walletCount)).TruncateCents()
		}
		shares[index] = allocationShare{WalletID: wallet.ID, Amount: share}
		allocated = allocated.Add(share)
	}

	remainder := amount.Sub(allocated)
	if !remainder.IsZero() {
		recipient := remainderIndex(wallets)
		shares[recipient].Amount = shares[recipient].Amount.Add(remainder)
	}
	return shares
}

// remainderIndex picks the wallet receiving the rounding remainder: the
// highest limit, with the lowest id winning ties.
func remainderIndex(wallets []Wallet) int {
	best := 0
	for index := 1; index < len(wallets); index++ {
		comparison := wallets[index].Limit.Cmp(wallets[best].Limit)
		if comparison > 0 {
			best = index
			continue
		}
		if comparison == 0 && wallets[index].ID.String() < wallets[best].ID.String() {
			best = index
		}
	}
	return best
}
