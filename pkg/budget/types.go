package budget

import (
	"fmt"
	"strings"
)

// WalletID identifies a budget wallet.
type WalletID struct {
	value string
}

// NewWalletID validates and normalizes a wallet id.
func NewWalletID(raw string) (WalletID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return WalletID{}, fmt.Errorf("%w: empty value", ErrInvalidWalletID)
	}
	return WalletID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id WalletID) String() string {
	return id.value
}

// IsZero reports whether the id carries no value (a wallet not yet persisted).
func (id WalletID) IsZero() bool {
	return id.value == ""
}

// WalletType distinguishes regular budget wallets from savings goals.
// Persisted as the stable string tag, never an ordinal.
type WalletType string

const (
	WalletTypeBudget WalletType = "budget"
	WalletTypeGoal   WalletType = "goal"
)

// ParseWalletType validates a stored wallet type tag, defaulting blanks to budget.
func ParseWalletType(raw string) (WalletType, error) {
	switch WalletType(strings.TrimSpace(raw)) {
	case "", WalletTypeBudget:
		return WalletTypeBudget, nil
	case WalletTypeGoal:
		return WalletTypeGoal, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidWalletType, raw)
	}
}

// String returns the stable tag.
func (walletType WalletType) String() string {
	return string(walletType)
}

// Wallet is a budget sub-account: a spending limit for the current period,
// the cumulative spend attributed to it, and the funds allocated into it.
type Wallet struct {
	ID                 WalletID
	Name               string
	Limit              Money
	Spent              Money
	Balance            Money
	LinkedCategories   []string
	PeriodStartUnixUTC int64
	PeriodDays         int
	Type               WalletType
	Color              string
}

// NewWallet builds a fresh wallet with zero spent and balance. The id is
// assigned by the store on first persist.
func NewWallet(name string, limit Money, walletType WalletType) (Wallet, error) {
	if limit.IsNegative() {
		return Wallet{}, fmt.Errorf("%w: must not be negative", ErrInvalidLimit)
	}
	if walletType == "" {
		walletType = WalletTypeBudget
	}
	if walletType != WalletTypeBudget && walletType != WalletTypeGoal {
		return Wallet{}, fmt.Errorf("%w: %q", ErrInvalidWalletType, walletType)
	}
	return Wallet{
		Name:    name,
		Limit:   limit,
		Spent:   ZeroMoney(),
		Balance: ZeroMoney(),
		Type:    walletType,
	}, nil
}

// Validate checks the wallet invariants: non-negative limit and spent, a
// known type tag.
func (wallet Wallet) Validate() error {
	if wallet.Limit.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidLimit)
	}
	if wallet.Spent.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidSpent)
	}
	if _, err := ParseWalletType(wallet.Type.String()); err != nil {
		return err
	}
	return nil
}

// OverBudget reports whether the wallet exceeded a non-zero limit.
func (wallet Wallet) OverBudget() bool {
	return wallet.Limit.IsPositive() && wallet.Spent.Cmp(wallet.Limit) > 0
}

// PercentUsed is the spent share of the limit as an integer percentage,
// clamped to [0, 100]. A zero limit means no limit and reports 0.
func (wallet Wallet) PercentUsed() int {
	return percentOf(wallet.Spent, wallet.Limit)
}

// LinksCategory reports whether an expense in the given category is
// attributed to this wallet: the category name matches the wallet name, or
// the category id or name appears among the linked categories.
func (wallet Wallet) LinksCategory(categoryName string, categoryID string) bool {
	if categoryName != "" && categoryName == wallet.Name {
		return true
	}
	for _, linked := range wallet.LinkedCategories {
		if linked == "" {
			continue
		}
		if linked == categoryID || linked == categoryName {
			return true
		}
	}
	return false
}

// CloneCategories copies the linked-category set so mutations never alias
// the stored slice.
func (wallet Wallet) CloneCategories() []string {
	if wallet.LinkedCategories == nil {
		return nil
	}
	cloned := make([]string, len(wallet.LinkedCategories))
	copy(cloned, wallet.LinkedCategories)
	return cloned
}

// Transaction is the read-only view of a recorded transaction consumed
// during spent recomputation.
type Transaction struct {
	ID              string
	Category        string
	CategoryID      string
	Amount          Money
	IsExpense       bool
	OccurredUnixUTC int64
}

// TransactionChange signals that the transaction set changed.
type TransactionChange struct {
	Action        string
	TransactionID string
}
