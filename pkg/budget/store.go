package budget

import "context"

// WalletStore is the persistence contract used by Service. Individual
// per-wallet writes are atomic; WithTx makes a multi-wallet command
// all-or-nothing.
type WalletStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore WalletStore) error) error
	ListWallets(ctx context.Context) ([]Wallet, error)
	GetWallet(ctx context.Context, id WalletID) (Wallet, error)
	AddWallet(ctx context.Context, wallet Wallet) (Wallet, error)
	UpdateWallet(ctx context.Context, wallet Wallet) error
	DeleteWallet(ctx context.Context, id WalletID) error
}

// TransactionSource is the read-only transaction feed consumed during spent
// recomputation.
type TransactionSource interface {
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// GoalProgressSource supplies the current/target pair measured for goal
// wallets. The engine only turns the pair into a percentage.
type GoalProgressSource interface {
	GoalProgress(ctx context.Context, wallet Wallet) (current Money, target Money, err error)
}
