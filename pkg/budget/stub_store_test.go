package budget

import (
	"context"
	"fmt"
	"testing"
)

// stubStore is an in-memory WalletStore and TransactionSource. WithTx takes
// a snapshot and restores it when the callback fails, matching the
// transactional stores the engine runs against.
type stubStore struct {
	wallets      map[string]Wallet
	order        []string
	nextID       int
	transactions []Transaction

	listWalletsError      error
	getWalletError        error
	addWalletError        error
	updateWalletError     error
	updateWalletErrorAt   int
	updateWalletCalls     int
	deleteWalletError     error
	listTransactionsError error
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{wallets: map[string]Wallet{}}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore WalletStore) error) error {
	snapshot := make(map[string]Wallet, len(store.wallets))
	for id, wallet := range store.wallets {
		snapshot[id] = wallet
	}
	orderSnapshot := make([]string, len(store.order))
	copy(orderSnapshot, store.order)

	if err := fn(ctx, store); err != nil {
		store.wallets = snapshot
		store.order = orderSnapshot
		return err
	}
	return nil
}

func (store *stubStore) ListWallets(ctx context.Context) ([]Wallet, error) {
	if store.listWalletsError != nil {
		return nil, store.listWalletsError
	}
	wallets := make([]Wallet, 0, len(store.order))
	for _, id := range store.order {
		wallets = append(wallets, store.wallets[id])
	}
	return wallets, nil
}

func (store *stubStore) GetWallet(ctx context.Context, id WalletID) (Wallet, error) {
	if store.getWalletError != nil {
		return Wallet{}, store.getWalletError
	}
	wallet, exists := store.wallets[id.String()]
	if !exists {
		return Wallet{}, ErrUnknownWallet
	}
	return wallet, nil
}

func (store *stubStore) AddWallet(ctx context.Context, wallet Wallet) (Wallet, error) {
	if store.addWalletError != nil {
		return Wallet{}, store.addWalletError
	}
	store.nextID++
	id, err := NewWalletID(fmt.Sprintf("wallet-%04d", store.nextID))
	if err != nil {
		return Wallet{}, err
	}
	wallet.ID = id
	store.wallets[id.String()] = wallet
	store.order = append(store.order, id.String())
	return wallet, nil
}

func (store *stubStore) UpdateWallet(ctx context.Context, wallet Wallet) error {
	store.updateWalletCalls++
	if store.updateWalletError != nil && (store.updateWalletErrorAt == 0 || store.updateWalletCalls >= store.updateWalletErrorAt) {
		return store.updateWalletError
	}
	if _, exists := store.wallets[wallet.ID.String()]; !exists {
		return ErrUnknownWallet
	}
	store.wallets[wallet.ID.String()] = wallet
	return nil
}

func (store *stubStore) DeleteWallet(ctx context.Context, id WalletID) error {
	if store.deleteWalletError != nil {
		return store.deleteWalletError
	}
	if _, exists := store.wallets[id.String()]; !exists {
		return ErrUnknownWallet
	}
	delete(store.wallets, id.String())
	remaining := make([]string, 0, len(store.order))
	for _, existing := range store.order {
		if existing != id.String() {
			remaining = append(remaining, existing)
		}
	}
	store.order = remaining
	return nil
}

func (store *stubStore) ListTransactions(ctx context.Context) ([]Transaction, error) {
	if store.listTransactionsError != nil {
		return nil, store.listTransactionsError
	}
	transactions := make([]Transaction, len(store.transactions))
	copy(transactions, store.transactions)
	return transactions, nil
}

func (store *stubStore) mustWallet(test *testing.T, id WalletID) Wallet {
	test.Helper()
	wallet, exists := store.wallets[id.String()]
	if !exists {
		test.Fatalf("wallet %s not found", id)
	}
	return wallet
}

func mustNewService(test *testing.T, store *stubStore, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, store, func() int64 { return 100 }, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustMoney(test *testing.T, raw string) Money {
	test.Helper()
	value, err := NewMoney(raw)
	if err != nil {
		test.Fatalf("money: %v", err)
	}
	return value
}

func mustWalletID(test *testing.T, raw string) WalletID {
	test.Helper()
	value, err := NewWalletID(raw)
	if err != nil {
		test.Fatalf("wallet id: %v", err)
	}
	return value
}

func mustAddWallet(test *testing.T, service *Service, name string, limit string) Wallet {
	test.Helper()
	wallet, err := service.AddWallet(context.Background(), name, mustMoney(test, limit), WalletTypeBudget)
	if err != nil {
		test.Fatalf("add wallet %s: %v", name, err)
	}
	return wallet
}
