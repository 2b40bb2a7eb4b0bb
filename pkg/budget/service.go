package budget

import (
	"context"
	"fmt"
	"sync"
)

// Service is the wallet allocation engine. Every command validates against
// the current wallet set, persists through the WalletStore, and concludes
// with a full reload into the published state.
type Service struct {
	wallets      WalletStore
	transactions TransactionSource
	goals        GoalProgressSource
	nowFn        func() int64
	logger       OperationLogger

	mu          sync.Mutex
	state       State
	subscribers []chan State
}

// NewService wires a Service.
func NewService(wallets WalletStore, transactions TransactionSource, now func() int64, options ...ServiceOption) (*Service, error) {
	if wallets == nil {
		return nil, fmt.Errorf("%w: wallet store dependency is nil", ErrInvalidServiceConfig)
	}
	if transactions == nil {
		return nil, fmt.Errorf("%w: transaction source dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		wallets:      wallets,
		transactions: transactions,
		goals:        balanceGoalSource{},
		nowFn:        now,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// AddWallet creates a wallet with zero spent and balance and persists it.
// The store assigns the id.
func (service *Service) AddWallet(ctx context.Context, name string, limit Money, walletType WalletType) (Wallet, error) {
	service.beginLoading()
	var created Wallet
	wallet, operationError := NewWallet(name, limit, walletType)
	if operationError == nil {
		created, operationError = service.wallets.AddWallet(ctx, wallet)
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationAddWallet,
		WalletID:  created.ID,
		Amount:    limit,
		Error:     operationError,
	})
	return created, service.conclude(ctx, operationError)
}

// UpdateWallet persists a caller-edited wallet. A nil linked-category slice
// means "unchanged": the stored set is carried forward so an edit of name,
// limit, or period never drops it.
func (service *Service) UpdateWallet(ctx context.Context, wallet Wallet) error {
	service.beginLoading()
	operationError := wallet.Validate()
	if operationError == nil {
		operationError = service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
			existing, err := txStore.GetWallet(ctx, wallet.ID)
			if err != nil {
				return err
			}
			if wallet.LinkedCategories == nil {
				wallet.LinkedCategories = existing.CloneCategories()
			}
			return txStore.UpdateWallet(ctx, wallet)
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationUpdateWallet,
		WalletID:  wallet.ID,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// DeleteWallet removes a wallet.
func (service *Service) DeleteWallet(ctx context.Context, id WalletID) error {
	service.beginLoading()
	operationError := service.wallets.DeleteWallet(ctx, id)
	service.logOperation(ctx, OperationLog{
		Operation: operationDeleteWallet,
		WalletID:  id,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// DistributeIncome apportions a positive income amount across all wallets in
// proportion to their limits and credits each wallet's balance. All writes
// happen inside one store transaction.
func (service *Service) DistributeIncome(ctx context.Context, amount Money) error {
	service.beginLoading()
	operationError := validatePositive(amount)
	if operationError == nil {
		operationError = service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
			wallets, err := txStore.ListWallets(ctx)
			if err != nil {
				return err
			}
			if len(wallets) == 0 {
				return ErrNoWallets
			}
			for _, share := range allocateProportional(amount, wallets) {
				if share.Amount.IsZero() {
					continue
				}
				fresh, err := txStore.GetWallet(ctx, share.WalletID)
				if err != nil {
					return err
				}
				fresh.Balance = fresh.Balance.Add(share.Amount)
				if err := txStore.UpdateWallet(ctx, fresh); err != nil {
					return err
				}
			}
			return nil
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationDistribute,
		Amount:    amount,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// SpendFromWallet debits the wallet balance and adds to its spent total.
func (service *Service) SpendFromWallet(ctx context.Context, id WalletID, amount Money) error {
	service.beginLoading()
	operationError := validatePositive(amount)
	if operationError == nil {
		operationError = service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
			fresh, err := txStore.GetWallet(ctx, id)
			if err != nil {
				return err
			}
			if amount.Cmp(fresh.Balance) > 0 {
				return ErrInsufficientFunds
			}
			fresh.Balance = fresh.Balance.Sub(amount)
			fresh.Spent = fresh.Spent.Add(amount)
			return txStore.UpdateWallet(ctx, fresh)
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationSpend,
		WalletID:  id,
		Amount:    amount,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// Transfer moves funds between two distinct wallets. Both writes happen
// inside one store transaction so money is never created or destroyed.
func (service *Service) Transfer(ctx context.Context, fromID WalletID, toID WalletID, amount Money) error {
	service.beginLoading()
	operationError := validatePositive(amount)
	if operationError == nil && fromID.String() == toID.String() {
		operationError = ErrSameWallet
	}
	if operationError == nil {
		operationError = service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
			source, err := txStore.GetWallet(ctx, fromID)
			if err != nil {
				return err
			}
			destination, err := txStore.GetWallet(ctx, toID)
			if err != nil {
				return err
			}
			if amount.Cmp(source.Balance) > 0 {
				return fmt.Errorf("%w in source wallet", ErrInsufficientFunds)
			}
			source.Balance = source.Balance.Sub(amount)
			destination.Balance = destination.Balance.Add(amount)
			if err := txStore.UpdateWallet(ctx, source); err != nil {
				return err
			}
			return txStore.UpdateWallet(ctx, destination)
		})
	}
	service.logOperation(ctx, OperationLog{
		Operation:    operationTransfer,
		WalletID:     fromID,
		PeerWalletID: toID,
		Amount:       amount,
		Error:        operationError,
	})
	return service.conclude(ctx, operationError)
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func validatePositive(amount Money) error {
	if !amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}
