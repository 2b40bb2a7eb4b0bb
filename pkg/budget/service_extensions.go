package budget

import (
	"context"
	"fmt"
)

// SetPeriodDuration applies a global period duration to every wallet and
// remembers it as the selected duration.
func (service *Service) SetPeriodDuration(ctx context.Context, days int) error {
	service.beginLoading()
	var operationError error
	if days <= 0 {
		operationError = fmt.Errorf("%w: must be greater than zero", ErrInvalidPeriodDays)
	}
	if operationError == nil {
		operationError = service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
			wallets, err := txStore.ListWallets(ctx)
			if err != nil {
				return err
			}
			for _, wallet := range wallets {
				fresh, err := txStore.GetWallet(ctx, wallet.ID)
				if err != nil {
					return err
				}
				fresh.PeriodDays = days
				if err := txStore.UpdateWallet(ctx, fresh); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if operationError == nil {
		service.mu.Lock()
		service.state.SelectedPeriodDays = days
		service.mu.Unlock()
	}
	service.logOperation(ctx, OperationLog{
		Operation: operationSetPeriod,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// ResetPeriod starts a new period for one wallet: spent goes to zero and the
// period start moves to now. Balance and limit are untouched.
func (service *Service) ResetPeriod(ctx context.Context, id WalletID) error {
	service.beginLoading()
	operationError := service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
		return resetWalletPeriod(ctx, txStore, id, service.nowFn())
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationResetPeriod,
		WalletID:  id,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// ResetAllPeriods starts a new period for every wallet.
func (service *Service) ResetAllPeriods(ctx context.Context) error {
	service.beginLoading()
	operationError := service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
		wallets, err := txStore.ListWallets(ctx)
		if err != nil {
			return err
		}
		nowUnixUTC := service.nowFn()
		for _, wallet := range wallets {
			if err := resetWalletPeriod(ctx, txStore, wallet.ID, nowUnixUTC); err != nil {
				return err
			}
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationResetAll,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

// CleanupSeedWallets is a one-time startup routine that prunes known
// seed/test wallets, but only when they have no linked categories.
func (service *Service) CleanupSeedWallets(ctx context.Context) error {
	service.beginLoading()
	operationError := service.wallets.WithTx(ctx, func(ctx context.Context, txStore WalletStore) error {
		wallets, err := txStore.ListWallets(ctx)
		if err != nil {
			return err
		}
		for _, wallet := range wallets {
			if _, seeded := seedWalletNames[wallet.Name]; !seeded {
				continue
			}
			if len(wallet.LinkedCategories) > 0 {
				continue
			}
			if err := txStore.DeleteWallet(ctx, wallet.ID); err != nil {
				return err
			}
		}
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation: operationCleanupSeeds,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

func resetWalletPeriod(ctx context.Context, txStore WalletStore, id WalletID, nowUnixUTC int64) error {
	fresh, err := txStore.GetWallet(ctx, id)
	if err != nil {
		return err
	}
	fresh.Spent = ZeroMoney()
	fresh.PeriodStartUnixUTC = nowUnixUTC
	return txStore.UpdateWallet(ctx, fresh)
}
