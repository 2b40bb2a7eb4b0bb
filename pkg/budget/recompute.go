package budget

import "context"

// RecomputeSpent derives each wallet's spent total from the expense
// transactions attributed to it and persists wallets whose stored value
// drifted. Wallets are re-fetched and written one at a time, so a
// recomputation racing a user command only ever overwrites with fresher
// per-wallet data.
func (service *Service) RecomputeSpent(ctx context.Context) error {
	service.beginLoading()
	operationError := service.recomputeSpent(ctx)
	service.logOperation(ctx, OperationLog{
		Operation: operationRecompute,
		Error:     operationError,
	})
	return service.conclude(ctx, operationError)
}

func (service *Service) recomputeSpent(ctx context.Context) error {
	transactions, err := service.transactions.ListTransactions(ctx)
	if err != nil {
		return err
	}
	expenses := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		if transaction.IsExpense {
			expenses = append(expenses, transaction)
		}
	}

	wallets, err := service.wallets.ListWallets(ctx)
	if err != nil {
		return err
	}
	for _, wallet := range wallets {
		computed := ZeroMoney()
		for _, expense := range expenses {
			if wallet.LinksCategory(expense.Category, expense.CategoryID) {
				computed = computed.Add(expense.Amount)
			}
		}
		if computed.Equal(wallet.Spent) {
			continue
		}
		fresh, err := service.wallets.GetWallet(ctx, wallet.ID)
		if err != nil {
			return err
		}
		fresh.Spent = computed
		if err := service.wallets.UpdateWallet(ctx, fresh); err != nil {
			return err
		}
	}
	return nil
}

// Watch recomputes spent totals on every transaction-change signal until the
// context is done or the channel closes. Recomputation failures surface in
// the published state and the operation log; they never abort the loop.
func (service *Service) Watch(ctx context.Context, changes <-chan TransactionChange) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			_ = service.RecomputeSpent(ctx)
		}
	}
}
