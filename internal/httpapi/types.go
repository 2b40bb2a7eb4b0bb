package httpapi

import (
	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
)

type walletPayload struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Limit              string   `json:"limit"`
	Spent              string   `json:"spent"`
	Balance            string   `json:"balance"`
	LinkedCategories   []string `json:"linked_categories"`
	PeriodStartUnixUTC int64    `json:"period_start_unix_utc"`
	PeriodDays         int      `json:"period_days"`
	Type               string   `json:"type"`
	Color              string   `json:"color,omitempty"`
	PercentUsed        int      `json:"percent_used"`
	OverBudget         bool     `json:"over_budget"`
}

type statePayload struct {
	Wallets            []walletPayload `json:"wallets"`
	TotalLimit         string          `json:"total_limit"`
	TotalSpent         string          `json:"total_spent"`
	TotalBalance       string          `json:"total_balance"`
	OverBudgetWallets  []string        `json:"over_budget_wallets"`
	Progress           map[string]int  `json:"progress"`
	IsLoading          bool            `json:"is_loading"`
	Error              string          `json:"error,omitempty"`
	SelectedPeriodDays int             `json:"selected_period_days,omitempty"`
}

type stateEnvelope struct {
	State statePayload `json:"state"`
}

type walletEnvelope struct {
	Wallet walletPayload `json:"wallet"`
}

type transactionPayload struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	CategoryID      string `json:"category_id,omitempty"`
	Amount          string `json:"amount"`
	IsExpense       bool   `json:"is_expense"`
	OccurredUnixUTC int64  `json:"occurred_unix_utc"`
}

type transactionEnvelope struct {
	Transaction transactionPayload `json:"transaction"`
}

type transactionListEnvelope struct {
	Transactions []transactionPayload `json:"transactions"`
}

type createWalletRequest struct {
	Name             string   `json:"name" binding:"required"`
	Limit            string   `json:"limit" binding:"required"`
	Type             string   `json:"type"`
	Color            string   `json:"color"`
	LinkedCategories []string `json:"linked_categories"`
}

type updateWalletRequest struct {
	Name             *string  `json:"name"`
	Limit            *string  `json:"limit"`
	Type             *string  `json:"type"`
	Color            *string  `json:"color"`
	LinkedCategories []string `json:"linked_categories"`
	PeriodDays       *int     `json:"period_days"`
}

type incomeRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type spendRequest struct {
	Amount string `json:"amount" binding:"required"`
}

type transferRequest struct {
	FromID string `json:"from_id" binding:"required"`
	ToID   string `json:"to_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

type periodRequest struct {
	Days int `json:"days" binding:"required"`
}

type transactionRequest struct {
	Category        string `json:"category" binding:"required"`
	CategoryID      string `json:"category_id"`
	Amount          string `json:"amount" binding:"required"`
	IsExpense       bool   `json:"is_expense"`
	OccurredUnixUTC int64  `json:"occurred_unix_utc"`
}

func renderWallet(wallet budget.Wallet) walletPayload {
	return walletPayload{
		ID:                 wallet.ID.String(),
		Name:               wallet.Name,
		Limit:              wallet.Limit.String(),
		Spent:              wallet.Spent.String(),
		Balance:            wallet.Balance.String(),
		LinkedCategories:   wallet.LinkedCategories,
		PeriodStartUnixUTC: wallet.PeriodStartUnixUTC,
		PeriodDays:         wallet.PeriodDays,
		Type:               wallet.Type.String(),
		Color:              wallet.Color,
		PercentUsed:        wallet.PercentUsed(),
		OverBudget:         wallet.OverBudget(),
	}
}

func renderState(state budget.State) statePayload {
	wallets := make([]walletPayload, 0, len(state.Wallets))
	for _, wallet := range state.Wallets {
		wallets = append(wallets, renderWallet(wallet))
	}
	return statePayload{
		Wallets:            wallets,
		TotalLimit:         state.TotalLimit.String(),
		TotalSpent:         state.TotalSpent.String(),
		TotalBalance:       state.TotalBalance.String(),
		OverBudgetWallets:  state.OverBudgetWallets,
		Progress:           state.Progress,
		IsLoading:          state.IsLoading,
		Error:              state.Error,
		SelectedPeriodDays: state.SelectedPeriodDays,
	}
}

func renderTransaction(transaction budget.Transaction) transactionPayload {
	return transactionPayload{
		ID:              transaction.ID,
		Category:        transaction.Category,
		CategoryID:      transaction.CategoryID,
		Amount:          transaction.Amount.String(),
		IsExpense:       transaction.IsExpense,
		OccurredUnixUTC: transaction.OccurredUnixUTC,
	}
}
