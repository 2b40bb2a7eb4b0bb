package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/budget/pkg/budget"
	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	emptyCategoriesJSON   = "[]"
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19

	errorOperationStore = "store"
	errorSubjectWallet  = "wallet"
	errorSubjectTx      = "transaction"
	errorCodeCreate     = "create"
	errorCodeDelete     = "delete"
	errorCodeDuplicate  = "duplicate"
	errorCodeGet        = "get"
	errorCodeInvalid    = "invalid"
	errorCodeList       = "list"
	errorCodeMigrate    = "migrate"
	errorCodeUpdate     = "update"
)

// Store implements budget.WalletStore and budget.TransactionSource using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the wallets and transactions tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Wallet{}, &Transaction{}); err != nil {
		return budget.WrapError(errorOperationStore, errorSubjectWallet, errorCodeMigrate, err)
	}
	return nil
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore budget.WalletStore) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

// ListWallets returns every wallet in creation order.
func (store *Store) ListWallets(ctx context.Context) ([]budget.Wallet, error) {
	var rows []Wallet
	err := store.db.WithContext(ctx).
		Order("created_at ASC, wallet_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectWallet, errorCodeList, err)
	}
	wallets := make([]budget.Wallet, 0, len(rows))
	for _, row := range rows {
		wallet, err := mapWallet(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectWallet, errorCodeInvalid, err)
		}
		wallets = append(wallets, wallet)
	}
	return wallets, nil
}

// GetWallet loads a single wallet by id.
func (store *Store) GetWallet(ctx context.Context, id budget.WalletID) (budget.Wallet, error) {
	var row Wallet
	err := store.db.WithContext(ctx).
		Where("wallet_id = ?", id.String()).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeGet, budget.ErrUnknownWallet)
		}
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeGet, err)
	}
	wallet, err := mapWallet(row)
	if err != nil {
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeInvalid, err)
	}
	return wallet, nil
}

// AddWallet persists a new wallet and returns it with the assigned id.
// Wallet names are not unique; only a pre-assigned id colliding with an
// existing row is rejected.
func (store *Store) AddWallet(ctx context.Context, wallet budget.Wallet) (budget.Wallet, error) {
	categories, err := encodeCategories(wallet.LinkedCategories)
	if err != nil {
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeInvalid, err)
	}
	row := Wallet{
		WalletID:         wallet.ID.String(),
		Name:             wallet.Name,
		LimitAmount:      wallet.Limit.Decimal(),
		SpentAmount:      wallet.Spent.Decimal(),
		BalanceAmount:    wallet.Balance.Decimal(),
		LinkedCategories: categories,
		PeriodStart:      unixToTime(wallet.PeriodStartUnixUTC),
		PeriodDays:       wallet.PeriodDays,
		WalletType:       wallet.Type.String(),
		Color:            wallet.Color,
	}
	err = store.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeDuplicate, budget.ErrWalletExists)
	}
	if err != nil {
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeCreate, err)
	}
	created, err := mapWallet(row)
	if err != nil {
		return budget.Wallet{}, wrapStoreError(errorSubjectWallet, errorCodeInvalid, err)
	}
	return created, nil
}

// UpdateWallet overwrites the stored wallet row.
func (store *Store) UpdateWallet(ctx context.Context, wallet budget.Wallet) error {
	categories, err := encodeCategories(wallet.LinkedCategories)
	if err != nil {
		return wrapStoreError(errorSubjectWallet, errorCodeInvalid, err)
	}
	result := store.db.WithContext(ctx).
		Model(&Wallet{}).
		Where("wallet_id = ?", wallet.ID.String()).
		Updates(map[string]interface{}{
			"name":              wallet.Name,
			"limit_amount":      wallet.Limit.Decimal(),
			"spent_amount":      wallet.Spent.Decimal(),
			"balance_amount":    wallet.Balance.Decimal(),
			"linked_categories": categories,
			"period_start":      unixToTime(wallet.PeriodStartUnixUTC),
			"period_days":       wallet.PeriodDays,
			"wallet_type":       wallet.Type.String(),
			"color":             wallet.Color,
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectWallet, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectWallet, errorCodeUpdate, budget.ErrUnknownWallet)
	}
	return nil
}

// DeleteWallet removes a wallet row.
func (store *Store) DeleteWallet(ctx context.Context, id budget.WalletID) error {
	result := store.db.WithContext(ctx).
		Where("wallet_id = ?", id.String()).
		Delete(&Wallet{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectWallet, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectWallet, errorCodeDelete, budget.ErrUnknownWallet)
	}
	return nil
}

// ListTransactions returns every recorded transaction, most recent first.
func (store *Store) ListTransactions(ctx context.Context) ([]budget.Transaction, error) {
	var rows []Transaction
	err := store.db.WithContext(ctx).
		Order("occurred_at DESC, transaction_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTx, errorCodeList, err)
	}
	transactions := make([]budget.Transaction, 0, len(rows))
	for _, row := range rows {
		transactions = append(transactions, mapTransaction(row))
	}
	return transactions, nil
}

// AddTransaction records a transaction and returns it with the assigned id.
func (store *Store) AddTransaction(ctx context.Context, transaction budget.Transaction) (budget.Transaction, error) {
	row := Transaction{
		TransactionID: transaction.ID,
		Category:      transaction.Category,
		CategoryID:    transaction.CategoryID,
		Amount:        transaction.Amount.Decimal(),
		IsExpense:     transaction.IsExpense,
		OccurredAt:    occurredOrNow(transaction.OccurredUnixUTC),
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if err != nil {
		return budget.Transaction{}, wrapStoreError(errorSubjectTx, errorCodeCreate, err)
	}
	return mapTransaction(row), nil
}

// UpdateTransaction overwrites a recorded transaction.
func (store *Store) UpdateTransaction(ctx context.Context, transaction budget.Transaction) error {
	result := store.db.WithContext(ctx).
		Model(&Transaction{}).
		Where("transaction_id = ?", transaction.ID).
		Updates(map[string]interface{}{
			"category":    transaction.Category,
			"category_id": transaction.CategoryID,
			"amount":      transaction.Amount.Decimal(),
			"is_expense":  transaction.IsExpense,
			"occurred_at": occurredOrNow(transaction.OccurredUnixUTC),
		})
	if result.Error != nil {
		return wrapStoreError(errorSubjectTx, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectTx, errorCodeUpdate, budget.ErrUnknownTransaction)
	}
	return nil
}

// DeleteTransaction removes a recorded transaction.
func (store *Store) DeleteTransaction(ctx context.Context, transactionID string) error {
	result := store.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Delete(&Transaction{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectTx, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectTx, errorCodeDelete, budget.ErrUnknownTransaction)
	}
	return nil
}

func wrapStoreError(subject string, code string, err error) error {
	return budget.WrapError(errorOperationStore, subject, code, err)
}

func mapWallet(row Wallet) (budget.Wallet, error) {
	walletID, err := budget.NewWalletID(row.WalletID)
	if err != nil {
		return budget.Wallet{}, err
	}
	walletType, err := budget.ParseWalletType(row.WalletType)
	if err != nil {
		return budget.Wallet{}, err
	}
	categories, err := decodeCategories(row.LinkedCategories)
	if err != nil {
		return budget.Wallet{}, err
	}
	return budget.Wallet{
		ID:                 walletID,
		Name:               row.Name,
		Limit:              budget.MoneyFromDecimal(row.LimitAmount),
		Spent:              budget.MoneyFromDecimal(row.SpentAmount),
		Balance:            budget.MoneyFromDecimal(row.BalanceAmount),
		LinkedCategories:   categories,
		PeriodStartUnixUTC: timeOrZero(row.PeriodStart),
		PeriodDays:         row.PeriodDays,
		Type:               walletType,
		Color:              row.Color,
	}, nil
}

func mapTransaction(row Transaction) budget.Transaction {
	return budget.Transaction{
		ID:              row.TransactionID,
		Category:        row.Category,
		CategoryID:      row.CategoryID,
		Amount:          budget.MoneyFromDecimal(row.Amount),
		IsExpense:       row.IsExpense,
		OccurredUnixUTC: row.OccurredAt.Unix(),
	}
}

func encodeCategories(categories []string) (datatypes.JSON, error) {
	if len(categories) == 0 {
		return datatypes.JSON([]byte(emptyCategoriesJSON)), nil
	}
	encoded, err := json.Marshal(categories)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(encoded), nil
}

func decodeCategories(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var categories []string
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, nil
	}
	return categories, nil
}

func unixToTime(unixUTC int64) *time.Time {
	if unixUTC == 0 {
		return nil
	}
	value := time.Unix(unixUTC, 0).UTC()
	return &value
}

func timeOrZero(value *time.Time) int64 {
	if value == nil {
		return 0
	}
	return value.Unix()
}

func occurredOrNow(unixUTC int64) time.Time {
	if unixUTC == 0 {
		return time.Now().UTC()
	}
	return time.Unix(unixUTC, 0).UTC()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
