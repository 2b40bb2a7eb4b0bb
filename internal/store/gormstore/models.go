package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Wallet mirrors the wallets table.
type Wallet struct {
	WalletID         string          `gorm:"type:uuid;primaryKey"`
	Name             string          `gorm:"not null;index:idx_wallets_name"`
	LimitAmount      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	SpentAmount      decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	BalanceAmount    decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	LinkedCategories datatypes.JSON  `gorm:"type:jsonb;not null"`
	PeriodStart      *time.Time      `gorm:""`
	PeriodDays       int             `gorm:"not null;default:0"`
	WalletType       string          `gorm:"not null"`
	Color            string          `gorm:""`
	CreatedAt        time.Time       `gorm:"not null;index:idx_wallets_created"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

func (Wallet) TableName() string { return "wallets" }

func (wallet *Wallet) BeforeCreate(tx *gorm.DB) error {
	if wallet.WalletID == "" {
		wallet.WalletID = uuid.NewString()
	}
	return nil
}

// Transaction mirrors the transactions table.
type Transaction struct {
	TransactionID string          `gorm:"type:uuid;primaryKey"`
	Category      string          `gorm:"not null"`
	CategoryID    string          `gorm:""`
	Amount        decimal.Decimal `gorm:"type:decimal(20,8);not null"`
	IsExpense     bool            `gorm:"not null"`
	OccurredAt    time.Time       `gorm:"not null;index:idx_transactions_occurred"`
	CreatedAt     time.Time       `gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

func (transaction *Transaction) BeforeCreate(tx *gorm.DB) error {
	if transaction.TransactionID == "" {
		transaction.TransactionID = uuid.NewString()
	}
	return nil
}
