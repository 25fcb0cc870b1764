package model

import (
	"time"

	"gorm.io/gorm"
)

// Wallet transaction types
const (
	TransactionTypeCredit = "credit"
	TransactionTypeDebit  = "debit"
)

// Wallet represents a user's store-credit balance. One row per user, created
// lazily on first touch. Balance never goes negative; debits are guarded at
// the database level.
type Wallet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	UserID    uint           `gorm:"not null;uniqueIndex" json:"user_id"`
	Balance   int64          `gorm:"not null;default:0" json:"balance"` // paise

	// Relationships
	User         User                `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Transactions []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Wallet
func (Wallet) TableName() string {
	return "wallets"
}

// WalletTransaction is an append-only ledger entry. Rows are never mutated
// after creation; the wallet balance must reconcile with the ledger sum.
type WalletTransaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	WalletID  uint      `gorm:"not null;index" json:"wallet_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Type      string    `gorm:"type:varchar(10);not null" json:"type"` // credit, debit
	Amount    int64     `gorm:"not null" json:"amount"`                // paise, always > 0
	Reason    string    `gorm:"type:text" json:"reason"`

	// Optional links back to the originating order/payment
	OrderRef  string `gorm:"type:varchar(100);index" json:"order_ref,omitempty"`
	PaymentID *uint  `json:"payment_id,omitempty"`

	// Relationships
	Wallet Wallet `gorm:"foreignKey:WalletID" json:"-"`
}

// TableName specifies the table name for WalletTransaction
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
