package services

import (
	"errors"

	"github.com/learnhub/learnhub-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService owns per-user balances and their append-only ledger. The
// balance check and mutation always happen in one guarded UPDATE so two
// concurrent debits on the same wallet cannot both pass the check.
type WalletService struct {
	db *gorm.DB
}

// NewWalletService creates a new wallet service
func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{db: db}
}

// GetOrCreate returns the user's wallet, creating it with a zero balance on
// first touch. Safe to call concurrently; the unique user index wins ties.
func (s *WalletService) GetOrCreate(userID uint) (*model.Wallet, error) {
	return s.getOrCreate(s.db, userID)
}

func (s *WalletService) getOrCreate(tx *gorm.DB, userID uint) (*model.Wallet, error) {
	wallet := model.Wallet{UserID: userID}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&wallet).Error
	if err != nil {
		return nil, err
	}

	err = tx.Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// TransactionLink ties a ledger row back to the order/payment that caused it.
type TransactionLink struct {
	OrderRef  string
	PaymentID *uint
}

// Credit increases the wallet balance and appends a ledger row.
func (s *WalletService) Credit(userID uint, amount int64, reason string, link TransactionLink) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.CreditTx(tx, userID, amount, reason, link)
	})
}

// CreditTx is Credit running inside the caller's transaction.
func (s *WalletService) CreditTx(tx *gorm.DB, userID uint, amount int64, reason string, link TransactionLink) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	wallet, err := s.getOrCreate(tx, userID)
	if err != nil {
		return err
	}

	err = tx.Model(&model.Wallet{}).
		Where("id = ?", wallet.ID).
		Update("balance", gorm.Expr("balance + ?", amount)).Error
	if err != nil {
		return err
	}

	return tx.Create(&model.WalletTransaction{
		WalletID:  wallet.ID,
		UserID:    userID,
		Type:      model.TransactionTypeCredit,
		Amount:    amount,
		Reason:    reason,
		OrderRef:  link.OrderRef,
		PaymentID: link.PaymentID,
	}).Error
}

// Debit decreases the wallet balance and appends a ledger row. Fails with
// ErrInsufficientBalance when the guarded update matches no row, which is
// also what happens when a concurrent debit got there first.
func (s *WalletService) Debit(userID uint, amount int64, reason string, link TransactionLink) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.DebitTx(tx, userID, amount, reason, link)
	})
}

// DebitTx is Debit running inside the caller's transaction.
func (s *WalletService) DebitTx(tx *gorm.DB, userID uint, amount int64, reason string, link TransactionLink) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	wallet, err := s.getOrCreate(tx, userID)
	if err != nil {
		return err
	}

	res := tx.Model(&model.Wallet{}).
		Where("id = ? AND balance >= ?", wallet.ID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientBalance
	}

	return tx.Create(&model.WalletTransaction{
		WalletID:  wallet.ID,
		UserID:    userID,
		Type:      model.TransactionTypeDebit,
		Amount:    amount,
		Reason:    reason,
		OrderRef:  link.OrderRef,
		PaymentID: link.PaymentID,
	}).Error
}

// Balance returns the user's current balance, zero if no wallet exists yet.
func (s *WalletService) Balance(userID uint) (int64, error) {
	var wallet model.Wallet
	err := s.db.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// Transactions returns the user's ledger entries newest first, paginated.
func (s *WalletService) Transactions(userID uint, page, limit int) ([]model.WalletTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	query := s.db.Model(&model.WalletTransaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transactions []model.WalletTransaction
	err := query.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&transactions).Error
	return transactions, total, err
}
