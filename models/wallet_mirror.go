// models/wallet_mirror.go
package models

import (
	"time"
)

// WalletMirror mirrors account balances from the external wallet service.
// Table name: wallet_mirror. The worker upserts by AccountID; the engine
// never writes this table and never trusts it for transfers — it exists so
// read endpoints and the escrow audit don't round-trip to the wallet service.
type WalletMirror struct {
	ID                 string    `gorm:"primaryKey;type:uuid;not null" json:"id"`
	AccountID          string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"account_id"`
	Balance            int64     `gorm:"not null" json:"balance"`
	IsTreasury         bool      `gorm:"not null" json:"is_treasury"`
	IsActive           bool      `gorm:"not null" json:"is_active"`
	LastBalanceCheckAt time.Time `gorm:"not null" json:"last_balance_check_at"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`
}

func (WalletMirror) TableName() string { return "wallet_mirror" }
