package model

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// PayoutRecordModel 受益人放款记录，成功裁决后一条
type PayoutRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PresaleId   int64         `json:"presale_id" gorm:"not null;uniqueIndex"`
	Beneficiary string        `json:"beneficiary" gorm:"not null"`
	Amount      amount.Amount `json:"amount" gorm:"type:numeric(78,0);not null"`
	Status      string        `json:"status" gorm:"default:'pending'"` // pending, success
	TxHash      string        `json:"tx_hash"`
}

// TableName 自定义表名
func (PayoutRecordModel) TableName() string {
	return "payout_record"
}
