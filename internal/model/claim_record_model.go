package model

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// ClaimRecordModel 权益铸币记录，成功裁决后每个参与者一条
type ClaimRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PresaleId int64         `json:"presale_id" gorm:"not null;index"`
	Address   string        `json:"address" gorm:"not null"`
	Tokens    amount.Amount `json:"tokens" gorm:"type:numeric(78,0);not null"`
	Status    string        `json:"status" gorm:"default:'pending'"` // pending, success, failed
	TxHash    string        `json:"tx_hash"`
}

// TableName 自定义表名
func (ClaimRecordModel) TableName() string {
	return "claim_record"
}
