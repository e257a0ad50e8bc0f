package model

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// RefundRecordModel 退款签发记录，每次成功的refund授权一条
type RefundRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PresaleId int64         `json:"presale_id" gorm:"not null;index"`
	Address   string        `json:"address" gorm:"not null"`
	Amount    amount.Amount `json:"amount" gorm:"type:numeric(78,0);not null"`
	Status    string        `json:"status" gorm:"default:'pending'"` // pending, success, failed
	TxHash    string        `json:"tx_hash"`
	Reason    string        `json:"reason" gorm:"type:text"`
}

// RefundStatus 退款投递状态
type RefundStatus string

const (
	RefundStatusPending RefundStatus = "pending" // 已授权，投递未完成
	RefundStatusSuccess RefundStatus = "success" // 投递完成
	RefundStatusFailed  RefundStatus = "failed"  // 投递失败，等待重试
)

// TableName 自定义表名
func (RefundRecordModel) TableName() string {
	return "refund_record"
}
