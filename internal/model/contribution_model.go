package model

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// ContributionModel 出资记录。每个(预售,参与者)一条，重复出资累加金额。
// 记录只会被标记refunded/claimed，永远不会删除。
type ContributionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PresaleId int64         `json:"presale_id" gorm:"not null;uniqueIndex:idx_presale_participant"`
	Address   string        `json:"address" gorm:"not null;uniqueIndex:idx_presale_participant"`
	Amount    amount.Amount `json:"amount" gorm:"type:numeric(78,0);not null"`

	Refunded        bool `json:"refunded" gorm:"default:false"`
	TransferPending bool `json:"transfer_pending" gorm:"default:false"`
	Claimed         bool `json:"claimed" gorm:"default:false"`
	MintPending     bool `json:"mint_pending" gorm:"default:false"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}
