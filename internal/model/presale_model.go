package model

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// PresaleModel 预售持久化模型
type PresaleModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 预售参数（创建后不可变）
	TokenAddress string        `json:"token_address" gorm:"not null"`
	Beneficiary  string        `json:"beneficiary" gorm:"not null;index"`
	Rate         uint64        `json:"rate" gorm:"not null"`
	SoftCap      amount.Amount `json:"soft_cap" gorm:"type:numeric(78,0);not null"`
	HardCap      amount.Amount `json:"hard_cap" gorm:"type:numeric(78,0);not null"`
	Deadline     time.Time     `json:"deadline" gorm:"not null"`
	CapPolicy    string        `json:"cap_policy" gorm:"not null;default:'clamp_to_cap'"`

	// 生命周期状态
	Status        presale.State `json:"status" gorm:"default:'pending';index"`
	Cancelled     bool          `json:"cancelled" gorm:"default:false"`
	FundsReleased bool          `json:"funds_released" gorm:"default:false"`
	TotalRaised   amount.Amount `json:"total_raised" gorm:"type:numeric(78,0);not null;default:0"`

	// 展示信息
	LandingPageId string `json:"landing_page_id" gorm:"uniqueIndex"`
}

// TableName 自定义表名
func (PresaleModel) TableName() string {
	return "presale"
}
