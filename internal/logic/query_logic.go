package logic

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/model"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// 只读投影，供展示层（落地页、看板）使用，没有副作用。

// GetPresales 获取预售列表
func (l *PresaleLogic) GetPresales(page, pageSize int) ([]model.PresaleModel, int64, error) {
	var presales []model.PresaleModel
	var total int64

	if err := l.db.Model(&model.PresaleModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取预售总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&presales).Error; err != nil {
		return nil, 0, fmt.Errorf("获取预售列表失败: %w", err)
	}

	return presales, total, nil
}

// GetPresale 获取预售详情
func (l *PresaleLogic) GetPresale(id int64) (*model.PresaleModel, error) {
	var m model.PresaleModel
	if err := l.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresaleNotFound
		}
		return nil, fmt.Errorf("获取预售详情失败: %w", err)
	}
	return &m, nil
}

// GetPresaleByLandingPage 按落地页ID获取预售（落地页展示入口）
func (l *PresaleLogic) GetPresaleByLandingPage(landingId string) (*model.PresaleModel, error) {
	var m model.PresaleModel
	if err := l.db.Where("landing_page_id = ?", landingId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresaleNotFound
		}
		return nil, fmt.Errorf("获取预售详情失败: %w", err)
	}
	return &m, nil
}

// GetContributions 获取预售出资记录
func (l *PresaleLogic) GetContributions(id int64, page, pageSize int) ([]model.ContributionModel, int64, error) {
	var contributions []model.ContributionModel
	var total int64

	if err := l.db.Model(&model.ContributionModel{}).Where("presale_id = ?", id).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("presale_id = ?", id).
		Order("created_at ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&contributions).Error; err != nil {
		return nil, 0, err
	}

	return contributions, total, nil
}

// ContributionView 参与者出资视图，权益按需计算不冗余存储
type ContributionView struct {
	Address         string        `json:"address"`
	Amount          amount.Amount `json:"amount"`
	Entitlement     amount.Amount `json:"entitlement"`
	Refunded        bool          `json:"refunded"`
	TransferPending bool          `json:"transfer_pending"`
	Claimed         bool          `json:"claimed"`
	MintPending     bool          `json:"mint_pending"`
}

// GetContribution 获取某参与者的出资视图
func (l *PresaleLogic) GetContribution(id int64, address string) (*ContributionView, error) {
	e, err := l.entry(id)
	if err != nil {
		return nil, err
	}

	c, ok := e.engine.Contribution(address)
	if !ok {
		return nil, ErrContributionNotFound
	}
	entitlement, err := c.Entitlement(e.engine.Params().Rate)
	if err != nil {
		return nil, err
	}
	return &ContributionView{
		Address:         c.Address,
		Amount:          c.Amount,
		Entitlement:     entitlement,
		Refunded:        c.Refunded,
		TransferPending: c.TransferPending,
		Claimed:         c.Claimed,
		MintPending:     c.MintPending,
	}, nil
}

// GetPresaleStats 获取预售统计信息
func (l *PresaleLogic) GetPresaleStats(id int64, now time.Time) (map[string]interface{}, error) {
	m, err := l.GetPresale(id)
	if err != nil {
		return nil, err
	}

	var contributorCount int64
	if err := l.db.Model(&model.ContributionModel{}).Where("presale_id = ?", id).Count(&contributorCount).Error; err != nil {
		return nil, fmt.Errorf("获取参与者数量失败: %w", err)
	}

	// 完成度以基点表示，避免浮点
	completionBps := int64(0)
	if !m.HardCap.IsZero() {
		bps := new(big.Int).Mul(m.TotalRaised.BigInt(), big.NewInt(10000))
		completionBps = new(big.Int).Div(bps, m.HardCap.BigInt()).Int64()
	}

	remaining := time.Duration(0)
	if m.Status == presale.StateActive && now.Before(m.Deadline) {
		remaining = m.Deadline.Sub(now)
	}

	return map[string]interface{}{
		"presale_id":        m.Id,
		"status":            m.Status,
		"total_raised":      m.TotalRaised,
		"soft_cap":          m.SoftCap,
		"hard_cap":          m.HardCap,
		"rate":              m.Rate,
		"completion_bps":    completionBps,
		"contributor_count": contributorCount,
		"deadline":          m.Deadline,
		"remaining_time":    remaining.String(),
		"soft_cap_reached":  m.TotalRaised.Cmp(m.SoftCap) >= 0,
	}, nil
}

// GetRefundRecords 获取预售退款记录
func (l *PresaleLogic) GetRefundRecords(id int64, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var refunds []model.RefundRecordModel
	var total int64

	if err := l.db.Model(&model.RefundRecordModel{}).Where("presale_id = ?", id).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款记录总数失败: %w", err)
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("presale_id = ?", id).
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&refunds).Error; err != nil {
		return nil, 0, fmt.Errorf("获取退款记录失败: %w", err)
	}

	return refunds, total, nil
}

// ListPresaleIdsByStatus 按状态列出预售ID，供后台任务扫描
func (l *PresaleLogic) ListPresaleIdsByStatus(states ...presale.State) ([]int64, error) {
	var ids []int64
	if err := l.db.Model(&model.PresaleModel{}).
		Where("status IN ?", states).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPresaleIdsWithPendingRefunds 列出仍有退款投递未完成的预售ID
func (l *PresaleLogic) ListPresaleIdsWithPendingRefunds() ([]int64, error) {
	var ids []int64
	if err := l.db.Model(&model.ContributionModel{}).
		Where("refunded = ? AND transfer_pending = ?", true, true).
		Distinct("presale_id").
		Pluck("presale_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPresaleIdsWithPendingMints 列出仍有铸币投递未完成的预售ID
func (l *PresaleLogic) ListPresaleIdsWithPendingMints() ([]int64, error) {
	var ids []int64
	if err := l.db.Model(&model.ContributionModel{}).
		Where("claimed = ? AND mint_pending = ?", true, true).
		Distinct("presale_id").
		Pluck("presale_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListPresaleIdsWithPendingPayout 列出放款未完成的成功预售ID
func (l *PresaleLogic) ListPresaleIdsWithPendingPayout() ([]int64, error) {
	var ids []int64
	if err := l.db.Model(&model.PresaleModel{}).
		Where("status = ? AND funds_released = ?", presale.StateSuccess, false).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
