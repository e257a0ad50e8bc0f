package logic

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/model"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// ChainClient 链客户端接口，由ethereum.Client和ethereum.MockClient实现
type ChainClient interface {
	MintOrTransfer(presaleId int64, token, participant string, tokens amount.Amount) (string, error)
	TransferETH(to string, amt amount.Amount) (string, error)
}

// PresaleLogic 预售业务逻辑。维护每个预售的内存聚合，
// 所有变更操作在该预售的临界区内执行并在同一gorm事务中落库，
// 聚合的串行化保证因此跨越持久化边界依然成立。
// 不同预售之间完全并行，没有进程级全局状态。
type PresaleLogic struct {
	db            *gorm.DB
	chain         ChainClient
	defaultPolicy presale.CapPolicy

	mu      sync.Mutex
	engines map[int64]*engineEntry
}

// engineEntry 单个预售的聚合及其操作锁
type engineEntry struct {
	opMu   sync.Mutex
	engine *presale.Presale
}

// NewPresaleLogic 创建预售业务逻辑
func NewPresaleLogic(db *gorm.DB, chain ChainClient, defaultPolicy presale.CapPolicy) *PresaleLogic {
	if !defaultPolicy.Valid() {
		defaultPolicy = presale.CapPolicyClampToCap
	}
	return &PresaleLogic{
		db:            db,
		chain:         chain,
		defaultPolicy: defaultPolicy,
		engines:       make(map[int64]*engineEntry),
	}
}

// CreatePresaleParams 创建预售参数
type CreatePresaleParams struct {
	TokenAddress string
	Beneficiary  string
	Rate         uint64
	SoftCap      amount.Amount
	HardCap      amount.Amount
	Deadline     time.Time
	CapPolicy    string // 为空时使用配置的默认策略
}

// CreatePresale 创建预售，初始状态Pending
func (l *PresaleLogic) CreatePresale(p CreatePresaleParams, now time.Time) (*model.PresaleModel, error) {
	policy := presale.CapPolicy(p.CapPolicy)
	if p.CapPolicy == "" {
		policy = l.defaultPolicy
	}
	if p.TokenAddress == "" {
		return nil, fmt.Errorf("%w: token address required", presale.ErrInvalidParameters)
	}

	params := presale.Params{
		Rate:        p.Rate,
		SoftCap:     p.SoftCap,
		HardCap:     p.HardCap,
		Deadline:    p.Deadline,
		Beneficiary: p.Beneficiary,
		CapPolicy:   policy,
	}
	eng, err := presale.New(params, now)
	if err != nil {
		return nil, err
	}

	m := &model.PresaleModel{
		TokenAddress:  p.TokenAddress,
		Beneficiary:   p.Beneficiary,
		Rate:          p.Rate,
		SoftCap:       p.SoftCap,
		HardCap:       p.HardCap,
		Deadline:      p.Deadline,
		CapPolicy:     string(policy),
		Status:        presale.StatePending,
		TotalRaised:   amount.Zero(),
		LandingPageId: uuid.NewString(),
	}
	if err := l.db.Create(m).Error; err != nil {
		return nil, fmt.Errorf("创建预售失败: %w", err)
	}

	l.mu.Lock()
	l.engines[m.Id] = &engineEntry{engine: eng}
	l.mu.Unlock()

	logger.Info("Created presale %d (beneficiary=%s, landing=%s)", m.Id, p.Beneficiary, m.LandingPageId)
	return m, nil
}

// entry 获取或重建某预售的聚合
func (l *PresaleLogic) entry(id int64) (*engineEntry, error) {
	l.mu.Lock()
	if e, ok := l.engines[id]; ok {
		l.mu.Unlock()
		return e, nil
	}
	l.mu.Unlock()

	// 从数据库重建
	var m model.PresaleModel
	if err := l.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresaleNotFound
		}
		return nil, fmt.Errorf("获取预售失败: %w", err)
	}

	var rows []model.ContributionModel
	if err := l.db.Where("presale_id = ?", id).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("获取出资记录失败: %w", err)
	}

	contribs := make([]presale.Contribution, 0, len(rows))
	for _, r := range rows {
		contribs = append(contribs, presale.Contribution{
			Address:         r.Address,
			Amount:          r.Amount,
			Refunded:        r.Refunded,
			TransferPending: r.TransferPending,
			Claimed:         r.Claimed,
			MintPending:     r.MintPending,
		})
	}

	eng, err := presale.Restore(presale.Params{
		Rate:        m.Rate,
		SoftCap:     m.SoftCap,
		HardCap:     m.HardCap,
		Deadline:    m.Deadline,
		Beneficiary: m.Beneficiary,
		CapPolicy:   presale.CapPolicy(m.CapPolicy),
	}, m.Status, m.Cancelled, m.FundsReleased, contribs)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.engines[id]; ok {
		// 并发重建时保留先到者
		return e, nil
	}
	e := &engineEntry{engine: eng}
	l.engines[id] = e
	return e, nil
}

// withPresale 在某预售的操作临界区内执行fn。
// 聚合变更与落库被同一把锁覆盖，并发写者不会把过期状态写回数据库。
func (l *PresaleLogic) withPresale(id int64, fn func(eng *presale.Presale) error) error {
	e, err := l.entry(id)
	if err != nil {
		return err
	}
	e.opMu.Lock()
	defer e.opMu.Unlock()
	return fn(e.engine)
}

// saveState 把聚合快照写回presale表。在withPresale临界区内调用。
func (l *PresaleLogic) saveState(tx *gorm.DB, id int64, eng *presale.Presale) error {
	snap := eng.Snapshot()
	return tx.Model(&model.PresaleModel{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":         snap.State,
		"cancelled":      snap.Cancelled,
		"funds_released": snap.FundsReleased,
		"total_raised":   snap.TotalRaised,
	}).Error
}

// saveContribution 把参与者记录写回contribution表（按(presale,address)更新或插入）
func (l *PresaleLogic) saveContribution(tx *gorm.DB, id int64, c presale.Contribution) error {
	res := tx.Model(&model.ContributionModel{}).
		Where("presale_id = ? AND address = ?", id, c.Address).
		Updates(map[string]interface{}{
			"amount":           c.Amount,
			"refunded":         c.Refunded,
			"transfer_pending": c.TransferPending,
			"claimed":          c.Claimed,
			"mint_pending":     c.MintPending,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return tx.Create(&model.ContributionModel{
			PresaleId:       id,
			Address:         c.Address,
			Amount:          c.Amount,
			Refunded:        c.Refunded,
			TransferPending: c.TransferPending,
			Claimed:         c.Claimed,
			MintPending:     c.MintPending,
		}).Error
	}
	return nil
}

// Activate 受益人激活预售
func (l *PresaleLogic) Activate(id int64, caller string) error {
	return l.withPresale(id, func(eng *presale.Presale) error {
		if err := eng.Activate(caller); err != nil {
			return err
		}
		return l.saveState(l.db, id, eng)
	})
}

// ContributeResult 出资结果（含权益预览）
type ContributeResult struct {
	Admitted         amount.Amount `json:"admitted"`
	Clamped          bool          `json:"clamped"`
	ParticipantTotal amount.Amount `json:"participant_total"`
	TotalRaised      amount.Amount `json:"total_raised"`
	Entitlement      amount.Amount `json:"entitlement"`
	Closed           bool          `json:"closed"`
}

// Contribute 记录一笔出资
func (l *PresaleLogic) Contribute(id int64, participant string, amt amount.Amount, now time.Time) (ContributeResult, error) {
	var out ContributeResult
	err := l.withPresale(id, func(eng *presale.Presale) error {
		res, err := eng.Contribute(participant, amt, now)
		if err != nil {
			// 惰性关闭也要落库
			if res.Closed {
				if dbErr := l.saveState(l.db, id, eng); dbErr != nil {
					logger.Error("Failed to persist lazy close of presale %d: %v", id, dbErr)
				}
			}
			return err
		}

		entitlement, entErr := res.ParticipantTotal.MulRate(eng.Params().Rate)
		if entErr != nil {
			return entErr
		}
		out = ContributeResult{
			Admitted:         res.Admitted,
			Clamped:          res.Clamped,
			ParticipantTotal: res.ParticipantTotal,
			TotalRaised:      res.TotalRaised,
			Entitlement:      entitlement,
			Closed:           res.Closed,
		}

		c, _ := eng.Contribution(participant)
		return l.db.Transaction(func(tx *gorm.DB) error {
			if err := l.saveState(tx, id, eng); err != nil {
				return err
			}
			return l.saveContribution(tx, id, c)
		})
	})
	return out, err
}

// CheckClose 检查并执行关闭转换
func (l *PresaleLogic) CheckClose(id int64, now time.Time) (bool, error) {
	var closed bool
	err := l.withPresale(id, func(eng *presale.Presale) error {
		var err error
		closed, err = eng.CheckClose(now)
		if err != nil {
			return err
		}
		if closed {
			return l.saveState(l.db, id, eng)
		}
		return nil
	})
	return closed, err
}

// Cancel 受益人取消预售
func (l *PresaleLogic) Cancel(id int64, caller string) error {
	return l.withPresale(id, func(eng *presale.Presale) error {
		if err := eng.Cancel(caller); err != nil {
			return err
		}
		return l.saveState(l.db, id, eng)
	})
}
