package logic

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/logger"
	"github.com/Wrestler094/launchpad/internal/model"
	"github.com/Wrestler094/launchpad/internal/presale"
)

// chainTokenLedger 把ChainClient适配为核心的TokenLedger，并记录交易哈希
type chainTokenLedger struct {
	chain     ChainClient
	presaleId int64
	token     string
	txHashes  map[string]string
}

func (a *chainTokenLedger) MintOrTransfer(participant string, tokens amount.Amount) error {
	hash, err := a.chain.MintOrTransfer(a.presaleId, a.token, participant, tokens)
	if err != nil {
		return err
	}
	a.txHashes[participant] = hash
	return nil
}

// chainFunds 把ChainClient适配为核心的FundTransferor
type chainFunds struct {
	chain    ChainClient
	txHashes map[string]string
}

func (a *chainFunds) TransferETH(to string, amt amount.Amount) error {
	hash, err := a.chain.TransferETH(to, amt)
	if err != nil {
		return err
	}
	a.txHashes[to] = hash
	return nil
}

// Finalize 裁决预售。成功路径铸币并放款，失败路径开放退款。
func (l *PresaleLogic) Finalize(id int64, now time.Time) (presale.FinalizeResult, error) {
	var m model.PresaleModel
	if err := l.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return presale.FinalizeResult{}, ErrPresaleNotFound
		}
		return presale.FinalizeResult{}, err
	}

	tokens := &chainTokenLedger{chain: l.chain, presaleId: id, token: m.TokenAddress, txHashes: map[string]string{}}
	funds := &chainFunds{chain: l.chain, txHashes: map[string]string{}}

	var out presale.FinalizeResult
	err := l.withPresale(id, func(eng *presale.Presale) error {
		res, err := eng.Finalize(now, tokens, funds)
		if err != nil {
			return err
		}
		out = res

		return l.db.Transaction(func(tx *gorm.DB) error {
			if err := l.saveState(tx, id, eng); err != nil {
				return err
			}
			if res.Outcome == presale.OutcomeFailure {
				return nil
			}
			rate := eng.Params().Rate
			for _, c := range eng.Contributions() {
				if err := l.saveContribution(tx, id, c); err != nil {
					return err
				}
				entitlement, err := c.Entitlement(rate)
				if err != nil {
					return err
				}
				status := "success"
				if c.MintPending {
					status = "failed"
				}
				if err := tx.Create(&model.ClaimRecordModel{
					PresaleId: id,
					Address:   c.Address,
					Tokens:    entitlement,
					Status:    status,
					TxHash:    tokens.txHashes[c.Address],
				}).Error; err != nil {
					return err
				}
			}

			snap := eng.Snapshot()
			payoutStatus := "success"
			if !snap.FundsReleased {
				payoutStatus = "pending"
			}
			return tx.Create(&model.PayoutRecordModel{
				PresaleId:   id,
				Beneficiary: snap.Params.Beneficiary,
				Amount:      snap.TotalRaised,
				Status:      payoutStatus,
				TxHash:      funds.txHashes[snap.Params.Beneficiary],
			}).Error
		})
	})
	if err != nil {
		return presale.FinalizeResult{}, err
	}

	logger.Info("Finalized presale %d: outcome=%s raised=%s mintFailures=%d payoutPending=%v",
		id, out.Outcome, out.TotalRaised.String(), len(out.MintFailures), out.PayoutPending)
	return out, nil
}

// Refund 为参与者签发退款。投递失败时账本侧授权已落定，
// 返回可重试错误，投递由退款补发任务兜底。
func (l *PresaleLogic) Refund(id int64, participant string) (amount.Amount, error) {
	funds := &chainFunds{chain: l.chain, txHashes: map[string]string{}}

	var refunded amount.Amount
	var opErr error
	err := l.withPresale(id, func(eng *presale.Presale) error {
		amt, err := eng.Refund(participant, funds)
		if err != nil && !presale.Retryable(err) {
			return err
		}
		refunded = amt
		opErr = err

		c, _ := eng.Contribution(participant)
		return l.db.Transaction(func(tx *gorm.DB) error {
			if err := l.saveContribution(tx, id, c); err != nil {
				return err
			}
			record := &model.RefundRecordModel{
				PresaleId: id,
				Address:   participant,
				Amount:    amt,
				Status:    string(model.RefundStatusSuccess),
				TxHash:    funds.txHashes[participant],
			}
			if c.TransferPending {
				record.Status = string(model.RefundStatusFailed)
				record.Reason = opErr.Error()
			}
			return tx.Create(record).Error
		})
	})
	if err != nil {
		return amount.Amount{}, err
	}
	return refunded, opErr
}

// RetryRefundDeliveries 补投某预售下所有投递未完成的退款，返回补投成功数
func (l *PresaleLogic) RetryRefundDeliveries(id int64) (int, error) {
	funds := &chainFunds{chain: l.chain, txHashes: map[string]string{}}

	delivered := 0
	err := l.withPresale(id, func(eng *presale.Presale) error {
		for _, c := range eng.Contributions() {
			if !c.Refunded || !c.TransferPending {
				continue
			}
			if err := eng.RetryRefundDelivery(c.Address, funds); err != nil {
				logger.Warn("Refund delivery retry failed for presale %d address %s: %v", id, c.Address, err)
				continue
			}
			delivered++

			updated, _ := eng.Contribution(c.Address)
			if err := l.db.Transaction(func(tx *gorm.DB) error {
				if err := l.saveContribution(tx, id, updated); err != nil {
					return err
				}
				return tx.Model(&model.RefundRecordModel{}).
					Where("presale_id = ? AND address = ?", id, c.Address).
					Updates(map[string]interface{}{
						"status":  string(model.RefundStatusSuccess),
						"tx_hash": funds.txHashes[c.Address],
					}).Error
			}); err != nil {
				return err
			}
		}
		return nil
	})
	return delivered, err
}

// RetryMints 补投成功终态下投递未完成的铸币，返回仍失败的地址
func (l *PresaleLogic) RetryMints(id int64) ([]string, error) {
	var m model.PresaleModel
	if err := l.db.First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPresaleNotFound
		}
		return nil, err
	}
	tokens := &chainTokenLedger{chain: l.chain, presaleId: id, token: m.TokenAddress, txHashes: map[string]string{}}

	var failures []string
	err := l.withPresale(id, func(eng *presale.Presale) error {
		var err error
		failures, err = eng.RetryMints(tokens)
		if err != nil {
			return err
		}

		return l.db.Transaction(func(tx *gorm.DB) error {
			for addr, hash := range tokens.txHashes {
				c, ok := eng.Contribution(addr)
				if !ok {
					continue
				}
				if err := l.saveContribution(tx, id, c); err != nil {
					return err
				}
				if err := tx.Model(&model.ClaimRecordModel{}).
					Where("presale_id = ? AND address = ?", id, addr).
					Updates(map[string]interface{}{
						"status":  "success",
						"tx_hash": hash,
					}).Error; err != nil {
					return err
				}
			}
			return nil
		})
	})
	return failures, err
}

// ReleasePayout 补投未完成的受益人放款
func (l *PresaleLogic) ReleasePayout(id int64) error {
	funds := &chainFunds{chain: l.chain, txHashes: map[string]string{}}

	return l.withPresale(id, func(eng *presale.Presale) error {
		if err := eng.ReleaseFunds(funds); err != nil {
			return err
		}
		snap := eng.Snapshot()
		if len(funds.txHashes) == 0 {
			// 此前已放款，幂等空操作
			return nil
		}
		return l.db.Transaction(func(tx *gorm.DB) error {
			if err := l.saveState(tx, id, eng); err != nil {
				return err
			}
			return tx.Model(&model.PayoutRecordModel{}).
				Where("presale_id = ?", id).
				Updates(map[string]interface{}{
					"status":  "success",
					"tx_hash": funds.txHashes[snap.Params.Beneficiary],
				}).Error
		})
	})
}
