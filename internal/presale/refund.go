package presale

import (
	"github.com/Wrestler094/launchpad/internal/amount"
)

// Refund 在失败终态下为参与者签发退款，返回退款金额。
// 拉取模式：每个参与者各自触发，互不阻塞。
//
// refunded标记在发起外部转账之前置位且只置位一次，账本层面每次Refund调用
// 只授权一次打款，绝不自动重试——转账失败时记录保持refunded=true并置
// TransferPending，返回可重试的ErrTransferFailed，投递重试走
// RetryRefundDelivery，由此杜绝重试导致的双重支付。
func (p *Presale) Refund(participant string, funds FundTransferor) (amount.Amount, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateFailed:
	case StateSuccess:
		return amount.Amount{}, ErrSaleFinalized
	default:
		return amount.Amount{}, ErrSaleNotClosed
	}

	c, ok := p.ledger.records[participant]
	if !ok || c.Amount.IsZero() {
		return amount.Amount{}, ErrNothingToRefund
	}
	if c.Refunded {
		return amount.Amount{}, ErrAlreadyRefunded
	}

	// 先标记后调用
	c.Refunded = true
	c.TransferPending = false
	if err := funds.TransferETH(participant, c.Amount); err != nil {
		c.TransferPending = true
		return c.Amount, transferError(err)
	}
	return c.Amount, nil
}

// RetryRefundDelivery 重试投递未完成的退款打款。
// 仅针对refunded=true且TransferPending的记录，账本侧授权不会重复发生。
func (p *Presale) RetryRefundDelivery(participant string, funds FundTransferor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateFailed:
	case StateSuccess:
		return ErrSaleFinalized
	default:
		return ErrSaleNotClosed
	}

	c, ok := p.ledger.records[participant]
	if !ok || !c.Refunded || !c.TransferPending {
		return ErrNothingToRefund
	}
	if err := funds.TransferETH(participant, c.Amount); err != nil {
		return transferError(err)
	}
	c.TransferPending = false
	return nil
}
