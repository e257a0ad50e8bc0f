package presale

import (
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// TokenLedger 外部代币账本能力：为参与者铸造/转移预售代币。
// 要求对(participant, presale)幂等，可安全重试。
type TokenLedger interface {
	MintOrTransfer(participant string, tokens amount.Amount) error
}

// FundTransferor 外部价值转移能力：ETH打款（受益人放款、参与者退款投递）
type FundTransferor interface {
	TransferETH(to string, amt amount.Amount) error
}

// Outcome 裁决结果
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// FinalizeResult 裁决结果明细
type FinalizeResult struct {
	Outcome     Outcome
	TotalRaised amount.Amount

	// MintFailures 铸币调用失败的参与者地址。这些参与者已标记claimed，
	// 仅投递未完成，可通过RetryMints重试而不会重复铸币。
	MintFailures []string
	// PayoutPending 受益人放款未完成，可通过ReleaseFunds重试
	PayoutPending bool
}

// Finalize 把Closed的预售裁决为唯一终态。只会成功执行一次，
// 终态后的再次调用返回ErrAlreadyFinalized，不会重复触发任何外部转账。
//
// 成功路径（totalRaised >= softCap且未取消）：先置终态，再逐个参与者
// 标记claimed并调用外部代币账本（先标记后调用，外部协作方即使在转账中
// 重入核心也看到已落定的状态）；所有铸币尝试完毕后才向受益人放款。
// 失败路径：只置终态，退款采用拉取模式，由参与者各自触发，
// 单笔失败的转账不会阻塞其他人的退款。
//
// 对仍处于Active但已过期或已满硬顶的预售，先惰性关闭再裁决。
func (p *Presale) Finalize(now time.Time, tokens TokenLedger, funds FundTransferor) (FinalizeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateSuccess, StateFailed:
		return FinalizeResult{}, ErrAlreadyFinalized
	case StatePending:
		return FinalizeResult{}, ErrSaleNotClosed
	case StateActive:
		if !Expired(p.params.Deadline, now) && p.ledger.totalRaised().Cmp(p.params.HardCap) != 0 {
			return FinalizeResult{}, ErrSaleNotClosed
		}
		p.state = StateClosed
	}

	total := p.ledger.totalRaised()
	result := FinalizeResult{TotalRaised: total}

	// 失败路径：边界情形totalRaised == softCap属于成功
	if p.cancelled || total.Cmp(p.params.SoftCap) < 0 {
		p.state = StateFailed
		result.Outcome = OutcomeFailure
		return result, nil
	}

	// 成功路径：先置终态再执行副作用
	p.state = StateSuccess
	result.Outcome = OutcomeSuccess
	result.MintFailures = p.mintAllLocked(tokens)
	result.PayoutPending = !p.releaseFundsLocked(funds)
	return result, nil
}

// mintAllLocked 为所有未claimed的参与者执行铸币，返回投递失败的地址。
// 调用方持有聚合锁。
func (p *Presale) mintAllLocked(tokens TokenLedger) []string {
	var failures []string
	for _, addr := range p.ledger.order {
		c := p.ledger.records[addr]
		if c.Claimed {
			continue
		}
		entitlement, err := c.Entitlement(p.params.Rate)
		if err != nil {
			// 构造时已验证hardCap*rate可表示，单笔权益不可能溢出
			failures = append(failures, addr)
			continue
		}
		// 先标记后调用
		c.Claimed = true
		c.MintPending = false
		if err := tokens.MintOrTransfer(addr, entitlement); err != nil {
			c.MintPending = true
			failures = append(failures, addr)
		}
	}
	return failures
}

// releaseFundsLocked 向受益人放款，返回是否完成。调用方持有聚合锁。
func (p *Presale) releaseFundsLocked(funds FundTransferor) bool {
	if p.fundsReleased {
		return true
	}
	total := p.ledger.totalRaised()
	if total.IsZero() {
		p.fundsReleased = true
		return true
	}
	if err := funds.TransferETH(p.params.Beneficiary, total); err != nil {
		return false
	}
	p.fundsReleased = true
	return true
}

// RetryMints 重试成功终态下投递未完成的铸币。
// 已claimed且投递完成的参与者不会被重复铸币。
func (p *Presale) RetryMints(tokens TokenLedger) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateSuccess:
	case StateFailed:
		return nil, ErrSaleFinalized
	default:
		return nil, ErrSaleNotClosed
	}

	var failures []string
	for _, addr := range p.ledger.order {
		c := p.ledger.records[addr]
		if !c.Claimed || !c.MintPending {
			continue
		}
		entitlement, err := c.Entitlement(p.params.Rate)
		if err != nil {
			failures = append(failures, addr)
			continue
		}
		if err := tokens.MintOrTransfer(addr, entitlement); err != nil {
			failures = append(failures, addr)
			continue
		}
		c.MintPending = false
	}
	return failures, nil
}

// ReleaseFunds 重试成功终态下未完成的受益人放款。已放款时为幂等空操作。
func (p *Presale) ReleaseFunds(funds FundTransferor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateSuccess:
	case StateFailed:
		return ErrSaleFinalized
	default:
		return ErrSaleNotClosed
	}

	if p.fundsReleased {
		return nil
	}
	total := p.ledger.totalRaised()
	if err := funds.TransferETH(p.params.Beneficiary, total); err != nil {
		return transferError(err)
	}
	p.fundsReleased = true
	return nil
}
