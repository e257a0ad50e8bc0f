package presale

import (
	"fmt"
	"sync"
	"time"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// State 预售生命周期状态
type State string

const (
	StatePending State = "pending" // 已创建，未开始
	StateActive  State = "active"  // 募集中
	StateClosed  State = "closed"  // 已关闭，等待最终裁决
	StateSuccess State = "success" // 终态：成功，权益可领取
	StateFailed  State = "failed"  // 终态：失败，出资可退款
)

// Terminal 是否为终态
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed
}

// Params 预售参数，创建后不可变
type Params struct {
	Rate        uint64        // 兑换率：每1个最小出资单位兑换的代币单位数
	SoftCap     amount.Amount // 软顶：成功所需的最小募集额
	HardCap     amount.Amount // 硬顶：账本准入的最大募集额
	Deadline    time.Time     // 截止时间
	Beneficiary string        // 受益人地址，成功后接收募集资金，且唯一有权取消
	CapPolicy   CapPolicy     // 硬顶处理策略
}

// Presale 预售聚合。每个实例独立加锁，不同预售之间完全并行，
// 同一预售上的所有变更操作（出资、关闭、裁决、取消、退款）互斥，
// 构成单一可串行化序列。
type Presale struct {
	mu sync.RWMutex

	params        Params
	state         State
	cancelled     bool // 受益人取消，裁决时强制走失败路径
	fundsReleased bool // 募集资金是否已释放给受益人

	ledger *ledger
}

// New 创建新预售，初始状态Pending。
// now为创建时刻，由调用方传入，截止时间必须严格在其之后。
func New(params Params, now time.Time) (*Presale, error) {
	if err := validateParams(params, now); err != nil {
		return nil, err
	}
	return &Presale{
		params: params,
		state:  StatePending,
		ledger: newLedger(),
	}, nil
}

// Restore 从持久化记录重建聚合，跳过截止时间校验
func Restore(params Params, state State, cancelled, fundsReleased bool, contribs []Contribution) (*Presale, error) {
	if params.Rate == 0 || !params.CapPolicy.Valid() {
		return nil, fmt.Errorf("%w: corrupt stored params", ErrInvalidParameters)
	}

	l := newLedger()
	for i := range contribs {
		c := contribs[i]
		if _, err := l.record(c.Address, c.Amount); err != nil {
			return nil, err
		}
		stored := l.records[c.Address]
		stored.Refunded = c.Refunded
		stored.TransferPending = c.TransferPending
		stored.Claimed = c.Claimed
		stored.MintPending = c.MintPending
	}

	if l.totalRaised().Cmp(params.HardCap) > 0 {
		return nil, fmt.Errorf("%w: stored total exceeds hard cap", ErrInvalidParameters)
	}

	return &Presale{
		params:        params,
		state:         state,
		cancelled:     cancelled,
		fundsReleased: fundsReleased,
		ledger:        l,
	}, nil
}

func validateParams(params Params, now time.Time) error {
	if params.Rate == 0 {
		return fmt.Errorf("%w: rate must be positive", ErrInvalidParameters)
	}
	if params.SoftCap.IsZero() {
		return fmt.Errorf("%w: soft cap must be positive", ErrInvalidParameters)
	}
	if params.SoftCap.Cmp(params.HardCap) > 0 {
		return fmt.Errorf("%w: soft cap exceeds hard cap", ErrInvalidParameters)
	}
	if !params.Deadline.After(now) {
		return fmt.Errorf("%w: deadline must be in the future", ErrInvalidParameters)
	}
	if params.Beneficiary == "" {
		return fmt.Errorf("%w: beneficiary required", ErrInvalidParameters)
	}
	if !params.CapPolicy.Valid() {
		return fmt.Errorf("%w: unknown cap policy %q", ErrInvalidParameters, params.CapPolicy)
	}
	// 预先保证最大可能权益 hardCap*rate 可表示，
	// 之后任何单笔权益计算都不会溢出
	if _, err := params.HardCap.MulRate(params.Rate); err != nil {
		return fmt.Errorf("%w: hard cap times rate overflows", ErrInvalidParameters)
	}
	return nil
}

// Activate 由受益人把预售从Pending推进到Active。
// 对已Active的预售是幂等空操作。
func (p *Presale) Activate(caller string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.params.Beneficiary {
		return ErrUnauthorized
	}
	switch p.state {
	case StatePending:
		p.state = StateActive
		return nil
	case StateActive:
		return nil
	case StateClosed:
		return ErrSaleClosed
	default:
		return ErrSaleFinalized
	}
}

// ContributeResult 出资结果
type ContributeResult struct {
	Admitted         amount.Amount // 实际准入金额（Clamped时小于请求金额）
	Clamped          bool          // 是否被截断到硬顶，剩余部分需调用方在账本外退回
	ParticipantTotal amount.Amount // 该参与者的累计出资
	TotalRaised      amount.Amount // 新的募集总额
	Closed           bool          // 本次调用是否触发了关闭转换
}

// Contribute 记录一笔出资。准入检查与账本更新在同一临界区内完成，
// 两笔各自满足硬顶的并发出资不可能合计冲破硬顶。
// 截止时间已过时惰性关闭预售并返回ErrSaleClosed（result.Closed置位，
// 调用方需据此持久化状态转换）。
func (p *Presale) Contribute(participant string, amt amount.Amount, now time.Time) (ContributeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Terminal() {
		return ContributeResult{}, ErrSaleFinalized
	}
	if p.state != StateActive {
		return ContributeResult{}, ErrSaleClosed
	}
	if Expired(p.params.Deadline, now) {
		p.state = StateClosed
		return ContributeResult{Closed: true}, ErrSaleClosed
	}
	if participant == "" || amt.IsZero() {
		return ContributeResult{}, fmt.Errorf("%w: participant and amount required", ErrInvalidParameters)
	}

	admission, err := TryAdmit(p.params.CapPolicy, p.ledger.totalRaised(), amt, p.params.HardCap)
	if err != nil {
		return ContributeResult{}, err
	}

	newTotal, err := p.ledger.record(participant, admission.Amount)
	if err != nil {
		return ContributeResult{}, err
	}

	result := ContributeResult{
		Admitted:    admission.Amount,
		Clamped:     admission.Clamped,
		TotalRaised: newTotal,
	}
	c, _ := p.ledger.get(participant)
	result.ParticipantTotal = c.Amount

	// 恰好填满硬顶时立即关闭
	if newTotal.Cmp(p.params.HardCap) == 0 {
		p.state = StateClosed
		result.Closed = true
	}
	return result, nil
}

// CheckClose 显式检查并执行关闭转换，返回本次调用是否完成了转换。
// 核心内部没有后台定时器，关闭要么在下一次变更调用中惰性发生，要么由这里驱动。
func (p *Presale) CheckClose(now time.Time) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.Terminal() {
		return false, ErrSaleFinalized
	}
	if p.state != StateActive {
		return false, nil
	}
	if Expired(p.params.Deadline, now) || p.ledger.totalRaised().Cmp(p.params.HardCap) == 0 {
		p.state = StateClosed
		return true, nil
	}
	return false, nil
}

// Cancel 受益人取消预售。从Pending/Active进入Closed并标记取消，
// 裁决时按失败路径处理（出资可退款）。
func (p *Presale) Cancel(caller string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if caller != p.params.Beneficiary {
		return ErrUnauthorized
	}
	if p.state.Terminal() {
		return ErrSaleFinalized
	}
	if p.state == StateClosed {
		return ErrSaleClosed
	}
	p.state = StateClosed
	p.cancelled = true
	return nil
}

// Snapshot 预售状态的一致性快照
type Snapshot struct {
	Params           Params
	State            State
	Cancelled        bool
	FundsReleased    bool
	TotalRaised      amount.Amount
	ContributorCount int
}

// Snapshot 返回一致性快照，读与写之间不会出现撕裂
func (p *Presale) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Snapshot{
		Params:           p.params,
		State:            p.state,
		Cancelled:        p.cancelled,
		FundsReleased:    p.fundsReleased,
		TotalRaised:      p.ledger.totalRaised(),
		ContributorCount: len(p.ledger.records),
	}
}

// Contribution 查询参与者出资记录副本
func (p *Presale) Contribution(addr string) (Contribution, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ledger.get(addr)
}

// Contributions 按首次出资顺序返回所有记录副本
func (p *Presale) Contributions() []Contribution {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ledger.contributions()
}

// TotalRaised 当前募集总额
func (p *Presale) TotalRaised() amount.Amount {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.ledger.totalRaised()
}

// Params 预售参数
func (p *Presale) Params() Params {
	return p.params
}

// State 当前状态
func (p *Presale) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}
