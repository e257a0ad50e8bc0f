package presale

import (
	"github.com/Wrestler094/launchpad/internal/amount"
)

// CapPolicy 硬顶处理策略。每个预售实例在创建时固定一种策略，
// 因为它改变了边界上的可观测行为。
type CapPolicy string

const (
	// CapPolicyStrictReject 任何会冲破硬顶的出资整笔拒绝
	CapPolicyStrictReject CapPolicy = "strict_reject"
	// CapPolicyClampToCap 只接纳恰好填满硬顶的部分金额，剩余部分由调用方在账本外退回
	CapPolicyClampToCap CapPolicy = "clamp_to_cap"
)

// Valid 策略是否合法
func (p CapPolicy) Valid() bool {
	return p == CapPolicyStrictReject || p == CapPolicyClampToCap
}

// Admission 准入结果
type Admission struct {
	Amount  amount.Amount // 实际准入金额
	Clamped bool          // 是否被截断到硬顶
}

// TryAdmit 校验一笔出资能否进入账本。
// newTotal = current + incoming 做溢出检查；超过硬顶时按策略拒绝或截断。
// 检查与随后的账本更新必须在同一个临界区内执行（见Presale.Contribute），
// 否则两笔各自满足硬顶的并发出资可能合计冲破硬顶。
func TryAdmit(policy CapPolicy, current, incoming, hardCap amount.Amount) (Admission, error) {
	newTotal, err := current.Add(incoming)
	if err != nil {
		return Admission{}, err
	}

	if newTotal.Cmp(hardCap) <= 0 {
		return Admission{Amount: incoming}, nil
	}

	if policy == CapPolicyStrictReject {
		return Admission{}, ErrExceedsHardCap
	}

	// ClampToCap：只接纳剩余额度
	remaining, err := hardCap.Sub(current)
	if err != nil || remaining.IsZero() {
		// current已达硬顶，没有剩余额度可截断
		return Admission{}, ErrExceedsHardCap
	}
	return Admission{Amount: remaining, Clamped: true}, nil
}
