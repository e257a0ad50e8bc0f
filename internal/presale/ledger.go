package presale

import (
	"github.com/Wrestler094/launchpad/internal/amount"
)

// Contribution 单个参与者的累计出资记录。
// 同一参与者的多次出资累加到一条记录上，而不是产生多行。
// 记录只会被标记，永远不会删除，保证账本可审计。
type Contribution struct {
	Address string        // 参与者地址
	Amount  amount.Amount // 累计出资金额

	Refunded        bool // 是否已授权退款（仅在失败终态后置位，且只置位一次）
	TransferPending bool // 退款已授权但链上投递未完成
	Claimed         bool // 权益是否已授权铸币（仅在成功终态后置位，且只置位一次）
	MintPending     bool // 铸币已授权但链上投递未完成
}

// Entitlement 计算该出资对应的代币权益：amount * rate。
// 永远按需重新计算，不冗余存储，避免账目漂移。
func (c *Contribution) Entitlement(rate uint64) (amount.Amount, error) {
	return c.Amount.MulRate(rate)
}

// ledger 出资账本：按参与者地址索引的权威追加记录。
// 非导出类型，只能通过Presale聚合在持锁状态下访问，
// 记录更新与总额更新在同一临界区内完成，并发读者永远不会看到两者不一致。
type ledger struct {
	records map[string]*Contribution
	order   []string // 首次出资顺序，保证遍历确定性
	total   amount.Amount
}

func newLedger() *ledger {
	return &ledger{records: make(map[string]*Contribution)}
}

// record 记录一笔已被准入的出资，返回新的募集总额。
// 只允许在TryAdmit通过之后、同一临界区内调用。
func (l *ledger) record(addr string, admitted amount.Amount) (amount.Amount, error) {
	newTotal, err := l.total.Add(admitted)
	if err != nil {
		return amount.Amount{}, err
	}

	c, ok := l.records[addr]
	if !ok {
		c = &Contribution{Address: addr}
		l.records[addr] = c
		l.order = append(l.order, addr)
	}

	newAmount, err := c.Amount.Add(admitted)
	if err != nil {
		return amount.Amount{}, err
	}

	// 两个更新作为一步完成，调用方持有聚合锁
	c.Amount = newAmount
	l.total = newTotal
	return newTotal, nil
}

// get 查询参与者记录副本
func (l *ledger) get(addr string) (Contribution, bool) {
	c, ok := l.records[addr]
	if !ok {
		return Contribution{}, false
	}
	return *c, true
}

// totalRaised 当前募集总额
func (l *ledger) totalRaised() amount.Amount {
	return l.total
}

// contributions 按首次出资顺序返回所有记录的副本
func (l *ledger) contributions() []Contribution {
	out := make([]Contribution, 0, len(l.order))
	for _, addr := range l.order {
		out = append(out, *l.records[addr])
	}
	return out
}
