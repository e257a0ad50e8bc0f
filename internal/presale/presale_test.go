package presale

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wrestler094/launchpad/internal/amount"
)

var (
	t0       = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	deadline = t0.Add(24 * time.Hour)
)

const beneficiary = "0xbeneficiary"

func testParams(policy CapPolicy) Params {
	return Params{
		Rate:        100,
		SoftCap:     amount.FromUint64(10),
		HardCap:     amount.FromUint64(100),
		Deadline:    deadline,
		Beneficiary: beneficiary,
		CapPolicy:   policy,
	}
}

func newActive(t *testing.T, policy CapPolicy) *Presale {
	t.Helper()
	p, err := New(testParams(policy), t0)
	require.NoError(t, err)
	require.NoError(t, p.Activate(beneficiary))
	return p
}

// mockTokenLedger 记录铸币调用的假代币账本
type mockTokenLedger struct {
	mu      sync.Mutex
	calls   map[string]int
	amounts map[string]string
	failFor map[string]bool
}

func newMockTokenLedger() *mockTokenLedger {
	return &mockTokenLedger{
		calls:   make(map[string]int),
		amounts: make(map[string]string),
		failFor: make(map[string]bool),
	}
}

func (m *mockTokenLedger) MintOrTransfer(participant string, tokens amount.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[participant]++
	if m.failFor[participant] {
		return assert.AnError
	}
	m.amounts[participant] = tokens.String()
	return nil
}

// mockFunds 记录打款调用的假转账器
type mockFunds struct {
	mu        sync.Mutex
	transfers map[string][]string
	failFor   map[string]bool
}

func newMockFunds() *mockFunds {
	return &mockFunds{
		transfers: make(map[string][]string),
		failFor:   make(map[string]bool),
	}
}

func (m *mockFunds) TransferETH(to string, amt amount.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[to] {
		return assert.AnError
	}
	m.transfers[to] = append(m.transfers[to], amt.String())
	return nil
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero rate", func(p *Params) { p.Rate = 0 }},
		{"zero soft cap", func(p *Params) { p.SoftCap = amount.Zero() }},
		{"soft cap above hard cap", func(p *Params) { p.SoftCap = amount.FromUint64(200) }},
		{"deadline in the past", func(p *Params) { p.Deadline = t0.Add(-time.Hour) }},
		{"deadline equals now", func(p *Params) { p.Deadline = t0 }},
		{"empty beneficiary", func(p *Params) { p.Beneficiary = "" }},
		{"bad cap policy", func(p *Params) { p.CapPolicy = "lenient" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := testParams(CapPolicyStrictReject)
			tc.mutate(&params)
			_, err := New(params, t0)
			assert.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestNewEntitlementOverflowRejected(t *testing.T) {
	// hardCap * rate 必须可表示
	params := testParams(CapPolicyStrictReject)
	params.SoftCap = amount.MustParse("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	params.HardCap = params.SoftCap
	params.Rate = 2
	_, err := New(params, t0)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestActivate(t *testing.T) {
	p, err := New(testParams(CapPolicyStrictReject), t0)
	require.NoError(t, err)
	assert.Equal(t, StatePending, p.State())

	assert.ErrorIs(t, p.Activate("0xsomeone"), ErrUnauthorized)
	require.NoError(t, p.Activate(beneficiary))
	assert.Equal(t, StateActive, p.State())

	// 重复激活是幂等空操作
	require.NoError(t, p.Activate(beneficiary))
}

func TestContributeBeforeActivation(t *testing.T) {
	p, err := New(testParams(CapPolicyStrictReject), t0)
	require.NoError(t, err)

	_, err = p.Contribute("0xa", amount.FromUint64(5), t0)
	assert.ErrorIs(t, err, ErrSaleClosed)
}

func TestContributeAccumulates(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)

	res, err := p.Contribute("0xa", amount.FromUint64(4), t0)
	require.NoError(t, err)
	assert.Equal(t, "4", res.ParticipantTotal.String())
	assert.Equal(t, "4", res.TotalRaised.String())

	// 同一参与者再次出资累加到同一条记录
	res, err = p.Contribute("0xa", amount.FromUint64(3), t0)
	require.NoError(t, err)
	assert.Equal(t, "7", res.ParticipantTotal.String())
	assert.Equal(t, "7", res.TotalRaised.String())

	assert.Len(t, p.Contributions(), 1)
}

func TestContributeZeroRejected(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.Zero(), t0)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestContributeAfterDeadlineClosesLazily(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)

	res, err := p.Contribute("0xa", amount.FromUint64(5), deadline.Add(time.Second))
	assert.ErrorIs(t, err, ErrSaleClosed)
	assert.True(t, res.Closed)
	assert.Equal(t, StateClosed, p.State())

	// 关闭后的出资同样被拒绝
	_, err = p.Contribute("0xb", amount.FromUint64(5), deadline.Add(time.Minute))
	assert.ErrorIs(t, err, ErrSaleClosed)
}

func TestContributeHittingHardCapCloses(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)

	_, err := p.Contribute("0xa", amount.FromUint64(60), t0)
	require.NoError(t, err)

	res, err := p.Contribute("0xb", amount.FromUint64(40), t0)
	require.NoError(t, err)
	assert.True(t, res.Closed)
	assert.Equal(t, StateClosed, p.State())
	assert.Equal(t, "100", p.TotalRaised().String())
}

func TestCheckClose(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)

	closed, err := p.CheckClose(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, closed)
	assert.Equal(t, StateActive, p.State())

	closed, err = p.CheckClose(deadline)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.Equal(t, StateClosed, p.State())

	// 已关闭时不再发生转换
	closed, err = p.CheckClose(deadline)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestCancel(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.FromUint64(50), t0)
	require.NoError(t, err)

	assert.ErrorIs(t, p.Cancel("0xa"), ErrUnauthorized)
	require.NoError(t, p.Cancel(beneficiary))
	assert.Equal(t, StateClosed, p.State())

	// 取消后即使募集额超过软顶，裁决也走失败路径
	res, err := p.Finalize(t0, newMockTokenLedger(), newMockFunds())
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailure, res.Outcome)
}

func TestConservation(t *testing.T) {
	// totalRaised == Σ amount 且 totalRaised <= hardCap 在每个观察点都成立
	p := newActive(t, CapPolicyStrictReject)
	contributions := []uint64{4, 4, 3, 17, 30, 2}
	addrs := []string{"0xa", "0xb", "0xc", "0xa", "0xd", "0xb"}

	for i, amt := range contributions {
		_, err := p.Contribute(addrs[i], amount.FromUint64(amt), t0)
		require.NoError(t, err)

		sum := amount.Zero()
		for _, c := range p.Contributions() {
			var errAdd error
			sum, errAdd = sum.Add(c.Amount)
			require.NoError(t, errAdd)
		}
		assert.Equal(t, 0, sum.Cmp(p.TotalRaised()))
		assert.LessOrEqual(t, p.TotalRaised().Cmp(p.Params().HardCap), 0)
	}
}

func TestConcurrentContributionsNeverExceedHardCap(t *testing.T) {
	// 竞态测试：N笔并发出资各为 hardCap/N + 1，
	// clamp策略下准入总额必须恰好到达而不是冲破硬顶
	const n = 10
	p := newActive(t, CapPolicyClampToCap)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := "0xparticipant" + string(rune('a'+i))
			p.Contribute(addr, amount.FromUint64(100/n+1), t0)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "100", p.TotalRaised().String())
	assert.Equal(t, StateClosed, p.State())
}

func TestConcurrentSixtySixty(t *testing.T) {
	// hardCap=100，两笔并发60：严格策略下恰好一笔准入另一笔被拒，
	// 绝不可能两笔都以60准入
	p := newActive(t, CapPolicyStrictReject)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := []string{"0xa", "0xb"}[i]
			_, errs[i] = p.Contribute(addr, amount.FromUint64(60), t0)
		}(i)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, err := range errs {
		if err == nil {
			admitted++
		} else {
			assert.ErrorIs(t, err, ErrExceedsHardCap)
			rejected++
		}
	}
	assert.Equal(t, 1, admitted)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, "60", p.TotalRaised().String())
}

func TestConcurrentSixtySixtyClamped(t *testing.T) {
	// 同一场景clamp策略：一笔60全额准入，另一笔截断到40
	p := newActive(t, CapPolicyClampToCap)

	var wg sync.WaitGroup
	results := make([]ContributeResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := []string{"0xa", "0xb"}[i]
			results[i], _ = p.Contribute(addr, amount.FromUint64(60), t0)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, "100", p.TotalRaised().String())
	clamped := 0
	for _, r := range results {
		if r.Clamped {
			clamped++
			assert.Equal(t, "40", r.Admitted.String())
		}
	}
	assert.Equal(t, 1, clamped)
}

func TestSnapshotConsistency(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			p.Contribute("0xa", amount.FromUint64(1), t0)
		}
	}()

	// 读快照时amount与totalRaised必须一致（单一参与者场景下两者相等）
	for i := 0; i < 200; i++ {
		snap := p.Snapshot()
		c, ok := p.Contribution("0xa")
		if ok && snap.ContributorCount == 1 {
			assert.LessOrEqual(t, c.Amount.Cmp(p.TotalRaised()), 0)
		}
		_ = snap
	}
	<-done

	snap := p.Snapshot()
	c, _ := p.Contribution("0xa")
	assert.Equal(t, 0, snap.TotalRaised.Cmp(c.Amount))
}

func TestRestoreRoundtrip(t *testing.T) {
	p := newActive(t, CapPolicyClampToCap)
	_, err := p.Contribute("0xa", amount.FromUint64(4), t0)
	require.NoError(t, err)
	_, err = p.Contribute("0xb", amount.FromUint64(7), t0)
	require.NoError(t, err)

	snap := p.Snapshot()
	restored, err := Restore(snap.Params, snap.State, snap.Cancelled, snap.FundsReleased, p.Contributions())
	require.NoError(t, err)

	assert.Equal(t, p.State(), restored.State())
	assert.Equal(t, 0, p.TotalRaised().Cmp(restored.TotalRaised()))
	c, ok := restored.Contribution("0xa")
	require.True(t, ok)
	assert.Equal(t, "4", c.Amount.String())
}

func TestRestoreRejectsCorruptTotal(t *testing.T) {
	params := testParams(CapPolicyStrictReject)
	contribs := []Contribution{
		{Address: "0xa", Amount: amount.FromUint64(80)},
		{Address: "0xb", Amount: amount.FromUint64(80)},
	}
	_, err := Restore(params, StateClosed, false, false, contribs)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestEntitlementComputed(t *testing.T) {
	// rate=100：出资4的参与者权益为400
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.FromUint64(4), t0)
	require.NoError(t, err)

	c, ok := p.Contribution("0xa")
	require.True(t, ok)
	entitlement, err := c.Entitlement(p.Params().Rate)
	require.NoError(t, err)
	assert.Equal(t, "400", entitlement.String())
}
