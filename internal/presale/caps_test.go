package presale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wrestler094/launchpad/internal/amount"
)

func TestTryAdmitWithinCap(t *testing.T) {
	adm, err := TryAdmit(CapPolicyStrictReject, amount.FromUint64(40), amount.FromUint64(60), amount.FromUint64(100))
	require.NoError(t, err)
	assert.Equal(t, "60", adm.Amount.String())
	assert.False(t, adm.Clamped)
}

func TestTryAdmitExactlyFillsCap(t *testing.T) {
	// 恰好填满硬顶在两种策略下都整笔准入
	for _, policy := range []CapPolicy{CapPolicyStrictReject, CapPolicyClampToCap} {
		adm, err := TryAdmit(policy, amount.FromUint64(70), amount.FromUint64(30), amount.FromUint64(100))
		require.NoError(t, err)
		assert.Equal(t, "30", adm.Amount.String())
		assert.False(t, adm.Clamped)
	}
}

func TestTryAdmitStrictReject(t *testing.T) {
	_, err := TryAdmit(CapPolicyStrictReject, amount.FromUint64(60), amount.FromUint64(60), amount.FromUint64(100))
	assert.ErrorIs(t, err, ErrExceedsHardCap)
}

func TestTryAdmitClampToCap(t *testing.T) {
	adm, err := TryAdmit(CapPolicyClampToCap, amount.FromUint64(60), amount.FromUint64(60), amount.FromUint64(100))
	require.NoError(t, err)
	assert.Equal(t, "40", adm.Amount.String())
	assert.True(t, adm.Clamped)
}

func TestTryAdmitCapAlreadyFull(t *testing.T) {
	// 已满硬顶时没有剩余额度，两种策略都拒绝
	for _, policy := range []CapPolicy{CapPolicyStrictReject, CapPolicyClampToCap} {
		_, err := TryAdmit(policy, amount.FromUint64(100), amount.FromUint64(1), amount.FromUint64(100))
		assert.ErrorIs(t, err, ErrExceedsHardCap)
	}
}

func TestTryAdmitOverflow(t *testing.T) {
	max := amount.MustParse("115792089237316195423570985008687907853269984665640564039457584007913129639935")
	_, err := TryAdmit(CapPolicyStrictReject, max, amount.FromUint64(1), max)
	assert.ErrorIs(t, err, amount.ErrOverflow)
}

func TestCapPolicyValid(t *testing.T) {
	assert.True(t, CapPolicyStrictReject.Valid())
	assert.True(t, CapPolicyClampToCap.Valid())
	assert.False(t, CapPolicy("lenient").Valid())
}
