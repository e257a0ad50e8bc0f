package presale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// newFailed 构造一个失败终态的预售：出资合计6 < softCap=10
func newFailed(t *testing.T) *Presale {
	t.Helper()
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.FromUint64(4), t0)
	require.NoError(t, err)
	_, err = p.Contribute("0xb", amount.FromUint64(2), t0)
	require.NoError(t, err)
	_, err = p.CheckClose(deadline)
	require.NoError(t, err)
	res, err := p.Finalize(deadline, newMockTokenLedger(), newMockFunds())
	require.NoError(t, err)
	require.Equal(t, OutcomeFailure, res.Outcome)
	return p
}

func TestRefundReturnsContributedAmount(t *testing.T) {
	p := newFailed(t)
	funds := newMockFunds()

	amt, err := p.Refund("0xa", funds)
	require.NoError(t, err)
	assert.Equal(t, "4", amt.String())
	assert.Equal(t, []string{"4"}, funds.transfers["0xa"])

	amt, err = p.Refund("0xb", funds)
	require.NoError(t, err)
	assert.Equal(t, "2", amt.String())
}

func TestRefundIdempotence(t *testing.T) {
	// 两次refund：一次成功打款，一次AlreadyRefunded，退款总额不超过出资额
	p := newFailed(t)
	funds := newMockFunds()

	_, err := p.Refund("0xa", funds)
	require.NoError(t, err)

	_, err = p.Refund("0xa", funds)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)
	assert.Len(t, funds.transfers["0xa"], 1)
}

func TestRefundNothingToRefund(t *testing.T) {
	p := newFailed(t)

	_, err := p.Refund("0xnever", newMockFunds())
	assert.ErrorIs(t, err, ErrNothingToRefund)
}

func TestRefundOnlyAfterFailure(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.FromUint64(4), t0)
	require.NoError(t, err)

	_, err = p.Refund("0xa", newMockFunds())
	assert.ErrorIs(t, err, ErrSaleNotClosed)
}

func TestRefundOnSuccessfulSale(t *testing.T) {
	p := newActive(t, CapPolicyStrictReject)
	_, err := p.Contribute("0xa", amount.FromUint64(50), t0)
	require.NoError(t, err)
	_, err = p.CheckClose(deadline)
	require.NoError(t, err)
	_, err = p.Finalize(deadline, newMockTokenLedger(), newMockFunds())
	require.NoError(t, err)

	_, err = p.Refund("0xa", newMockFunds())
	assert.ErrorIs(t, err, ErrSaleFinalized)
}

func TestRefundDeliveryFailure(t *testing.T) {
	p := newFailed(t)
	funds := newMockFunds()
	funds.failFor["0xa"] = true

	// 打款失败：refunded已置位，投递挂起，错误可重试
	amt, err := p.Refund("0xa", funds)
	assert.ErrorIs(t, err, ErrTransferFailed)
	assert.True(t, Retryable(err))
	assert.Equal(t, "4", amt.String())

	c, ok := p.Contribution("0xa")
	require.True(t, ok)
	assert.True(t, c.Refunded)
	assert.True(t, c.TransferPending)

	// 账本层不会再次授权打款
	_, err = p.Refund("0xa", funds)
	assert.ErrorIs(t, err, ErrAlreadyRefunded)

	// 投递重试只补打款，不重复授权
	funds.failFor["0xa"] = false
	require.NoError(t, p.RetryRefundDelivery("0xa", funds))
	assert.Equal(t, []string{"4"}, funds.transfers["0xa"])

	c, _ = p.Contribution("0xa")
	assert.False(t, c.TransferPending)

	// 投递完成后再重试没有待投递项
	assert.ErrorIs(t, p.RetryRefundDelivery("0xa", funds), ErrNothingToRefund)
}

func TestRetryRefundDeliveryWithoutAuthorization(t *testing.T) {
	p := newFailed(t)
	// 未经过Refund授权的记录不能直接投递
	assert.ErrorIs(t, p.RetryRefundDelivery("0xa", newMockFunds()), ErrNothingToRefund)
}
