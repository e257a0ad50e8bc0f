package amount

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2^256 - 1
const maxUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestAdd(t *testing.T) {
	a := FromUint64(40)
	b := FromUint64(2)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "42", sum.String())
}

func TestAddOverflow(t *testing.T) {
	max := MustParse(maxUint256)

	_, err := max.Add(FromUint64(1))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestSub(t *testing.T) {
	a := FromUint64(100)

	diff, err := a.Sub(FromUint64(60))
	require.NoError(t, err)
	assert.Equal(t, "40", diff.String())

	_, err = FromUint64(1).Sub(FromUint64(2))
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestMulRate(t *testing.T) {
	// rate=100: 4 wei -> 400 token单位
	tokens, err := FromUint64(4).MulRate(100)
	require.NoError(t, err)
	assert.Equal(t, "400", tokens.String())
}

func TestMulRateWideIntermediate(t *testing.T) {
	// 两个操作数都接近uint64上限时也不能截断
	const contributed = uint64(1<<63 + 12345)
	const rate = uint64(1 << 62)

	tokens, err := FromUint64(contributed).MulRate(rate)
	require.NoError(t, err)

	want := new(big.Int).Mul(
		new(big.Int).SetUint64(contributed),
		new(big.Int).SetUint64(rate),
	)
	assert.Equal(t, want.String(), tokens.String())
}

func TestMulRateOverflow(t *testing.T) {
	max := MustParse(maxUint256)

	_, err := max.MulRate(2)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestParse(t *testing.T) {
	a, err := Parse("1000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", a.String())

	_, err = Parse("not-a-number")
	assert.Error(t, err)

	_, err = Parse("-5")
	assert.Error(t, err)
}

func TestCmp(t *testing.T) {
	assert.Equal(t, -1, FromUint64(1).Cmp(FromUint64(2)))
	assert.Equal(t, 0, FromUint64(7).Cmp(FromUint64(7)))
	assert.Equal(t, 1, FromUint64(9).Cmp(FromUint64(2)))
	assert.True(t, Zero().IsZero())
}

func TestJSONRoundtrip(t *testing.T) {
	a := MustParse("123456789012345678901234567890")

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"123456789012345678901234567890"`, string(data))

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, a.Cmp(back))
}

func TestScan(t *testing.T) {
	var a Amount
	require.NoError(t, a.Scan("42"))
	assert.Equal(t, "42", a.String())

	require.NoError(t, a.Scan([]byte("43")))
	assert.Equal(t, "43", a.String())

	require.NoError(t, a.Scan(int64(44)))
	assert.Equal(t, "44", a.String())

	assert.Error(t, a.Scan(int64(-1)))
	assert.Error(t, a.Scan(3.14))
}

func TestValue(t *testing.T) {
	v, err := FromUint64(99).Value()
	require.NoError(t, err)
	assert.Equal(t, "99", v)
	assert.False(t, strings.Contains("99", "."))
}
