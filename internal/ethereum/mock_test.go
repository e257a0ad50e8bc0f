package ethereum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wrestler094/launchpad/internal/amount"
)

func TestMockClientMintDedup(t *testing.T) {
	m := NewMockClient()

	hash1, err := m.MintOrTransfer(1, "0xtoken", "0xalice", amount.MustParse("1000"))
	require.NoError(t, err)
	assert.NotEmpty(t, hash1)

	// 重复铸币不改变已记账数量
	hash2, err := m.MintOrTransfer(1, "0xtoken", "0xalice", amount.MustParse("2000"))
	require.NoError(t, err)
	assert.NotEqual(t, hash1, hash2)

	minted, ok := m.Minted(1, "0xalice")
	require.True(t, ok)
	assert.Equal(t, "1000", minted)

	// 不同预售独立记账
	_, err = m.MintOrTransfer(2, "0xtoken", "0xalice", amount.MustParse("500"))
	require.NoError(t, err)
	minted, ok = m.Minted(2, "0xalice")
	require.True(t, ok)
	assert.Equal(t, "500", minted)
}

func TestMockClientFailureInjection(t *testing.T) {
	m := NewMockClient()

	m.FailNext = true
	_, err := m.MintOrTransfer(1, "0xtoken", "0xalice", amount.MustParse("100"))
	require.Error(t, err)

	_, ok := m.Minted(1, "0xalice")
	assert.False(t, ok)

	// 失败注入只生效一次
	_, err = m.MintOrTransfer(1, "0xtoken", "0xalice", amount.MustParse("100"))
	require.NoError(t, err)
}

func TestMockClientTransfers(t *testing.T) {
	m := NewMockClient()

	_, err := m.TransferETH("0xbob", amount.MustParse("300"))
	require.NoError(t, err)
	_, err = m.TransferETH("0xbob", amount.MustParse("700"))
	require.NoError(t, err)

	assert.Equal(t, []string{"300", "700"}, m.Transfers("0xbob"))
	assert.Empty(t, m.Transfers("0xcarol"))
}
