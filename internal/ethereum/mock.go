package ethereum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/Wrestler094/launchpad/internal/amount"
)

// MockClient 内存模拟链客户端。未配置RPC节点时使用，也用于测试。
// 按(presaleId, participant)去重，模拟代币合约的幂等铸币。
type MockClient struct {
	mu       sync.Mutex
	seq      uint64
	minted   map[string]string   // key -> tokens
	balances map[string][]string // address -> transferred amounts

	// FailNext 置位时下一次调用失败，用于测试投递失败路径
	FailNext bool
}

func NewMockClient() *MockClient {
	return &MockClient{
		minted:   make(map[string]string),
		balances: make(map[string][]string),
	}
}

// MintOrTransfer 模拟铸币，重复调用不会重复记账
func (m *MockClient) MintOrTransfer(presaleId int64, token, participant string, tokens amount.Amount) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("mock chain: injected mint failure")
	}

	key := fmt.Sprintf("%d/%s", presaleId, participant)
	if _, ok := m.minted[key]; !ok {
		m.minted[key] = tokens.String()
	}
	return m.nextHash(), nil
}

// TransferETH 模拟打款
func (m *MockClient) TransferETH(to string, amt amount.Amount) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailNext {
		m.FailNext = false
		return "", fmt.Errorf("mock chain: injected transfer failure")
	}

	m.balances[to] = append(m.balances[to], amt.String())
	return m.nextHash(), nil
}

// Minted 查询某参与者的已铸币数量
func (m *MockClient) Minted(presaleId int64, participant string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.minted[fmt.Sprintf("%d/%s", presaleId, participant)]
	return v, ok
}

// Transfers 查询某地址收到的打款列表
func (m *MockClient) Transfers(to string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.balances[to]...)
}

func (m *MockClient) nextHash() string {
	m.seq++
	sum := sha256.Sum256([]byte(fmt.Sprintf("mock-tx-%d", m.seq)))
	return "0x" + hex.EncodeToString(sum[:])
}
