package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/Wrestler094/launchpad/internal/amount"
	"github.com/Wrestler094/launchpad/internal/config"
)

const callTimeout = 30 * time.Second

// 预售代币ABI（简化版），代币合约自身保证mint对(presale, participant)幂等
const tokenABI = `[
	{
		"inputs": [
			{"name": "presaleId", "type": "uint256"},
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "mintPresale",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "transfer",
		"outputs": [{"name": "", "type": "bool"}],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// Client 以太坊链客户端，负责代币铸币和ETH打款
type Client struct {
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	from       common.Address
	chainId    *big.Int
	gasLimit   uint64
	tokenABI   abi.ABI
}

func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(tokenABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ABI: %w", err)
	}

	return &Client{
		client:     client,
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
		chainId:    big.NewInt(cfg.ChainId),
		gasLimit:   cfg.GasLimit,
		tokenABI:   parsedABI,
	}, nil
}

// MintOrTransfer 为参与者铸造预售代币。
// 幂等性由代币合约按(presaleId, participant)保证，重复发送不会重复铸币。
func (c *Client) MintOrTransfer(presaleId int64, token, participant string, tokens amount.Amount) (string, error) {
	data, err := c.tokenABI.Pack("mintPresale",
		big.NewInt(presaleId),
		common.HexToAddress(participant),
		tokens.BigInt(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to pack mint call: %w", err)
	}
	return c.sendTx(common.HexToAddress(token), big.NewInt(0), data)
}

// TransferETH 向地址打款ETH（退款投递、受益人放款）
func (c *Client) TransferETH(to string, amt amount.Amount) (string, error) {
	return c.sendTx(common.HexToAddress(to), amt.BigInt(), nil)
}

// sendTx 构造、签名并发送交易，返回交易哈希
func (c *Client) sendTx(to common.Address, value *big.Int, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to suggest gas price: %w", err)
	}

	tx := types.NewTransaction(nonce, to, value, c.gasLimit, gasPrice, data)
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainId), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return signedTx.Hash().Hex(), nil
}
