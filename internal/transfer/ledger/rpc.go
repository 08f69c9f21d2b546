package ledger

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// RPCClient 封装以太坊 RPC 客户端，支持多个 URL 和故障转移
type RPCClient struct {
	urls    []string
	clients []*ethclient.Client
	mu      sync.RWMutex
	current int // 当前使用的客户端索引
}

// NewRPCClient 创建新的 RPC 客户端
func NewRPCClient(urls []string) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	clients := make([]*ethclient.Client, 0, len(urls))
	for _, url := range urls {
		client, err := ethclient.Dial(url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			// 继续尝试其他 URL，不立即失败
			clients = append(clients, nil)
			continue
		}
		clients = append(clients, client)
	}

	if allClientsNil(clients) {
		return nil, errors.New("failed to connect to any RPC node")
	}

	return &RPCClient{
		urls:    urls,
		clients: clients,
	}, nil
}

// ParseRPCURLs 解析 RPC URL（支持多个，逗号分隔）
func ParseRPCURLs(rpcURL string) []string {
	if rpcURL == "" {
		return nil
	}

	urls := strings.Split(rpcURL, ",")
	result := make([]string, 0, len(urls))

	for _, url := range urls {
		url = strings.TrimSpace(url)
		if url != "" {
			result = append(result, url)
		}
	}

	return result
}

func allClientsNil(clients []*ethclient.Client) bool {
	for _, client := range clients {
		if client != nil {
			return false
		}
	}
	return true
}

// Close 关闭所有客户端连接
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// ChainID 获取链 ID
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID *big.Int
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		chainID, err = client.ChainID(ctx)
		return err
	})
	return chainID, err
}

// PendingNonceAt 获取待处理 nonce
func (c *RPCClient) PendingNonceAt(ctx context.Context, address common.Address) (uint64, error) {
	var nonce uint64
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		nonce, err = client.PendingNonceAt(ctx, address)
		return err
	})
	return nonce, err
}

// SuggestGasTipCap 建议 Gas 小费上限 (EIP-1559)
func (c *RPCClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	var tipCap *big.Int
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		tipCap, err = client.SuggestGasTipCap(ctx)
		return err
	})
	return tipCap, err
}

// LatestHeader 获取最新区块头
func (c *RPCClient) LatestHeader(ctx context.Context) (*types.Header, error) {
	var header *types.Header
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		header, err = client.HeaderByNumber(ctx, nil)
		return err
	})
	return header, err
}

// EstimateGas 估算 Gas 用量
func (c *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	var gas uint64
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		gas, err = client.EstimateGas(ctx, msg)
		return err
	})
	return gas, err
}

// CallContract 执行只读调用，blockNumber 为 nil 时使用最新区块
func (c *RPCClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	var out []byte
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		out, err = client.CallContract(ctx, msg, blockNumber)
		return err
	})
	return out, err
}

// SendTransaction 发送已签名的交易
// 故障转移时同一笔交易可能被广播两次，节点返回 already known 视为成功
func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	return c.do(ctx, func(client *ethclient.Client) error {
		err := client.SendTransaction(ctx, tx)
		if err != nil && strings.Contains(strings.ToLower(err.Error()), "already known") {
			return nil
		}
		return err
	})
}

// TransactionReceipt 获取交易回执，未上链时返回 ethereum.NotFound
func (c *RPCClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt
	err := c.do(ctx, func(client *ethclient.Client) error {
		var err error
		receipt, err = client.TransactionReceipt(ctx, txHash)
		return err
	})
	return receipt, err
}

// do 在当前客户端上执行 fn，连接层面的失败会切换到下一个节点
func (c *RPCClient) do(ctx context.Context, fn func(client *ethclient.Client) error) error {
	var lastErr error

	for i := 0; i < len(c.urls); i++ {
		idx, client, err := c.clientAt(i)
		if err != nil {
			lastErr = err
			continue
		}

		err = fn(client)
		if err == nil || !shouldFailover(ctx, err) {
			if err == nil && i > 0 {
				c.mu.Lock()
				c.current = idx
				c.mu.Unlock()
			}
			return err
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Err(err).
			Msg("RPC call failed, trying next node")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("all RPC clients are unavailable")
	}

	return lastErr
}

// clientAt 返回从当前索引偏移 offset 的客户端，必要时重新连接
func (c *RPCClient) clientAt(offset int) (int, *ethclient.Client, error) {
	c.mu.RLock()
	idx := (c.current + offset) % len(c.clients)
	client := c.clients[idx]
	c.mu.RUnlock()

	if client != nil {
		return idx, client, nil
	}

	// 尝试重新连接
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[idx] == nil {
		dialed, err := ethclient.Dial(c.urls[idx])
		if err != nil {
			return idx, nil, errors.Wrapf(err, "failed to dial %s", c.urls[idx])
		}
		c.clients[idx] = dialed
	}

	return idx, c.clients[idx], nil
}

// shouldFailover 只有连接层面的错误才切换节点，节点明确返回的错误直接交给调用方
func shouldFailover(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}

	if errors.Is(err, ethereum.NotFound) {
		return false
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return false
	}

	var dataErr rpc.DataError
	return !errors.As(err, &dataErr)
}
