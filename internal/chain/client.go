package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

// Config holds the gateway's connection and submission settings.
type Config struct {
	RPCURL          string
	PrivateKey      string
	ChainID         uint64
	ReceiptInterval time.Duration
	ReceiptTimeout  time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
}

// TxResult reports a mined transaction back to the workflow layer.
type TxResult struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
	Status      uint64 `json:"status"`
}

// Client wraps go-ethereum RPC with ABI-level read and write helpers. Reads
// retry transient failures; writes sign with the configured key and poll the
// receipt before reporting success.
type Client struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	key       *ecdsa.PrivateKey
	from      common.Address
	chainID   *big.Int
	cfg       Config
	logger    *zap.Logger
}

// NewClient dials the RPC URL and prepares the signing key. An empty key
// yields a read-only client; writes then fail with an explicit error.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReceiptInterval <= 0 {
		cfg.ReceiptInterval = 2 * time.Second
	}
	if cfg.ReceiptTimeout <= 0 {
		cfg.ReceiptTimeout = 90 * time.Second
	}

	rpcClient, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	ethClient := ethclient.NewClient(rpcClient)

	c := &Client{
		rpcClient: rpcClient,
		ethClient: ethClient,
		cfg:       cfg,
		logger:    logger,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		c.key = key
		c.from = crypto.PubkeyToAddress(key.PublicKey)
	}

	if cfg.ChainID != 0 {
		c.chainID = new(big.Int).SetUint64(cfg.ChainID)
	} else {
		chainID, err := ethClient.ChainID(ctx)
		if err != nil {
			rpcClient.Close()
			return nil, fmt.Errorf("get chain id: %w", err)
		}
		c.chainID = chainID
	}

	return c, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// From returns the signing address, or the zero address for a read-only client.
func (c *Client) From() common.Address {
	return c.from
}

// Call performs an eth_call against contract and unpacks the result.
func (c *Client) Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	var resp []byte
	msg := ethereum.CallMsg{To: &contract, Data: data}
	err = withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		var callErr error
		resp, callErr = c.ethClient.CallContract(ctx, msg, nil)
		if callErr != nil {
			return classify("call "+method, callErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	values, err := contractABI.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// Send signs and submits a state-mutating call and waits for its receipt.
// value attaches native currency to the call; nil sends none.
func (c *Client) Send(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, value *big.Int, args ...interface{}) (*TxResult, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	return c.submit(ctx, "send "+method, &contract, value, data)
}

// SendNative transfers native currency to an address.
func (c *Client) SendNative(ctx context.Context, to common.Address, value *big.Int) (*TxResult, error) {
	return c.submit(ctx, "send native", &to, value, nil)
}

// NativeBalance returns the native-currency balance of an address.
func (c *Client) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	balance, err := c.ethClient.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, classify("native balance", err)
	}
	return balance, nil
}

func (c *Client) submit(ctx context.Context, op string, to *common.Address, value *big.Int, data []byte) (*TxResult, error) {
	if c.key == nil {
		return nil, fmt.Errorf("%s: client has no signing key", op)
	}
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := c.ethClient.PendingNonceAt(ctx, c.from)
	if err != nil {
		return nil, classify(op, err)
	}
	gasPrice, err := c.ethClient.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classify(op, err)
	}

	msg := ethereum.CallMsg{From: c.from, To: to, Value: value, Data: data}
	gasLimit, err := c.ethClient.EstimateGas(ctx, msg)
	if err != nil {
		// Estimation executes the call, so reverts surface here with
		// their reason attached.
		return nil, classify(op, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.key)
	if err != nil {
		return nil, fmt.Errorf("%s: sign: %w", op, err)
	}

	if err := c.ethClient.SendTransaction(ctx, signed); err != nil {
		return nil, classify(op, err)
	}

	c.logger.Info("transaction submitted",
		zap.String("op", op),
		zap.String("hash", signed.Hash().Hex()),
		zap.Uint64("nonce", nonce),
	)

	receipt, err := c.waitReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	result := &TxResult{
		Hash:        signed.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Status:      receipt.Status,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, &CallError{
			Kind: KindReverted,
			Op:   op,
			Err:  fmt.Errorf("transaction %s reverted on chain", result.Hash),
		}
	}
	return result, nil
}

// waitReceipt polls the transaction receipt until it is mined or the
// configured timeout elapses. This replaces any fixed settle delay.
func (c *Client) waitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ReceiptTimeout)
	defer cancel()

	ticker := time.NewTicker(c.cfg.ReceiptInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			c.logger.Debug("receipt poll failed", zap.String("hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, &CallError{
				Kind: KindNetwork,
				Op:   "wait receipt",
				Err:  fmt.Errorf("transaction %s not mined before timeout: %w", hash.Hex(), ctx.Err()),
			}
		case <-ticker.C:
		}
	}
}
