package token

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stakeScope/internal/cache"
	"stakeScope/internal/chain"
	"stakeScope/internal/contracts"
	"stakeScope/internal/model"
)

// balanceTTL bounds staleness of the cached balance pair.
const balanceTTL = 2 * time.Minute

// Gateway is the chain read surface the service needs.
type Gateway interface {
	Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error)
}

// Service fetches and caches fungible-token balances. Read failures degrade
// to "0" so balance display never breaks.
type Service struct {
	gw        Gateway
	primary   common.Address
	secondary common.Address
	balances  *cache.Store[model.TokenBalance]

	mu       sync.RWMutex
	decimals map[common.Address]uint8

	logger *zap.Logger
}

// New builds a balance service over the primary and secondary token contracts.
func New(gw Gateway, primary, secondary common.Address, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		gw:        gw,
		primary:   primary,
		secondary: secondary,
		balances:  cache.New[model.TokenBalance](balanceTTL),
		decimals:  make(map[common.Address]uint8),
		logger:    logger,
	}
}

// Balance reads one token balance in display units. Any failure is logged
// and reported as "0".
func (s *Service) Balance(ctx context.Context, token, owner common.Address) string {
	if owner == (common.Address{}) {
		return "0"
	}

	erc20, err := contracts.ERC20()
	if err != nil {
		s.logger.Warn("erc20 abi unavailable", zap.Error(err))
		return "0"
	}

	decimals, err := s.tokenDecimals(ctx, token, erc20)
	if err != nil {
		s.logger.Warn("decimals read failed", zap.String("token", token.Hex()), zap.Error(err))
		return "0"
	}

	values, err := s.gw.Call(ctx, token, erc20, "balanceOf", owner)
	if err != nil || len(values) == 0 {
		s.logger.Warn("balance read failed",
			zap.String("token", token.Hex()),
			zap.String("owner", owner.Hex()),
			zap.Error(err),
		)
		return "0"
	}
	balance, err := contracts.AsBigInt(values[0])
	if err != nil {
		s.logger.Warn("balance value malformed", zap.String("token", token.Hex()), zap.Error(err))
		return "0"
	}
	return chain.ToDisplayUnits(balance, decimals)
}

// Balances fetches both token balances concurrently and caches the pair as
// one unit per owner address.
func (s *Service) Balances(ctx context.Context, owner common.Address, force bool) model.TokenBalance {
	if owner == (common.Address{}) {
		return model.TokenBalance{Primary: "0", Secondary: "0"}
	}

	pair, _ := s.balances.Get(owner.Hex(), force, func() (model.TokenBalance, error) {
		result := model.TokenBalance{Address: owner.Hex()}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			result.Primary = s.Balance(gctx, s.primary, owner)
			return nil
		})
		g.Go(func() error {
			result.Secondary = s.Balance(gctx, s.secondary, owner)
			return nil
		})
		g.Wait()
		return result, nil
	})
	return pair
}

// Allowance reads the ERC20 allowance owner has granted spender, in display
// units. Failures degrade to "0" like every other read.
func (s *Service) Allowance(ctx context.Context, token, owner, spender common.Address) string {
	erc20, err := contracts.ERC20()
	if err != nil {
		s.logger.Warn("erc20 abi unavailable", zap.Error(err))
		return "0"
	}

	decimals, err := s.tokenDecimals(ctx, token, erc20)
	if err != nil {
		s.logger.Warn("decimals read failed", zap.String("token", token.Hex()), zap.Error(err))
		return "0"
	}

	values, err := s.gw.Call(ctx, token, erc20, "allowance", owner, spender)
	if err != nil || len(values) == 0 {
		s.logger.Warn("allowance read failed",
			zap.String("token", token.Hex()),
			zap.String("owner", owner.Hex()),
			zap.Error(err),
		)
		return "0"
	}
	allowance, err := contracts.AsBigInt(values[0])
	if err != nil {
		s.logger.Warn("allowance value malformed", zap.String("token", token.Hex()), zap.Error(err))
		return "0"
	}
	return chain.ToDisplayUnits(allowance, decimals)
}

// Decimals returns the cached decimals for a token, reading it once.
func (s *Service) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	erc20, err := contracts.ERC20()
	if err != nil {
		return 0, err
	}
	return s.tokenDecimals(ctx, token, erc20)
}

// Clear drops the cached balance pair for one owner.
func (s *Service) Clear(owner common.Address) {
	s.balances.Clear(owner.Hex())
}

// Reset drops every cached balance. Used on wallet disconnect.
func (s *Service) Reset() {
	s.balances.Reset()
}

func (s *Service) tokenDecimals(ctx context.Context, token common.Address, erc20 abi.ABI) (uint8, error) {
	s.mu.RLock()
	decimals, ok := s.decimals[token]
	s.mu.RUnlock()
	if ok {
		return decimals, nil
	}

	values, err := s.gw.Call(ctx, token, erc20, "decimals")
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("decimals returned no values")
	}
	decimals, err = contracts.AsUint8(values[0])
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.decimals[token] = decimals
	s.mu.Unlock()
	return decimals, nil
}
