package pool

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"stakeScope/internal/contracts"
)

type fakeGateway struct {
	mu      sync.Mutex
	pools   []contracts.RawPool
	rewards map[uint64]*big.Int
	calls   map[string]int
	fail    bool
	// empty makes every call return no values with a nil error.
	empty bool
}

func (g *fakeGateway) Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = map[string]int{}
	}
	g.calls[method]++
	g.mu.Unlock()

	if g.fail {
		return nil, errors.New("rpc down")
	}
	if g.empty {
		return []interface{}{}, nil
	}

	switch method {
	case "getAllPoolsInfo":
		return []interface{}{g.pools}, nil
	case "getPoolDividends":
		id := args[0].(*big.Int).Uint64()
		reward, ok := g.rewards[id]
		if !ok {
			return nil, errors.New("execution reverted")
		}
		return []interface{}{reward}, nil
	default:
		return nil, errors.New("unexpected method " + method)
	}
}

func tokens(display int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(display), scale)
}

func rawPool(id int64, dividendAddr common.Address, lockupSeconds int64) contracts.RawPool {
	return contracts.RawPool{
		PoolId:          big.NewInt(id),
		DividendAddress: dividendAddr,
		DividendRatio:   big.NewInt(10),
		StakeToken:      common.HexToAddress("0x02"),
		Apr:             big.NewInt(12),
		LockupPeriod:    big.NewInt(lockupSeconds),
		MaxStakeAmount:  tokens(10000),
		TotalStaked:     tokens(2500),
		LastRewardTime:  big.NewInt(1700000000),
		DividendRate:    big.NewInt(3),
	}
}

func TestAllDecoratesPools(t *testing.T) {
	gw := &fakeGateway{
		pools: []contracts.RawPool{
			rawPool(1, common.HexToAddress("0xaa"), 30*86400),
			rawPool(7, common.HexToAddress("0xbb"), 3600),
		},
	}

	reg := New(gw, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	got := reg.All(context.Background(), false)

	if len(got) != 2 {
		t.Fatalf("expected 2 pools, got %d", len(got))
	}
	if got[0].Tier != "gold" || got[1].Tier != "bronze" {
		t.Fatalf("tiers mismatch: %s, %s", got[0].Tier, got[1].Tier)
	}
	if got[0].LockupPeriod != "30d" || got[1].LockupPeriod != "1h" {
		t.Fatalf("lockup mismatch: %q, %q", got[0].LockupPeriod, got[1].LockupPeriod)
	}
	if got[0].TotalStaked != "2500" || got[0].MaxStakeAmount != "10000" {
		t.Fatalf("amounts mismatch: %q, %q", got[0].TotalStaked, got[0].MaxStakeAmount)
	}
}

func TestAllCachesGlobally(t *testing.T) {
	gw := &fakeGateway{pools: []contracts.RawPool{rawPool(1, common.HexToAddress("0xaa"), 0)}}

	reg := New(gw, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	reg.All(context.Background(), false)
	reg.All(context.Background(), false)

	if gw.calls["getAllPoolsInfo"] != 1 {
		t.Fatalf("expected one listing call, got %d", gw.calls["getAllPoolsInfo"])
	}

	reg.All(context.Background(), true)
	if gw.calls["getAllPoolsInfo"] != 2 {
		t.Fatalf("force should refetch, got %d calls", gw.calls["getAllPoolsInfo"])
	}
}

func TestAllEmptyOnFailure(t *testing.T) {
	reg := New(&fakeGateway{fail: true}, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	if got := reg.All(context.Background(), false); len(got) != 0 {
		t.Fatalf("expected empty list on failure, got %d pools", len(got))
	}
}

func TestPoolRewardFallsBackToZero(t *testing.T) {
	gw := &fakeGateway{rewards: map[uint64]*big.Int{2: tokens(5)}}

	reg := New(gw, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	if got := reg.PoolReward(context.Background(), 2, false); got != "5" {
		t.Fatalf("reward mismatch: %q", got)
	}
	if got := reg.PoolReward(context.Background(), 99, false); got != "0" {
		t.Fatalf("missing pool should degrade to 0, got %q", got)
	}
}

func TestPoolRewardEmptyUnpack(t *testing.T) {
	reg := New(&fakeGateway{empty: true}, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	if got := reg.PoolReward(context.Background(), 1, false); got != "0" {
		t.Fatalf("empty unpack should degrade to 0, got %q", got)
	}
	if got := reg.All(context.Background(), false); len(got) != 0 {
		t.Fatalf("empty unpack should yield an empty pool list, got %d", len(got))
	}
}

func TestDividendViewMatchesCaseInsensitively(t *testing.T) {
	owner := common.HexToAddress("0xAbCdEf0123456789aBcDeF0123456789abcdef01")
	gw := &fakeGateway{
		pools: []contracts.RawPool{
			rawPool(1, owner, 86400),
			rawPool(2, common.HexToAddress("0xbb"), 86400),
			rawPool(5, owner, 86400),
		},
		rewards: map[uint64]*big.Int{1: tokens(3), 5: tokens(7)},
	}

	reg := New(gw, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	got := reg.DividendView(context.Background(), owner, false)

	if len(got) != 2 {
		t.Fatalf("expected 2 dividend pools, got %d", len(got))
	}
	if got[0].PoolID != 1 || got[1].PoolID != 5 {
		t.Fatalf("pool ids mismatch: %d, %d", got[0].PoolID, got[1].PoolID)
	}
	if got[0].ClaimableReward != "3" || got[1].ClaimableReward != "7" {
		t.Fatalf("rewards mismatch: %q, %q", got[0].ClaimableReward, got[1].ClaimableReward)
	}
}

func TestDividendViewZeroOwner(t *testing.T) {
	reg := New(&fakeGateway{fail: true}, common.HexToAddress("0x01"), common.HexToAddress("0x02"), nil)
	if got := reg.DividendView(context.Background(), common.Address{}, false); len(got) != 0 {
		t.Fatalf("zero owner should yield an empty view")
	}
}
