package workflow

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"stakeScope/internal/chain"
	"stakeScope/internal/model"
)

// recorder collects the cross-service event sequence so tests can assert the
// order checks and writes happen in.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeGateway struct {
	rec *recorder
	// sendErr fails the named method's Send call.
	sendErr map[string]error
	// lastValue captures the native value of the most recent Send.
	lastValue *big.Int
	native    *big.Int
	nativeErr error
}

func (g *fakeGateway) Call(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	g.rec.add("call:" + method)
	return nil, errors.New("unexpected read " + method)
}

func (g *fakeGateway) Send(ctx context.Context, contract common.Address, contractABI abi.ABI, method string, value *big.Int, args ...interface{}) (*chain.TxResult, error) {
	g.rec.add("send:" + method)
	g.lastValue = value
	if err, ok := g.sendErr[method]; ok {
		return nil, err
	}
	return &chain.TxResult{Hash: "0x" + method, Status: 1}, nil
}

func (g *fakeGateway) SendNative(ctx context.Context, to common.Address, value *big.Int) (*chain.TxResult, error) {
	g.rec.add("send:native")
	g.lastValue = value
	return &chain.TxResult{Hash: "0xnative", Status: 1}, nil
}

func (g *fakeGateway) NativeBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	g.rec.add("native_balance")
	if g.nativeErr != nil {
		return nil, g.nativeErr
	}
	return new(big.Int).Set(g.native), nil
}

type fakeBalances struct {
	rec       *recorder
	primary   string
	secondary string
	allowance string
}

func (b *fakeBalances) Balances(ctx context.Context, owner common.Address, force bool) model.TokenBalance {
	if force {
		b.rec.add("balances:force")
	} else {
		b.rec.add("balances")
	}
	return model.TokenBalance{Address: owner.Hex(), Primary: b.primary, Secondary: b.secondary}
}

func (b *fakeBalances) Allowance(ctx context.Context, token, owner, spender common.Address) string {
	b.rec.add("allowance")
	return b.allowance
}

type fakePools struct {
	rec *recorder
}

func (p *fakePools) All(ctx context.Context, force bool) []model.Pool {
	if force {
		p.rec.add("pools:force")
	} else {
		p.rec.add("pools")
	}
	return nil
}

func (p *fakePools) PoolReward(ctx context.Context, poolID uint64, force bool) string {
	p.rec.add("pool_reward")
	return "0"
}

type fakeStakes struct {
	rec *recorder
}

func (s *fakeStakes) UserStakes(ctx context.Context, owner common.Address, force bool) []model.StakeRecord {
	if force {
		s.rec.add("stakes:force")
	} else {
		s.rec.add("stakes")
	}
	return nil
}

type fakeJournal struct {
	mu      sync.Mutex
	records []model.JournalRecord
}

func (j *fakeJournal) Append(ctx context.Context, rec model.JournalRecord) error {
	j.mu.Lock()
	j.records = append(j.records, rec)
	j.mu.Unlock()
	return nil
}

type fixture struct {
	rec      *recorder
	gw       *fakeGateway
	balances *fakeBalances
	journal  *fakeJournal
	engine   *Engine
}

func newFixture(cfg Config) *fixture {
	rec := &recorder{}
	gw := &fakeGateway{rec: rec, native: big.NewInt(0)}
	balances := &fakeBalances{rec: rec, primary: "1000", secondary: "500", allowance: "0"}
	journal := &fakeJournal{}
	engine := New(cfg, gw, balances, &fakePools{rec: rec}, &fakeStakes{rec: rec}, journal, nil, nil)
	return &fixture{rec: rec, gw: gw, balances: balances, journal: journal, engine: engine}
}

func testConfig() Config {
	return Config{
		Owner:          common.HexToAddress("0x2000000000000000000000000000000000000001"),
		PrimaryToken:   common.HexToAddress("0x1000000000000000000000000000000000000001"),
		SecondaryToken: common.HexToAddress("0x1000000000000000000000000000000000000002"),
		Staking:        common.HexToAddress("0x1000000000000000000000000000000000000003"),
		Exchange:       common.HexToAddress("0x1000000000000000000000000000000000000004"),
		SwapPair:       common.HexToAddress("0x1000000000000000000000000000000000000005"),
		ExchangeFee:    big.NewInt(600000000000000),
	}
}

func TestStakeHappyPath(t *testing.T) {
	f := newFixture(testConfig())

	res := f.engine.Stake(context.Background(), 1, "100")
	if !res.Status {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if !strings.Contains(res.Message, "Staked 100 into pool 1") {
		t.Fatalf("message mismatch: %q", res.Message)
	}

	want := []string{
		"balances:force",
		"allowance",
		"send:approve",
		"send:stake",
		"balances:force",
		"pools:force",
		"stakes:force",
	}
	if got := f.rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event sequence mismatch:\n got %v\nwant %v", got, want)
	}

	if len(f.journal.records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(f.journal.records))
	}
	rec := f.journal.records[0]
	if rec.Workflow != "stake" || !rec.Status || rec.TxHash != "0xstake" {
		t.Fatalf("journal record mismatch: %+v", rec)
	}
}

func TestStakeSkipsApprovalWhenAllowed(t *testing.T) {
	f := newFixture(testConfig())
	f.balances.allowance = "100"

	res := f.engine.Stake(context.Background(), 2, "100")
	if !res.Status {
		t.Fatalf("expected success, got %q", res.Message)
	}
	for _, event := range f.rec.all() {
		if event == "send:approve" {
			t.Fatalf("approval should be skipped when the allowance covers the amount")
		}
	}
}

func TestStakeInsufficientBalance(t *testing.T) {
	f := newFixture(testConfig())
	f.balances.primary = "50"

	res := f.engine.Stake(context.Background(), 1, "100")
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "Insufficient balance") {
		t.Fatalf("message mismatch: %q", res.Message)
	}
	if !strings.Contains(res.Message, "50") || !strings.Contains(res.Message, "100") {
		t.Fatalf("message should interpolate balance and amount: %q", res.Message)
	}
	for _, event := range f.rec.all() {
		if strings.HasPrefix(event, "send:") {
			t.Fatalf("insufficient balance must not submit anything, saw %s", event)
		}
	}
}

func TestStakeInvalidAmount(t *testing.T) {
	f := newFixture(testConfig())

	for _, amount := range []string{"", "abc", "0", "-5"} {
		res := f.engine.Stake(context.Background(), 1, amount)
		if res.Status {
			t.Fatalf("Stake(%q) should fail", amount)
		}
		if !strings.Contains(res.Message, "valid amount") {
			t.Fatalf("message mismatch for %q: %q", amount, res.Message)
		}
	}
	if len(f.rec.all()) != 0 {
		t.Fatalf("invalid input must not touch any service: %v", f.rec.all())
	}
}

func TestStakeWalletNotConnected(t *testing.T) {
	cfg := testConfig()
	cfg.Owner = common.Address{}
	f := newFixture(cfg)

	res := f.engine.Stake(context.Background(), 1, "100")
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "not connected") {
		t.Fatalf("message mismatch: %q", res.Message)
	}
}

func TestStakeUserRejected(t *testing.T) {
	f := newFixture(testConfig())
	f.balances.allowance = "100"
	f.gw.sendErr = map[string]error{
		"stake": &chain.CallError{Kind: chain.KindUserRejected, Op: "stake", Err: errors.New("user rejected")},
	}

	res := f.engine.Stake(context.Background(), 1, "100")
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "rejected") {
		t.Fatalf("message mismatch: %q", res.Message)
	}

	if len(f.journal.records) != 1 || f.journal.records[0].Status {
		t.Fatalf("failure should journal a failed record: %+v", f.journal.records)
	}
}

func TestUnstakeLockupRevert(t *testing.T) {
	f := newFixture(testConfig())
	f.gw.sendErr = map[string]error{
		"unstake": &chain.CallError{
			Kind:   chain.KindReverted,
			Op:     "unstake",
			Reason: "lockup period not ended",
			Err:    errors.New("execution reverted"),
		},
	}

	res := f.engine.Unstake(context.Background(), 3, "10")
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "Lockup period") {
		t.Fatalf("revert reason should map to the lockup message, got %q", res.Message)
	}
}

func TestClaimRefreshesPoolReward(t *testing.T) {
	f := newFixture(testConfig())

	res := f.engine.Claim(context.Background(), 4)
	if !res.Status {
		t.Fatalf("expected success, got %q", res.Message)
	}

	want := []string{
		"send:claimDividends",
		"balances:force",
		"pools:force",
		"stakes:force",
		"pool_reward",
	}
	if got := f.rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event sequence mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestExchangeCapEnforced(t *testing.T) {
	f := newFixture(testConfig())

	res := f.engine.Exchange(context.Background(), "1000001")
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "1000000") {
		t.Fatalf("message should name the cap: %q", res.Message)
	}
	if len(f.rec.all()) != 0 {
		t.Fatalf("cap violation must not touch any service: %v", f.rec.all())
	}
}

func TestExchangeCarriesFee(t *testing.T) {
	f := newFixture(testConfig())
	f.balances.primary = "1000000"
	f.balances.allowance = "1000000"

	res := f.engine.Exchange(context.Background(), "1000000")
	if !res.Status {
		t.Fatalf("amount equal to the cap should pass, got %q", res.Message)
	}
	if f.gw.lastValue == nil || f.gw.lastValue.Cmp(big.NewInt(600000000000000)) != 0 {
		t.Fatalf("exchange should carry the native fee, got %v", f.gw.lastValue)
	}
}

func TestSwapBuyChecksNativeBalance(t *testing.T) {
	f := newFixture(testConfig())
	f.gw.native = big.NewInt(1) // far below 2 tokens in wei

	res := f.engine.Swap(context.Background(), "2", true)
	if res.Status {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(res.Message, "Native balance") {
		t.Fatalf("message mismatch: %q", res.Message)
	}
	for _, event := range f.rec.all() {
		if strings.HasPrefix(event, "send:") {
			t.Fatalf("insufficient native balance must not submit, saw %s", event)
		}
	}
}

func TestSwapBuySendsNative(t *testing.T) {
	f := newFixture(testConfig())
	wei, _ := chain.ToBaseUnits("2", chain.NativeDecimals)
	f.gw.native = new(big.Int).Mul(wei, big.NewInt(2))

	res := f.engine.Swap(context.Background(), "2", true)
	if !res.Status {
		t.Fatalf("expected success, got %q", res.Message)
	}

	want := []string{"native_balance", "send:native", "balances:force"}
	if got := f.rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event sequence mismatch:\n got %v\nwant %v", got, want)
	}
	if f.gw.lastValue.Cmp(wei) != 0 {
		t.Fatalf("native value mismatch: %v", f.gw.lastValue)
	}
}

func TestSwapSellTransfersTokens(t *testing.T) {
	f := newFixture(testConfig())

	res := f.engine.Swap(context.Background(), "5", false)
	if !res.Status {
		t.Fatalf("expected success, got %q", res.Message)
	}

	want := []string{"balances:force", "send:transfer", "balances:force"}
	if got := f.rec.all(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event sequence mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestSwapRequiresPairAddress(t *testing.T) {
	cfg := testConfig()
	cfg.SwapPair = common.Address{}
	f := newFixture(cfg)
	f.gw.native = big.NewInt(1).Mul(big.NewInt(10), big.NewInt(1e18))

	for _, buy := range []bool{true, false} {
		res := f.engine.Swap(context.Background(), "2", buy)
		if res.Status {
			t.Fatalf("swap with no pair configured must fail (buy=%v)", buy)
		}
		if !strings.Contains(res.Message, "not configured") {
			t.Fatalf("message mismatch: %q", res.Message)
		}
	}
	for _, event := range f.rec.all() {
		if strings.HasPrefix(event, "send:") {
			t.Fatalf("no value may move toward the zero address, saw %s", event)
		}
	}
}

func TestExchangeRequiresContractAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Exchange = common.Address{}
	f := newFixture(cfg)
	f.balances.allowance = "1000"

	res := f.engine.Exchange(context.Background(), "100")
	if res.Status {
		t.Fatalf("exchange with no contract configured must fail")
	}
	if !strings.Contains(res.Message, "not configured") {
		t.Fatalf("message mismatch: %q", res.Message)
	}
	if len(f.rec.all()) != 0 {
		t.Fatalf("missing contract must not touch any service: %v", f.rec.all())
	}
}

func TestStakeRequiresStakingAddress(t *testing.T) {
	cfg := testConfig()
	cfg.Staking = common.Address{}
	f := newFixture(cfg)

	for name, run := range map[string]func() Result{
		"stake":   func() Result { return f.engine.Stake(context.Background(), 1, "10") },
		"unstake": func() Result { return f.engine.Unstake(context.Background(), 1, "10") },
		"claim":   func() Result { return f.engine.Claim(context.Background(), 1) },
	} {
		res := run()
		if res.Status {
			t.Fatalf("%s with no staking contract configured must fail", name)
		}
		if !strings.Contains(res.Message, "not configured") {
			t.Fatalf("%s message mismatch: %q", name, res.Message)
		}
	}
	if len(f.rec.all()) != 0 {
		t.Fatalf("missing contract must not touch any service: %v", f.rec.all())
	}
}

func TestDefaultTranslatorInterpolates(t *testing.T) {
	msg := DefaultTranslator("staking.errors.insufficient_balance",
		map[string]string{"balance": "5", "amount": "10"})
	if msg != "Insufficient balance: you have 5, need 10" {
		t.Fatalf("translation mismatch: %q", msg)
	}

	if got := DefaultTranslator("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("unknown keys should fall back to themselves, got %q", got)
	}
}
