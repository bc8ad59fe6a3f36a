// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodeworks/lode/ledger"
	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/lvldb"
	"github.com/lodeworks/lode/params"
	"github.com/lodeworks/lode/staking"
	"github.com/lodeworks/lode/state"
)

var (
	owner = lode.BytesToAddress([]byte("owner"))
	alice = lode.BytesToAddress([]byte("alice"))
	bob   = lode.BytesToAddress([]byte("bob"))
	carol = lode.BytesToAddress([]byte("carol"))
)

type recordingSink struct {
	created []*staking.StakeCreated
	claimed []*staking.StakeClaimed
	fail    error
}

func (r *recordingSink) OnStakeCreated(ev *staking.StakeCreated) error {
	if r.fail != nil {
		return r.fail
	}
	r.created = append(r.created, ev)
	return nil
}

func (r *recordingSink) OnStakeClaimed(ev *staking.StakeClaimed) error {
	if r.fail != nil {
		return r.fail
	}
	r.claimed = append(r.claimed, ev)
	return nil
}

type testEnv struct {
	staking *staking.Staking
	ledger  *ledger.Ledger
	sink    *recordingSink
}

func newTestEnv(t *testing.T) *testEnv {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	l := ledger.New(ledger.Address, st)
	sink := &recordingSink{}
	s := staking.New(staking.Address, st, params.New(params.Address, st), l, sink)

	require.NoError(t, s.Initialize(owner, lode.InitialStakeRatePercent, lode.InitialReferralRatePercent))
	require.NoError(t, s.Mint(owner, alice, big.NewInt(1000)))
	return &testEnv{staking: s, ledger: l, sink: sink}
}

func (env *testEnv) balance(t *testing.T, addr lode.Address) *big.Int {
	bal, err := env.ledger.AvailableBalance(addr)
	require.NoError(t, err)
	return bal
}

func TestAddStake(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.staking.AddStake(alice, big.NewInt(100), &carol, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	stake, err := env.staking.GetStake(alice, id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), stake.Amount)
	assert.Equal(t, lode.InitialStakeRatePercent, stake.RatePercent)
	assert.Equal(t, lode.InitialReferralRatePercent, stake.ReferralRatePercent)
	assert.Equal(t, uint64(1000), stake.StartTime)
	assert.Equal(t, 0, stake.ClaimedTotal.Sign())
	assert.False(t, stake.IsClosed())
	require.NotNil(t, stake.Referral)
	assert.Equal(t, carol, *stake.Referral)

	// funds moved to custody
	assert.Equal(t, big.NewInt(900), env.balance(t, alice))
	custody, err := env.ledger.TotalCustody()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), custody)

	// event emitted
	require.Len(t, env.sink.created, 1)
	assert.Equal(t, uint64(0), env.sink.created[0].ID)
	assert.Equal(t, big.NewInt(100), env.sink.created[0].Amount)

	// indices are appended in order
	id, err = env.staking.AddStake(alice, big.NewInt(50), nil, 2000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	stakes, err := env.staking.Stakes(alice)
	require.NoError(t, err)
	require.Len(t, stakes, 2)
	assert.Equal(t, uint64(1000), stakes[0].StartTime)
	assert.Equal(t, uint64(2000), stakes[1].StartTime)
}

func TestAddStakeInvalidAmount(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staking.AddStake(alice, big.NewInt(0), nil, 1000)
	assert.ErrorIs(t, err, staking.ErrInvalidAmount)

	_, err = env.staking.AddStake(alice, big.NewInt(-5), nil, 1000)
	assert.ErrorIs(t, err, staking.ErrInvalidAmount)

	count, err := env.staking.StakeCount(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, big.NewInt(1000), env.balance(t, alice))
	assert.Empty(t, env.sink.created)
}

func TestAddStakeInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staking.AddStake(alice, big.NewInt(1001), nil, 1000)
	assert.ErrorIs(t, err, staking.ErrInsufficientBalance)

	count, _ := env.staking.StakeCount(alice)
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, big.NewInt(1000), env.balance(t, alice))

	custody, _ := env.ledger.TotalCustody()
	assert.Equal(t, 0, custody.Sign())
}

func TestAddStakeZeroReferralMeansNone(t *testing.T) {
	env := newTestEnv(t)

	zero := lode.Address{}
	id, err := env.staking.AddStake(alice, big.NewInt(100), &zero, 1000)
	require.NoError(t, err)

	stake, err := env.staking.GetStake(alice, id)
	require.NoError(t, err)
	assert.False(t, stake.HasReferral())
}

func TestGetStakeIndexOutOfRange(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staking.GetStake(alice, 0)
	assert.ErrorIs(t, err, staking.ErrIndexOutOfRange)

	_, err = env.staking.AddStake(alice, big.NewInt(100), nil, 1000)
	require.NoError(t, err)

	_, err = env.staking.GetStake(alice, 1)
	assert.ErrorIs(t, err, staking.ErrIndexOutOfRange)
}

func TestClaimWithReferral(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.staking.AddStake(alice, big.NewInt(100), &carol, 1000)
	require.NoError(t, err)

	claimTime := 1000 + lode.MaturityReferencePeriod
	ev, err := env.staking.ClaimReward(alice, id, claimTime)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(45), ev.PrincipalReward)
	assert.Equal(t, big.NewInt(5), ev.ReferralReward)
	assert.Equal(t, claimTime, ev.ClaimTime)

	// rewards minted, principal stays in custody
	assert.Equal(t, big.NewInt(945), env.balance(t, alice))
	assert.Equal(t, big.NewInt(5), env.balance(t, carol))

	supply, _ := env.ledger.TotalSupply()
	assert.Equal(t, big.NewInt(1050), supply)

	stake, err := env.staking.GetStake(alice, id)
	require.NoError(t, err)
	assert.True(t, stake.IsClosed())
	assert.Equal(t, claimTime, stake.ClosedTime)
	assert.Equal(t, big.NewInt(50), stake.ClaimedTotal)

	require.Len(t, env.sink.claimed, 1)
}

func TestClaimWithoutReferral(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.staking.AddStake(alice, big.NewInt(100), nil, 1000)
	require.NoError(t, err)

	ev, err := env.staking.ClaimReward(alice, id, 1000+lode.MaturityReferencePeriod)
	require.NoError(t, err)

	assert.Equal(t, big.NewInt(50), ev.PrincipalReward)
	assert.Equal(t, 0, ev.ReferralReward.Sign())
	assert.Equal(t, big.NewInt(950), env.balance(t, alice))

	supply, _ := env.ledger.TotalSupply()
	assert.Equal(t, big.NewInt(1050), supply)
}

func TestClaimTwiceFails(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.staking.AddStake(alice, big.NewInt(100), &carol, 1000)
	require.NoError(t, err)

	claimTime := 1000 + lode.MaturityReferencePeriod
	_, err = env.staking.ClaimReward(alice, id, claimTime)
	require.NoError(t, err)

	supply, _ := env.ledger.TotalSupply()
	aliceBal := env.balance(t, alice)

	_, err = env.staking.ClaimReward(alice, id, claimTime+lode.MaturityReferencePeriod)
	assert.ErrorIs(t, err, staking.ErrAlreadyClaimed)

	// nothing minted by the failed claim
	supplyAfter, _ := env.ledger.TotalSupply()
	assert.Equal(t, supply, supplyAfter)
	assert.Equal(t, aliceBal, env.balance(t, alice))
	assert.Len(t, env.sink.claimed, 1)
}

func TestClaimUnknownStake(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.staking.ClaimReward(alice, 7, 1000)
	assert.ErrorIs(t, err, staking.ErrStakeNotFound)
}

func TestRateSnapshot(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.staking.AddStake(alice, big.NewInt(100), nil, 1000)
	require.NoError(t, err)

	// later governance changes must not touch the open stake
	require.NoError(t, env.staking.SetStakeRate(owner, big.NewInt(80)))
	require.NoError(t, env.staking.SetReferralRate(owner, big.NewInt(30)))

	ev, err := env.staking.ClaimReward(alice, id, 1000+lode.MaturityReferencePeriod)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), ev.PrincipalReward)

	// new stakes pick up the new rates
	id, err = env.staking.AddStake(bob, big.NewInt(10), nil, 2000)
	assert.ErrorIs(t, err, staking.ErrInsufficientBalance)

	require.NoError(t, env.staking.Mint(owner, bob, big.NewInt(10)))
	id, err = env.staking.AddStake(bob, big.NewInt(10), nil, 2000)
	require.NoError(t, err)

	stake, err := env.staking.GetStake(bob, id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(80), stake.RatePercent)
	assert.Equal(t, big.NewInt(30), stake.ReferralRatePercent)
}

func TestUnauthorized(t *testing.T) {
	env := newTestEnv(t)

	assert.ErrorIs(t, env.staking.SetStakeRate(alice, big.NewInt(1)), staking.ErrUnauthorized)
	assert.ErrorIs(t, env.staking.SetReferralRate(alice, big.NewInt(1)), staking.ErrUnauthorized)
	assert.ErrorIs(t, env.staking.Mint(alice, alice, big.NewInt(1)), staking.ErrUnauthorized)

	// rates unchanged
	stakeID, err := env.staking.AddStake(alice, big.NewInt(100), nil, 1000)
	require.NoError(t, err)
	stake, _ := env.staking.GetStake(alice, stakeID)
	assert.Equal(t, lode.InitialStakeRatePercent, stake.RatePercent)
}

func TestFailingSinkRollsBack(t *testing.T) {
	env := newTestEnv(t)
	env.sink.fail = errors.New("sink broken")

	_, err := env.staking.AddStake(alice, big.NewInt(100), nil, 1000)
	require.Error(t, err)

	// the whole operation is undone
	count, _ := env.staking.StakeCount(alice)
	assert.Equal(t, uint64(0), count)
	assert.Equal(t, big.NewInt(1000), env.balance(t, alice))
	custody, _ := env.ledger.TotalCustody()
	assert.Equal(t, 0, custody.Sign())
}
