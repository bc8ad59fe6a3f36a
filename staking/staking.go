// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/log"
	"github.com/lodeworks/lode/metrics"
	"github.com/lodeworks/lode/params"
	"github.com/lodeworks/lode/state"
)

// Address the reserved account stake records are stored under.
var Address = lode.BytesToAddress([]byte("Staking"))

var (
	logger = log.WithContext("pkg", "staking")

	metricStakesCreated = metrics.LazyLoadCounter("staking_created_stake_count")
	metricStakesClaimed = metrics.LazyLoadCounter("staking_claimed_stake_count")
)

// BalanceLedger is the balance bookkeeping collaborator the engine draws on.
// It is the only way the engine touches balances.
type BalanceLedger interface {
	AvailableBalance(addr lode.Address) (*big.Int, error)
	MoveToCustody(addr lode.Address, amount *big.Int) error
	Mint(addr lode.Address, amount *big.Int) error
}

// Staking owns the per-account stake collections and drives the
// accrue/claim lifecycle of every record.
//
// Operations are designed for a single-writer execution environment: each
// call validates, mutates and emits as one indivisible step, and any error
// reverts the state to the pre-call checkpoint.
type Staking struct {
	addr   lode.Address
	state  *state.State
	params *params.Params
	ledger BalanceLedger
	sink   EventSink
}

// New create a staking engine instance. sink may be nil.
func New(addr lode.Address, state *state.State, params *params.Params, ledger BalanceLedger, sink EventSink) *Staking {
	return &Staking{addr, state, params, ledger, sink}
}

// Initialize seeds the governance params: the privileged owner and the
// initial stake/referral rates. Meant to be called once when the ledger is
// bootstrapped.
func (s *Staking) Initialize(owner lode.Address, stakeRatePercent, referralRatePercent *big.Int) error {
	if err := s.params.SetAddress(lode.KeyOwnerAddress, owner); err != nil {
		return err
	}
	if err := s.params.Set(lode.KeyStakeRatePercent, stakeRatePercent); err != nil {
		return err
	}
	return s.params.Set(lode.KeyReferralRatePercent, referralRatePercent)
}

//
// Stake ledger reads
//

// StakeCount returns the length of the owner's stake collection.
func (s *Staking) StakeCount(owner lode.Address) (uint64, error) {
	var count uint64
	if err := s.state.GetStructuredStorage(s.addr, stakeCountKey(owner), &count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetStake returns one stake record by index.
func (s *Staking) GetStake(owner lode.Address, index uint64) (*Stake, error) {
	count, err := s.StakeCount(owner)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, ErrIndexOutOfRange
	}
	return s.getStake(owner, index)
}

// Stakes returns the owner's full stake history, claimed and unclaimed,
// in stake order.
func (s *Staking) Stakes(owner lode.Address) ([]*Stake, error) {
	count, err := s.StakeCount(owner)
	if err != nil {
		return nil, err
	}
	stakes := make([]*Stake, 0, count)
	for i := uint64(0); i < count; i++ {
		stake, err := s.getStake(owner, i)
		if err != nil {
			return nil, err
		}
		stakes = append(stakes, stake)
	}
	return stakes, nil
}

func (s *Staking) getStake(owner lode.Address, index uint64) (*Stake, error) {
	var stake Stake
	if err := s.state.GetStructuredStorage(s.addr, stakeKey(owner, index), &stake); err != nil {
		return nil, err
	}
	return &stake, nil
}

func (s *Staking) setStake(owner lode.Address, index uint64, stake *Stake) error {
	return s.state.SetStructuredStorage(s.addr, stakeKey(owner, index), stake)
}

//
// Stake ledger writes
//

// AddStake locks amount of the owner's balance into custody and appends a
// new open stake record carrying the current global rates. It returns the
// new record's index.
func (s *Staking) AddStake(owner lode.Address, amount *big.Int, referral *lode.Address, now uint64) (uint64, error) {
	chk := s.state.NewCheckpoint()
	id, event, err := s.addStake(owner, amount, referral, now)
	if err != nil {
		s.state.RevertTo(chk)
		return 0, err
	}
	if s.sink != nil {
		if err := s.sink.OnStakeCreated(event); err != nil {
			s.state.RevertTo(chk)
			return 0, errors.Wrap(err, "emit stake created")
		}
	}
	metricStakesCreated().Add(1)
	logger.Info("stake created", "owner", owner, "id", id, "amount", amount, "rate", event.RatePercent)
	return id, nil
}

func (s *Staking) addStake(owner lode.Address, amount *big.Int, referral *lode.Address, now uint64) (uint64, *StakeCreated, error) {
	if amount == nil || amount.Sign() <= 0 {
		return 0, nil, ErrInvalidAmount
	}
	available, err := s.ledger.AvailableBalance(owner)
	if err != nil {
		return 0, nil, err
	}
	if available.Cmp(amount) < 0 {
		return 0, nil, ErrInsufficientBalance
	}

	// a zero referral address means no referral
	if referral != nil && referral.IsZero() {
		referral = nil
	}

	rate, err := s.params.Get(lode.KeyStakeRatePercent)
	if err != nil {
		return 0, nil, err
	}
	referralRate, err := s.params.Get(lode.KeyReferralRatePercent)
	if err != nil {
		return 0, nil, err
	}

	if err := s.ledger.MoveToCustody(owner, amount); err != nil {
		return 0, nil, errors.Wrap(err, "move stake to custody")
	}

	count, err := s.StakeCount(owner)
	if err != nil {
		return 0, nil, err
	}
	stake := &Stake{
		Amount:              amount,
		RatePercent:         rate,
		ReferralRatePercent: referralRate,
		Referral:            referral,
		StartTime:           now,
		ClaimedTotal:        &big.Int{},
	}
	if err := s.setStake(owner, count, stake); err != nil {
		return 0, nil, err
	}
	if err := s.state.SetStructuredStorage(s.addr, stakeCountKey(owner), count+1); err != nil {
		return 0, nil, err
	}

	return count, &StakeCreated{
		ID:          count,
		Account:     owner,
		Referral:    referral,
		StartTime:   now,
		Amount:      amount,
		RatePercent: rate,
	}, nil
}

// ClaimReward claims the reward accrued by the stake at the given index,
// minting the staker's and referrer's shares and permanently closing the
// record. A closed record can never be claimed again.
func (s *Staking) ClaimReward(owner lode.Address, index uint64, now uint64) (*StakeClaimed, error) {
	chk := s.state.NewCheckpoint()
	event, err := s.claimReward(owner, index, now)
	if err != nil {
		s.state.RevertTo(chk)
		return nil, err
	}
	if s.sink != nil {
		if err := s.sink.OnStakeClaimed(event); err != nil {
			s.state.RevertTo(chk)
			return nil, errors.Wrap(err, "emit stake claimed")
		}
	}
	metricStakesClaimed().Add(1)
	logger.Info("stake claimed", "owner", owner, "id", index,
		"principal", event.PrincipalReward, "referral", event.ReferralReward)
	return event, nil
}

func (s *Staking) claimReward(owner lode.Address, index uint64, now uint64) (*StakeClaimed, error) {
	stake, err := s.getStake(owner, index)
	if err != nil {
		return nil, err
	}
	if stake.IsEmpty() {
		return nil, ErrStakeNotFound
	}
	// the closed-time guard; checked and set within the same step
	if stake.IsClosed() {
		return nil, ErrAlreadyClaimed
	}

	principal, referral := CalcReward(stake, now)

	stake.ClaimedTotal = new(big.Int).Add(stake.ClaimedTotal, new(big.Int).Add(principal, referral))
	stake.ClosedTime = now
	if err := s.setStake(owner, index, stake); err != nil {
		return nil, err
	}

	if err := s.ledger.Mint(owner, principal); err != nil {
		return nil, errors.Wrap(err, "mint principal reward")
	}
	if stake.HasReferral() {
		if err := s.ledger.Mint(*stake.Referral, referral); err != nil {
			return nil, errors.Wrap(err, "mint referral reward")
		}
	}

	return &StakeClaimed{
		ID:              index,
		Account:         owner,
		Referral:        stake.Referral,
		PrincipalReward: principal,
		ReferralReward:  referral,
		ClaimTime:       now,
	}, nil
}

//
// Governance, restricted to the owner
//

// SetStakeRate overwrites the global stake rate used by future stakes.
// Open stakes keep the rate snapshotted at their creation.
func (s *Staking) SetStakeRate(caller lode.Address, percent *big.Int) error {
	if err := s.checkOwner(caller); err != nil {
		return err
	}
	logger.Info("stake rate changed", "caller", caller, "rate", percent)
	return s.params.Set(lode.KeyStakeRatePercent, percent)
}

// SetReferralRate overwrites the global referral rate used by future stakes.
func (s *Staking) SetReferralRate(caller lode.Address, percent *big.Int) error {
	if err := s.checkOwner(caller); err != nil {
		return err
	}
	logger.Info("referral rate changed", "caller", caller, "rate", percent)
	return s.params.Set(lode.KeyReferralRatePercent, percent)
}

// Mint issues new balance directly, bypassing staking. Audit-only use.
func (s *Staking) Mint(caller, account lode.Address, amount *big.Int) error {
	if err := s.checkOwner(caller); err != nil {
		return err
	}
	chk := s.state.NewCheckpoint()
	if err := s.ledger.Mint(account, amount); err != nil {
		s.state.RevertTo(chk)
		return err
	}
	logger.Info("balance minted", "caller", caller, "account", account, "amount", amount)
	return nil
}

func (s *Staking) checkOwner(caller lode.Address) error {
	owner, err := s.params.GetAddress(lode.KeyOwnerAddress)
	if err != nil {
		return err
	}
	if owner.IsZero() || owner != caller {
		return ErrUnauthorized
	}
	return nil
}
