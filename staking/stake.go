// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/state"
)

// Stake is one record of the append-only per-account stake collection.
// All fields except ClaimedTotal and ClosedTime are fixed at creation;
// both rates are snapshots of the global rates at stake time, so later
// governance changes never touch an open stake.
type Stake struct {
	Amount              *big.Int
	RatePercent         *big.Int
	ReferralRatePercent *big.Int
	Referral            *lode.Address `rlp:"nil"`
	StartTime           uint64
	ClaimedTotal        *big.Int
	ClosedTime          uint64 // claim timestamp, 0 while open
}

var (
	_ state.StorageEncoder = (*Stake)(nil)
	_ state.StorageDecoder = (*Stake)(nil)
)

// IsEmpty returns whether the slot holds no real record.
func (s *Stake) IsEmpty() bool {
	return (s.Amount == nil || s.Amount.Sign() == 0) && s.StartTime == 0
}

// IsClosed returns whether the stake has been claimed.
func (s *Stake) IsClosed() bool {
	return s.ClosedTime != 0
}

// HasReferral returns whether a referral account was named at stake time.
func (s *Stake) HasReferral() bool {
	return s.Referral != nil && !s.Referral.IsZero()
}

// Encode implements state.StorageEncoder.
func (s *Stake) Encode() ([]byte, error) {
	if s.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(s)
}

// Decode implements state.StorageDecoder.
func (s *Stake) Decode(data []byte) error {
	if len(data) == 0 {
		*s = Stake{
			Amount:              &big.Int{},
			RatePercent:         &big.Int{},
			ReferralRatePercent: &big.Int{},
			ClaimedTotal:        &big.Int{},
		}
		return nil
	}
	return rlp.DecodeBytes(data, s)
}

func (s *Stake) String() string {
	return fmt.Sprintf("Stake(Amount=%v, Rate=%v%%, ReferralRate=%v%%, Referral=%v, StartTime=%v, ClaimedTotal=%v, ClosedTime=%v)",
		s.Amount, s.RatePercent, s.ReferralRatePercent, s.Referral, s.StartTime, s.ClaimedTotal, s.ClosedTime)
}

func stakeCountKey(owner lode.Address) lode.Bytes32 {
	return lode.Blake2b([]byte("stake-count"), owner.Bytes())
}

func stakeKey(owner lode.Address, index uint64) lode.Bytes32 {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], index)
	return lode.Blake2b([]byte("stake"), owner.Bytes(), n[:])
}
