// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/lodeworks/lode/lode"
)

// StakeCreated notifies observers that a new stake record was appended.
type StakeCreated struct {
	ID          uint64 // index in the owner's stake collection
	Account     lode.Address
	Referral    *lode.Address
	StartTime   uint64
	Amount      *big.Int
	RatePercent *big.Int
}

// StakeClaimed notifies observers that a stake's reward was claimed and
// the record permanently closed.
type StakeClaimed struct {
	ID              uint64
	Account         lode.Address
	Referral        *lode.Address
	PrincipalReward *big.Int
	ReferralReward  *big.Int
	ClaimTime       uint64
}

// EventSink receives staking events, in emission order.
// The engine has no dependency on who is listening; a failing sink aborts
// and rolls back the emitting operation.
type EventSink interface {
	OnStakeCreated(*StakeCreated) error
	OnStakeClaimed(*StakeClaimed) error
}
