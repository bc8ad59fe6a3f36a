// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/lodeworks/lode/lode"
)

var big100 = big.NewInt(100)

// CalcReward computes the accrued reward of a stake at the given time,
// split into the staker's and the referrer's share.
//
// The gross reward is amount * rate% * duration / reference-period, with
// truncating integer division. Accrual is linear and uncapped: a stake held
// longer than the reference period keeps accruing proportionally. The
// referral share is the snapshotted referral percentage of the gross
// reward; the staker receives the remainder, so the two shares always sum
// to the gross reward exactly.
func CalcReward(s *Stake, now uint64) (principal, referral *big.Int) {
	if s.IsEmpty() || now <= s.StartTime {
		return &big.Int{}, &big.Int{}
	}

	duration := now - s.StartTime

	gross := new(big.Int).SetUint64(duration)
	gross.Mul(gross, s.Amount)
	gross.Mul(gross, s.RatePercent)
	gross.Div(gross, new(big.Int).Mul(big100, new(big.Int).SetUint64(lode.MaturityReferencePeriod)))

	if !s.HasReferral() {
		return gross, &big.Int{}
	}

	referral = new(big.Int).Mul(gross, s.ReferralRatePercent)
	referral.Div(referral, big100)
	return new(big.Int).Sub(gross, referral), referral
}
