// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lode

import "math/big"

// Constants of the staking ledger.
const (
	// MaturityReferencePeriod is the period the stake rate is normalized against.
	// A stake held for exactly one reference period accrues amount*rate/100.
	MaturityReferencePeriod uint64 = 365 * 24 * 3600 // (unit: second)
)

// Keys of governance params.
var (
	KeyOwnerAddress        = Blake2b([]byte("owner-address"))
	KeyStakeRatePercent    = Blake2b([]byte("stake-rate-percent"))
	KeyReferralRatePercent = Blake2b([]byte("referral-rate-percent"))

	InitialStakeRatePercent    = big.NewInt(50) // 50% of principal per reference period
	InitialReferralRatePercent = big.NewInt(10) // 10% of the gross reward
)
