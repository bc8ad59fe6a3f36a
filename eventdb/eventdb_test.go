// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/staking"
)

func newTestDB(t *testing.T) *EventDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestInsertAndFilter(t *testing.T) {
	db := newTestDB(t)

	alice := lode.BytesToAddress([]byte("alice"))
	bob := lode.BytesToAddress([]byte("bob"))
	carol := lode.BytesToAddress([]byte("carol"))

	require.NoError(t, db.OnStakeCreated(&staking.StakeCreated{
		ID:          0,
		Account:     alice,
		Referral:    &carol,
		StartTime:   1000,
		Amount:      big.NewInt(100),
		RatePercent: big.NewInt(50),
	}))
	require.NoError(t, db.OnStakeCreated(&staking.StakeCreated{
		ID:          0,
		Account:     bob,
		StartTime:   2000,
		Amount:      big.NewInt(70),
		RatePercent: big.NewInt(50),
	}))
	require.NoError(t, db.OnStakeClaimed(&staking.StakeClaimed{
		ID:              0,
		Account:         alice,
		Referral:        &carol,
		PrincipalReward: big.NewInt(45),
		ReferralReward:  big.NewInt(5),
		ClaimTime:       3000,
	}))

	// whole sequence, emission order
	all, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, StakeCreated, all[0].Kind)
	assert.Equal(t, StakeClaimed, all[2].Kind)
	assert.Equal(t, big.NewInt(100), all[0].Amount)
	assert.Nil(t, all[0].PrincipalReward)
	require.NotNil(t, all[0].Referral)
	assert.Equal(t, carol, *all[0].Referral)
	assert.Nil(t, all[1].Referral)

	// by account
	events, err := db.Filter(context.Background(), &Filter{Account: &alice})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// by kind
	kind := StakeClaimed
	events, err = db.Filter(context.Background(), &Filter{Kind: &kind})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, big.NewInt(45), events[0].PrincipalReward)
	assert.Equal(t, big.NewInt(5), events[0].ReferralReward)
	assert.Equal(t, uint64(3000), events[0].Time)

	// by time range
	events, err = db.Filter(context.Background(), &Filter{Range: &Range{From: 1500, To: 2500}})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, bob, events[0].Account)

	// descending with paging
	events, err = db.Filter(context.Background(), &Filter{
		Order:   DESC,
		Options: &Options{Offset: 0, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, StakeClaimed, events[0].Kind)
}
