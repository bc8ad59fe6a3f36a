// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lodeworks/lode/kv"
	"github.com/lodeworks/lode/lode"
)

// Account is the Go form of a persisted account.
type Account struct {
	Balance *big.Int
}

// IsEmpty returns if an account is empty.
// Empty accounts are not persisted.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}}
}

// loadAccount load an account object from the store.
// Never returns nil, instead the empty account is returned if not found.
func loadAccount(store kv.Getter, addr lode.Address) (*Account, error) {
	data, err := store.Get(accountStoreKey(addr))
	if err != nil {
		if store.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount stages an account into the batch.
// The slot is deleted if the account is empty.
func saveAccount(batch kv.Putter, addr lode.Address, a *Account) error {
	if a.IsEmpty() {
		return batch.Delete(accountStoreKey(addr))
	}
	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return batch.Put(accountStoreKey(addr), data)
}
