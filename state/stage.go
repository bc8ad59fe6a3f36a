// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lodeworks/lode/kv"
	"github.com/lodeworks/lode/lode"
)

// Stage abstracts the cumulative changes of a state, ready to be committed.
type Stage struct {
	store    kv.GetPutter
	accounts map[lode.Address]*Account
	storages map[storageKey]rlp.RawValue
}

// Commit commits all changes into the underlying store in one batch.
func (s *Stage) Commit() error {
	batch := s.store.NewBatch()
	for addr, acc := range s.accounts {
		if err := saveAccount(batch, addr, acc); err != nil {
			return &Error{err}
		}
	}
	for k, raw := range s.storages {
		if len(raw) == 0 {
			if err := batch.Delete(storageStoreKey(k.addr, k.key)); err != nil {
				return &Error{err}
			}
			continue
		}
		if err := batch.Put(storageStoreKey(k.addr, k.key), raw); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	return nil
}
