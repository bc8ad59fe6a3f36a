// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/lodeworks/lode/kv"
	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/stackedmap"
)

const (
	accountStorePrefix = "a"
	storageStorePrefix = "s"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// storageKey distinguishes storage slots in the journal.
type storageKey struct {
	addr lode.Address
	key  lode.Bytes32
}

func accountStoreKey(addr lode.Address) []byte {
	return append([]byte(accountStorePrefix), addr.Bytes()...)
}

func storageStoreKey(addr lode.Address, key lode.Bytes32) []byte {
	k := append([]byte(storageStorePrefix), addr.Bytes()...)
	return append(k, key.Bytes()...)
}

// State manages accounts and contract-style storage over a kv store,
// with checkpoint/revert in save-restore manner.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap // keeps revisions of state
}

// New create state object bound to the given store.
func New(store kv.GetPutter) *State {
	state := State{store: store}
	state.sm = stackedmap.New(func(key interface{}) (interface{}, bool, error) {
		return state.storeGetter(key)
	})
	// the base level accumulates changes until staged
	state.sm.Push()
	return &state
}

// storeGetter implements stackedmap.MapGetter.
func (s *State) storeGetter(key interface{}) (value interface{}, exist bool, err error) {
	switch k := key.(type) {
	case lode.Address: // get account
		acc, err := loadAccount(s.store, k)
		if err != nil {
			return nil, false, err
		}
		return acc, true, nil
	case storageKey: // get storage
		data, err := s.store.Get(storageStoreKey(k.addr, k.key))
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// getAccount gets account by address. The returned account should not be modified.
func (s *State) getAccount(addr lode.Address) (*Account, error) {
	v, _, err := s.sm.Get(addr)
	if err != nil {
		return nil, err
	}
	return v.(*Account), nil
}

// getAccountCopy get a copy of account by address.
func (s *State) getAccountCopy(addr lode.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr lode.Address, acc *Account) {
	s.sm.Put(addr, acc)
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr lode.Address) (*big.Int, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return nil, &Error{err}
	}
	return acc.Balance, nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr lode.Address, balance *big.Int) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	cpy.Balance = balance
	s.updateAccount(addr, &cpy)
	return nil
}

// GetRawStorage gets raw storage data for the given address and key.
func (s *State) GetRawStorage(addr lode.Address, key lode.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage set raw storage for the given address and key.
// Pass nil raw to clear the slot.
func (s *State) SetRawStorage(addr lode.Address, key lode.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr lode.Address, key lode.Bytes32) (lode.Bytes32, error) {
	var v lode.Bytes32
	if err := s.DecodeStorage(addr, key, (*stgBytes32)(&v).Decode); err != nil {
		return lode.Bytes32{}, err
	}
	return v, nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr lode.Address, key, value lode.Bytes32) error {
	return s.EncodeStorage(addr, key, (*stgBytes32)(&value).Encode)
}

// EncodeStorage set storage value encoded by given enc method.
// An empty encoded value clears the slot.
func (s *State) EncodeStorage(addr lode.Address, key lode.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// The dec method is passed nil data if the slot is unset.
func (s *State) DecodeStorage(addr lode.Address, key lode.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to snapshot all cumulative changes,
// ready to be committed to the store.
func (s *State) Stage() *Stage {
	accounts := make(map[lode.Address]*Account)
	storages := make(map[storageKey]rlp.RawValue)

	s.sm.Journal(func(key, value interface{}) bool {
		switch k := key.(type) {
		case lode.Address:
			accounts[k] = value.(*Account)
		case storageKey:
			storages[k] = value.(rlp.RawValue)
		}
		return true
	})
	return &Stage{
		store:    s.store,
		accounts: accounts,
		storages: storages,
	}
}
