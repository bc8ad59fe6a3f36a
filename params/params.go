// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/state"
)

// Address the reserved account address params are stored under.
var Address = lode.BytesToAddress([]byte("Params"))

// Params binder of global governance parameters.
type Params struct {
	addr  lode.Address
	state *state.State
}

// New create a params instance.
func New(addr lode.Address, state *state.State) *Params {
	return &Params{addr, state}
}

// Get gets the value for the given param key.
// Unset params read as zero.
func (p *Params) Get(key lode.Bytes32) (*big.Int, error) {
	var v big.Int
	if err := p.state.GetStructuredStorage(p.addr, key, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Set sets the value for the given param key.
func (p *Params) Set(key lode.Bytes32, value *big.Int) error {
	return p.state.SetStructuredStorage(p.addr, key, value)
}

// GetAddress gets an address-valued param, e.g. the privileged owner.
func (p *Params) GetAddress(key lode.Bytes32) (lode.Address, error) {
	v, err := p.Get(key)
	if err != nil {
		return lode.Address{}, err
	}
	return lode.BytesToAddress(v.Bytes()), nil
}

// SetAddress sets an address-valued param.
func (p *Params) SetAddress(key lode.Bytes32, addr lode.Address) error {
	return p.Set(key, new(big.Int).SetBytes(addr.Bytes()))
}
