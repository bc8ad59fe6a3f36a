// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/metrics"
	"github.com/lodeworks/lode/state"
)

var metricTotalCustody = metrics.LazyLoadGauge("ledger_total_custody")

// Address the reserved account balance custody is held under.
var Address = lode.BytesToAddress([]byte("Ledger"))

var (
	totalSupplyKey  = lode.Blake2b([]byte("total-supply"))
	totalCustodyKey = lode.Blake2b([]byte("total-custody"))
)

// ErrInsufficientBalance returned when an account cannot fund a custody transfer.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger implements the fungible balance bookkeeping: per-account balances,
// custody transfers and issuance, with supply/custody audit totals.
type Ledger struct {
	addr  lode.Address
	state *state.State
}

// New create a ledger instance.
func New(addr lode.Address, state *state.State) *Ledger {
	return &Ledger{addr, state}
}

func (l *Ledger) getTotal(key lode.Bytes32) (*big.Int, error) {
	var v big.Int
	if err := l.state.GetStructuredStorage(l.addr, key, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (l *Ledger) addTotal(key lode.Bytes32, amount *big.Int) error {
	total, err := l.getTotal(key)
	if err != nil {
		return err
	}
	return l.state.SetStructuredStorage(l.addr, key, new(big.Int).Add(total, amount))
}

// TotalSupply returns the total issued balance.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	return l.getTotal(totalSupplyKey)
}

// TotalCustody returns the balance currently held in custody.
func (l *Ledger) TotalCustody() (*big.Int, error) {
	return l.getTotal(totalCustodyKey)
}

// AvailableBalance returns the spendable balance of an account.
func (l *Ledger) AvailableBalance(addr lode.Address) (*big.Int, error) {
	return l.state.GetBalance(addr)
}

// Mint issues new balance to the given account, growing total supply.
func (l *Ledger) Mint(addr lode.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(addr, new(big.Int).Add(bal, amount)); err != nil {
		return err
	}
	return l.addTotal(totalSupplyKey, amount)
}

// MoveToCustody moves amount from the given account into custody.
// Returns ErrInsufficientBalance if the account cannot fund it.
func (l *Ledger) MoveToCustody(addr lode.Address, amount *big.Int) error {
	bal, err := l.state.GetBalance(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if amount.Sign() == 0 {
		return nil
	}
	if err := l.state.SetBalance(addr, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	custody, err := l.state.GetBalance(l.addr)
	if err != nil {
		return err
	}
	if err := l.state.SetBalance(l.addr, new(big.Int).Add(custody, amount)); err != nil {
		return err
	}
	if err := l.addTotal(totalCustodyKey, amount); err != nil {
		return err
	}
	if total, err := l.TotalCustody(); err == nil && total.IsInt64() {
		metricTotalCustody().Set(total.Int64())
	}
	return nil
}
