// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "errors"

// Errors returned by staking operations. All of them abort the operation
// with state left unchanged; none is retryable without corrected input.
var (
	ErrInvalidAmount       = errors.New("invalid stake amount")
	ErrInsufficientBalance = errors.New("insufficient balance to stake")
	ErrStakeNotFound       = errors.New("stake not found")
	ErrAlreadyClaimed      = errors.New("stake already claimed")
	ErrUnauthorized        = errors.New("caller not authorized")
	ErrIndexOutOfRange     = errors.New("stake index out of range")
)
