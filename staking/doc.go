// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the stake ledger and reward-accrual engine.
//
// Accounts lock a portion of their balance into custody for accrual against
// a fixed reference period and later claim a time-prorated reward, optionally
// splitting a fixed percentage of it with a referrer named at stake time.
// Records are append-only per account; the claim transition is terminal.
// Balance movements go through the BalanceLedger collaborator, and every
// operation either fully completes or reverts to its entry checkpoint.
package staking
