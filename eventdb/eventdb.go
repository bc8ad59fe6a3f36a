// Copyright (c) 2026 The Lode developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/lodeworks/lode/lode"
	"github.com/lodeworks/lode/metrics"
	"github.com/lodeworks/lode/staking"
)

var metricEventsWritten = metrics.LazyLoadCounter("eventdb_written_event_count")

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	stakeID INTEGER NOT NULL,
	account BLOB(20) NOT NULL,
	referral BLOB(20),
	amount BLOB,
	ratePercent INTEGER,
	principalReward BLOB,
	referralReward BLOB,
	eventTime INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS eventAccountIndex ON event(account);
CREATE INDEX IF NOT EXISTS eventTimeIndex ON event(eventTime);`

// Kind of staking event.
type Kind string

const (
	StakeCreated Kind = "stake_created"
	StakeClaimed Kind = "stake_claimed"
)

// OrderType order of filtered events.
type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Range is a closed time range, in unix seconds.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// Options paging options.
type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter narrows down event queries.
type Filter struct {
	Account *lode.Address `json:"account"`
	Kind    *Kind         `json:"kind"`
	Order   OrderType     `json:"order"` // default asc
	Range   *Range
	Options *Options
}

// Event is one audit record of the staking event sequence.
// Amount/RatePercent are set for stake-created events,
// PrincipalReward/ReferralReward for stake-claimed ones.
type Event struct {
	Sequence        uint64
	Kind            Kind
	StakeID         uint64
	Account         lode.Address
	Referral        *lode.Address
	Amount          *big.Int
	RatePercent     *big.Int
	PrincipalReward *big.Int
	ReferralReward  *big.Int
	Time            uint64
}

// EventDB persists the staking event sequence for external observers.
// It implements staking.EventSink.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

var _ staking.EventSink = (*EventDB)(nil)

// New open or create an event db at the given path.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, err
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem create a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() {
	db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// OnStakeCreated implements staking.EventSink.
func (db *EventDB) OnStakeCreated(ev *staking.StakeCreated) error {
	return db.insert(&Event{
		Kind:        StakeCreated,
		StakeID:     ev.ID,
		Account:     ev.Account,
		Referral:    ev.Referral,
		Amount:      ev.Amount,
		RatePercent: ev.RatePercent,
		Time:        ev.StartTime,
	})
}

// OnStakeClaimed implements staking.EventSink.
func (db *EventDB) OnStakeClaimed(ev *staking.StakeClaimed) error {
	return db.insert(&Event{
		Kind:            StakeClaimed,
		StakeID:         ev.ID,
		Account:         ev.Account,
		Referral:        ev.Referral,
		PrincipalReward: ev.PrincipalReward,
		ReferralReward:  ev.ReferralReward,
		Time:            ev.ClaimTime,
	})
}

func (db *EventDB) insert(ev *Event) error {
	_, err := db.db.Exec(
		"INSERT INTO event(kind, stakeID, account, referral, amount, ratePercent, principalReward, referralReward, eventTime) VALUES(?,?,?,?,?,?,?,?,?)",
		string(ev.Kind),
		ev.StakeID,
		ev.Account.Bytes(),
		addressBlob(ev.Referral),
		bigBlob(ev.Amount),
		bigBlob(ev.RatePercent),
		bigBlob(ev.PrincipalReward),
		bigBlob(ev.ReferralReward),
		ev.Time,
	)
	if err != nil {
		return err
	}
	metricEventsWritten().Add(1)
	return nil
}

// Filter query events with the given filter. A nil filter returns the whole
// sequence in emission order.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query(ctx, "SELECT * FROM event ORDER BY seq ASC")
	}
	var args []interface{}
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Account != nil {
		stmt += " AND account = ?"
		args = append(args, filter.Account.Bytes())
	}
	if filter.Kind != nil {
		stmt += " AND kind = ?"
		args = append(args, string(*filter.Kind))
	}
	if filter.Range != nil {
		stmt += " AND eventTime >= ? AND eventTime <= ?"
		args = append(args, filter.Range.From, filter.Range.To)
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(ctx, stmt, args...)
}

func (db *EventDB) query(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev          Event
			kind        string
			account     []byte
			referral    []byte
			amount      []byte
			ratePercent []byte
			principal   []byte
			refReward   []byte
		)
		if err := rows.Scan(
			&ev.Sequence,
			&kind,
			&ev.StakeID,
			&account,
			&referral,
			&amount,
			&ratePercent,
			&principal,
			&refReward,
			&ev.Time,
		); err != nil {
			return nil, err
		}
		ev.Kind = Kind(kind)
		ev.Account = lode.BytesToAddress(account)
		if len(referral) > 0 {
			addr := lode.BytesToAddress(referral)
			ev.Referral = &addr
		}
		ev.Amount = blobBig(amount)
		ev.RatePercent = blobBig(ratePercent)
		ev.PrincipalReward = blobBig(principal)
		ev.ReferralReward = blobBig(refReward)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func addressBlob(addr *lode.Address) []byte {
	if addr == nil {
		return nil
	}
	return addr.Bytes()
}

// bigBlob renders a big int into a blob, nil for absent values.
// Zero renders as an empty, non-nil blob to stay distinguishable from NULL.
func bigBlob(n *big.Int) []byte {
	if n == nil {
		return nil
	}
	if n.Sign() == 0 {
		return []byte{}
	}
	return n.Bytes()
}

func blobBig(b []byte) *big.Int {
	if b == nil {
		return nil
	}
	return new(big.Int).SetBytes(b)
}
