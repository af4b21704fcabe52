// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/thor"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive range of event times.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events by their fields. Nil fields match anything.
type EventCriteria struct {
	Asset   *thor.Address
	Account *thor.Address
	Kind    *staker.EventKind
}

// EventFilter selects events matching any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

// Event is a stored engine event.
type Event struct {
	*staker.Event
	Seq int64 `json:"seq"`
}
