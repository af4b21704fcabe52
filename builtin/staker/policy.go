// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"fmt"
	"strings"
)

// UnstakePolicy selects how unstake moves principal and updates the record.
type UnstakePolicy uint8

const (
	// PolicySettle releases only the requested amount and always updates the record.
	PolicySettle UnstakePolicy = iota
	// PolicyLegacy releases the whole principal first and skips the record
	// update when no reward accrued.
	PolicyLegacy
)

func (p UnstakePolicy) String() string {
	switch p {
	case PolicySettle:
		return "settle"
	case PolicyLegacy:
		return "legacy"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParseUnstakePolicy parses the name of a policy.
func ParseUnstakePolicy(s string) (UnstakePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "settle":
		return PolicySettle, nil
	case "legacy":
		return PolicyLegacy, nil
	default:
		return 0, fmt.Errorf("unknown unstake policy %q", s)
	}
}
