// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package slots lays typed values out over the keyed storage of a state.
// Every builtin module owns an address; its values live under that address
// at positions derived from a base slot and a key.
package slots

import (
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}
