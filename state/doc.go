// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the keyed storage that builtin modules operate on.
// It follows the flow as bellow:
//
//	         o
//	         |
//	[ revertable state ]  <- checkpoint / revert
//	         |
//	  [ stacked map ] -> [ journal ] -> [ commit (read set validated) ] -> [ kv batch ]
//	         |
//	   [ read set ]
//	         |
//	  [ kv store ]
//
// Every State is a short lived transaction. Values read from the store are
// remembered; Creator.Commit refuses to write a State whose reads have since
// been overwritten by another commit, returning ErrConflict.
package state
