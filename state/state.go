// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/stakevault/kv"
	"github.com/vechain/stakevault/stackedmap"
	"github.com/vechain/stakevault/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr thor.Address
	key  thor.Bytes32
}

func (k storageKey) bytes() []byte {
	return append(k.addr.Bytes(), k.key.Bytes()...)
}

// State is a revertable view over the store.
// It is not safe for concurrent use.
type State struct {
	src   kv.Getter
	sm    *stackedmap.StackedMap[storageKey, rlp.RawValue]
	reads map[storageKey]rlp.RawValue // values as first seen in src
}

// New create state object reading from src.
func New(src kv.Getter) *State {
	s := &State{
		src:   src,
		reads: make(map[storageKey]rlp.RawValue),
	}
	s.sm = stackedmap.New(s.srcGetter)
	return s
}

// srcGetter implements stackedmap.MapGetter.
func (s *State) srcGetter(key storageKey) (rlp.RawValue, bool, error) {
	if v, ok := s.reads[key]; ok {
		return v, true, nil
	}
	v, err := s.src.Get(key.bytes())
	if err != nil {
		if !s.src.IsNotFound(err) {
			return nil, false, err
		}
		v = nil
	}
	s.reads[key] = v
	return v, true, nil
}

// GetRawStorage returns storage value in rlp raw for given address and key.
// An empty value is returned for absent keys.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw. An empty value deletes the key.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
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
	if revision < 1 || revision >= s.sm.Depth() {
		panic(fmt.Sprintf("state: invalid revision %d", revision))
	}
	s.sm.PopTo(revision)
}

// changes returns the latest value of every key written since creation, keyed by store key.
func (s *State) changes() map[string]rlp.RawValue {
	changes := make(map[string]rlp.RawValue)
	for _, entry := range s.sm.Journal() {
		changes[string(entry.Key.bytes())] = entry.Value
	}
	return changes
}

// Dirty returns whether the state holds uncommitted writes.
func (s *State) Dirty() bool {
	return len(s.sm.Journal()) > 0
}
