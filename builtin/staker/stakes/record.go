// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/builtin/slots"
	"github.com/vechain/stakevault/thor"
)

var slotRecords = thor.BytesToBytes32([]byte("stake-records"))

// Record is the stake position of one staker in one asset.
type Record struct {
	Staker        thor.Address
	Asset         thor.Address
	StakedAmount  uint64
	IsStaked      bool
	LastEventTime uint64
}

// Key returns the storage key of the record of (staker, asset).
func Key(staker, asset thor.Address) thor.Bytes32 {
	return thor.Blake2b(staker.Bytes(), asset.Bytes())
}

// AuthorityAddress returns the address that controls the stake vault of (staker, asset).
func AuthorityAddress(staker, asset thor.Address) thor.Address {
	return thor.DeriveAddress(thor.SeedStakeInfo, staker.Bytes(), asset.Bytes())
}

// Authority returns the address that controls the stake vault of the record.
func (r *Record) Authority() thor.Address {
	return AuthorityAddress(r.Staker, r.Asset)
}

// PendingReward returns the reward accrued by the record up to now.
func (r *Record) PendingReward(now uint64) (uint64, error) {
	if !r.IsStaked {
		return 0, nil
	}
	elapsed, err := Elapsed(r.LastEventTime, now)
	if err != nil {
		return 0, err
	}
	return CalcReward(r.StakedAmount, elapsed)
}

type Service struct {
	records *slots.Mapping[thor.Bytes32, *Record]
}

func New(sctx *slots.Context) *Service {
	return &Service{
		records: slots.NewMapping[thor.Bytes32, *Record](sctx, slotRecords),
	}
}

// Get returns the record of (staker, asset). A record that was never
// written is returned empty and unstaked, ready to be filled.
func (s *Service) Get(staker, asset thor.Address) (*Record, error) {
	rec, err := s.records.Get(Key(staker, asset))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake record")
	}
	rec.Staker = staker
	rec.Asset = asset
	return rec, nil
}

func (s *Service) Set(rec *Record) error {
	if err := s.records.Set(Key(rec.Staker, rec.Asset), rec); err != nil {
		return errors.Wrap(err, "failed to set stake record")
	}
	return nil
}
