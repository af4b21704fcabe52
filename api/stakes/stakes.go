// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/api/utils"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/logdb"
	"github.com/vechain/stakevault/thor"
)

type Stakes struct {
	engine    *staker.Staker
	logDB     *logdb.LogDB
	logsLimit uint64
}

// New creates the stakes API. Event history is served only when logDB is not nil.
func New(engine *staker.Staker, logDB *logdb.LogDB, logsLimit uint64) *Stakes {
	return &Stakes{
		engine,
		logDB,
		logsLimit,
	}
}

func (s *Stakes) handleOpenRewardVault(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.ParseAddressVar(mux.Vars(req), "asset")
	if err != nil {
		return err
	}
	addr, err := s.engine.OpenRewardVault(asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertRewardVault(addr, vault.StatusActive, 0))
}

func (s *Stakes) handleFundRewardVault(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.ParseAddressVar(mux.Vars(req), "asset")
	if err != nil {
		return err
	}
	var body FundRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.engine.FundRewardVault(asset, body.Funder, body.Amount); err != nil {
		return err
	}
	return s.writeRewardVault(w, asset)
}

func (s *Stakes) handleGetRewardVault(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.ParseAddressVar(mux.Vars(req), "asset")
	if err != nil {
		return err
	}
	return s.writeRewardVault(w, asset)
}

func (s *Stakes) writeRewardVault(w http.ResponseWriter, asset thor.Address) error {
	addr, status, balance, err := s.engine.RewardVault(asset)
	if err != nil {
		return err
	}
	if status == vault.StatusUninitialized {
		return utils.NotFound(fmt.Errorf("reward vault of %v not found", asset))
	}
	return utils.WriteJSON(w, convertRewardVault(addr, status, balance))
}

func (s *Stakes) parseKey(req *http.Request) (staker, asset thor.Address, err error) {
	vars := mux.Vars(req)
	if asset, err = utils.ParseAddressVar(vars, "asset"); err != nil {
		return
	}
	staker, err = utils.ParseAddressVar(vars, "staker")
	return
}

func (s *Stakes) handleStake(w http.ResponseWriter, req *http.Request) error {
	staker, asset, err := s.parseKey(req)
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.engine.Stake(staker, asset, body.Amount); err != nil {
		return err
	}
	return s.writeStake(w, staker, asset)
}

func (s *Stakes) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	staker, asset, err := s.parseKey(req)
	if err != nil {
		return err
	}
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.engine.Unstake(staker, asset, body.Amount); err != nil {
		return err
	}
	return s.writeStake(w, staker, asset)
}

func (s *Stakes) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	staker, asset, err := s.parseKey(req)
	if err != nil {
		return err
	}
	return s.writeStake(w, staker, asset)
}

func (s *Stakes) writeStake(w http.ResponseWriter, staker, asset thor.Address) error {
	info, err := s.engine.Info(staker, asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertStake(info))
}

func (s *Stakes) handleGetEvents(w http.ResponseWriter, req *http.Request) error {
	staker, asset, err := s.parseKey(req)
	if err != nil {
		return err
	}
	limit, err := utils.ParseUint64Query(req, "limit", s.logsLimit)
	if err != nil {
		return err
	}
	if limit > s.logsLimit {
		return utils.Forbidden(fmt.Errorf("limit exceeds the maximum allowed value of %d", s.logsLimit))
	}
	offset, err := utils.ParseUint64Query(req, "offset", 0)
	if err != nil {
		return err
	}
	order := logdb.Order(req.URL.Query().Get("order"))
	switch order {
	case "", logdb.ASC, logdb.DESC:
	default:
		return utils.BadRequest(errors.New("order: must be asc or desc"))
	}

	events, err := s.logDB.FilterEvents(req.Context(), &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Asset: &asset, Account: &staker}},
		Order:       order,
		Options:     &logdb.Options{Offset: offset, Limit: limit},
	})
	if err != nil {
		return err
	}
	if events == nil {
		events = []*logdb.Event{}
	}
	return utils.WriteJSON(w, Events(events))
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}/reward-vault").
		Methods(http.MethodPost).
		Name("stakes_open_reward_vault").
		HandlerFunc(utils.WrapHandlerFunc(s.handleOpenRewardVault))
	sub.Path("/{asset}/reward-vault").
		Methods(http.MethodGet).
		Name("stakes_get_reward_vault").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetRewardVault))
	sub.Path("/{asset}/reward-vault/fund").
		Methods(http.MethodPost).
		Name("stakes_fund_reward_vault").
		HandlerFunc(utils.WrapHandlerFunc(s.handleFundRewardVault))

	sub.Path("/{asset}/{staker}").
		Methods(http.MethodGet).
		Name("stakes_get_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStake))
	sub.Path("/{asset}/{staker}/stake").
		Methods(http.MethodPost).
		Name("stakes_stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/{asset}/{staker}/unstake").
		Methods(http.MethodPost).
		Name("stakes_unstake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleUnstake))

	if s.logDB != nil {
		sub.Path("/{asset}/{staker}/events").
			Methods(http.MethodGet).
			Name("stakes_get_events").
			HandlerFunc(utils.WrapHandlerFunc(s.handleGetEvents))
	}
}
