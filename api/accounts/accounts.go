// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/api/utils"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/thor"
)

type Accounts struct {
	engine   *staker.Staker
	soloMode bool
}

// New creates the accounts API. Minting is only mounted in solo mode.
func New(engine *staker.Staker, soloMode bool) *Accounts {
	return &Accounts{
		engine,
		soloMode,
	}
}

func (a *Accounts) getAccount(asset, owner thor.Address) (*Account, error) {
	balance, err := a.engine.Balance(asset, owner)
	if err != nil {
		return nil, err
	}
	return &Account{
		Asset:   asset,
		Owner:   owner,
		Balance: balance,
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	asset, err := utils.ParseAddressVar(vars, "asset")
	if err != nil {
		return err
	}
	owner, err := utils.ParseAddressVar(vars, "owner")
	if err != nil {
		return err
	}
	acc, err := a.getAccount(asset, owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) handleGetAsset(w http.ResponseWriter, req *http.Request) error {
	asset, err := utils.ParseAddressVar(mux.Vars(req), "asset")
	if err != nil {
		return err
	}
	supply, err := a.engine.Supply(asset)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Asset{Asset: asset, Supply: supply})
}

func (a *Accounts) handleMint(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	asset, err := utils.ParseAddressVar(vars, "asset")
	if err != nil {
		return err
	}
	owner, err := utils.ParseAddressVar(vars, "owner")
	if err != nil {
		return err
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := a.engine.Mint(asset, owner, body.Amount); err != nil {
		return err
	}
	acc, err := a.getAccount(asset, owner)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{asset}").
		Methods(http.MethodGet).
		Name("accounts_get_asset").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAsset))
	sub.Path("/{asset}/{owner}").
		Methods(http.MethodGet).
		Name("accounts_get_account").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
	if a.soloMode {
		sub.Path("/{asset}/{owner}/mint").
			Methods(http.MethodPost).
			Name("accounts_mint").
			HandlerFunc(utils.WrapHandlerFunc(a.handleMint))
	}
}
