// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"errors"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/strategy"
	"github.com/ethereum/go-ethereum/event"
	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/staker/stakes"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

const DefaultMaxRetries = 8

var logger = log.WithContext("pkg", "staker")

// Staker is the stake and reward engine. Each call runs as one transaction
// against a fresh state and commits atomically.
type Staker struct {
	creator    *state.Creator
	clock      Clock
	policy     UnstakePolicy
	maxRetries uint
	locks      *keyLocks

	feed  event.Feed
	scope event.SubscriptionScope
}

type Option func(*Staker)

// WithPolicy sets the unstake policy, PolicySettle by default.
func WithPolicy(policy UnstakePolicy) Option {
	return func(s *Staker) {
		s.policy = policy
	}
}

// WithMaxRetries bounds how many times a conflicted transaction is retried.
func WithMaxRetries(n uint) Option {
	return func(s *Staker) {
		s.maxRetries = n
	}
}

// New create a new instance.
func New(creator *state.Creator, clock Clock, opts ...Option) *Staker {
	s := &Staker{
		creator:    creator,
		clock:      clock,
		policy:     PolicySettle,
		maxRetries: DefaultMaxRetries,
		locks:      newKeyLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Staker) Policy() UnstakePolicy {
	return s.policy
}

// SubscribeEvents delivers committed events to ch until the subscription is
// closed. Receivers must keep up, a blocked channel stalls the engine.
func (s *Staker) SubscribeEvents(ch chan<- *Event) event.Subscription {
	return s.scope.Track(s.feed.Subscribe(ch))
}

// Close ends all event subscriptions.
func (s *Staker) Close() {
	s.scope.Close()
}

// exec runs fn in a new transaction and commits it, retrying on commit conflicts.
func (s *Staker) exec(op string, fn func(tx *txn) error) (err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		switch {
		case reverts.IsRevertErr(err):
			result = "revert"
		case err != nil:
			result = "error"
		}
		metricOpCount().AddWithLabel(1, map[string]string{"op": op, "result": result})
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	var (
		lastErr error
		events  []*Event
	)
	retryable := func(uint) bool {
		return lastErr == nil || errors.Is(lastErr, state.ErrConflict)
	}
	err = retry.Retry(func(attempt uint) error {
		if attempt > 0 {
			metricRetries().AddWithLabel(1, map[string]string{"op": op})
			logger.Debug("retrying conflicted transaction", "op", op, "attempt", attempt)
		}
		st := s.creator.NewState()
		tx := newTxn(st, s.policy, s.clock.Now())
		if lastErr = fn(tx); lastErr != nil {
			return lastErr
		}
		if lastErr = s.creator.Commit(st); lastErr != nil {
			return lastErr
		}
		events = tx.events
		return nil
	}, strategy.Limit(s.maxRetries+1), retryable)
	if err != nil {
		if errors.Is(err, state.ErrConflict) {
			return pkgerrors.WithMessagef(err, "%s: retries exhausted", op)
		}
		return err
	}

	for _, ev := range events {
		s.feed.Send(ev)
	}
	return nil
}

// view runs fn against a fresh state that is never committed.
func (s *Staker) view(fn func(tx *txn) error) error {
	return fn(newTxn(s.creator.NewState(), s.policy, s.clock.Now()))
}

//
// Operations
//

// OpenRewardVault opens the shared reward vault of asset. It succeeds once per asset.
func (s *Staker) OpenRewardVault(asset thor.Address) (thor.Address, error) {
	logger.Debug("opening reward vault", "asset", asset)

	var addr thor.Address
	err := s.exec("open_reward_vault", func(tx *txn) (err error) {
		addr, err = tx.openRewardVault(asset)
		return
	})
	if err != nil {
		logger.Info("open reward vault failed", "asset", asset, "error", err)
		return thor.Address{}, err
	}

	logger.Info("opened reward vault", "asset", asset, "vault", addr)
	return addr, nil
}

// FundRewardVault moves amount from funder into the reward vault of asset.
func (s *Staker) FundRewardVault(asset, funder thor.Address, amount uint64) error {
	logger.Debug("funding reward vault", "asset", asset, "funder", funder, "amount", amount)

	err := s.exec("fund_reward_vault", func(tx *txn) error {
		return tx.fundRewardVault(asset, funder, amount)
	})
	if err != nil {
		logger.Info("fund reward vault failed", "asset", asset, "funder", funder, "error", err)
		return err
	}

	addFlow("fund", amount)
	logger.Info("funded reward vault", "asset", asset, "funder", funder, "amount", amount)
	return nil
}

// Mint credits amount of asset to an account.
func (s *Staker) Mint(asset, to thor.Address, amount uint64) error {
	logger.Debug("minting", "asset", asset, "to", to, "amount", amount)

	err := s.exec("mint", func(tx *txn) error {
		return tx.mint(asset, to, amount)
	})
	if err != nil {
		logger.Info("mint failed", "asset", asset, "to", to, "error", err)
		return err
	}
	return nil
}

// Stake escrows amount of asset on behalf of staker.
func (s *Staker) Stake(staker, asset thor.Address, amount uint64) error {
	logger.Debug("staking", "staker", staker, "asset", asset, "amount", amount)

	unlock := s.locks.lock(staker, asset)
	defer unlock()

	err := s.exec("stake", func(tx *txn) error {
		return tx.stake(staker, asset, amount)
	})
	if err != nil {
		logger.Info("stake failed", "staker", staker, "asset", asset, "error", err)
		return err
	}

	addFlow("stake", amount)
	logger.Info("staked", "staker", staker, "asset", asset, "amount", amount)
	return nil
}

// Unstake withdraws amount of principal and pays the accrued reward.
func (s *Staker) Unstake(staker, asset thor.Address, amount uint64) error {
	logger.Debug("unstaking", "staker", staker, "asset", asset, "amount", amount, "policy", s.policy)

	unlock := s.locks.lock(staker, asset)
	defer unlock()

	var result *Event
	err := s.exec("unstake", func(tx *txn) error {
		if err := tx.unstake(staker, asset, amount); err != nil {
			return err
		}
		result = tx.events[len(tx.events)-1]
		return nil
	})
	if err != nil {
		logger.Info("unstake failed", "staker", staker, "asset", asset, "error", err)
		return err
	}

	addFlow("principal", result.Principal)
	addFlow("reward", result.Reward)
	logger.Info("unstaked", "staker", staker, "asset", asset, "principal", result.Principal, "reward", result.Reward, "closed", result.VaultClosed)
	return nil
}

//
// Getters - no state change
//

// StakeInfo is a snapshot of a stake position.
type StakeInfo struct {
	*stakes.Record
	Vault         thor.Address
	VaultStatus   vault.Status
	VaultBalance  uint64
	PendingReward uint64
}

// GetStake returns the record of (staker, asset).
func (s *Staker) GetStake(staker, asset thor.Address) (*stakes.Record, error) {
	var rec *stakes.Record
	err := s.view(func(tx *txn) (err error) {
		rec, err = tx.records.Get(staker, asset)
		return
	})
	return rec, err
}

// Info returns the record of (staker, asset) along with its vault and pending reward.
func (s *Staker) Info(staker, asset thor.Address) (*StakeInfo, error) {
	var info *StakeInfo
	err := s.view(func(tx *txn) error {
		rec, err := tx.records.Get(staker, asset)
		if err != nil {
			return err
		}
		addr := vault.StakeVaultAddress(rec.Authority())
		v, err := tx.vaults.Get(addr)
		if err != nil {
			return err
		}
		balance, err := tx.vaults.Balance(addr)
		if err != nil {
			return err
		}
		pending, err := rec.PendingReward(tx.now)
		if err != nil {
			return err
		}
		info = &StakeInfo{
			Record:        rec,
			Vault:         addr,
			VaultStatus:   v.Status,
			VaultBalance:  balance,
			PendingReward: pending,
		}
		return nil
	})
	return info, err
}

// PendingReward returns the reward (staker, asset) would receive if unstaking now.
func (s *Staker) PendingReward(staker, asset thor.Address) (uint64, error) {
	info, err := s.Info(staker, asset)
	if err != nil {
		return 0, err
	}
	return info.PendingReward, nil
}

// VaultBalance returns the escrowed principal of (staker, asset).
func (s *Staker) VaultBalance(staker, asset thor.Address) (uint64, error) {
	info, err := s.Info(staker, asset)
	if err != nil {
		return 0, err
	}
	return info.VaultBalance, nil
}

// RewardVault returns the address, status and balance of the reward vault of asset.
func (s *Staker) RewardVault(asset thor.Address) (thor.Address, vault.Status, uint64, error) {
	addr := vault.RewardVaultAddress(asset)
	var (
		status  vault.Status
		balance uint64
	)
	err := s.view(func(tx *txn) error {
		v, err := tx.vaults.Get(addr)
		if err != nil {
			return err
		}
		status = v.Status
		balance, err = tx.vaults.Balance(addr)
		return err
	})
	return addr, status, balance, err
}

// Balance returns the spendable balance of owner.
func (s *Staker) Balance(asset, owner thor.Address) (uint64, error) {
	var balance uint64
	err := s.view(func(tx *txn) (err error) {
		balance, err = tx.ledger.Balance(asset, owner)
		return
	})
	return balance, err
}

// Supply returns the total minted amount of asset.
func (s *Staker) Supply(asset thor.Address) (uint64, error) {
	var supply uint64
	err := s.view(func(tx *txn) (err error) {
		supply, err = tx.ledger.Supply(asset)
		return
	})
	return supply, err
}
