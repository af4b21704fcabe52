// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert. Errors of the same kind match under errors.Is.
type Kind string

const (
	KindIsStaked           Kind = "IsStaked"
	KindNotStaked          Kind = "NotStaked"
	KindNoToken            Kind = "NoToken"
	KindOverStakeBalance   Kind = "OverStakeBalance"
	KindInsufficientFunds  Kind = "InsufficientFunds"
	KindRewardOverflow     Kind = "RewardOverflow"
	KindClockRegression    Kind = "ClockRegression"
	KindAlreadyInitialized Kind = "AlreadyInitialized"
	KindUnauthorized       Kind = "Unauthorized"
	KindVaultNotActive     Kind = "VaultNotActive"
	KindRewardVaultMissing Kind = "RewardVaultNotFound"
	KindAccountNotFound    Kind = "AccountNotFound"
	KindAccountNotEmpty    Kind = "AccountNotEmpty"
	KindBalanceOverflow    Kind = "BalanceOverflow"
)

var (
	ErrIsStaked            = New(KindIsStaked, "tokens are already staked")
	ErrNotStaked           = New(KindNotStaked, "tokens are not staked")
	ErrNoToken             = New(KindNoToken, "no token to stake")
	ErrOverStakeBalance    = New(KindOverStakeBalance, "over your stake balance")
	ErrInsufficientFunds   = New(KindInsufficientFunds, "insufficient funds")
	ErrRewardOverflow      = New(KindRewardOverflow, "reward overflow")
	ErrClockRegression     = New(KindClockRegression, "clock regression")
	ErrAlreadyInitialized  = New(KindAlreadyInitialized, "already initialized")
	ErrUnauthorized        = New(KindUnauthorized, "unauthorized")
	ErrVaultNotActive      = New(KindVaultNotActive, "vault is not active")
	ErrRewardVaultNotFound = New(KindRewardVaultMissing, "reward vault not found")
	ErrAccountNotFound     = New(KindAccountNotFound, "account not found")
	ErrAccountNotEmpty     = New(KindAccountNotEmpty, "account not empty")
	ErrBalanceOverflow     = New(KindBalanceOverflow, "balance overflow")
)

type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

// Newf returns a revert of kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

// Is reports whether target is a revert of the same kind.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert carried by err.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return "", false
}
