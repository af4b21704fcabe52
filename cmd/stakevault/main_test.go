// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/builtin/reverts"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/builtin/vault"
	"github.com/vechain/stakevault/logdb"
	"github.com/vechain/stakevault/lvldb"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/test/datagen"
)

func runApp(args ...string) error {
	return newApp().Run(append([]string{"stakevault"}, args...))
}

func TestBootstrapAndFund(t *testing.T) {
	dataDir := t.TempDir()
	asset := datagen.RandAddress()
	funder := datagen.RandAddress()

	require.NoError(t, runApp("bootstrap", "--data-dir", dataDir, "--verbosity", "0", "--asset", asset.String()))

	err := runApp("bootstrap", "--data-dir", dataDir, "--verbosity", "0", "--asset", asset.String())
	assert.True(t, errors.Is(err, reverts.ErrAlreadyInitialized))

	err = runApp("fund", "--data-dir", dataDir, "--verbosity", "0",
		"--asset", asset.String(), "--funder", funder.String(), "--amount", "100")
	assert.True(t, reverts.IsRevertErr(err), "funder holds nothing: %v", err)

	err = runApp("fund", "--data-dir", dataDir, "--verbosity", "0", "--asset", asset.String(), "--amount", "100")
	assert.ErrorContains(t, err, "missing -funder")

	mainDB, err := lvldb.New(dataDir+"/main.db", lvldb.Options{})
	require.NoError(t, err)
	defer mainDB.Close()
	engine := staker.New(state.NewCreator(mainDB), staker.ClockFunc(func() uint64 { return 0 }))
	defer engine.Close()

	_, status, balance, err := engine.RewardVault(asset)
	require.NoError(t, err)
	assert.Equal(t, vault.StatusActive, status)
	assert.Equal(t, uint64(0), balance)

	logDB, err := logdb.New(dataDir + "/logs.db")
	require.NoError(t, err)
	defer logDB.Close()
	events, err := logDB.FilterEvents(context.Background(), &logdb.EventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, staker.EventRewardVaultOpened, events[0].Kind)
	assert.Equal(t, asset, events[0].Asset)
}

func TestBootstrapRequiresAsset(t *testing.T) {
	err := runApp("bootstrap", "--data-dir", t.TempDir(), "--verbosity", "0")
	assert.ErrorContains(t, err, "missing -asset")

	err = runApp("bootstrap", "--data-dir", t.TempDir(), "--verbosity", "0", "--asset", "0xzz")
	assert.ErrorContains(t, err, "invalid -asset")
}

func TestBootstrapRejectsBadPolicy(t *testing.T) {
	err := runApp("bootstrap", "--data-dir", t.TempDir(), "--verbosity", "0",
		"--asset", datagen.RandAddress().String(), "--unstake-policy", "lenient")
	assert.Error(t, err)
}

func TestNewSlotClock(t *testing.T) {
	app := &cli.App{
		Name:  "test",
		Flags: serveFlags,
		Action: func(ctx *cli.Context) error {
			clk, err := newSlotClock(ctx)
			if err != nil {
				return err
			}
			genesis := time.Unix(ctx.Int64(genesisTimeFlag.Name), 0)
			assert.Equal(t, genesis.Add(30*time.Second), clk.Time(3))
			// genesis is long past
			assert.Greater(t, clk.Now(), uint64(1000))
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"test", "--genesis-time", "1000000000", "--slot-duration", "10s"}))

	err := app.Run([]string{"test", "--slot-duration", "0s"})
	assert.ErrorContains(t, err, "invalid slot-duration")
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := newLogHandler(&buf, slog.LevelInfo, true)
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	slog.New(h).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	slog.New(newLogHandler(&buf, slog.LevelInfo, false)).Info("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NotContains(t, buf.String(), "\x1b[", "buffers are never coloured")
}
