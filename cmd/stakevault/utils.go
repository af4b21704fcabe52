// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/clock"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/logdb"
	"github.com/vechain/stakevault/lvldb"
	"github.com/vechain/stakevault/state"
	"github.com/vechain/stakevault/thor"
)

const defaultSlotDuration = time.Duration(thor.SlotInterval) * time.Second

func initLogger(ctx *cli.Context) {
	lvl := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	log.SetDefault(newLogHandler(os.Stderr, lvl, ctx.Bool(jsonLogsFlag.Name)))
}

func newLogHandler(w io.Writer, lvl slog.Level, jsonLogs bool) slog.Handler {
	if jsonLogs {
		return log.NewJSONHandler(w, lvl)
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		fd := f.Fd()
		useColor = (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)) && os.Getenv("TERM") != "dumb"
	}
	return log.NewTerminalHandler(w, lvl, useColor)
}

func defaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "org.vechain.stakevault")
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "org.vechain.stakevault")
	default:
		return filepath.Join(home, ".org.vechain.stakevault")
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", errors.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openMainDB(ctx *cli.Context, dataDir string) (*lvldb.LevelDB, error) {
	path := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(path, lvldb.Options{
		CacheSize:              ctx.Int(cacheFlag.Name),
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, errors.WithMessagef(err, "open main database [%v]", path)
	}
	return db, nil
}

func openLogDB(dataDir string) (*logdb.LogDB, error) {
	path := filepath.Join(dataDir, "logs.db")
	db, err := logdb.New(path)
	if err != nil {
		return nil, errors.WithMessagef(err, "open log database [%v]", path)
	}
	return db, nil
}

// openDatabases opens the state and event stores, on disk if --persist is
// set and in memory otherwise. The returned func closes both.
func openDatabases(ctx *cli.Context, persist bool) (*lvldb.LevelDB, *logdb.LogDB, string, func(), error) {
	var (
		mainDB  *lvldb.LevelDB
		logDB   *logdb.LogDB
		dataDir = "Memory"
		err     error
	)
	if persist {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return nil, nil, "", nil, err
		}
		if mainDB, err = openMainDB(ctx, dataDir); err != nil {
			return nil, nil, "", nil, err
		}
		if logDB, err = openLogDB(dataDir); err != nil {
			mainDB.Close()
			return nil, nil, "", nil, err
		}
	} else {
		if mainDB, err = lvldb.NewMem(); err != nil {
			return nil, nil, "", nil, err
		}
		if logDB, err = logdb.NewMem(); err != nil {
			mainDB.Close()
			return nil, nil, "", nil, err
		}
	}
	return mainDB, logDB, dataDir, func() {
		logger.Info("closing log database...")
		if err := logDB.Close(); err != nil {
			logger.Warn("failed to close log database", "err", err)
		}
		logger.Info("closing main database...")
		if err := mainDB.Close(); err != nil {
			logger.Warn("failed to close main database", "err", err)
		}
	}, nil
}

func newSlotClock(ctx *cli.Context) (*clock.Slot, error) {
	interval := ctx.Duration(slotDurationFlag.Name)
	if interval <= 0 {
		return nil, errors.Errorf("invalid %s: %v", slotDurationFlag.Name, interval)
	}
	genesis := time.Now()
	if ctx.IsSet(genesisTimeFlag.Name) {
		genesis = time.Unix(ctx.Int64(genesisTimeFlag.Name), 0)
	}
	return clock.NewSlot(genesis, interval), nil
}

func newEngine(ctx *cli.Context, mainDB *lvldb.LevelDB) (*staker.Staker, error) {
	policy, err := staker.ParseUnstakePolicy(ctx.String(unstakePolicyFlag.Name))
	if err != nil {
		return nil, err
	}
	clk, err := newSlotClock(ctx)
	if err != nil {
		return nil, err
	}
	return staker.New(
		state.NewCreator(mainDB),
		clk,
		staker.WithPolicy(policy),
		staker.WithMaxRetries(ctx.Uint(maxRetriesFlag.Name)),
	), nil
}

func parseAddressFlag(ctx *cli.Context, flag cli.StringFlag) (thor.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return thor.Address{}, errors.Errorf("missing -%s", flag.Name)
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.WithMessagef(err, "invalid -%s", flag.Name)
	}
	return addr, nil
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func printStartupMessage(engine *staker.Staker, dataDir, apiURL, metricsURL string) {
	metricsInfo := "Disabled"
	if metricsURL != "" {
		metricsInfo = metricsURL
	}
	fmt.Printf(`Starting %v
    Policy      [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]
    Metrics     [ %v ]
`,
		fullVersion(),
		engine.Policy(),
		dataDir,
		apiURL,
		metricsInfo,
	)
}
