// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakevault/api"
	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/cmd/stakevault/httpserver"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/logdb"
	"github.com/vechain/stakevault/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")

	engineFlags = []cli.Flag{
		configFlag,
		dataDirFlag,
		cacheFlag,
		verbosityFlag,
		jsonLogsFlag,
		slotDurationFlag,
		genesisTimeFlag,
		unstakePolicyFlag,
		maxRetriesFlag,
	}

	serveFlags = append([]cli.Flag{
		persistFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiLogsLimitFlag,
		enableAPILogsFlag,
		skipLogsFlag,
		soloFlag,
		enableMetricsFlag,
		metricsAddrFlag,
	}, engineFlags...)

	bootstrapFlags = append([]cli.Flag{assetFlag}, engineFlags...)

	fundFlags = append([]cli.Flag{assetFlag, funderFlag, amountFlag}, engineFlags...)
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func newApp() *cli.App {
	return &cli.App{
		Version:   fullVersion(),
		Name:      "StakeVault",
		Usage:     "Stake and reward accounting service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags:     serveFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:   "bootstrap",
				Usage:  "open the reward vault of an asset in the on-disk state",
				Flags:  bootstrapFlags,
				Action: bootstrapAction,
			},
			{
				Name:   "fund",
				Usage:  "fund the reward vault of an asset from a ledger account in the on-disk state",
				Flags:  fundFlags,
				Action: fundAction,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { logger.Info("exited") }()

	if err := applyConfig(ctx, serveFlags); err != nil {
		return err
	}
	initLogger(ctx)

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, stop, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { logger.Info("stopping metrics server..."); stop() }()
		metricsURL = url
	}

	mainDB, logDB, dataDir, closeDBs, err := openDatabases(ctx, ctx.Bool(persistFlag.Name))
	if err != nil {
		return err
	}
	defer closeDBs()

	engine, err := newEngine(ctx, mainDB)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing engine..."); engine.Close() }()

	skipLogs := ctx.Bool(skipLogsFlag.Name)
	handler, closeAPI := api.New(engine, logDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		SkipLogs:        skipLogs,
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		SoloMode:        ctx.Bool(soloFlag.Name),
	})
	defer func() { logger.Info("closing API..."); closeAPI() }()

	apiURL, stopAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), handler)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(engine, dataDir, apiURL, metricsURL)

	group, groupCtx := errgroup.WithContext(exitSignal)
	if !skipLogs {
		group.Go(func() error {
			return logDB.Follow(groupCtx, engine)
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})
	return group.Wait()
}

// runOffline executes op against the on-disk state and records the events it
// emits into the event history.
func runOffline(ctx *cli.Context, flags []cli.Flag, op func(engine *staker.Staker) error) error {
	if err := applyConfig(ctx, flags); err != nil {
		return err
	}
	initLogger(ctx)

	mainDB, logDB, _, closeDBs, err := openDatabases(ctx, true)
	if err != nil {
		return err
	}
	defer closeDBs()

	engine, err := newEngine(ctx, mainDB)
	if err != nil {
		return err
	}
	defer engine.Close()

	ch := make(chan *staker.Event, 16)
	sub := engine.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	if err := op(engine); err != nil {
		return err
	}
	return recordEvents(logDB, ch)
}

// recordEvents writes the events already queued in ch.
func recordEvents(logDB *logdb.LogDB, ch <-chan *staker.Event) error {
	w := logDB.NewWriter()
	for {
		select {
		case ev := <-ch:
			if err := w.Write(ev); err != nil {
				w.Rollback()
				return err
			}
		default:
			return w.Commit()
		}
	}
}

func bootstrapAction(ctx *cli.Context) error {
	asset, err := parseAddressFlag(ctx, assetFlag)
	if err != nil {
		return err
	}
	return runOffline(ctx, bootstrapFlags, func(engine *staker.Staker) error {
		addr, err := engine.OpenRewardVault(asset)
		if err != nil {
			return err
		}
		fmt.Printf("reward vault of %v opened at %v\n", asset, addr)
		return nil
	})
}

func fundAction(ctx *cli.Context) error {
	asset, err := parseAddressFlag(ctx, assetFlag)
	if err != nil {
		return err
	}
	funder, err := parseAddressFlag(ctx, funderFlag)
	if err != nil {
		return err
	}
	amount := ctx.Uint64(amountFlag.Name)
	return runOffline(ctx, fundFlags, func(engine *staker.Staker) error {
		if err := engine.FundRewardVault(asset, funder, amount); err != nil {
			return err
		}
		fmt.Printf("reward vault of %v funded with %d by %v\n", asset, amount, funder)
		return nil
	})
}
