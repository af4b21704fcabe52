// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a yaml config file, explicit flags take precedence",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for state and event databases",
	}
	persistFlag = cli.BoolFlag{
		Name:  "persist",
		Usage: "keep state on disk under data-dir, otherwise run in memory",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 128,
		Usage: "megabytes of ram allocated to the state database cache",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /stakes/{asset}/{staker}/events",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	skipLogsFlag = cli.BoolFlag{
		Name:  "skip-logs",
		Usage: "skip writing event history (/events API will be disabled)",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	slotDurationFlag = cli.DurationFlag{
		Name:  "slot-duration",
		Value: defaultSlotDuration,
		Usage: "wall-clock length of one reward slot",
	}
	genesisTimeFlag = cli.Int64Flag{
		Name:  "genesis-time",
		Usage: "unix timestamp of slot zero (defaults to the start time of the process)",
	}
	unstakePolicyFlag = cli.StringFlag{
		Name:  "unstake-policy",
		Value: "settle",
		Usage: "unstake accounting policy (settle, legacy)",
	}
	maxRetriesFlag = cli.UintFlag{
		Name:  "max-retries",
		Value: 16,
		Usage: "attempts to retry an operation after a conflicting commit",
	}
	soloFlag = cli.BoolFlag{
		Name:  "solo",
		Usage: "enable dev-only endpoints such as minting",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}

	// bootstrap & fund flags
	assetFlag = cli.StringFlag{
		Name:  "asset",
		Usage: "asset address",
	}
	funderFlag = cli.StringFlag{
		Name:  "funder",
		Usage: "ledger account the reward vault is funded from",
	}
	amountFlag = cli.Uint64Flag{
		Name:  "amount",
		Usage: "amount of token",
	}
)
