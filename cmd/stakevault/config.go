// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the command line flags. Keys are the flag names.
type fileConfig struct {
	DataDir       *string `yaml:"data-dir"`
	Persist       *bool   `yaml:"persist"`
	Cache         *int    `yaml:"cache"`
	APIAddr       *string `yaml:"api-addr"`
	APICors       *string `yaml:"api-cors"`
	APILogsLimit  *uint64 `yaml:"api-logs-limit"`
	EnableAPILogs *bool   `yaml:"enable-api-logs"`
	SkipLogs      *bool   `yaml:"skip-logs"`
	Verbosity     *int    `yaml:"verbosity"`
	JSONLogs      *bool   `yaml:"json-logs"`
	SlotDuration  *string `yaml:"slot-duration"`
	GenesisTime   *int64  `yaml:"genesis-time"`
	UnstakePolicy *string `yaml:"unstake-policy"`
	MaxRetries    *uint   `yaml:"max-retries"`
	Solo          *bool   `yaml:"solo"`
	EnableMetrics *bool   `yaml:"enable-metrics"`
	MetricsAddr   *string `yaml:"metrics-addr"`
}

func loadConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	var cfg fileConfig
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrapf(err, "decode config %v", path)
	}
	return &cfg, nil
}

// values returns the configured entries keyed by flag name.
func (c *fileConfig) values() map[string]string {
	m := make(map[string]string)
	put := func(name string, v any) {
		switch v := v.(type) {
		case *string:
			if v != nil {
				m[name] = *v
			}
		case *bool:
			if v != nil {
				m[name] = fmt.Sprint(*v)
			}
		case *int:
			if v != nil {
				m[name] = fmt.Sprint(*v)
			}
		case *int64:
			if v != nil {
				m[name] = fmt.Sprint(*v)
			}
		case *uint:
			if v != nil {
				m[name] = fmt.Sprint(*v)
			}
		case *uint64:
			if v != nil {
				m[name] = fmt.Sprint(*v)
			}
		}
	}
	put(dataDirFlag.Name, c.DataDir)
	put(persistFlag.Name, c.Persist)
	put(cacheFlag.Name, c.Cache)
	put(apiAddrFlag.Name, c.APIAddr)
	put(apiCorsFlag.Name, c.APICors)
	put(apiLogsLimitFlag.Name, c.APILogsLimit)
	put(enableAPILogsFlag.Name, c.EnableAPILogs)
	put(skipLogsFlag.Name, c.SkipLogs)
	put(verbosityFlag.Name, c.Verbosity)
	put(jsonLogsFlag.Name, c.JSONLogs)
	put(slotDurationFlag.Name, c.SlotDuration)
	put(genesisTimeFlag.Name, c.GenesisTime)
	put(unstakePolicyFlag.Name, c.UnstakePolicy)
	put(maxRetriesFlag.Name, c.MaxRetries)
	put(soloFlag.Name, c.Solo)
	put(enableMetricsFlag.Name, c.EnableMetrics)
	put(metricsAddrFlag.Name, c.MetricsAddr)
	return m
}

// applyConfig loads the file named by --config and assigns its values to
// the given flags that were not set on the command line.
func applyConfig(ctx *cli.Context, flags []cli.Flag) error {
	path := ctx.String(configFlag.Name)
	if path == "" {
		return nil
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}
	values := cfg.values()
	for _, flag := range flags {
		name := flag.GetName()
		v, ok := values[name]
		if !ok || ctx.IsSet(name) {
			continue
		}
		if err := ctx.Set(name, v); err != nil {
			return errors.Wrapf(err, "config key %v", name)
		}
	}
	return nil
}
