// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/posledger/log"
	"github.com/vechain/posledger/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "posledger",
		Usage:   "Staking pool ledger with journaled undo",
		Flags: []cli.Flag{
			dataDirFlag,
			backendFlag,
			cacheFlag,
			verbosityFlag,
			logJSONFlag,
			metricsFileFlag,
		},
		Before: beforeAction,
		After:  afterAction,
		Commands: []cli.Command{
			{
				Name:      "apply",
				Usage:     "merge a YAML delta document into the ledger and print its undo id",
				ArgsUsage: "FILE",
				Action:    applyAction,
			},
			{
				Name:      "undo",
				Usage:     "revert a journaled delta, the latest one by default",
				ArgsUsage: "[ID]",
				Action:    undoAction,
			},
			{
				Name:   "journal",
				Usage:  "list the journaled undo ids",
				Action: journalAction,
			},
			{
				Name:   "stats",
				Usage:  "print record counts and balance totals",
				Action: statsAction,
			},
			{
				Name:  "show",
				Usage: "print the ledger state of a pool or delegation",
				Subcommands: []cli.Command{
					{
						Name:      "pool",
						ArgsUsage: "ID",
						Action:    showPoolAction,
					},
					{
						Name:      "delegation",
						ArgsUsage: "ID",
						Action:    showDelegationAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func beforeAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.GlobalString(metricsFileFlag.Name) != "" {
		metrics.InitializePrometheusMetrics()
	}
	return nil
}

func afterAction(ctx *cli.Context) error {
	path := ctx.GlobalString(metricsFileFlag.Name)
	if path == "" {
		return nil
	}
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics", "path", path, "err", err)
	}
	return nil
}
