// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/posledger/kv"
	"github.com/vechain/posledger/log"
	"github.com/vechain/posledger/lvldb"
	"github.com/vechain/posledger/metrics"
	"github.com/vechain/posledger/pos/kvstore"
	"github.com/vechain/posledger/sqlitedb"
)

const (
	backendLevelDB = "leveldb"
	backendSQLite  = "sqlite"
	backendMemory  = "memory"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".posledger")
	}
	return ""
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

func initLogger(ctx *cli.Context) {
	var level slog.LevelVar
	level.Set(log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name)))

	handler := log.NewHandler(os.Stderr, log.HandlerOptions{
		Level: &level,
		JSON:  ctx.GlobalBool(logJSONFlag.Name),
		Color: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	})
	log.SetDefault(log.NewLogger(handler))
}

// ledger is an opened ledger database.
type ledger struct {
	kv    kv.StoreCloser
	store *kvstore.Store
}

func openLedger(backend, dataDir string, cacheMB int) (*ledger, error) {
	var (
		db  kv.StoreCloser
		err error
	)
	switch backend {
	case backendLevelDB:
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, errors.Wrap(err, "create data dir")
		}
		db, err = lvldb.New(filepath.Join(dataDir, "ledger.db"), lvldb.Options{
			CacheSize:              cacheMB,
			OpenFilesCacheCapacity: 64,
		})
	case backendSQLite:
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, errors.Wrap(err, "create data dir")
		}
		db, err = sqlitedb.New(filepath.Join(dataDir, "ledger.sqlite"))
	case backendMemory:
		db, err = lvldb.NewMem()
	default:
		return nil, errors.Errorf("unknown backend %q", backend)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open %v database", backend)
	}
	if backend != backendMemory {
		metrics.RegisterDiskUsage(backend, dataDir)
	}

	// roughly 1k records per MB
	store, err := kvstore.New(db, kvstore.Options{CacheSize: cacheMB * 1024})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &ledger{kv: db, store: store}, nil
}

func mustOpenLedger(ctx *cli.Context) *ledger {
	l, err := openLedger(
		ctx.GlobalString(backendFlag.Name),
		ctx.GlobalString(dataDirFlag.Name),
		ctx.GlobalInt(cacheFlag.Name),
	)
	if err != nil {
		fatal(err)
	}
	return l
}

func (l *ledger) Close() error {
	return l.kv.Close()
}
