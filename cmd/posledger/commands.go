// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/pos"
)

func applyAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected the path of a delta document")
	}
	doc, err := loadDocument(ctx.Args().First())
	if err != nil {
		return err
	}
	data, err := doc.DeltaData()
	if err != nil {
		return err
	}

	l := mustOpenLedger(ctx)
	defer l.Close()

	id, err := l.apply(data)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func undoAction(ctx *cli.Context) error {
	var id uint64
	if ctx.NArg() > 0 {
		v, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
		if err != nil {
			return errors.Wrap(err, "parse undo id")
		}
		id = v
	}

	l := mustOpenLedger(ctx)
	defer l.Close()

	id, err := l.undo(id)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func journalAction(ctx *cli.Context) error {
	l := mustOpenLedger(ctx)
	defer l.Close()

	ids, err := undoIDs(l.store)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func statsAction(ctx *cli.Context) error {
	l := mustOpenLedger(ctx)
	defer l.Close()

	return l.stats(context.Background(), os.Stdout)
}

func showPoolAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected a pool id")
	}
	id, err := pos.ParsePoolID(ctx.Args().First())
	if err != nil {
		return err
	}
	l := mustOpenLedger(ctx)
	defer l.Close()

	return l.showPool(os.Stdout, id)
}

func showDelegationAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("expected a delegation id")
	}
	id, err := pos.ParseDelegationID(ctx.Args().First())
	if err != nil {
		return err
	}
	l := mustOpenLedger(ctx)
	defer l.Close()

	return l.showDelegation(os.Stdout, id)
}

// apply merges data into the ledger and journals its undo, both in one
// commit. It returns the journal id of the undo.
func (l *ledger) apply(data *pos.DeltaData) (uint64, error) {
	batch := l.store.NewBatch()
	undo, err := pos.NewDB(batch).MergeWithDelta(data)
	if err != nil {
		return 0, err
	}
	id, err := journalUndo(batch, undo)
	if err != nil {
		return 0, err
	}
	if err := batch.Commit(); err != nil {
		return 0, err
	}
	logger.Info("applied delta", "id", id, "keys", data.KeyCount())
	return id, nil
}

// undo reverts the journaled merge with the given id, or the latest one when
// id is 0, and drops it from the journal.
func (l *ledger) undo(id uint64) (uint64, error) {
	if id == 0 {
		latest, err := latestUndoID(l.store)
		if err != nil {
			return 0, err
		}
		if latest == 0 {
			return 0, errors.New("undo journal is empty")
		}
		id = latest
	}
	undo, err := loadUndo(l.store, id)
	if err != nil {
		return 0, err
	}

	batch := l.store.NewBatch()
	if err := pos.NewDB(batch).UndoMergeWithDelta(undo); err != nil {
		return 0, errors.WithMessagef(err, "undo %d", id)
	}
	if err := batch.DeleteRaw(undoKey(id)); err != nil {
		return 0, err
	}
	if err := batch.Commit(); err != nil {
		return 0, err
	}
	logger.Info("reverted delta", "id", id, "keys", undo.KeyCount())
	return id, nil
}

type bucketStatsView struct {
	Records int           `yaml:"records"`
	Total   amount.Amount `yaml:"total"`
}

func (l *ledger) stats(ctx context.Context, w io.Writer) error {
	st, err := l.store.Stats(ctx)
	if err != nil {
		return err
	}
	ids, err := undoIDs(l.store)
	if err != nil {
		return err
	}
	view := struct {
		PoolData             int             `yaml:"pool_data"`
		PoolBalances         bucketStatsView `yaml:"pool_balances"`
		PoolDelegationShares bucketStatsView `yaml:"pool_delegation_shares"`
		DelegationBalances   bucketStatsView `yaml:"delegation_balances"`
		DelegationData       int             `yaml:"delegation_data"`
		Journal              int             `yaml:"journal"`
	}{
		PoolData:             st.PoolData.Records,
		PoolBalances:         bucketStatsView(st.PoolBalances),
		PoolDelegationShares: bucketStatsView(st.PoolDelegationShares),
		DelegationBalances:   bucketStatsView(st.DelegationBalances),
		DelegationData:       st.DelegationData.Records,
		Journal:              len(ids),
	}
	return writeYAML(w, view)
}

func (l *ledger) showPool(w io.Writer, id pos.PoolID) error {
	v, err := loadPoolView(l.store, id)
	if err != nil {
		return err
	}
	return writeYAML(w, v)
}

func (l *ledger) showDelegation(w io.Writer, id pos.DelegationID) error {
	v, err := loadDelegationView(l.store, id)
	if err != nil {
		return err
	}
	return writeYAML(w, v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "encode yaml")
	}
	return enc.Close()
}
