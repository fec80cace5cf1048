// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"encoding/binary"

	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/vechain/posledger/kv"
	"github.com/vechain/posledger/pos"
	"github.com/vechain/posledger/pos/kvstore"
)

// undoBucket holds the undo of every applied document, keyed by its
// big endian sequence id.
const undoBucket = kv.Bucket("undo/")

type rawReader interface {
	GetRaw(key []byte) ([]byte, error)
	IterateRaw(prefix []byte, fn func(key, val []byte)) error
}

func undoKey(id uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], id)
	return undoBucket.Key(b[:])
}

// latestUndoID returns the highest journaled id, 0 when the journal is empty.
func latestUndoID(r rawReader) (uint64, error) {
	var latest uint64
	if err := r.IterateRaw([]byte(undoBucket), func(key, _ []byte) {
		latest = binary.BigEndian.Uint64(key[len(undoBucket):])
	}); err != nil {
		return 0, errors.WithMessage(err, "scan undo journal")
	}
	return latest, nil
}

// undoIDs lists the journaled ids in ascending order.
func undoIDs(r rawReader) ([]uint64, error) {
	var ids []uint64
	if err := r.IterateRaw([]byte(undoBucket), func(key, _ []byte) {
		ids = append(ids, binary.BigEndian.Uint64(key[len(undoBucket):]))
	}); err != nil {
		return nil, errors.WithMessage(err, "scan undo journal")
	}
	return ids, nil
}

// journalUndo stages undo under the next id and returns that id.
func journalUndo(b *kvstore.Batch, undo *pos.DeltaMergeUndo) (uint64, error) {
	latest, err := latestUndoID(b)
	if err != nil {
		return 0, err
	}
	enc, err := pos.EncodeUndo(undo)
	if err != nil {
		return 0, err
	}
	id := latest + 1
	if err := b.PutRaw(undoKey(id), snappy.Encode(nil, enc)); err != nil {
		return 0, err
	}
	return id, nil
}

// loadUndo reads the undo journaled under id.
func loadUndo(r rawReader, id uint64) (*pos.DeltaMergeUndo, error) {
	val, err := r.GetRaw(undoKey(id))
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, errors.Errorf("no undo with id %d", id)
	}
	enc, err := snappy.Decode(nil, val)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress undo %d", id)
	}
	undo, err := pos.DecodeUndo(enc)
	if err != nil {
		return nil, errors.WithMessagef(err, "undo %d", id)
	}
	return undo, nil
}
