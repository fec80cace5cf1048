// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/posledger/accounting"
	"github.com/vechain/posledger/amount"
	"github.com/vechain/posledger/pos"
)

// deltaDocument is the YAML form of a pos.DeltaData.
//
//	pool_data:
//	  - id: 0x…
//	    to: {decommission_key: 0x…, pledge: "1000"}
//	pool_balances:
//	  - {id: 0x…, amount: "-10"}
//	pool_delegation_shares:
//	  - {pool: 0x…, delegation: 0x…, amount: "10"}
type deltaDocument struct {
	PoolData             []poolDataChange   `yaml:"pool_data,omitempty"`
	PoolBalances         []poolAmount       `yaml:"pool_balances,omitempty"`
	PoolDelegationShares []shareAmount      `yaml:"pool_delegation_shares,omitempty"`
	DelegationBalances   []delegationAmount `yaml:"delegation_balances,omitempty"`
	DelegationData       []delegationChange `yaml:"delegation_data,omitempty"`
}

type poolDataDoc struct {
	DecommissionKey pos.PublicKey `yaml:"decommission_key"`
	Pledge          amount.Amount `yaml:"pledge"`
}

type delegationDataDoc struct {
	Pool  pos.PoolID    `yaml:"pool"`
	Owner pos.PublicKey `yaml:"owner"`
}

type poolDataChange struct {
	ID   pos.PoolID   `yaml:"id"`
	From *poolDataDoc `yaml:"from,omitempty"`
	To   *poolDataDoc `yaml:"to,omitempty"`
}

type delegationChange struct {
	ID   pos.DelegationID   `yaml:"id"`
	From *delegationDataDoc `yaml:"from,omitempty"`
	To   *delegationDataDoc `yaml:"to,omitempty"`
}

type poolAmount struct {
	ID     pos.PoolID          `yaml:"id"`
	Amount amount.SignedAmount `yaml:"amount"`
}

type delegationAmount struct {
	ID     pos.DelegationID    `yaml:"id"`
	Amount amount.SignedAmount `yaml:"amount"`
}

type shareAmount struct {
	Pool       pos.PoolID          `yaml:"pool"`
	Delegation pos.DelegationID    `yaml:"delegation"`
	Amount     amount.SignedAmount `yaml:"amount"`
}

func (d *poolDataDoc) data() *pos.PoolData {
	if d == nil {
		return nil
	}
	v := pos.NewPoolData(d.DecommissionKey, d.Pledge)
	return &v
}

func (d *delegationDataDoc) data() *pos.DelegationData {
	if d == nil {
		return nil
	}
	v := pos.NewDelegationData(d.Pool, d.Owner)
	return &v
}

func loadDocument(path string) (*deltaDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read delta document")
	}
	return parseDocument(content)
}

func parseDocument(content []byte) (*deltaDocument, error) {
	var doc deltaDocument
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode delta document")
	}
	return &doc, nil
}

// DeltaData builds the aggregate. Repeated keys are combined the way a merge
// would combine them, so a document can list consecutive changes.
func (doc *deltaDocument) DeltaData() (*pos.DeltaData, error) {
	data := pos.NewDeltaData()
	for _, c := range doc.PoolData {
		if _, err := data.PoolData.MergeDelta(c.ID, accounting.NewDataDelta(c.From.data(), c.To.data())); err != nil {
			return nil, errors.Wrapf(err, "pool data %v", c.ID)
		}
	}
	for _, c := range doc.DelegationData {
		if _, err := data.DelegationData.MergeDelta(c.ID, accounting.NewDataDelta(c.From.data(), c.To.data())); err != nil {
			return nil, errors.Wrapf(err, "delegation data %v", c.ID)
		}
	}
	for _, c := range doc.PoolBalances {
		if err := data.PoolBalances.Add(c.ID, c.Amount); err != nil {
			return nil, errors.Wrapf(err, "pool balance %v", c.ID)
		}
	}
	for _, c := range doc.PoolDelegationShares {
		key := pos.PoolDelegationKey{Pool: c.Pool, Delegation: c.Delegation}
		if err := data.PoolDelegationShares.Add(key, c.Amount); err != nil {
			return nil, errors.Wrapf(err, "share %v", key)
		}
	}
	for _, c := range doc.DelegationBalances {
		if err := data.DelegationBalances.Add(c.ID, c.Amount); err != nil {
			return nil, errors.Wrapf(err, "delegation balance %v", c.ID)
		}
	}
	return data, nil
}

// poolView and delegationView are the YAML output of the show commands.
type poolView struct {
	ID      pos.PoolID        `yaml:"id"`
	Data    *poolDataDoc      `yaml:"data"`
	Balance *amount.Amount    `yaml:"balance"`
	Shares  []delegationShare `yaml:"shares,omitempty"`
}

type delegationShare struct {
	Delegation pos.DelegationID `yaml:"delegation"`
	Amount     amount.Amount    `yaml:"amount"`
}

type delegationView struct {
	ID      pos.DelegationID   `yaml:"id"`
	Data    *delegationDataDoc `yaml:"data"`
	Balance *amount.Amount     `yaml:"balance"`
	Share   *amount.Amount     `yaml:"share,omitempty"`
}

func loadPoolView(v pos.View, id pos.PoolID) (*poolView, error) {
	data, err := v.GetPoolData(id)
	if err != nil {
		return nil, err
	}
	out := &poolView{ID: id}
	if data != nil {
		out.Data = &poolDataDoc{DecommissionKey: data.DecommissionKey, Pledge: data.Pledge}
	}
	balance, ok, err := v.GetPoolBalance(id)
	if err != nil {
		return nil, err
	}
	if ok {
		out.Balance = &balance
	}
	shares, err := v.GetPoolDelegationShares(id)
	if err != nil {
		return nil, err
	}
	for _, s := range shares {
		out.Shares = append(out.Shares, delegationShare{Delegation: s.Delegation, Amount: s.Amount})
	}
	return out, nil
}

func loadDelegationView(v pos.View, id pos.DelegationID) (*delegationView, error) {
	data, err := v.GetDelegationData(id)
	if err != nil {
		return nil, err
	}
	out := &delegationView{ID: id}
	if data != nil {
		out.Data = &delegationDataDoc{Pool: data.Pool, Owner: data.Owner}
		share, ok, err := v.GetPoolDelegationShare(data.Pool, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out.Share = &share
		}
	}
	balance, ok, err := v.GetDelegationBalance(id)
	if err != nil {
		return nil, err
	}
	if ok {
		out.Balance = &balance
	}
	return out, nil
}
