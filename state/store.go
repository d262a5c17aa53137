// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/luxfi/ids"
)

var (
	ErrAccountNotFound = errors.New("account not found")

	accountPrefix = []byte("account/")

	_ Store = (*BadgerStore)(nil)
)

// Account is a participant handle: the key of an externally owned record
// together with its stored bytes.
type Account struct {
	Key  ids.ID
	Data []byte
}

// Store resolves participant keys to their stored bytes
type Store interface {
	GetAccount(ctx context.Context, key ids.ID) (Account, error)
}

// BadgerStore keeps accounts in a badger database.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenInMemory returns a BadgerStore backed by a fresh in-memory database.
// The caller must Close it.
func OpenInMemory() (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return NewBadgerStore(db), nil
}

func (s *BadgerStore) GetAccount(_ context.Context, key ids.ID) (Account, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, key)
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to read account %s: %w", key, err)
	}

	return Account{
		Key:  key,
		Data: data,
	}, nil
}

// PutAccount overwrites the stored bytes of account.Key. Provisioning
// tools use it; the verification path never writes.
func (s *BadgerStore) PutAccount(_ context.Context, account Account) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(accountKey(account.Key), account.Data)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func accountKey(key ids.ID) []byte {
	k := make([]byte, len(accountPrefix)+len(key))
	copy(k, accountPrefix)
	copy(k[len(accountPrefix):], key[:])
	return k
}
