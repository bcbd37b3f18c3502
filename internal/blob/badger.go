package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerKeyPrefix = "blob:"

// BadgerStore хранит блобы во встроенной KV-базе badger.
type BadgerStore struct {
	db     *badger.DB
	signer *URLSigner
}

// NewBadgerStore открывает базу в dir. Пустой dir открывает базу в памяти.
func NewBadgerStore(dir string, signer *URLSigner) (*BadgerStore, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, signer: signer}, nil
}

func badgerKey(ref string) []byte {
	return []byte(badgerKeyPrefix + ref)
}

func (s *BadgerStore) Put(ctx context.Context, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ref := newRef()
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(ref), data)
	})
	if err != nil {
		return "", fmt.Errorf("put blob: %w", err)
	}
	return ref, nil
}

func (s *BadgerStore) AccessURL(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(badgerKey(ref))
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return s.signer.Sign(ref)
}

func (s *BadgerStore) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(ref))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	return out, err
}

func (s *BadgerStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(ref))
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
