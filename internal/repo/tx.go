package repo

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// TxManager оборачивает функцию в одну транзакцию хранилища.
// Репозитории, вызванные с контекстом из fn, работают внутри этой транзакции.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

type gormTxManager struct {
	db   *gorm.DB
	opts *sql.TxOptions
}

// NewTxManager создаёт менеджер транзакций поверх gorm.
// Для PostgreSQL транзакции открываются с уровнем SERIALIZABLE, SQLite сериализует записи сам.
func NewTxManager(db *gorm.DB) TxManager {
	m := &gormTxManager{db: db}
	if db.Dialector.Name() == "postgres" {
		m.opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	return m
}

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	// вложенный вызов переиспользует внешнюю транзакцию
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	var opts []*sql.TxOptions
	if m.opts != nil {
		opts = append(opts, m.opts)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, opts...)
}

// conn возвращает транзакцию из контекста либо базовое соединение.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
