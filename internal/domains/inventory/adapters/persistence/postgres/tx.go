package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
)

var _ ports.TxManager = (*TxManager)(nil)

type txKey struct{}

// TxManager scopes repository calls to one database transaction by stashing
// the transaction handle in the context. Nested WithinTx calls join the
// ambient transaction, so a caller can fold inventory mutation into a larger
// cross-module commit.
type TxManager struct {
	db *gorm.DB
}

// NewTxManager wires the transaction manager. Caller manages DB lifecycle.
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx runs fn inside a transaction, rolling back on error or context
// cancellation.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom resolves the ambient transaction handle, falling back to the base
// connection for reads outside any transaction.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
