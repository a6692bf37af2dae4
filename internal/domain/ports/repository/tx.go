package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must gracefully accept NoTX and run against their own pool.
type Tx interface{}

// NoTX is passed where a call should run outside any transaction.
var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the transaction handle via tx. Kept small on purpose: use-case
// interfaces never leak driver types beyond the TxOptions parameter.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
