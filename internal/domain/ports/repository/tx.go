package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is the opaque transaction handle threaded through repository calls.
// Its concrete type is infra-defined (pgx.Tx for Postgres); repositories
// must gracefully accept nil and fall back to their non-transactional path.
type Tx interface{}

// NoTX is passed where a call intentionally runs outside any transaction.
var NoTX Tx

// TransactionManager executes fn inside one database transaction, passing
// the handle through tx. If fn returns an error the transaction rolls back.
// Repositories receiving a live tx re-read with row locks so that two
// concurrent transitions on the same row serialize and the loser observes
// the winner's terminal state.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
