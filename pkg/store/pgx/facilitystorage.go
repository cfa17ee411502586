package pgx

import (
	"context"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// FacilityStorage implements the store.Storage interface on PostgreSQL
// with pgvector for document similarity search. All query SQL is owned
// here and parameterized; callers never contribute SQL text.
type FacilityStorage struct {
	conn pgxIConn
}

// NewFacilityStorage creates a FacilityStorage on an existing
// connection or pool.
func NewFacilityStorage(conn pgxIConn) *FacilityStorage {
	return &FacilityStorage{conn: conn}
}
