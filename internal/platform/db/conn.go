package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const connKey contextKey = "db_conn"

// WithConn scopes a dedicated connection to the context. Repositories
// prefer it over the shared pool so multi-statement work can share a
// transaction.
func WithConn(ctx context.Context, conn *pgxpool.Conn) context.Context {
	return context.WithValue(ctx, connKey, conn)
}

// ConnFromContext retrieves the context-scoped database connection, if any.
func ConnFromContext(ctx context.Context) *pgxpool.Conn {
	conn, _ := ctx.Value(connKey).(*pgxpool.Conn)
	return conn
}
