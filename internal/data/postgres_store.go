package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/target/spotify-auth/internal/data/pgxutil"
	apperrors "github.com/target/spotify-auth/internal/errors"
	"github.com/target/spotify-auth/internal/ports"
)

const (
	pgGetQuery    = `SELECT value FROM plugin_config WHERE scope = $1 AND key = $2`
	pgKeysQuery   = `SELECT key FROM plugin_config WHERE scope = $1 ORDER BY key`
	pgUpsertQuery = `INSERT INTO plugin_config (scope, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (scope, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	pgDeleteQuery = `DELETE FROM plugin_config WHERE scope = $1 AND key = $2`
)

// PostgresStore persists entries in the plugin_config table. Apply runs in one transaction.
type PostgresStore struct {
	DB *sql.DB
}

var _ ports.KeyValueStore = (*PostgresStore)(nil)

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// Get returns the value stored under key in scope.
func (p *PostgresStore) Get(ctx context.Context, scope, key string) (string, bool, error) {
	if err := validateKey(scope, key); err != nil {
		return "", false, err
	}
	var v string
	err := p.DB.QueryRowContext(ctx, pgGetQuery, scope, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s/%s: %w", scope, key, apperrors.MapDBError(err))
	}
	return v, true, nil
}

// Keys lists the keys of scope in sorted order.
func (p *PostgresStore) Keys(ctx context.Context, scope string) ([]string, error) {
	rows, err := p.DB.QueryContext(ctx, pgKeysQuery, scope)
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", scope, apperrors.MapDBError(err))
	}
	defer func() { _ = rows.Close() }()

	var keys []string
	for rows.Next() {
		var k string
		if scanErr := rows.Scan(&k); scanErr != nil {
			return nil, fmt.Errorf("scan %s key: %w", scope, scanErr)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s keys: %w", scope, apperrors.MapDBError(err))
	}
	return keys, nil
}

// Apply writes all mutations in one transaction.
func (p *PostgresStore) Apply(ctx context.Context, scope string, mutations ...ports.Mutation) error {
	if err := validateMutations(scope, mutations); err != nil {
		return err
	}
	if len(mutations) == 0 {
		return nil
	}
	err := pgxutil.WithSQLTx(ctx, p.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		for _, m := range mutations {
			var execErr error
			if m.Delete {
				_, execErr = tx.ExecContext(ctx, pgDeleteQuery, scope, m.Key)
			} else {
				_, execErr = tx.ExecContext(ctx, pgUpsertQuery, scope, m.Key, m.Value)
			}
			if execErr != nil {
				return fmt.Errorf("write %s/%s: %w", scope, m.Key, execErr)
			}
		}
		return nil
	}})
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// Health pings the database.
func (p *PostgresStore) Health(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
