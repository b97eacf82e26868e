package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/daunfamily/maritime-vrp/internal/domain"
	"github.com/daunfamily/maritime-vrp/internal/platform/obs"
	"github.com/daunfamily/maritime-vrp/internal/pool"
)

// SQLColumnStore is a Postgres-backed column store using the column_cache
// table created by repositories.InitSchema.
type SQLColumnStore struct {
	DB *sql.DB
}

func NewSQLColumnStore(db *sql.DB) *SQLColumnStore {
	return &SQLColumnStore{DB: db}
}

// Store the columns of one instance. Existing keys are left untouched.
func (s *SQLColumnStore) SaveColumns(ctx context.Context, instance string, cols []domain.Column) (_ int, err error) {
	defer obs.Time(ctx, "column.cache.sql.Save")(&err)

	if s.DB == nil {
		return 0, errors.New("column cache: db is nil")
	}
	if instance == "" {
		return 0, errors.New("insert column cache: instance must not be empty")
	}
	if len(cols) == 0 {
		return 0, nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("insert column cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO column_cache (instance, column_key, route)
	VALUES ($1, $2, $3)
	ON CONFLICT (instance, column_key) DO NOTHING;
	`)
	if err != nil {
		return 0, fmt.Errorf("insert column cache: db prepare: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, c := range cols {
		data, err := encodeRoute(c)
		if err != nil {
			return 0, fmt.Errorf("insert column cache: %w", err)
		}
		res, err := stmt.ExecContext(ctx, instance, pool.KeyString(c), string(data))
		if err != nil {
			return 0, fmt.Errorf("insert column cache key=%q: %w", pool.KeyString(c), err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("insert column cache commit: %w", err)
	}

	return added, nil
}

// Fetch the stored columns of one instance, rebuilt against prob.
func (s *SQLColumnStore) LoadColumns(ctx context.Context, instance string, prob *domain.Problem) (_ []domain.Column, err error) {
	defer obs.Time(ctx, "column.cache.sql.Load")(&err)

	if s.DB == nil {
		return nil, errors.New("column cache: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT column_key, route
	FROM column_cache
	WHERE instance = $1
	ORDER BY column_key;
	`, instance)
	if err != nil {
		return nil, fmt.Errorf("get column cache: query column_cache table: %w", err)
	}
	defer rows.Close()

	table := domain.NewRowTable(prob)
	out := make([]domain.Column, 0, 64)
	for rows.Next() {
		var key, route string
		if err := rows.Scan(&key, &route); err != nil {
			return nil, fmt.Errorf("get column cache: scan rows: %w", err)
		}
		c, err := decodeRoute(prob, table, []byte(route))
		if err != nil {
			log.WithFields(log.Fields{
				"run_id":   obs.RunID(ctx),
				"instance": instance,
				"key":      key,
			}).WithError(err).Warn("skipping stored column")
			continue
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get column cache: row iteration: %w", err)
	}

	return out, nil
}
