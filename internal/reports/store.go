// Package reports holds the read-only projections behind listing, history and
// analytics endpoints. Queries are plain SQL through sqlx and stay within the
// subset shared by postgres, mysql and sqlite; arithmetic the original schema
// kept in stored functions is done in Go instead.
package reports

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Store struct {
	db *sqlx.DB
}

// New shares the gorm connection pool with sqlx.
func New(gdb *gorm.DB) (*Store, error) {
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	return &Store{db: sqlx.NewDb(sqlDB, gdb.Dialector.Name())}, nil
}

// query accumulates WHERE conditions with ? placeholders and rebinds them for
// the connected dialect.
type query struct {
	base   string
	conds  []string
	args   []interface{}
	suffix string
}

func (q *query) where(cond string, args ...interface{}) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
}

func (q *query) build(db *sqlx.DB) (string, []interface{}, error) {
	sql := q.base
	if len(q.conds) > 0 {
		sql += " WHERE " + strings.Join(q.conds, " AND ")
	}
	sql += " " + q.suffix

	// expands IN (?) for slice arguments
	sql, args, err := sqlx.In(sql, q.args...)
	if err != nil {
		return "", nil, err
	}
	return db.Rebind(sql), args, nil
}

func (s *Store) selectInto(ctx context.Context, dest interface{}, q *query) error {
	sql, args, err := q.build(s.db)
	if err != nil {
		return err
	}
	return s.db.SelectContext(ctx, dest, sql, args...)
}

func likePattern(s string) string {
	return "%" + s + "%"
}
