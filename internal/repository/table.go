package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrCapacityReached is returned when a course has no free slot left.
	ErrCapacityReached = errors.New("course capacity reached")
)

const (
	uniqueViolation           = "23505"
	invalidTextRepresentation = "22P02"
)

// Repository is the read/delete surface shared by every entity store.
// Lookups that find nothing return sql.ErrNoRows.
type Repository[T any] interface {
	FindByID(ctx context.Context, id string) (*T, error)
	Exists(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}

// table implements Repository for one entity table.
type table[T any] struct {
	db      *sqlx.DB
	name    string
	columns string
}

func newTable[T any](db *sqlx.DB, name, columns string) table[T] {
	return table[T]{db: db, name: name, columns: columns}
}

// FindByID loads a single row by primary key.
func (t table[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return t.findByID(ctx, t.db, id, false)
}

func (t table[T]) findByID(ctx context.Context, q sqlx.QueryerContext, id string, lock bool) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", t.columns, t.name)
	if lock {
		query += " FOR UPDATE"
	}
	var entity T
	if err := sqlx.GetContext(ctx, q, &entity, query, id); err != nil {
		if missing(err) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find %s: %w", t.name, err)
	}
	return &entity, nil
}

// Exists reports whether a row with the id is present.
func (t table[T]) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)", t.name)
	var exists bool
	if err := t.db.GetContext(ctx, &exists, query, id); err != nil {
		if missing(err) {
			return false, nil
		}
		return false, fmt.Errorf("check %s exists: %w", t.name, err)
	}
	return exists, nil
}

// DeleteByID removes a row, returning sql.ErrNoRows when nothing matched.
func (t table[T]) DeleteByID(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", t.name)
	res, err := t.db.ExecContext(ctx, query, id)
	if err != nil {
		if missing(err) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("delete %s: %w", t.name, err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// missing reports whether err means no row can match: either nothing was
// found or the id was not a well-formed UUID.
func missing(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation
}

// translate maps driver errors onto repository sentinels.
func translate(err error, format string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", format, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", format, err)
}

func normalisePage(page, size int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size, (page - 1) * size
}

func rollback(tx *sqlx.Tx) {
	_ = tx.Rollback()
}
