package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-registrar-api/internal/models"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsAny matches term as a literal, case-sensitive substring of any column.
func containsAny(term string, columns ...string) squirrel.Sqlizer {
	pattern := "%" + likeEscaper.Replace(term) + "%"
	or := make(squirrel.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, squirrel.Like{col: pattern})
	}
	return or
}

func activeBorrowStatuses() []string {
	out := make([]string, 0, len(models.ActiveBorrowStatuses))
	for _, s := range models.ActiveBorrowStatuses {
		out = append(out, string(s))
	}
	return out
}

// selectPage runs a windowed select plus its count using the same WHERE clause.
func selectPage(ctx context.Context, q sqlx.QueryerContext, dest interface{}, rows, count squirrel.SelectBuilder, page models.PageRequest, label string) (int, error) {
	query, args, err := rows.Limit(uint64(page.PerPage)).Offset(uint64(page.Offset())).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build list %s: %w", label, err)
	}
	if err := sqlx.SelectContext(ctx, q, dest, query, args...); err != nil {
		return 0, fmt.Errorf("list %s: %w", label, err)
	}

	countQuery, countArgs, err := count.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count %s: %w", label, err)
	}
	var total int
	if err := sqlx.GetContext(ctx, q, &total, countQuery, countArgs...); err != nil {
		return 0, fmt.Errorf("count %s: %w", label, err)
	}
	return total, nil
}

// expectAffected reports sql.ErrNoRows when a targeted write matched nothing.
func expectAffected(result sql.Result, label string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", label, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// target picks the running transaction when one is supplied.
func target(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}
