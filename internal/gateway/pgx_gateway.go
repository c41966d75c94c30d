package gateway

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
)

type pgxGateway struct {
	pool *pgxpool.Pool
}

func NewPgxGateway(pool *pgxpool.Pool) TableGateway {
	return &pgxGateway{pool: pool}
}

func (g *pgxGateway) Select(ctx context.Context, table string, filters Filters) ([]Record, error) {
	q := psql.Select(
		sm.Columns("*"),
		sm.From(table),
	)
	for _, col := range sortedKeys(filters) {
		q.Apply(sm.Where(psql.Quote(col).EQ(psql.Arg(filters[col]))))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "build select %s", table)
	}

	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", table)
	}

	return collectRecords(rows)
}

func (g *pgxGateway) Insert(ctx context.Context, table string, record Record) (Record, error) {
	cols := sortedKeys(record)
	vals := make([]any, 0, len(cols))
	for _, col := range cols {
		vals = append(vals, record[col])
	}

	q := psql.Insert(
		im.Into(table, cols...),
		im.Values(psql.Arg(vals...)),
		im.Returning("*"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "build insert %s", table)
	}

	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "insert %s", table)
	}

	inserted, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(inserted) == 0 {
		return nil, errors.Errorf("insert %s returned no row", table)
	}
	return inserted[0], nil
}

func (g *pgxGateway) Update(ctx context.Context, table string, fields Record, filters Filters) ([]Record, error) {
	q := psql.Update(
		um.Table(table),
		um.Returning("*"),
	)
	for _, col := range sortedKeys(fields) {
		q.Apply(um.SetCol(col).ToArg(fields[col]))
	}
	for _, col := range sortedKeys(filters) {
		q.Apply(um.Where(psql.Quote(col).EQ(psql.Arg(filters[col]))))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "build update %s", table)
	}

	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "update %s", table)
	}

	return collectRecords(rows)
}

func (g *pgxGateway) Delete(ctx context.Context, table string, filters Filters) ([]Record, error) {
	q := psql.Delete(
		dm.From(table),
		dm.Returning("*"),
	)
	for _, col := range sortedKeys(filters) {
		q.Apply(dm.Where(psql.Quote(col).EQ(psql.Arg(filters[col]))))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "build delete %s", table)
	}

	rows, err := g.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "delete %s", table)
	}

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	records := make([]Record, 0)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, errors.Wrap(err, "read row values")
		}
		rec := make(Record, len(fields))
		for i, f := range fields {
			rec[f.Name] = vals[i]
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// sortedKeys keeps generated SQL deterministic across calls.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
