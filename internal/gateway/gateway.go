// Package gateway defines the narrow contract to the hosted table store:
// single-table select/insert/update/delete with equality filters. There are
// no transactions and no joins; anything cross-table happens in the
// services on top.
package gateway

import "context"

// Filters maps column names to equality values. An empty (or nil) Filters
// matches every row of the table.
type Filters map[string]any

// Record is one table row in generic form.
type Record map[string]any

type TableGateway interface {
	Select(ctx context.Context, table string, filters Filters) ([]Record, error)
	Insert(ctx context.Context, table string, record Record) (Record, error)
	Update(ctx context.Context, table string, fields Record, filters Filters) ([]Record, error)
	Delete(ctx context.Context, table string, filters Filters) ([]Record, error)
}
