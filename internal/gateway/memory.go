package gateway

import (
	"context"
	"reflect"
	"sync"
)

// MemoryGateway is a map-backed TableGateway with the same semantics as the
// remote store. It backs repository and scenario tests; nothing in the
// serving path uses it.
type MemoryGateway struct {
	mu     sync.Mutex
	tables map[string][]Record
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		tables: make(map[string][]Record),
	}
}

func (g *MemoryGateway) Select(_ context.Context, table string, filters Filters) ([]Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	matched := make([]Record, 0)
	for _, rec := range g.tables[table] {
		if matches(rec, filters) {
			matched = append(matched, clone(rec))
		}
	}
	return matched, nil
}

func (g *MemoryGateway) Insert(_ context.Context, table string, record Record) (Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := clone(record)
	g.tables[table] = append(g.tables[table], rec)
	return clone(rec), nil
}

func (g *MemoryGateway) Update(_ context.Context, table string, fields Record, filters Filters) ([]Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	affected := make([]Record, 0)
	for _, rec := range g.tables[table] {
		if !matches(rec, filters) {
			continue
		}
		for col, val := range fields {
			rec[col] = val
		}
		affected = append(affected, clone(rec))
	}
	return affected, nil
}

func (g *MemoryGateway) Delete(_ context.Context, table string, filters Filters) ([]Record, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	kept := make([]Record, 0, len(g.tables[table]))
	removed := make([]Record, 0)
	for _, rec := range g.tables[table] {
		if matches(rec, filters) {
			removed = append(removed, clone(rec))
			continue
		}
		kept = append(kept, rec)
	}
	g.tables[table] = kept
	return removed, nil
}

func matches(rec Record, filters Filters) bool {
	for col, want := range filters {
		if !reflect.DeepEqual(rec[col], want) {
			return false
		}
	}
	return true
}

func clone(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
