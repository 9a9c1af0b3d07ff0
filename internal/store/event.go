package store

import (
	"context"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
)

// counterLLMEvents numbers rows of llm_request_events.
const counterLLMEvents = "llm_events"

// counters hands out per-name monotonic values starting at 1. Event rows
// carry one so that listings stay ordered even when created_at collides.
type counters struct {
	mu  sync.Mutex
	drv *entsql.Driver
}

// Next returns the next value for name.
func (c *counters) Next(ctx context.Context, name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	upsert := builder.Insert(tableCounters).
		Columns("name", "value").
		Values(name, 1).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) { u.Add("value", 1) }),
		).
		Returning("value")

	rows, err := query(ctx, c.drv, upsert)
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", name, err)
	}
	defer rows.Close()

	v, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, fmt.Errorf("counter %s: %w", name, err)
	}
	return v, nil
}
