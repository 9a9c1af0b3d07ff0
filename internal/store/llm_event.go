package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by SQLite.
type eventRepo struct {
	drv      *entsql.Driver
	counters *counters
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.counters.Next(ctx, counterLLMEvents)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	insert := builder.Insert(tableLLMEvents).
		Columns(columnNames(llmEventColumns[1:])...).
		Values(
			seqNum,
			time.Now().UnixNano(),
			data.Provider,
			data.Model,
			data.Purpose,
			data.InputTokens,
			data.OutputTokens,
			data.LatencyMs,
			data.Success,
			data.ErrorMessage,
			data.RequestBody,
			data.ResponseBody,
		)
	if err := exec(ctx, r.drv, insert); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func selectEvents() *entsql.Selector {
	return builder.Select(columnNames(llmEventColumns)...).From(entsql.Table(tableLLMEvents))
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := selectEvents()
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("created_at", opts.From.UnixNano()))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	events, err := r.scanEvents(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	events, err := r.scanEvents(ctx, selectEvents().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	if len(events) == 0 {
		return nil, nil
	}
	return &events[0], nil
}

func (r *eventRepo) scanEvents(ctx context.Context, sel *entsql.Selector) ([]LLMEvent, error) {
	rows, err := query(ctx, r.drv, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		var (
			e       LLMEvent
			created int64
		)
		err := rows.Scan(&e.ID, &e.Sequence, &created, &e.Provider, &e.Model, &e.Purpose,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
			&e.RequestBody, &e.ResponseBody)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		e.Timestamp = time.Unix(0, created)
		events = append(events, e)
	}
	return events, rows.Err()
}

var (
	calls = entsql.Count("*")
	// avgLatency truncates like the integer column it summarizes.
	avgLatency = "CAST(" + entsql.Avg("latency_ms") + " AS INTEGER)"
)

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	sel := builder.Select("purpose", calls, entsql.Sum("input_tokens"), entsql.Sum("output_tokens"), avgLatency).
		From(entsql.Table(tableLLMEvents)).
		GroupBy("purpose").
		OrderBy(entsql.Desc(calls), "purpose")

	rows, err := query(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var u PurposeUsage
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &u.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	sel := builder.Select("model", calls, entsql.Sum("input_tokens"), entsql.Sum("output_tokens")).
		From(entsql.Table(tableLLMEvents)).
		GroupBy("model").
		OrderBy(entsql.Desc(calls), "model")

	rows, err := query(ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
