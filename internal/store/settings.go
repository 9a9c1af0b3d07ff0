package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type settingsRepo struct {
	drv *entsql.Driver
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, bool, error) {
	rows, err := query(ctx, r.drv, builder.Select("value").
		From(entsql.Table(tableSettings)).
		Where(entsql.EQ("key", key)))
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	defer rows.Close()

	value, err := entsql.ScanString(rows)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, true, nil
}

func (r *settingsRepo) Set(ctx context.Context, key, value string) error {
	err := exec(ctx, r.drv, builder.Insert(tableSettings).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixNano()).
		OnConflict(entsql.ConflictColumns("key"), entsql.ResolveWithNewValues()))
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (r *settingsRepo) Delete(ctx context.Context, key string) error {
	err := exec(ctx, r.drv, builder.Delete(tableSettings).Where(entsql.EQ("key", key)))
	if err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}
