package minidb

import (
	"context"
	"fmt"
)

// Scan calls fn for every row in ascending key order, stopping at the first error.
func (t *Table) Scan(ctx context.Context, fn func(Row) error) error {
	aCursor, err := t.SeekFirst(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	for !aCursor.EndOfTable {
		aRow, err := aCursor.Row(ctx)
		if err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if err := fn(aRow); err != nil {
			return err
		}
		if err := aCursor.Advance(ctx); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
	}

	return nil
}

func (t *Table) SelectAll(ctx context.Context) ([]Row, error) {
	var rows []Row
	if err := t.Scan(ctx, func(aRow Row) error {
		rows = append(rows, aRow)
		return nil
	}); err != nil {
		return nil, err
	}
	return rows, nil
}
