package minidb

import (
	"context"
	"fmt"
)

type StatementKind int

const (
	Insert StatementKind = iota + 1
	Select
)

func (k StatementKind) String() string {
	switch k {
	case Insert:
		return "INSERT"
	case Select:
		return "SELECT"
	default:
		return "UNKNOWN"
	}
}

type Statement struct {
	Kind        StatementKind
	RowToInsert Row // only for insert
}

type StatementResult struct {
	Rows         []Row
	RowsAffected int
}

func (t *Table) ExecuteStatement(ctx context.Context, stmt Statement) (StatementResult, error) {
	switch stmt.Kind {
	case Insert:
		if err := t.Insert(ctx, stmt.RowToInsert); err != nil {
			return StatementResult{}, err
		}
		return StatementResult{RowsAffected: 1}, nil
	case Select:
		rows, err := t.SelectAll(ctx)
		if err != nil {
			return StatementResult{}, err
		}
		return StatementResult{Rows: rows}, nil
	default:
		return StatementResult{}, fmt.Errorf("unrecognized statement kind: %d", stmt.Kind)
	}
}
