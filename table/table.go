// Package table loads and represents the tabular input of a run.
//
// A Table is an ordered sequence of rows, fully materialized in memory.
// Cells are kept as raw strings; numeric interpretation happens on demand
// per column, so non-target columns never need to parse.
package table

import (
	"fmt"
	"strconv"
)

// Table is an immutable in-memory tabular dataset.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Table from a header and row data.
// Returns an error on duplicate or empty column names.
func New(columns []string, rows [][]string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		index[name] = i
	}
	return &Table{columns: columns, index: index, rows: rows}, nil
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the raw string values of the named column in row order.
func (t *Table) Column(name string) ([]string, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, true
}

// FloatColumn parses the named column as float64 values in row order.
// Returns an error naming the first unparseable cell.
func (t *Table) FloatColumn(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]float64, len(t.rows))
	for r, row := range t.rows {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: invalid numeric value %q", name, r+1, row[i])
		}
		out[r] = v
	}
	return out, nil
}
