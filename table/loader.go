package table

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pithecene-io/assay/fault"
	"github.com/pithecene-io/assay/iox"
)

// Load reads a CSV file into a fully materialized Table.
// The first record is the header; every data row must have the same field
// count (enforced by encoding/csv).
//
// Errors:
//   - fault.ErrInputNotFound when the path does not resolve to a readable file
//   - fault.ErrParse on malformed CSV, missing header, empty table, or
//     duplicate column names
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.WrapRead(err, path)
	}
	defer iox.DiscardClose(f)

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, err)
	}
	if len(records) == 0 {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, fmt.Errorf("input has no header row"))
	}
	if len(records) == 1 {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, fmt.Errorf("input table is empty"))
	}

	t, err := New(records[0], records[1:])
	if err != nil {
		return nil, fault.New(fault.ErrParse, fault.StageLoad, path, err)
	}
	return t, nil
}
