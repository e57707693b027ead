// Package csvload materialises CSV input into a mimdb Table. The first
// record is the header row; each subsequent record is one row of data.
//
// Column types are inferred: a column whose every value parses as a signed
// 64-bit integer becomes Int64, anything else becomes Varchar. The storage
// core itself never sees CSV; this package calls Table.AddColumn once per
// source column with fully materialised data.
package csvload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/table"
)

// ErrNoHeader is returned when the input contains no header record.
var ErrNoHeader = errors.New("csvload: input has no header record")

// Load reads CSV from r and returns the resulting Table. Duplicate or empty
// header names surface as the corresponding Table.AddColumn errors.
func Load(r io.Reader) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csvload: read header: %w", err)
	}

	raw := make([][]string, len(header))

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvload: read record: %w", err)
		}

		for i, v := range record {
			raw[i] = append(raw[i], v)
		}
	}

	t := table.New()
	for i, name := range header {
		if err := t.AddColumn(name, inferColumn(raw[i])); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// LoadFile reads the CSV file at path via Load.
func LoadFile(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIoFailure, err)
	}
	defer f.Close()

	return Load(f)
}

// inferColumn decides a column's type from its values: Int64 when every
// value parses as a base-10 signed 64-bit integer, Varchar otherwise. An
// empty column (zero rows) defaults to Int64.
func inferColumn(values []string) table.ColumnData {
	ints := make([]int64, len(values))
	for i, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return table.NewVarcharColumn(values)
		}
		ints[i] = n
	}

	return table.NewInt64Column(ints)
}
