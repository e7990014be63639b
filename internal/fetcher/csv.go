// Package fetcher reads raw supplier tables from CSV and XLSX sources.
// It makes no assumptions about column content; everything comes back as
// strings for the ingestion layer to interpret.
package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/supplier-cli/internal/model"
)

// CSVOptions configures the CSV parser.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // comment character (0 = none)
	LazyQuotes bool
}

// ReadCSVTable reads a CSV stream into a raw table. The first row is the
// header; data rows may have fewer or more fields than the header.
func ReadCSVTable(ctx context.Context, r io.Reader, opts CSVOptions) (*model.RawTable, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1 // allow variable fields

	table := &model.RawTable{}
	first := true
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}

		for i, field := range record {
			record[i] = strings.TrimSpace(field)
		}

		if first {
			first = false
			table.Columns = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if len(table.Columns) == 0 {
		return nil, eris.New("csv: empty input, no header row")
	}
	return table, nil
}

// ReadTableFile reads a table from disk, dispatching on the file extension.
// CSV is the default for unknown extensions.
func ReadTableFile(ctx context.Context, path string) (*model.RawTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSXTable(ctx, path, XLSXOptions{})
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", path)
	}
	defer f.Close()
	return ReadCSVTable(ctx, f, CSVOptions{})
}
