package table

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"
)

const bom = "\ufeff"

// Table is a header plus string rows, as read from a CSV source.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// New builds a table from a header and rows. Rows are used as is.
func New(name string, header []string, rows ...[]string) *Table {
	return &Table{
		Name:   name,
		Header: header,
		Rows:   rows,
	}
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column in the header.
func (t *Table) Index(column string) (int, bool) {
	for idx, name := range t.Header {
		if name == column {
			return idx, true
		}
	}
	return -1, false
}

// Records returns every row as a column -> cell map. Cells missing from short
// rows are returned as empty strings.
func (t *Table) Records() []map[string]string {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]string, len(t.Header))
		for idx, column := range t.Header {
			if idx < len(row) {
				record[column] = row[idx]
				continue
			}
			record[column] = ""
		}
		records = append(records, record)
	}
	return records
}

// Read parses a CSV stream whose first record is the header.
func Read(name string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading %s: empty input, header row is required", name)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", name, err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	for idx := range header {
		header[idx] = strings.TrimSpace(header[idx])
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return New(name, header, rows...), nil
}

// Load reads the CSV file at path.
func Load(name, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer file.Close()

	return Read(name, file)
}

// LoadPair loads the jobseekers and jobs tables concurrently. The first
// failure cancels the other load and is returned.
func LoadPair(ctx context.Context, jobseekersPath, jobsPath string) (*Table, *Table, error) {
	var jobseekers, jobs *Table

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := loadWithContext(gCtx, "jobseekers", jobseekersPath)
		if err != nil {
			return err
		}
		jobseekers = t
		return nil
	})

	g.Go(func() error {
		t, err := loadWithContext(gCtx, "jobs", jobsPath)
		if err != nil {
			return err
		}
		jobs = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return jobseekers, jobs, nil
}

func loadWithContext(ctx context.Context, name, path string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s path is required", name)
	}
	return Load(name, path)
}
