package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/adambasile/jobmatcher/internal/matching"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"

	stdoutPath = "-"
)

// Formats lists the supported output formats.
var Formats = []string{FormatCSV, FormatJSON, FormatYAML}

// ContentType returns the MIME type matching format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/csv"
	}
}

// Write serializes results into w. An empty format means csv.
func Write(w io.Writer, r *matching.Results, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV, "":
		return writeCSV(w, r)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rowsOf(r))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rowsOf(r)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeCSV(w io.Writer, r *matching.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(matching.OutputColumns); err != nil {
		return err
	}

	for _, row := range rowsOf(r) {
		record := []string{
			row.JobseekerID,
			row.JobseekerName,
			row.JobID,
			row.JobTitle,
			strconv.Itoa(row.MatchingSkillCount),
			matching.FormatPercent(row.MatchingSkillPercent),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// rowsOf never returns nil so an empty result encodes as [] instead of null.
func rowsOf(r *matching.Results) []*matching.ResultRow {
	if r == nil || r.Items == nil {
		return []*matching.ResultRow{}
	}
	return r.Items
}

// Open returns a writer for path. An empty path or "-" means stdout, which
// is not closed by the returned close func.
func Open(path string) (io.Writer, func() error, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == stdoutPath {
		return os.Stdout, func() error { return nil }, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return file, file.Close, nil
}
