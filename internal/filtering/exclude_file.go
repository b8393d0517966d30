package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/matching"
)

type excludeFileFilter struct {
	toggle
	path   string
	logger *zap.Logger
}

// NewExcludeFile creates a filter that removes matches listed in an exclude file.
func NewExcludeFile(path string, logger *zap.Logger) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &excludeFileFilter{
		path:   strings.TrimSpace(path),
		logger: logger,
	}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate() error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	if f.path == "" {
		return r, Step{Initial: r.Len(), Left: r.Len()}, nil
	}

	excluded, err := LoadExcluded(f.path)
	if err != nil {
		return r, Step{}, fmt.Errorf("getting excluded matches from file: %w", err)
	}

	var removed []string
	next, step := keep(r, func(row *matching.ResultRow) bool {
		if excluded.Contains(row.JobseekerID, row.JobID) {
			removed = append(removed, row.JobseekerID+"/"+row.JobID)
			return false
		}
		return true
	})

	if len(removed) > 0 {
		f.logger.Debug("excluding matches based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_matches", removed),
			zap.Int("matches_left", next.Len()),
		)
	}

	return next, step, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
