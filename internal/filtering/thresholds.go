package filtering

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adambasile/jobmatcher/internal/matching"
)

type minPercentFilter struct {
	toggle
	threshold float64
}

// NewMinPercent creates a filter that drops rows below the given matching percent.
// A zero threshold keeps every row.
func NewMinPercent(threshold float64) Filter {
	return &minPercentFilter{threshold: threshold}
}

func (f *minPercentFilter) Name() string { return "min_percent" }

func (f *minPercentFilter) Validate() error {
	if f.threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %v", f.threshold)
	}
	return nil
}

func (f *minPercentFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	if f.threshold == 0 {
		return r, Step{Initial: r.Len(), Left: r.Len()}, nil
	}

	next, step := keep(r, func(row *matching.ResultRow) bool {
		return row.MatchingSkillPercent >= f.threshold
	})
	return next, step, nil
}

func (f *minPercentFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"threshold": matching.FormatPercent(f.threshold)},
	}
}

type minCountFilter struct {
	toggle
	threshold int
}

// NewMinCount creates a filter that drops rows with fewer matching skills than threshold.
func NewMinCount(threshold int) Filter {
	return &minCountFilter{threshold: threshold}
}

func (f *minCountFilter) Name() string { return "min_count" }

func (f *minCountFilter) Validate() error {
	if f.threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", f.threshold)
	}
	return nil
}

func (f *minCountFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	// every row already has at least one matching skill
	if f.threshold <= 1 {
		return r, Step{Initial: r.Len(), Left: r.Len()}, nil
	}

	next, step := keep(r, func(row *matching.ResultRow) bool {
		return row.MatchingSkillCount >= f.threshold
	})
	return next, step, nil
}

func (f *minCountFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"threshold": strconv.Itoa(f.threshold)},
	}
}

type topFilter struct {
	toggle
	limit int
}

// NewTop creates a filter that keeps the first limit rows of each jobseeker.
// Rows are expected in result order, so these are the best matches.
// A zero limit keeps every row.
func NewTop(limit int) Filter {
	return &topFilter{limit: limit}
}

func (f *topFilter) Name() string { return "top" }

func (f *topFilter) Validate() error {
	if f.limit < 0 {
		return fmt.Errorf("limit must be non-negative, got %d", f.limit)
	}
	return nil
}

func (f *topFilter) Apply(_ context.Context, r *matching.Results) (*matching.Results, Step, error) {
	if f.limit == 0 {
		return r, Step{Initial: r.Len(), Left: r.Len()}, nil
	}

	seen := make(map[string]int)
	next, step := keep(r, func(row *matching.ResultRow) bool {
		seen[row.JobseekerID]++
		return seen[row.JobseekerID] <= f.limit
	})
	return next, step, nil
}

func (f *topFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"limit": strconv.Itoa(f.limit)},
	}
}
