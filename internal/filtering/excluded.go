package filtering

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/adambasile/jobmatcher/internal/matching"
)

// Excluded is the content of an exclude file: jobseeker/job pairs that must
// not be reported again.
type Excluded struct {
	Items []*ExcludedMatch `json:"items"`
}

type ExcludedMatch struct {
	JobseekerID   string    `json:"jobseeker_id"`
	JobseekerName string    `json:"jobseeker_name"`
	JobID         string    `json:"job_id"`
	JobTitle      string    `json:"job_title"`
	ExcludedAt    time.Time `json:"excluded_at"`
}

type pairKey struct {
	jobseekerID string
	jobID       string
}

// ToExcluded converts every result row into an exclude entry stamped with now.
func ToExcluded(r *matching.Results, now time.Time) *Excluded {
	excluded := &Excluded{}
	for _, row := range r.Items {
		excluded.Items = append(excluded.Items, &ExcludedMatch{
			JobseekerID:   row.JobseekerID,
			JobseekerName: row.JobseekerName,
			JobID:         row.JobID,
			JobTitle:      row.JobTitle,
			ExcludedAt:    now.UTC(),
		})
	}
	return excluded
}

// LoadExcluded reads an exclude file. A missing or empty file is an empty set.
func LoadExcluded(path string) (*Excluded, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Excluded{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *Excluded) Len() int {
	return len(e.Items)
}

// Append adds the entries of s that are not already present.
func (e *Excluded) Append(s *Excluded) {
	known := e.pairs()
	for _, item := range s.Items {
		key := pairKey{item.JobseekerID, item.JobID}
		if _, ok := known[key]; ok {
			continue
		}
		known[key] = struct{}{}
		e.Items = append(e.Items, item)
	}
}

// Contains reports whether the jobseeker/job pair is excluded.
func (e *Excluded) Contains(jobseekerID, jobID string) bool {
	for _, item := range e.Items {
		if item.JobseekerID == jobseekerID && item.JobID == jobID {
			return true
		}
	}
	return false
}

func (e *Excluded) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return err
	}
	return nil
}

func (e *Excluded) pairs() map[pairKey]struct{} {
	set := make(map[pairKey]struct{}, len(e.Items))
	for _, item := range e.Items {
		set[pairKey{item.JobseekerID, item.JobID}] = struct{}{}
	}
	return set
}
