package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Results is an ordered result table.
type Results struct {
	Items []*ResultRow
}

func (r *Results) Len() int {
	return len(r.Items)
}

// JobseekerIDs returns distinct jobseeker ids in result order.
func (r *Results) JobseekerIDs() []string {
	ids := make([]string, 0)
	seen := make(map[string]struct{})
	for _, row := range r.Items {
		if _, ok := seen[row.JobseekerID]; ok {
			continue
		}
		seen[row.JobseekerID] = struct{}{}
		ids = append(ids, row.JobseekerID)
	}
	return ids
}

// ReportByJobseeker groups matched jobs under "name (id)" keys.
func (r *Results) ReportByJobseeker() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, row := range r.Items {
		key := fmt.Sprintf("%s (%s)", row.JobseekerName, row.JobseekerID)
		report[key] = append(report[key], map[string]string{
			"job_id":         row.JobID,
			"job_title":      row.JobTitle,
			"matching_count": strconv.Itoa(row.MatchingSkillCount),
			"matching":       FormatPercent(row.MatchingSkillPercent) + "%",
		})
	}
	return report
}

// DumpToTmpFile writes the results as indented JSON into a new temp file and
// returns its name.
func (r *Results) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// FormatPercent renders a percent with the shortest exact decimal form and
// always at least one fractional digit, e.g. 100.0 or 66.66666666666667.
func FormatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
