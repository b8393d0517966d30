package matching

import (
	"strconv"
	"strings"
)

// Source columns expected in the input tables.
const (
	ColumnID             = "id"
	ColumnName           = "name"
	ColumnSkills         = "skills"
	ColumnTitle          = "title"
	ColumnRequiredSkills = "required_skills"
)

// Output columns, in output order.
const (
	ColumnJobseekerID          = "jobseeker_id"
	ColumnJobseekerName        = "jobseeker_name"
	ColumnJobID                = "job_id"
	ColumnJobTitle             = "job_title"
	ColumnMatchingSkillCount   = "matching_skill_count"
	ColumnMatchingSkillPercent = "matching_skill_percent"
)

// OutputColumns is the projected column set of a result table.
var OutputColumns = []string{
	ColumnJobseekerID,
	ColumnJobseekerName,
	ColumnJobID,
	ColumnJobTitle,
	ColumnMatchingSkillCount,
	ColumnMatchingSkillPercent,
}

var (
	jobseekerColumns = []string{ColumnID, ColumnName, ColumnSkills}
	jobColumns       = []string{ColumnID, ColumnTitle, ColumnRequiredSkills}
)

type Jobseeker struct {
	JobseekerID   string
	JobseekerName string
	Skills        []string
}

type Job struct {
	JobID          string
	JobTitle       string
	RequiredSkills []string
	// RequiredSkillCount is fixed at preprocessing time.
	RequiredSkillCount int
}

// Jobseekers is a preprocessed jobseekers table indexed by id.
type Jobseekers struct {
	Items []*Jobseeker
	byID  map[string]*Jobseeker
}

// Jobs is a preprocessed jobs table indexed by id.
type Jobs struct {
	Items []*Job
	byID  map[string]*Job
}

// NewJobseekers indexes items by id. Later items win on duplicate ids.
func NewJobseekers(items ...*Jobseeker) *Jobseekers {
	js := &Jobseekers{Items: items, byID: make(map[string]*Jobseeker, len(items))}
	for _, item := range items {
		js.byID[item.JobseekerID] = item
	}
	return js
}

func (js *Jobseekers) Len() int {
	return len(js.Items)
}

func (js *Jobseekers) FindByID(id string) *Jobseeker {
	return js.byID[id]
}

// NewJobs indexes items by id. Later items win on duplicate ids.
func NewJobs(items ...*Job) *Jobs {
	j := &Jobs{Items: items, byID: make(map[string]*Job, len(items))}
	for _, item := range items {
		j.byID[item.JobID] = item
	}
	return j
}

func (j *Jobs) Len() int {
	return len(j.Items)
}

func (j *Jobs) FindByID(id string) *Job {
	return j.byID[id]
}

// Match is the overlap between one jobseeker and one job. Only pairs sharing
// at least one skill token are ever materialized.
type Match struct {
	JobseekerID          string
	JobID                string
	MatchingSkillCount   int
	RequiredSkillCount   int
	MatchingSkillPercent float64
}

// ResultRow is a match joined with display fields.
type ResultRow struct {
	JobseekerID          string  `json:"jobseeker_id" yaml:"jobseeker_id"`
	JobseekerName        string  `json:"jobseeker_name" yaml:"jobseeker_name"`
	JobID                string  `json:"job_id" yaml:"job_id"`
	JobTitle             string  `json:"job_title" yaml:"job_title"`
	MatchingSkillCount   int     `json:"matching_skill_count" yaml:"matching_skill_count"`
	MatchingSkillPercent float64 `json:"matching_skill_percent" yaml:"matching_skill_percent"`
}

// CompareIDs orders identifiers. Two base-10 integers compare numerically,
// integers sort before anything else and the rest compare as strings.
func CompareIDs(a, b string) int {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)

	switch {
	case errA == nil && errB == nil:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		// "01" and "1": keep the order total.
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return strings.Compare(a, b)
	}
}
