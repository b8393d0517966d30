package matching

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/adambasile/jobmatcher/internal/skills"
	"github.com/adambasile/jobmatcher/internal/table"
)

type jobseekerRecord struct {
	ID     string `csv:"id"`
	Name   string `csv:"name"`
	Skills string `csv:"skills"`
}

type jobRecord struct {
	ID             string `csv:"id"`
	Title          string `csv:"title"`
	RequiredSkills string `csv:"required_skills"`
}

// Preprocess checks both tables for their required columns, moves the
// identifying fields into the jobseeker_ and job_ namespaces, parses the
// skill fields and counts each job's required skills.
func Preprocess(jobseekers, jobs *table.Table, opts skills.Options) (*Jobseekers, *Jobs, error) {
	if err := requireColumns(jobseekers, "jobseekers", jobseekerColumns); err != nil {
		return nil, nil, err
	}
	if err := requireColumns(jobs, "jobs", jobColumns); err != nil {
		return nil, nil, err
	}

	var seekerRecords []jobseekerRecord
	if err := decodeRecords(jobseekers, &seekerRecords); err != nil {
		return nil, nil, fmt.Errorf("decoding jobseekers: %w", err)
	}

	var jobRecords []jobRecord
	if err := decodeRecords(jobs, &jobRecords); err != nil {
		return nil, nil, fmt.Errorf("decoding jobs: %w", err)
	}

	seekers := make([]*Jobseeker, 0, len(seekerRecords))
	seen := make(map[string]struct{}, len(seekerRecords))
	for _, r := range seekerRecords {
		id := strings.TrimSpace(r.ID)
		if _, ok := seen[id]; ok {
			return nil, nil, duplicateID("jobseekers", id)
		}
		seen[id] = struct{}{}

		seekers = append(seekers, &Jobseeker{
			JobseekerID:   id,
			JobseekerName: r.Name,
			Skills:        skills.Parse(r.Skills, opts),
		})
	}

	parsedJobs := make([]*Job, 0, len(jobRecords))
	seen = make(map[string]struct{}, len(jobRecords))
	for _, r := range jobRecords {
		id := strings.TrimSpace(r.ID)
		if _, ok := seen[id]; ok {
			return nil, nil, duplicateID("jobs", id)
		}
		seen[id] = struct{}{}

		required := skills.Parse(r.RequiredSkills, opts)
		parsedJobs = append(parsedJobs, &Job{
			JobID:              id,
			JobTitle:           r.Title,
			RequiredSkills:     required,
			RequiredSkillCount: len(required),
		})
	}

	return NewJobseekers(seekers...), NewJobs(parsedJobs...), nil
}

func requireColumns(t *table.Table, name string, columns []string) error {
	if t == nil {
		return &SchemaError{Table: name, Column: columns[0], Reason: "table is missing"}
	}
	for _, column := range columns {
		if _, ok := t.Index(column); !ok {
			return &SchemaError{Table: name, Column: column}
		}
	}
	return nil
}

func decodeRecords(t *table.Table, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   result,
		TagName:  "csv",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}
	return decoder.Decode(t.Records())
}

func duplicateID(tableName, id string) error {
	return &SchemaError{
		Table:  tableName,
		Column: ColumnID,
		Reason: fmt.Sprintf("duplicate value %q", id),
	}
}
