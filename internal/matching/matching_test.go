package matching

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/adambasile/jobmatcher/internal/skills"
	"github.com/adambasile/jobmatcher/internal/table"
)

func seekersTable(rows ...[]string) *table.Table {
	return table.New("jobseekers", []string{"id", "name", "skills"}, rows...)
}

func jobsTable(rows ...[]string) *table.Table {
	return table.New("jobs", []string{"id", "title", "required_skills"}, rows...)
}

func run(t *testing.T, seekers, jobs *table.Table, opts skills.Options) *Results {
	t.Helper()
	results, err := Run(context.Background(), zap.NewNop(), seekers, jobs, opts)
	require.NoError(t, err)
	return results
}

func TestScenarioFullMatch(t *testing.T) {
	results := run(t,
		seekersTable([]string{"1", "Alice", "polars, SQL"}),
		jobsTable([]string{"1", "Data Engineer", "polars, SQL"}),
		skills.Options{},
	)

	require.Equal(t, 1, results.Len())
	assert.Equal(t, &ResultRow{
		JobseekerID:          "1",
		JobseekerName:        "Alice",
		JobID:                "1",
		JobTitle:             "Data Engineer",
		MatchingSkillCount:   2,
		MatchingSkillPercent: 100.0,
	}, results.Items[0])
}

func TestScenarioPartialMatch(t *testing.T) {
	seekers, jobs, err := Preprocess(
		seekersTable([]string{"1", "Alice", "polars, SQL"}),
		jobsTable([]string{"2", "Analyst", "R, SQL"}),
		skills.Options{},
	)
	require.NoError(t, err)

	matches := Overlap(seekers, jobs)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{
		JobseekerID:          "1",
		JobID:                "2",
		MatchingSkillCount:   1,
		RequiredSkillCount:   2,
		MatchingSkillPercent: 50.0,
	}, matches[0])
}

func TestScenarioNoOverlap(t *testing.T) {
	results := run(t,
		seekersTable([]string{"1", "Alice", "polars, SQL"}),
		jobsTable([]string{"1", "Frontend", "React, CSS"}),
		skills.Options{},
	)
	assert.Equal(t, 0, results.Len())
}

func TestScenarioOrdering(t *testing.T) {
	results := run(t,
		seekersTable(
			[]string{"2", "Bob", "B, C"},
			[]string{"1", "Alice", "A, B"},
		),
		jobsTable(
			[]string{"1", "First", "A, C"},
			[]string{"2", "Second", "A, B"},
		),
		skills.Options{},
	)

	type key struct {
		seeker, job string
		percent     float64
	}
	got := make([]key, 0, results.Len())
	for _, row := range results.Items {
		got = append(got, key{row.JobseekerID, row.JobID, row.MatchingSkillPercent})
	}

	assert.Equal(t, []key{
		{"1", "2", 100},
		{"1", "1", 50},
		{"2", "1", 50},
		{"2", "2", 50},
	}, got)
}

func TestWhitespaceTolerance(t *testing.T) {
	results := run(t,
		seekersTable([]string{"1", "Alice", "SQL"}),
		jobsTable([]string{"1", "Analyst", " SQL "}),
		skills.Options{},
	)
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 1, results.Items[0].MatchingSkillCount)
}

func TestMatchingIsCaseSensitive(t *testing.T) {
	results := run(t,
		seekersTable([]string{"1", "Alice", "sql"}),
		jobsTable([]string{"1", "Analyst", "SQL"}),
		skills.Options{},
	)
	assert.Equal(t, 0, results.Len())
}

func TestEmptySkillsNeverMatch(t *testing.T) {
	results := run(t,
		seekersTable(
			[]string{"1", "Alice", ""},
			[]string{"2", "Bob", "Go"},
		),
		jobsTable(
			[]string{"1", "Nothing", ""},
			[]string{"2", "Gopher", "Go"},
		),
		skills.Options{},
	)

	require.Equal(t, 1, results.Len())
	assert.Equal(t, "2", results.Items[0].JobseekerID)
	assert.Equal(t, "2", results.Items[0].JobID)
}

func TestDuplicateTokensAreCountedPerPairing(t *testing.T) {
	seekers := seekersTable([]string{"1", "Alice", "SQL, SQL"})
	jobs := jobsTable([]string{"1", "Analyst", "SQL"})

	results := run(t, seekers, jobs, skills.Options{})
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 2, results.Items[0].MatchingSkillCount)
	assert.Equal(t, 200.0, results.Items[0].MatchingSkillPercent)

	results = run(t, seekers, jobs, skills.Options{Dedupe: true})
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 1, results.Items[0].MatchingSkillCount)
	assert.Equal(t, 100.0, results.Items[0].MatchingSkillPercent)
}

func TestEmptyTokensMatchUnlessDropped(t *testing.T) {
	seekers := seekersTable([]string{"1", "Alice", "SQL,"})
	jobs := jobsTable([]string{"1", "Analyst", "R,"})

	results := run(t, seekers, jobs, skills.Options{})
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 1, results.Items[0].MatchingSkillCount)
	assert.Equal(t, 50.0, results.Items[0].MatchingSkillPercent)

	results = run(t, seekers, jobs, skills.Options{DropEmpty: true})
	assert.Equal(t, 0, results.Len())
}

func TestWhitespaceOnlyFieldIsOneEmptyToken(t *testing.T) {
	seekers := seekersTable([]string{"1", "Alice", "SQL, "})
	jobs := jobsTable([]string{"1", "Blank", "  "})

	results := run(t, seekers, jobs, skills.Options{})
	require.Equal(t, 1, results.Len())
	assert.Equal(t, 1, results.Items[0].MatchingSkillCount)
	assert.Equal(t, 100.0, results.Items[0].MatchingSkillPercent)

	results = run(t, seekers, jobs, skills.Options{DropEmpty: true})
	assert.Equal(t, 0, results.Len())
}

func TestPreprocessRequiredSkillCount(t *testing.T) {
	_, jobs, err := Preprocess(
		seekersTable(),
		jobsTable(
			[]string{"1", "A", "Go, SQL, R"},
			[]string{"2", "B", ""},
			[]string{"3", "C", "Go,"},
		),
		skills.Options{},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, jobs.FindByID("1").RequiredSkillCount)
	assert.Equal(t, 0, jobs.FindByID("2").RequiredSkillCount)
	assert.Equal(t, 2, jobs.FindByID("3").RequiredSkillCount)
}

func TestPreprocessIgnoresExtraColumns(t *testing.T) {
	seekers := table.New("jobseekers", []string{"email", "skills", "name", "id"},
		[]string{"a@example.com", "Go", "Alice", " 5 "},
	)

	parsed, _, err := Preprocess(seekers, jobsTable(), skills.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, parsed.Len())
	assert.Equal(t, &Jobseeker{JobseekerID: "5", JobseekerName: "Alice", Skills: []string{"Go"}}, parsed.Items[0])
}

func TestPreprocessSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		seekers *table.Table
		jobs    *table.Table
		table   string
		column  string
	}{
		{
			name:    "jobseekers without skills",
			seekers: table.New("jobseekers", []string{"id", "name"}),
			jobs:    jobsTable(),
			table:   "jobseekers",
			column:  "skills",
		},
		{
			name:    "jobs without title",
			seekers: seekersTable(),
			jobs:    table.New("jobs", []string{"id", "required_skills"}),
			table:   "jobs",
			column:  "title",
		},
		{
			name:    "nil jobs table",
			seekers: seekersTable(),
			jobs:    nil,
			table:   "jobs",
			column:  "id",
		},
		{
			name:    "duplicate jobseeker id",
			seekers: seekersTable([]string{"1", "A", "Go"}, []string{"1", "B", "R"}),
			jobs:    jobsTable(),
			table:   "jobseekers",
			column:  "id",
		},
		{
			name:    "duplicate job id",
			seekers: seekersTable(),
			jobs:    jobsTable([]string{"9", "A", "Go"}, []string{"9", "B", "R"}),
			table:   "jobs",
			column:  "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), nil, tt.seekers, tt.jobs, skills.Options{})
			require.Error(t, err)

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
			assert.Equal(t, tt.table, schemaErr.Table)
			assert.Equal(t, tt.column, schemaErr.Column)
		})
	}
}

func TestFormatConsistencyError(t *testing.T) {
	seekers := NewJobseekers(&Jobseeker{JobseekerID: "1", JobseekerName: "Alice"})
	jobs := NewJobs(&Job{JobID: "1", JobTitle: "Dev", RequiredSkillCount: 1})

	_, err := Format([]Match{{JobseekerID: "1", JobID: "404"}}, seekers, jobs)
	var consistencyErr *ConsistencyError
	require.True(t, errors.As(err, &consistencyErr))
	assert.Equal(t, "job", consistencyErr.Kind)
	assert.Equal(t, "404", consistencyErr.ID)

	_, err = Format([]Match{{JobseekerID: "7", JobID: "1"}}, seekers, jobs)
	require.True(t, errors.As(err, &consistencyErr))
	assert.Equal(t, "jobseeker", consistencyErr.Kind)
}

func TestRunProperties(t *testing.T) {
	seekers := seekersTable(
		[]string{"10", "Jo", "Go, SQL, Docker"},
		[]string{"2", "Sam", "Python, SQL"},
		[]string{"1", "Ann", "R"},
		[]string{"3", "Lee", "Go, Python, Docker, SQL"},
	)
	jobs := jobsTable(
		[]string{"5", "Backend", "Go, SQL"},
		[]string{"12", "Data", "Python, SQL, R"},
		[]string{"3", "Platform", "Docker, Go, Kubernetes"},
		[]string{"4", "Stats", "R"},
	)

	first := run(t, seekers, jobs, skills.Options{})
	second := run(t, seekers, jobs, skills.Options{})
	assert.Equal(t, first, second, "results must be deterministic")

	seekerSkills := map[string][]string{}
	_, parsedJobs, err := Preprocess(seekers, jobs, skills.Options{})
	require.NoError(t, err)
	for _, row := range seekers.Rows {
		seekerSkills[row[0]] = skills.Normalize(row[2])
	}

	// every overlapping pair is present exactly once
	expected := map[[2]string]int{}
	for id, tokens := range seekerSkills {
		for _, job := range parsedJobs.Items {
			count := 0
			for _, s := range tokens {
				for _, r := range job.RequiredSkills {
					if s == r {
						count++
					}
				}
			}
			if count > 0 {
				expected[[2]string{id, job.JobID}] = count
			}
		}
	}

	got := map[[2]string]int{}
	for _, row := range first.Items {
		key := [2]string{row.JobseekerID, row.JobID}
		_, dup := got[key]
		require.False(t, dup, "pair %v emitted twice", key)
		got[key] = row.MatchingSkillCount

		require.GreaterOrEqual(t, row.MatchingSkillCount, 1)
		required := parsedJobs.FindByID(row.JobID).RequiredSkillCount
		assert.Equal(t, 100*float64(row.MatchingSkillCount)/float64(required), row.MatchingSkillPercent)
	}
	assert.Equal(t, expected, got)

	for i := 1; i < first.Len(); i++ {
		prev, cur := first.Items[i-1], first.Items[i]
		c := CompareIDs(prev.JobseekerID, cur.JobseekerID)
		require.LessOrEqual(t, c, 0)
		if c == 0 {
			require.GreaterOrEqual(t, prev.MatchingSkillPercent, cur.MatchingSkillPercent)
			if prev.MatchingSkillPercent == cur.MatchingSkillPercent {
				require.Less(t, CompareIDs(prev.JobID, cur.JobID), 0)
			}
		}
	}

	// numeric ordering: "2" before "10"
	assert.Equal(t, []string{"1", "2", "3", "10"}, first.JobseekerIDs())
}

func TestRunLogsStages(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	_, err := Run(context.Background(), zap.New(core),
		seekersTable([]string{"1", "Alice", "Go"}, []string{"2", "Bob", ""}),
		jobsTable([]string{"1", "Dev", "Go"}),
		skills.Options{},
	)
	require.NoError(t, err)

	stages := []string{}
	for _, entry := range observed.FilterMessage("pipeline stage").All() {
		stages = append(stages, entry.ContextMap()["stage"].(string))
	}
	assert.Equal(t, []string{"preprocess", "match", "format"}, stages)

	unmatchable := observed.FilterMessage("jobseeker has no skills and cannot match").All()
	require.Len(t, unmatchable, 1)
	assert.Equal(t, "2", unmatchable[0].ContextMap()["jobseeker_id"])
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, nil, seekersTable(), jobsTable(), skills.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		a, b   string
		expect int
	}{
		{"1", "2", -1},
		{"10", "9", 1},
		{"7", "7", 0},
		{"01", "1", -1},
		{"9", "a", -1},
		{"b", "10", 1},
		{"abc", "abd", -1},
		{"-3", "2", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, CompareIDs(tt.a, tt.b), "%s vs %s", tt.a, tt.b)
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "100.0", FormatPercent(100))
	assert.Equal(t, "50.0", FormatPercent(50))
	assert.Equal(t, "0.0", FormatPercent(0))
	assert.Equal(t, "66.66666666666667", FormatPercent(200.0/3))
	assert.Equal(t, "33.333333333333336", FormatPercent(100.0/3))
}

func TestReportByJobseeker(t *testing.T) {
	results := &Results{Items: []*ResultRow{
		{JobseekerID: "1", JobseekerName: "Alice", JobID: "2", JobTitle: "Dev", MatchingSkillCount: 2, MatchingSkillPercent: 100},
		{JobseekerID: "1", JobseekerName: "Alice", JobID: "3", JobTitle: "Ops", MatchingSkillCount: 1, MatchingSkillPercent: 50},
	}}

	report := results.ReportByJobseeker()
	entries, ok := report["Alice (1)"]
	require.True(t, ok)
	require.Len(t, entries, 2)
	assert.Equal(t, "Dev", entries[0]["job_title"])
	assert.Equal(t, "100.0%", entries[0]["matching"])
	assert.Equal(t, "1", entries[1]["matching_count"])
}

func TestDumpToTmpFile(t *testing.T) {
	results := &Results{Items: []*ResultRow{
		{JobseekerID: "1", JobseekerName: "Alice", JobID: "2", JobTitle: "Dev", MatchingSkillCount: 1, MatchingSkillPercent: 50},
	}}

	name, err := results.DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var rows []*ResultRow
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Equal(t, results.Items, rows)
}
