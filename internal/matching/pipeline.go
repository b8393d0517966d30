package matching

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/logger"
	"github.com/adambasile/jobmatcher/internal/skills"
	"github.com/adambasile/jobmatcher/internal/table"
	"github.com/adambasile/jobmatcher/internal/utils"
)

const maxLogLength = 64

// Run executes preprocessing, matching and formatting over the two input
// tables. Nothing is returned unless every stage succeeds.
func Run(ctx context.Context, log *zap.Logger, jobseekers, jobs *table.Table, opts skills.Options) (*Results, error) {
	log = logger.WithFields(log)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seekers, parsedJobs, err := Preprocess(jobseekers, jobs, opts)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	log.Info("pipeline stage",
		zap.String(logger.FieldStage, "preprocess"),
		zap.Int("jobseekers", seekers.Len()),
		zap.Int("jobs", parsedJobs.Len()),
		zap.Bool("dedupe_skills", opts.Dedupe),
		zap.Bool("drop_empty_skills", opts.DropEmpty),
	)
	logUnmatchable(log, seekers, parsedJobs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches := Overlap(seekers, parsedJobs)
	log.Info("pipeline stage",
		zap.String(logger.FieldStage, "match"),
		zap.Int("pairs", seekers.Len()*parsedJobs.Len()),
		zap.Int("matches", len(matches)),
	)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results, err := Format(matches, seekers, parsedJobs)
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	log.Info("pipeline stage",
		zap.String(logger.FieldStage, "format"),
		zap.Int("rows", results.Len()),
		zap.Int("jobseekers_matched", len(results.JobseekerIDs())),
	)

	return results, nil
}

// logUnmatchable reports entities without any skill token at debug level.
func logUnmatchable(log *zap.Logger, seekers *Jobseekers, jobs *Jobs) {
	if !log.Core().Enabled(zap.DebugLevel) {
		return
	}

	for _, s := range seekers.Items {
		if len(s.Skills) == 0 {
			log.Debug("jobseeker has no skills and cannot match",
				zap.String(ColumnJobseekerID, s.JobseekerID),
				zap.String(ColumnJobseekerName, utils.TruncateForLog(s.JobseekerName, maxLogLength)),
			)
		}
	}

	for _, j := range jobs.Items {
		if j.RequiredSkillCount == 0 {
			log.Debug("job has no required skills and cannot match",
				zap.String(ColumnJobID, j.JobID),
				zap.String(ColumnJobTitle, utils.TruncateForLog(j.JobTitle, maxLogLength)),
			)
		}
	}
}
