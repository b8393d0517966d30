package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adambasile/jobmatcher/internal/filtering"
	"github.com/adambasile/jobmatcher/internal/matching"
	"github.com/adambasile/jobmatcher/internal/output"
	"github.com/adambasile/jobmatcher/internal/table"
)

const (
	PromptWrite               = "Write results"
	PromptExit                = "Exit"
	PromptReportByJobseekers  = "Report by jobseekers"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append all matches to exclude file"
)

var errExit = errors.New("exit requested")

// selectAction asks the user what to do with the results.
var selectAction = func(items []string) (string, error) {
	prompt := promptui.Select{
		Label: "Proceed?",
		Items: items,
	}
	_, action, err := prompt.Run()
	return action, err
}

var matchCmd = &cobra.Command{
	Use:   commandMatch,
	Short: "Match jobseekers to jobs and write the result table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		interactive, _ := cmd.Flags().GetBool("interactive")
		return match(cmd.Context(), interactive)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	flags := matchCmd.Flags()
	flags.String("jobseekers", "", "csv file with id, name and skills columns")
	flags.String("jobs", "", "csv file with id, title and required_skills columns")
	flags.StringP("output", "o", "-", "file to write the results to, - means stdout")
	flags.String("format", output.FormatCSV, "output format: csv, json or yaml")
	flags.Bool("dedupe-skills", false, "count every distinct skill once")
	flags.Bool("drop-empty-skills", false, "ignore empty skill tokens")
	flags.Float64("min-percent", 0, "drop matches below this percent")
	flags.Int("min-count", 0, "drop matches with fewer shared skills")
	flags.Int("top", 0, "keep at most this many matches per jobseeker, 0 keeps all")
	flags.StringP("exclude-file", "e", "", "special file with matches to exclude. Default is unset.")
	flags.BoolP("interactive", "i", false, "ask what to do with the results before writing them")

	mustBind("jobseekers", flags.Lookup("jobseekers"))
	mustBind("jobs", flags.Lookup("jobs"))
	mustBind("output", flags.Lookup("output"))
	mustBind("format", flags.Lookup("format"))
	mustBind("exclude-file", flags.Lookup("exclude-file"))
	mustBind("matching.dedupe-skills", flags.Lookup("dedupe-skills"))
	mustBind("matching.drop-empty-skills", flags.Lookup("drop-empty-skills"))
	mustBind("filters.min-percent", flags.Lookup("min-percent"))
	mustBind("filters.min-count", flags.Lookup("min-count"))
	mustBind("filters.top", flags.Lookup("top"))
}

func match(ctx context.Context, interactive bool) error {
	logger, err := newLogger(commandMatch)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	config, err := getConfig()
	if err != nil {
		return err
	}
	if err := config.Validate(commandMatch); err != nil {
		return err
	}

	logger.Info("starting the jobmatcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	results, err := computeMatches(ctx, logger, config)
	if err != nil {
		return err
	}

	if !interactive {
		return writeResults(logger, config, results)
	}

	items := promptItems(config)
	for {
		logger.Info("current list of matches", zap.Int("count", results.Len()))

		action, err := selectAction(items)
		if err != nil {
			return fmt.Errorf("prompt: %w", err)
		}

		if err := handleAction(action, logger, config, results); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
	}
}

// computeMatches loads both tables, runs the pipeline and applies the filters.
func computeMatches(ctx context.Context, logger *zap.Logger, config *Config) (*matching.Results, error) {
	jobseekers, jobs, err := table.LoadPair(ctx, config.Jobseekers, config.Jobs)
	if err != nil {
		return nil, fmt.Errorf("loading input tables: %w", err)
	}

	results, err := matching.Run(ctx, logger, jobseekers, jobs, config.SkillOptions())
	if err != nil {
		return nil, err
	}

	steps := prepareFilters(config, logger)
	logger.Debug("filters", zap.Any("steps", filtering.Describe(steps)))

	results, err = filtering.Run(ctx, logger, steps, results)
	if err != nil {
		return nil, fmt.Errorf("filtering failed: %w", err)
	}

	return results, nil
}

func prepareFilters(config *Config, logger *zap.Logger) []filtering.Filter {
	steps := []filtering.Filter{
		filtering.NewExcludeFile(config.ExcludeFile, logger),
		filtering.NewMinPercent(config.Filters.MinPercent),
		filtering.NewMinCount(config.Filters.MinCount),
		filtering.NewTop(config.Filters.Top),
	}

	if config.ExcludeFile == "" {
		filtering.DisableByName(steps, "exclude_file", "exclude file is not set")
	}
	if config.Filters.MinPercent == 0 {
		filtering.DisableByName(steps, "min_percent", "threshold is not set")
	}
	if config.Filters.MinCount == 0 {
		filtering.DisableByName(steps, "min_count", "threshold is not set")
	}
	if config.Filters.Top == 0 {
		filtering.DisableByName(steps, "top", "limit is not set")
	}

	return steps
}

func promptItems(config *Config) []string {
	items := []string{PromptWrite, PromptReportByJobseekers, PromptResultsToFile}
	if config.ExcludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	return append(items, PromptExit)
}

func handleAction(action string, logger *zap.Logger, config *Config, results *matching.Results) error {
	switch action {
	case PromptWrite:
		if err := writeResults(logger, config, results); err != nil {
			return err
		}
		return errExit
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByJobseekers:
		pretty, _ := json.MarshalIndent(results.ReportByJobseeker(), "", "  ")
		logger.Info(string(pretty), zap.Int("matches count", results.Len()))
		return nil
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.ExcludeFile, results)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(logger *zap.Logger, path string, results *matching.Results) error {
	if path == "" {
		return errors.New("exclude file is not set")
	}

	excluded, err := filtering.LoadExcluded(path)
	if err != nil {
		return err
	}

	excluded.Append(filtering.ToExcluded(results, time.Now()))

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("matches appended to exclude file",
		zap.String("path", path),
		zap.Int("excluded total", excluded.Len()),
	)
	return nil
}

// writeResults renders the whole table before touching the destination so a
// failure never leaves partial output behind.
func writeResults(logger *zap.Logger, config *Config, results *matching.Results) error {
	var buf bytes.Buffer
	if err := output.Write(&buf, results, config.Format); err != nil {
		return err
	}

	w, closeFn, err := output.Open(config.Output)
	if err != nil {
		return err
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		closeFn() //nolint:errcheck
		return fmt.Errorf("writing results: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	logger.Info("results written",
		zap.Int("rows", results.Len()),
		zap.String("format", config.Format),
		zap.String("output", config.Output),
	)
	return nil
}
