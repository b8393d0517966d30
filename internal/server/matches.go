package server

import (
	"bytes"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adambasile/jobmatcher/internal/filtering"
	"github.com/adambasile/jobmatcher/internal/matching"
	"github.com/adambasile/jobmatcher/internal/output"
	"github.com/adambasile/jobmatcher/internal/skills"
	"github.com/adambasile/jobmatcher/internal/table"
)

var validate = validator.New()

type matchQuery struct {
	Format          string  `query:"format" validate:"omitempty,oneof=csv json yaml"`
	MinPercent      float64 `query:"min_percent" validate:"gte=0"`
	MinCount        int     `query:"min_count" validate:"gte=0"`
	Top             int     `query:"top" validate:"gte=0"`
	DedupeSkills    bool    `query:"dedupe_skills"`
	DropEmptySkills bool    `query:"drop_empty_skills"`
}

// inputError marks client side problems with the uploaded tables.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }

func (e *inputError) Unwrap() error { return e.err }

// matches runs the pipeline over the multipart files "jobseekers" and "jobs".
func (s *Server) matches(c *fiber.Ctx) error {
	q := matchQuery{Format: s.cfg.Format}
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("parsing query: %v", err))
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	jobseekers, err := readTable(c, "jobseekers")
	if err != nil {
		return err
	}
	jobs, err := readTable(c, "jobs")
	if err != nil {
		return err
	}

	opts := skills.Options{
		Dedupe:    q.DedupeSkills || s.cfg.Skills.Dedupe,
		DropEmpty: q.DropEmptySkills || s.cfg.Skills.DropEmpty,
	}

	results, err := matching.Run(c.UserContext(), s.logger, jobseekers, jobs, opts)
	if err != nil {
		return err
	}

	results, err = filtering.Run(c.UserContext(), s.logger, []filtering.Filter{
		filtering.NewMinPercent(q.MinPercent),
		filtering.NewMinCount(q.MinCount),
		filtering.NewTop(q.Top),
	}, results)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, results, q.Format); err != nil {
		return err
	}

	format := q.Format
	if format == "" {
		format = output.FormatCSV
	}
	c.Set(fiber.HeaderContentType, output.ContentType(format))
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

func readTable(c *fiber.Ctx, field string) (*table.Table, error) {
	fh, err := c.FormFile(field)
	if err != nil || fh == nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("file %q is required", field))
	}
	return openTable(field, fh)
}

func openTable(name string, fh *multipart.FileHeader) (*table.Table, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, &inputError{err: fmt.Errorf("opening %s upload: %w", name, err)}
	}
	defer file.Close()

	t, err := table.Read(name, file)
	if err != nil {
		return nil, &inputError{err: err}
	}
	return t, nil
}
