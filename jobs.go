package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v3"

	config "github.com/drummonds/pdf2png/config"
	database "github.com/drummonds/pdf2png/database"
	engine "github.com/drummonds/pdf2png/engine"
)

const defaultJobsLimit = 20

// jobHistory is the read side of the job database
type jobHistory interface {
	GetJob(ctx context.Context, jobID ulid.ULID) (*database.Job, error)
	GetRecentJobs(ctx context.Context, limit, offset int) ([]database.Job, error)
}

// newJobsCommand shows the runs recorded with --job-db
func newJobsCommand() *cli.Command {
	return &cli.Command{
		Name:      "jobs",
		Usage:     "List recorded conversions, newest first, or show one by ID",
		ArgsUsage: "[job-id]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of jobs to list",
				Value: defaultJobsLimit,
			},
			&cli.IntFlag{
				Name:  "offset",
				Usage: "Number of newest jobs to skip",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dsn := cmd.String("job-db")
			if dsn == "" {
				return &engine.ExitCodeError{Code: engine.ExitCodeUsage,
					Err: fmt.Errorf("%w: jobs needs --job-db or PDF2PNG_JOB_DB", config.ErrUsage)}
			}
			if cmd.Args().Len() > 1 {
				return &engine.ExitCodeError{Code: engine.ExitCodeUsage,
					Err: fmt.Errorf("%w: expected at most one job ID, got %d arguments", config.ErrUsage, cmd.Args().Len())}
			}

			db, err := database.NewRepository(dsn, cmd.Bool("verbose"))
			if err != nil {
				return &engine.ExitCodeError{Code: engine.ExitCodeFailure, Err: err}
			}
			defer db.Close()

			if jobID := cmd.Args().First(); jobID != "" {
				return showJob(ctx, db, cmd.Root().Writer, jobID)
			}
			return listJobs(ctx, db, cmd.Root().Writer, cmd.Int("limit"), cmd.Int("offset"))
		},
	}
}

// listJobs writes one line per job
func listJobs(ctx context.Context, history jobHistory, w io.Writer, limit, offset int) error {
	if limit < 1 || offset < 0 {
		return &engine.ExitCodeError{Code: engine.ExitCodeUsage,
			Err: fmt.Errorf("%w: limit must be positive and offset not negative", config.ErrUsage)}
	}
	jobs, err := history.GetRecentJobs(ctx, limit, offset)
	if err != nil {
		return &engine.ExitCodeError{Code: engine.ExitCodeFailure, Err: fmt.Errorf("unable to list jobs: %w", err)}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPAGES\tCREATED\tINPUT")
	for _, job := range jobs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", job.ID, job.Status, job.PageCount, humanize.Time(job.CreatedAt), job.InputPath)
	}
	return tw.Flush()
}

// showJob writes every recorded field of one job
func showJob(ctx context.Context, history jobHistory, w io.Writer, id string) error {
	jobID, err := ulid.Parse(id)
	if err != nil {
		return &engine.ExitCodeError{Code: engine.ExitCodeUsage, Err: fmt.Errorf("%w: invalid job ID %q: %w", config.ErrUsage, id, err)}
	}
	job, err := history.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &engine.ExitCodeError{Code: engine.ExitCodeFailure, Err: fmt.Errorf("no job %s", jobID)}
		}
		return &engine.ExitCodeError{Code: engine.ExitCodeFailure, Err: fmt.Errorf("unable to get job %s: %w", jobID, err)}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", job.ID)
	fmt.Fprintf(tw, "Status:\t%s\n", job.Status)
	fmt.Fprintf(tw, "Input:\t%s\n", job.InputPath)
	fmt.Fprintf(tw, "MD5:\t%s\n", job.InputHash)
	fmt.Fprintf(tw, "Pages:\t%d\n", job.PageCount)
	fmt.Fprintf(tw, "Created:\t%s\n", formatTime(&job.CreatedAt))
	fmt.Fprintf(tw, "Started:\t%s\n", formatTime(job.StartedAt))
	fmt.Fprintf(tw, "Completed:\t%s\n", formatTime(job.CompletedAt))
	if job.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", job.Error)
	}
	if job.Result != "" {
		fmt.Fprintf(tw, "Result:\t%s\n", job.Result)
	}
	return tw.Flush()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", t.Local().Format(time.RFC3339), humanize.Time(*t))
}
