package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// Logger is global since we will need it everywhere
var Logger = slog.New(slog.DiscardHandler)

// BunDB stores the job history using Bun ORM
type BunDB struct {
	db     *bun.DB
	dbType string
}

// sqliteConnectionString turns a path or :memory: into a sqlite DSN
func sqliteConnectionString(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "file:"):
		return dsn
	case dsn == ":memory:":
		return "file::memory:?cache=shared"
	default:
		// eg "file:test.db?cache=shared&mode=rwc"
		return fmt.Sprintf("file:%s?cache=shared&mode=rwc", dsn)
	}
}

// NewRepository opens the job history. postgres:// DSNs use Postgres,
// anything else is a SQLite file (or :memory:).
func NewRepository(dsn string, verbose bool) (*BunDB, error) {
	var (
		sqlDB   *sql.DB
		dialect schema.Dialect
		dbType  string
		err     error
	)

	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		dbType = "postgres"
		Logger.Info("Initializing postgres job history with Bun ORM...")
		sqlDB = sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
		dialect = pgdialect.New()
	default:
		dbType = "sqlite"
		connectionString := sqliteConnectionString(dsn)
		Logger.Info("Initializing sqlite job history with Bun ORM...", "connectionString", connectionString)
		sqlDB, err = sql.Open(sqliteshim.ShimName, connectionString)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		dialect = sqlitedialect.New()
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := bun.NewDB(sqlDB, dialect)
	// Option to turn on verbose logging just returns failures otherwise
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(verbose)))

	if err := createSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	Logger.Info("Connected to job history successfully", "type", dbType)

	return &BunDB{db: db, dbType: dbType}, nil
}

// createSchema creates the jobs table and its index when missing
func createSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*BunJob)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}

	_, err = db.NewCreateIndex().
		Model((*BunJob)(nil)).
		Index("idx_jobs_created_at").
		IfNotExists().
		Column("created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// Close closes the database connection
func (b *BunDB) Close() error {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CreateJob records a pending conversion of inputPath
func (b *BunDB) CreateJob(ctx context.Context, inputPath string) (ulid.ULID, error) {
	now := time.Now()
	jobID, err := CalculateUUID(now)
	if err != nil {
		return jobID, err
	}

	inputHash, err := calculateHash(inputPath)
	if err != nil {
		Logger.Warn("Unable to hash input file", "path", inputPath, "error", err)
	}

	job := &Job{
		ID:        jobID,
		InputPath: inputPath,
		InputHash: inputHash,
		Status:    JobStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = b.db.NewInsert().
		Model(FromJob(job)).
		Exec(ctx)
	if err != nil {
		return jobID, fmt.Errorf("failed to insert job: %w", err)
	}
	return jobID, nil
}

// StartJob marks a job as running
func (b *BunDB) StartJob(ctx context.Context, jobID ulid.ULID) error {
	now := time.Now()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", JobStatusRunning).
		Set("updated_at = ?", now).
		Set("started_at = COALESCE(started_at, ?)", now).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// CompleteJob marks a job as completed with its result data
func (b *BunDB) CompleteJob(ctx context.Context, jobID ulid.ULID, pageCount int, result string) error {
	now := time.Now()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", JobStatusCompleted).
		Set("page_count = ?", pageCount).
		Set("result = ?", result).
		Set("updated_at = ?", now).
		Set("completed_at = ?", now).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// FailJob updates a job with an error
func (b *BunDB) FailJob(ctx context.Context, jobID ulid.ULID, errorMsg string) error {
	now := time.Now()

	_, err := b.db.NewUpdate().
		Model((*BunJob)(nil)).
		Set("status = ?", JobStatusFailed).
		Set("error = ?", errorMsg).
		Set("updated_at = ?", now).
		Set("completed_at = ?", now).
		Where("id = ?", jobID.String()).
		Exec(ctx)

	return err
}

// GetJob retrieves a job by ID
func (b *BunDB) GetJob(ctx context.Context, jobID ulid.ULID) (*Job, error) {
	bunJob := new(BunJob)

	err := b.db.NewSelect().
		Model(bunJob).
		Where("id = ?", jobID.String()).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return bunJob.ToJob()
}

// GetRecentJobs retrieves the most recent jobs with pagination
func (b *BunDB) GetRecentJobs(ctx context.Context, limit, offset int) ([]Job, error) {
	var bunJobs []BunJob

	err := b.db.NewSelect().
		Model(&bunJobs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(bunJobs))
	for i := range bunJobs {
		job, err := bunJobs[i].ToJob()
		if err != nil {
			Logger.Error("Failed to convert job", "id", bunJobs[i].ID, "error", err)
			continue
		}
		jobs = append(jobs, *job)
	}
	return jobs, nil
}
