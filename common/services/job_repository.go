package services

import (
	"context"

	"github.com/LexiconIndonesia/news-portal-crawler/repository"
)

// JobRepository is a PostgreSQL implementation of JobService
type JobRepository struct {
	db *repository.Queries
}

// NewJobRepository creates a new PostgreSQL JobRepository
func NewJobRepository(db *repository.Queries) JobService {
	return &JobRepository{
		db: db,
	}
}

// GetByID gets a job by ID
func (r *JobRepository) GetByID(ctx context.Context, id string) (repository.Job, error) {
	return r.db.GetJobById(ctx, id)
}

// List gets a page of jobs and the total count
func (r *JobRepository) List(ctx context.Context, limit, offset int32) ([]repository.Job, int64, error) {
	jobs, err := r.db.ListJobs(ctx, repository.ListJobsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}

	total, err := r.db.CountJobs(ctx)
	if err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}
