package db

import (
	"fmt"
	"time"

	"courtpulse/utils"
)

const (
	JobStatePending  = "PENDING"
	JobStateRunning  = "RUNNING"
	JobStateFinished = "FINISHED"
	JobStateError    = "ERROR"
)

const (
	JobKindRestFatigue  = "rest-fatigue"
	JobKindChemistry    = "chemistry"
	JobKindAvailability = "availability"
)

// Job is one queued derivation run over a season. Workers claim PENDING jobs,
// run the matching deriver, and record the outcome.
type Job struct {
	Id           int    `db:"id" json:"id"`
	Kind         string `db:"kind" json:"kind"`
	Season       string `db:"season" json:"season"`
	State        string `db:"state" json:"state"`
	RecordCount  int    `db:"record_count" json:"record_count"`
	SkippedCount int    `db:"skipped_count" json:"skipped_count"`
	ErrorDetails string `db:"error_details" json:"error_details,omitempty"`
	CreatedAt    string `db:"created_at" json:"created_at"`
	UpdatedAt    string `db:"updated_at" json:"updated_at"`
}

func NewJob(kind, season string) *Job {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Job{
		Kind:      kind,
		Season:    season,
		State:     JobStatePending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func InsertJob(job *Job) (*Job, error) {
	res, err := conn.NamedExec(`
		INSERT INTO jobs (kind, season, state, record_count, skipped_count, error_details, created_at, updated_at)
		VALUES (:kind, :season, :state, :record_count, :skipped_count, :error_details, :created_at, :updated_at)
	`, job)
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	job.Id = int(id)
	return job, nil
}

// SelectJobForUpdate claims the oldest pending job, flipping it to RUNNING in
// the same transaction so two schedulers cannot grab the same one.
func SelectJobForUpdate() (*Job, error) {
	tx, err := conn.Beginx()
	if err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	defer tx.Rollback()

	job := Job{}
	err = tx.Get(&job, `SELECT * FROM jobs WHERE state = ? ORDER BY id ASC LIMIT 1`, JobStatePending)
	if err != nil {
		return nil, fmt.Errorf("QUEUE EMPTY: %w", err)
	}

	job.State = JobStateRunning
	job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.NamedExec(`UPDATE jobs SET state = :state, updated_at = :updated_at WHERE id = :id`, &job); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return &job, nil
}

func UpdateJob(job *Job) error {
	job.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	_, err := conn.NamedExec(`
		UPDATE jobs SET state = :state, record_count = :record_count,
			skipped_count = :skipped_count, error_details = :error_details,
			updated_at = :updated_at
		WHERE id = :id
	`, job)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}

func (j *Job) Fail(cause error) error {
	j.State = JobStateError
	j.ErrorDetails = cause.Error()
	return UpdateJob(j)
}

func SelectJobById(id int) (*Job, error) {
	job := Job{}
	if err := conn.Get(&job, `SELECT * FROM jobs WHERE id = ?`, id); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return &job, nil
}

func SelectRecentJobs(limit int) ([]Job, error) {
	jobs := []Job{}
	if err := conn.Select(&jobs, `SELECT * FROM jobs ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, utils.ErrorWithTrace(err)
	}
	return jobs, nil
}

// ResetStaleJobs requeues RUNNING jobs that have not been touched in an hour,
// which happens when the process dies mid-derivation.
func ResetStaleJobs() error {
	cutoff := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC3339)
	_, err := conn.Exec(`
		UPDATE jobs SET state = ?, updated_at = ?
		WHERE state = ? AND updated_at < ?
	`, JobStatePending, time.Now().UTC().Format(time.RFC3339), JobStateRunning, cutoff)
	if err != nil {
		return utils.ErrorWithTrace(err)
	}
	return nil
}
