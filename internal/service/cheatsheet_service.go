package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/theory"
)

const (
	TaskTypeCheatsheet = "cheatsheet:process"
	QueueCheatsheet    = "cheatsheet"

	jobTTL = 24 * time.Hour

	maxJobUpdateAttempts = 10
)

var (
	ErrJobNotFound     = errors.New("job not found")
	ErrJobNotCompleted = errors.New("job not completed")
	ErrJobFinished     = errors.New("job already finished")
	ErrJobContended    = errors.New("job update kept conflicting")
)

// CheatsheetService manages cheatsheet jobs: one pattern drawn from every
// requested root, built in the background.
type CheatsheetService struct {
	redis       *redis.Client
	asynqClient *asynq.Client
}

func NewCheatsheetService(redisClient *redis.Client, asynqClient *asynq.Client) *CheatsheetService {
	return &CheatsheetService{
		redis:       redisClient,
		asynqClient: asynqClient,
	}
}

// DefaultRoots returns the twelve canonical pitch names from C.
func DefaultRoots() []string {
	out := make([]string, 0, 12)
	for _, pc := range theory.Chromatic() {
		out = append(out, pc.Name())
	}
	return out
}

// Prepare checks that every part of the request resolves and returns the
// roots the sheet will cover.
func (s *CheatsheetService) Prepare(req *model.CheatsheetStartRequest) ([]string, error) {
	if _, err := theory.LookupPattern(req.Pattern); err != nil {
		return nil, err
	}
	if _, err := theory.LookupTuning(theory.Instrument(req.Instrument), req.Strings, req.Tuning); err != nil {
		return nil, err
	}

	roots := req.Roots
	if len(roots) == 0 {
		roots = DefaultRoots()
	}
	for _, r := range roots {
		if _, err := theory.IndexOf(r); err != nil {
			return nil, err
		}
	}
	return roots, nil
}

// StartCheatsheet queues a new cheatsheet job
func (s *CheatsheetService) StartCheatsheet(ctx context.Context, req *model.CheatsheetStartRequest) (*model.CheatsheetStartResponse, error) {
	roots, err := s.Prepare(req)
	if err != nil {
		return nil, err
	}

	jobID := uuid.New().String()
	now := time.Now()

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeCheatsheet,
		Status:    model.JobStatusQueued,
		Progress:  0,
		CreatedAt: now,
	}

	payload := &model.CheatsheetJobPayload{
		Request: *req,
		Roots:   roots,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	job.Payload = payloadBytes

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := newCheatsheetTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue(QueueCheatsheet),
		asynq.MaxRetry(3),
		asynq.Retention(jobTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.CheatsheetStartResponse{
		JobID:     jobID,
		Status:    model.JobStatusQueued,
		Pages:     len(roots),
		CreatedAt: now,
	}, nil
}

// GetStatus returns the current status of a cheatsheet job
func (s *CheatsheetService) GetStatus(ctx context.Context, jobID string) (*model.CheatsheetStatusResponse, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &model.CheatsheetStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		StartedAt:   job.StartedAt,
		CompletedAt: job.CompletedAt,
		RetryCount:  job.RetryCount,
	}, nil
}

// GetResult returns the sheet of a completed job
func (s *CheatsheetService) GetResult(ctx context.Context, jobID string) (*model.Cheatsheet, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("%w: status %s", ErrJobNotCompleted, job.Status)
	}

	var result model.Cheatsheet
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}

	return &result, nil
}

// CancelCheatsheet cancels a queued or running job
func (s *CheatsheetService) CancelCheatsheet(ctx context.Context, jobID string) (*model.CheatsheetCancelResponse, error) {
	err := s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return fmt.Errorf("%w: status %s", ErrJobFinished, job.Status)
		}
		job.Status = model.JobStatusCanceled
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.CheatsheetCancelResponse{
		Success: true,
		JobID:   jobID,
		Status:  model.JobStatusCanceled,
	}, nil
}

// UpdateJobProgress updates job progress (called by worker). It returns
// ErrJobFinished once the job was canceled so the worker can stop.
func (s *CheatsheetService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return fmt.Errorf("%w: status %s", ErrJobFinished, job.Status)
		}
		job.Progress = progress
		job.CurrentStep = step
		if job.Status == model.JobStatusQueued {
			job.Status = model.JobStatusRunning
			now := time.Now()
			job.StartedAt = &now
		}
		return nil
	})
}

// RecordRetry bumps the retry counter (called by worker)
func (s *CheatsheetService) RecordRetry(ctx context.Context, jobID string, retry int) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		job.RetryCount = retry
		return nil
	})
}

// CompleteJob marks job as completed (called by worker)
func (s *CheatsheetService) CompleteJob(ctx context.Context, jobID string, result *model.Cheatsheet) error {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return fmt.Errorf("%w: status %s", ErrJobFinished, job.Status)
		}
		job.Status = model.JobStatusSucceeded
		job.Progress = 100
		job.CurrentStep = ""
		job.Result = resultBytes
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
}

// FailJob marks job as failed (called by worker). A job that already
// finished, canceled included, keeps its status.
func (s *CheatsheetService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	return s.updateJob(ctx, jobID, func(job *model.Job) error {
		if job.Status.Finished() {
			return fmt.Errorf("%w: status %s", ErrJobFinished, job.Status)
		}
		job.Status = model.JobStatusFailed
		job.Error = &errMsg
		now := time.Now()
		job.CompletedAt = &now
		return nil
	})
}

// GetJob loads the raw job record.
func (s *CheatsheetService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

// Helper methods

func (s *CheatsheetService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobTTL).Err()
}

// updateJob applies fn to the stored job inside a WATCH transaction. A write
// that lands between the read and the save aborts the transaction and fn runs
// again on the fresh record, so a cancel is never overwritten.
func (s *CheatsheetService) updateJob(ctx context.Context, jobID string, fn func(*model.Job) error) error {
	key := jobKey(jobID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
			}
			return err
		}

		var job model.Job
		if err := json.Unmarshal(data, &job); err != nil {
			return err
		}
		if err := fn(&job); err != nil {
			return err
		}

		out, err := json.Marshal(&job)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, jobTTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxJobUpdateAttempts; i++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == redis.TxFailedErr {
			continue
		}
		return err
	}
	return fmt.Errorf("job %s: %w", jobID, ErrJobContended)
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

func newCheatsheetTask(jobID string, payload []byte) (*asynq.Task, error) {
	taskPayload := map[string]interface{}{
		"jobId":   jobID,
		"payload": json.RawMessage(payload),
	}
	data, err := json.Marshal(taskPayload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeCheatsheet, data), nil
}
