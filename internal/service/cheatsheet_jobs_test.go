package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fretnav/api/internal/model"
)

func setupJobs(t *testing.T) *CheatsheetService {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { redisClient.Close() })

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: "localhost:6379", DB: 15})
	t.Cleanup(func() { asynqClient.Close() })

	return NewCheatsheetService(redisClient, asynqClient)
}

func startJob(t *testing.T, svc *CheatsheetService) string {
	t.Helper()
	started, err := svc.StartCheatsheet(context.Background(), &model.CheatsheetStartRequest{
		Instrument: model.InstrumentGuitar,
		Strings:    6,
		Pattern:    "dorian",
		Roots:      []string{"D"},
	})
	if err != nil {
		t.Fatalf("StartCheatsheet: %v", err)
	}
	return started.JobID
}

func TestCancel_StopsLaterTransitions(t *testing.T) {
	svc := setupJobs(t)
	ctx := context.Background()
	jobID := startJob(t, svc)

	if err := svc.UpdateJobProgress(ctx, jobID, 10, "first page"); err != nil {
		t.Fatalf("UpdateJobProgress: %v", err)
	}
	if _, err := svc.CancelCheatsheet(ctx, jobID); err != nil {
		t.Fatalf("CancelCheatsheet: %v", err)
	}

	if err := svc.UpdateJobProgress(ctx, jobID, 50, "second page"); !errors.Is(err, ErrJobFinished) {
		t.Errorf("UpdateJobProgress after cancel: expected ErrJobFinished, got %v", err)
	}
	if err := svc.CompleteJob(ctx, jobID, &model.Cheatsheet{}); !errors.Is(err, ErrJobFinished) {
		t.Errorf("CompleteJob after cancel: expected ErrJobFinished, got %v", err)
	}
	if err := svc.FailJob(ctx, jobID, "boom"); !errors.Is(err, ErrJobFinished) {
		t.Errorf("FailJob after cancel: expected ErrJobFinished, got %v", err)
	}
	if _, err := svc.CancelCheatsheet(ctx, jobID); !errors.Is(err, ErrJobFinished) {
		t.Errorf("second cancel: expected ErrJobFinished, got %v", err)
	}

	status, err := svc.GetStatus(ctx, jobID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != model.JobStatusCanceled || status.Error != nil {
		t.Errorf("status = %s (error %v), want canceled", status.Status, status.Error)
	}
}

func TestCancel_WinsAgainstConcurrentProgress(t *testing.T) {
	svc := setupJobs(t)
	ctx := context.Background()
	jobID := startJob(t, svc)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				if err := svc.UpdateJobProgress(ctx, jobID, i%100, "page"); err != nil {
					if !errors.Is(err, ErrJobFinished) && !errors.Is(err, ErrJobContended) {
						t.Errorf("UpdateJobProgress: %v", err)
					}
					if errors.Is(err, ErrJobFinished) {
						return
					}
				}
			}
		}()
	}

	if err := svc.UpdateJobProgress(ctx, jobID, 1, "warmup"); err != nil && !errors.Is(err, ErrJobContended) {
		t.Fatalf("UpdateJobProgress: %v", err)
	}
	var canceled bool
	for i := 0; i < 50 && !canceled; i++ {
		_, err := svc.CancelCheatsheet(ctx, jobID)
		switch {
		case err == nil:
			canceled = true
		case errors.Is(err, ErrJobContended):
		default:
			t.Fatalf("CancelCheatsheet: %v", err)
		}
	}
	wg.Wait()

	if !canceled {
		t.Fatal("cancel never went through")
	}
	status, err := svc.GetStatus(ctx, jobID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != model.JobStatusCanceled {
		t.Errorf("status = %s after cancel, want canceled", status.Status)
	}
	if err := svc.CompleteJob(ctx, jobID, &model.Cheatsheet{}); !errors.Is(err, ErrJobFinished) {
		t.Errorf("CompleteJob after cancel: expected ErrJobFinished, got %v", err)
	}
}

func TestFailJob_MarksRunningJob(t *testing.T) {
	svc := setupJobs(t)
	ctx := context.Background()
	jobID := startJob(t, svc)

	if err := svc.FailJob(ctx, jobID, "render failed"); err != nil {
		t.Fatalf("FailJob: %v", err)
	}
	status, err := svc.GetStatus(ctx, jobID)
	if err != nil {
		t.Fatalf("GetStatus: %v", err)
	}
	if status.Status != model.JobStatusFailed || status.Error == nil || *status.Error != "render failed" {
		t.Errorf("status = %+v", status)
	}
}

func TestUpdateJob_NotFound(t *testing.T) {
	svc := setupJobs(t)
	if err := svc.UpdateJobProgress(context.Background(), "missing", 1, ""); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}
