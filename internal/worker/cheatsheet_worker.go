package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/render"
	"github.com/fretnav/api/internal/service"
	"github.com/fretnav/api/internal/theory"
	"github.com/fretnav/api/internal/websocket"
)

// CheatsheetWorker builds cheatsheets page by page
type CheatsheetWorker struct {
	cheatsheetService *service.CheatsheetService
	fretboardService  *service.FretboardService
	hub               *websocket.Hub
}

// NewCheatsheetWorker creates a new cheatsheet worker
func NewCheatsheetWorker(cheatsheetService *service.CheatsheetService, fretboardService *service.FretboardService, hub *websocket.Hub) *CheatsheetWorker {
	return &CheatsheetWorker{
		cheatsheetService: cheatsheetService,
		fretboardService:  fretboardService,
		hub:               hub,
	}
}

// ProcessTask handles cheatsheet task processing
func (w *CheatsheetWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %v: %w", err, asynq.SkipRetry)
	}

	jobID := taskPayload.JobID
	log.Printf("Starting cheatsheet job: %s", jobID)

	if retry, ok := asynq.GetRetryCount(ctx); ok && retry > 0 {
		if err := w.cheatsheetService.RecordRetry(ctx, jobID, retry); err != nil {
			log.Printf("Failed to record retry: %v", err)
		}
	}

	var payload model.CheatsheetJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal cheatsheet payload: %v: %w", err, asynq.SkipRetry)
	}

	sheet, err := w.Build(ctx, jobID, &payload)
	if errors.Is(err, service.ErrJobFinished) {
		log.Printf("Cheatsheet job %s canceled", jobID)
		return nil
	}
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("Cheatsheet job %s interrupted", jobID)
			return ctx.Err()
		}
		w.failJob(ctx, jobID, err.Error())
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.cheatsheetService.CompleteJob(ctx, jobID, sheet); err != nil {
		if errors.Is(err, service.ErrJobFinished) {
			log.Printf("Cheatsheet job %s canceled before completion", jobID)
			return nil
		}
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}

	w.hub.BroadcastComplete(jobID, sheet)

	log.Printf("Cheatsheet job %s completed (%d pages)", jobID, len(sheet.Pages))
	return nil
}

// Build renders one page per root, reporting progress after each. It stops
// with service.ErrJobFinished when the job was canceled meanwhile.
func (w *CheatsheetWorker) Build(ctx context.Context, jobID string, payload *model.CheatsheetJobPayload) (*model.Cheatsheet, error) {
	req := &payload.Request
	pattern, err := theory.LookupPattern(req.Pattern)
	if err != nil {
		return nil, err
	}
	tuning, err := theory.LookupTuning(theory.Instrument(req.Instrument), req.Strings, req.Tuning)
	if err != nil {
		return nil, err
	}

	sheet := &model.Cheatsheet{
		ID:        uuid.New().String(),
		Title:     fmt.Sprintf("%s on %s", pattern.Name, tuning.Name),
		Pattern:   pattern,
		Tuning:    tuning,
		Pages:     make([]model.CheatsheetPage, 0, len(payload.Roots)),
		CreatedAt: time.Now(),
	}

	total := len(payload.Roots)
	for i, root := range payload.Roots {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		view := req.View(root)
		fb, err := w.fretboardService.Render(&view)
		if err != nil {
			return nil, fmt.Errorf("root %s: %w", root, err)
		}
		text := render.Fretboard(fb)
		sheet.Pages = append(sheet.Pages, model.CheatsheetPage{
			Root:      root,
			Fretboard: *fb,
			Text:      text,
		})

		progress := (i + 1) * 100 / (total + 1)
		step := fmt.Sprintf("Rendered %s %s (%d/%d)", root, pattern.Name, i+1, total)
		if err := w.cheatsheetService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
			if errors.Is(err, service.ErrJobFinished) {
				return nil, err
			}
			log.Printf("Failed to update progress: %v", err)
		}

		w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
		w.hub.BroadcastPage(jobID, i+1, total, root, text)
	}

	return sheet, nil
}

func (w *CheatsheetWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.cheatsheetService.FailJob(ctx, jobID, errMsg); err != nil {
		if errors.Is(err, service.ErrJobFinished) {
			return
		}
		log.Printf("Failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "JOB_FAILED", errMsg)
}
