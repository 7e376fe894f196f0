package model

import (
	"time"

	"github.com/fretnav/api/internal/theory"
)

// CheatsheetStartRequest asks for one pattern drawn from several roots
type CheatsheetStartRequest struct {
	Instrument Instrument  `json:"instrument" validate:"required,oneof=guitar bass"`
	Strings    int         `json:"strings" validate:"required,min=4,max=7"`
	Tuning     string      `json:"tuning,omitempty" validate:"omitempty,max=32"`
	Pattern    string      `json:"pattern" validate:"required,max=32"`
	Roots      []string    `json:"roots,omitempty" validate:"omitempty,max=12,dive,required,max=3"`
	Frets      int         `json:"frets,omitempty" validate:"omitempty,min=1,max=25"`
	Display    DisplayMode `json:"display,omitempty" validate:"omitempty,oneof=names degrees"`
	Spelling   Spelling    `json:"spelling,omitempty" validate:"omitempty,oneof=sharp flat"`
}

// View returns the fretboard request for one page of the sheet.
func (r *CheatsheetStartRequest) View(root string) FretboardRequest {
	v := FretboardRequest{
		Instrument: r.Instrument,
		Strings:    r.Strings,
		Tuning:     r.Tuning,
		Root:       root,
		Pattern:    r.Pattern,
		Frets:      r.Frets,
		Display:    r.Display,
		Spelling:   r.Spelling,
	}
	v.Normalize()
	return v
}

// CheatsheetStartResponse represents the response when starting a cheatsheet job
type CheatsheetStartResponse struct {
	JobID     string    `json:"jobId"`
	Status    JobStatus `json:"status"`
	Pages     int       `json:"pages"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheatsheetStatusResponse represents the status of a cheatsheet job
type CheatsheetStatusResponse struct {
	JobID       string     `json:"jobId"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error"`
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
	RetryCount  int        `json:"retryCount"`
}

// Cheatsheet is the result of a finished job
type Cheatsheet struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Pattern   theory.Pattern   `json:"pattern"`
	Tuning    theory.Tuning    `json:"tuning"`
	Pages     []CheatsheetPage `json:"pages"`
	CreatedAt time.Time        `json:"createdAt"`
}

// CheatsheetPage is the fretboard for one root
type CheatsheetPage struct {
	Root      string    `json:"root"`
	Fretboard Fretboard `json:"fretboard"`
	Text      string    `json:"text"`
}

// CheatsheetCancelResponse represents the response when canceling a job
type CheatsheetCancelResponse struct {
	Success bool      `json:"success"`
	JobID   string    `json:"jobId"`
	Status  JobStatus `json:"status"`
}
