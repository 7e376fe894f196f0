package model

// Instruments
type Instrument string

const (
	InstrumentGuitar Instrument = "guitar"
	InstrumentBass   Instrument = "bass"
)

// Display modes for fretboard labels
type DisplayMode string

const (
	DisplayNames   DisplayMode = "names"
	DisplayDegrees DisplayMode = "degrees"
)

// Accidental spelling conventions
type Spelling string

const (
	SpellingSharp Spelling = "sharp"
	SpellingFlat  Spelling = "flat"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCanceled  JobStatus = "canceled"
)

// Finished reports whether the job reached a terminal state.
func (s JobStatus) Finished() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed || s == JobStatusCanceled
}
