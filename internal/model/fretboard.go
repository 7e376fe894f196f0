package model

import "github.com/fretnav/api/internal/theory"

// DefaultFrets is the number of fret positions rendered, open string included.
const DefaultFrets = 16

// FretboardRequest selects everything needed to draw one fretboard.
type FretboardRequest struct {
	Instrument Instrument  `json:"instrument" validate:"required,oneof=guitar bass"`
	Strings    int         `json:"strings" validate:"required,min=4,max=7"`
	Tuning     string      `json:"tuning,omitempty" validate:"omitempty,max=32"`
	Root       string      `json:"root,omitempty" validate:"omitempty,max=3"`
	Pattern    string      `json:"pattern,omitempty" validate:"omitempty,max=32"`
	Frets      int         `json:"frets,omitempty" validate:"omitempty,min=1,max=25"`
	Display    DisplayMode `json:"display,omitempty" validate:"omitempty,oneof=names degrees"`
	Spelling   Spelling    `json:"spelling,omitempty" validate:"omitempty,oneof=sharp flat"`
}

// Normalize fills in defaults so equal views compare equal.
func (r *FretboardRequest) Normalize() {
	if r.Tuning == "" {
		r.Tuning = theory.DefaultTuningID
	}
	if r.Frets == 0 {
		r.Frets = DefaultFrets
	}
	if r.Display == "" {
		r.Display = DisplayNames
	}
	if r.Spelling == "" {
		r.Spelling = SpellingSharp
	}
}

// Fretboard is a rendered fretboard grid.
type Fretboard struct {
	Instrument Instrument      `json:"instrument"`
	Tuning     theory.Tuning   `json:"tuning"`
	Root       string          `json:"root,omitempty"`
	Pattern    *theory.Pattern `json:"pattern,omitempty"`
	Display    DisplayMode     `json:"display"`
	Spelling   Spelling        `json:"spelling"`
	Frets      int             `json:"frets"`
	Markers    []FretMarker    `json:"markers"`
	Strings    []StringRow     `json:"strings"`
}

// FretMarker is an inlay position.
type FretMarker struct {
	Fret   int  `json:"fret"`
	Double bool `json:"double,omitempty"`
}

// StringRow is one string, highest string first.
type StringRow struct {
	Number int         `json:"number"`
	Open   theory.Note `json:"open"`
	Label  string      `json:"label"`
	Cells  []Cell      `json:"cells"`
}

// Cell is one fret position on a string.
type Cell struct {
	Fret      int    `json:"fret"`
	Pitch     string `json:"pitch"`
	Octave    int    `json:"octave"`
	Interval  *int   `json:"interval,omitempty"`
	InPattern bool   `json:"inPattern"`
	IsRoot    bool   `json:"isRoot"`
	Label     string `json:"label"`
}
