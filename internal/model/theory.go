package model

import "github.com/fretnav/api/internal/theory"

// NoteEntry is one row of the chromatic table
type NoteEntry struct {
	Index     int      `json:"index"`
	Canonical string   `json:"canonical"`
	Flat      string   `json:"flat"`
	Spellings []string `json:"spellings"`
}

// AtFretQuery is the query for GET /api/notes/at-fret
type AtFretQuery struct {
	Open     string   `query:"open" validate:"required"`
	Fret     int      `query:"fret" validate:"min=0,max=48"`
	Spelling Spelling `query:"spelling" validate:"omitempty,oneof=sharp flat"`
}

// AtFretResponse answers which pitch sounds at a fret
type AtFretResponse struct {
	Open  string `json:"open"`
	Fret  int    `json:"fret"`
	Pitch string `json:"pitch"`
}

// InPatternQuery is the query for GET /api/notes/in-pattern
type InPatternQuery struct {
	Note      string `query:"note" validate:"required"`
	Root      string `query:"root"`
	Pattern   string `query:"pattern" validate:"required_without=Intervals"`
	Intervals string `query:"intervals"`
}

// InPatternResponse answers pattern membership
type InPatternResponse struct {
	Note      string `json:"note"`
	Root      string `json:"root"`
	Interval  *int   `json:"interval,omitempty"`
	Intervals []int  `json:"intervals"`
	InPattern bool   `json:"inPattern"`
}

// DegreeQuery is the query for GET /api/notes/degree
type DegreeQuery struct {
	Note string `query:"note" validate:"required"`
	Root string `query:"root"`
}

// DegreeResponse carries a landmark number or the raw pitch name
type DegreeResponse struct {
	Note   string `json:"note"`
	Root   string `json:"root"`
	Label  string `json:"label"`
	Degree int    `json:"degree,omitempty"`
}

// PatternsQuery filters the pattern catalog
type PatternsQuery struct {
	Family string `query:"family" validate:"omitempty,oneof=scale arpeggio chord"`
}

// TuningsQuery selects a tuning group
type TuningsQuery struct {
	Instrument Instrument `query:"instrument" validate:"required,oneof=guitar bass"`
	Strings    int        `query:"strings" validate:"required,min=4,max=7"`
}

// TuningsResponse lists the tunings of one group in catalog order
type TuningsResponse struct {
	Instrument Instrument      `json:"instrument"`
	Strings    int             `json:"strings"`
	Default    string          `json:"default"`
	Tunings    []theory.Tuning `json:"tunings"`
}

// KeyDetail is everything the circle of fifths says about one key
type KeyDetail struct {
	theory.Key
	Signature     theory.Signature `json:"signature"`
	PrimaryTriads theory.Primary   `json:"primaryTriads"`
	DerivedTriads theory.Derived   `json:"derivedTriads"`
	Neighbors     theory.Neighbors `json:"neighbors"`
}
