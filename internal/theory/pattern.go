package theory

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Family groups patterns by how they are used on the fretboard.
type Family string

const (
	FamilyScale    Family = "scale"
	FamilyArpeggio Family = "arpeggio"
	FamilyChord    Family = "chord"
)

// Families lists every pattern family in display order.
var Families = []Family{FamilyScale, FamilyArpeggio, FamilyChord}

// sizeBounds holds the allowed note count per family.
var sizeBounds = map[Family][2]int{
	FamilyScale:    {5, 11},
	FamilyArpeggio: {3, 4},
	FamilyChord:    {3, 3},
}

// Pattern is a named interval formula relative to a root.
type Pattern struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Family           Family   `json:"family"`
	Intervals        []int    `json:"intervals"`
	Description      string   `json:"description"`
	RelatedArpeggios []string `json:"relatedArpeggios,omitempty"`
	RelatedModes     []string `json:"relatedModes,omitempty"`
}

// Contains reports whether the semitone offset is part of the formula.
func (p Pattern) Contains(interval int) bool {
	return containsInterval(p.Intervals, int(Mod(interval)))
}

func (p Pattern) clone() Pattern {
	p.Intervals = append([]int(nil), p.Intervals...)
	p.RelatedArpeggios = append([]string(nil), p.RelatedArpeggios...)
	p.RelatedModes = append([]string(nil), p.RelatedModes...)
	return p
}

var majorScale = []int{0, 2, 4, 5, 7, 9, 11}

var patterns = []Pattern{
	// Scales
	{ID: "ionian", Name: "Ionian (Major)", Family: FamilyScale, Intervals: []int{0, 2, 4, 5, 7, 9, 11},
		Description: "Major scale: W-W-H-W-W-W-H", RelatedArpeggios: []string{"major-7th", "major-triad"}},
	{ID: "dorian", Name: "Dorian", Family: FamilyScale, Intervals: []int{0, 2, 3, 5, 7, 9, 10},
		Description: "Minor scale with major 6th", RelatedArpeggios: []string{"minor-7th", "minor-triad"}},
	{ID: "phrygian", Name: "Phrygian", Family: FamilyScale, Intervals: []int{0, 1, 3, 5, 7, 8, 10},
		Description: "Minor scale with ♭2", RelatedArpeggios: []string{"minor-7th", "minor-triad"}},
	{ID: "lydian", Name: "Lydian", Family: FamilyScale, Intervals: []int{0, 2, 4, 6, 7, 9, 11},
		Description: "Major scale with ♯4", RelatedArpeggios: []string{"major-7th", "major-triad"}},
	{ID: "mixolydian", Name: "Mixolydian", Family: FamilyScale, Intervals: []int{0, 2, 4, 5, 7, 9, 10},
		Description: "Major scale with ♭7", RelatedArpeggios: []string{"dominant-7th", "major-triad"}},
	{ID: "aeolian", Name: "Aeolian (Natural Minor)", Family: FamilyScale, Intervals: []int{0, 2, 3, 5, 7, 8, 10},
		Description: "Natural minor scale", RelatedArpeggios: []string{"minor-7th", "minor-triad"}},
	{ID: "locrian", Name: "Locrian", Family: FamilyScale, Intervals: []int{0, 1, 3, 5, 6, 8, 10},
		Description: "Diminished scale", RelatedArpeggios: []string{"minor-7th-flat-5"}},
	{ID: "major-pentatonic", Name: "Major Pentatonic", Family: FamilyScale, Intervals: []int{0, 2, 4, 7, 9},
		Description: "Major scale without 4th and 7th", RelatedArpeggios: []string{"major-triad"}},
	{ID: "minor-pentatonic", Name: "Minor Pentatonic", Family: FamilyScale, Intervals: []int{0, 3, 5, 7, 10},
		Description: "Natural minor without 2nd and ♭6", RelatedArpeggios: []string{"minor-7th", "minor-triad"}},
	{ID: "blues", Name: "Blues", Family: FamilyScale, Intervals: []int{0, 3, 5, 6, 7, 10},
		Description: "Minor pentatonic with added ♭5", RelatedArpeggios: []string{"minor-7th", "dominant-7th"}},
	{ID: "harmonic-minor", Name: "Harmonic Minor", Family: FamilyScale, Intervals: []int{0, 2, 3, 5, 7, 8, 11},
		Description: "Natural minor with raised 7th", RelatedArpeggios: []string{"minor-triad", "diminished-7th"}},
	{ID: "melodic-minor", Name: "Melodic Minor", Family: FamilyScale, Intervals: []int{0, 2, 3, 5, 7, 9, 11},
		Description: "Major scale with ♭3", RelatedArpeggios: []string{"minor-triad"}},
	{ID: "whole-tone", Name: "Whole Tone", Family: FamilyScale, Intervals: []int{0, 2, 4, 6, 8, 10},
		Description: "Six whole steps", RelatedArpeggios: []string{"major-triad"}},
	{ID: "diminished-whole-half", Name: "Diminished (Whole-Half)", Family: FamilyScale, Intervals: []int{0, 2, 3, 5, 6, 8, 9, 11},
		Description: "Alternating whole and half steps", RelatedArpeggios: []string{"diminished-7th"}},

	// Arpeggios
	{ID: "major-7th", Name: "Major 7th", Family: FamilyArpeggio, Intervals: []int{0, 4, 7, 11},
		Description: "Root-3-5-7", RelatedModes: []string{"ionian", "lydian"}},
	{ID: "minor-7th", Name: "Minor 7th", Family: FamilyArpeggio, Intervals: []int{0, 3, 7, 10},
		Description: "Root-♭3-5-♭7", RelatedModes: []string{"dorian", "phrygian", "aeolian"}},
	{ID: "dominant-7th", Name: "Dominant 7th", Family: FamilyArpeggio, Intervals: []int{0, 4, 7, 10},
		Description: "Root-3-5-♭7", RelatedModes: []string{"mixolydian"}},
	{ID: "minor-7th-flat-5", Name: "Minor 7th ♭5", Family: FamilyArpeggio, Intervals: []int{0, 3, 6, 10},
		Description: "Root-♭3-♭5-♭7", RelatedModes: []string{"locrian"}},
	{ID: "diminished-7th", Name: "Diminished 7th", Family: FamilyArpeggio, Intervals: []int{0, 3, 6, 9},
		Description: "Root-♭3-♭5-♭♭7", RelatedModes: []string{"diminished-whole-half"}},
	{ID: "major-triad", Name: "Major Triad", Family: FamilyArpeggio, Intervals: []int{0, 4, 7},
		Description: "Root-3-5", RelatedModes: []string{"ionian", "lydian", "mixolydian"}},
	{ID: "minor-triad", Name: "Minor Triad", Family: FamilyArpeggio, Intervals: []int{0, 3, 7},
		Description: "Root-♭3-5", RelatedModes: []string{"dorian", "phrygian", "aeolian"}},

	// Chords
	{ID: "major", Name: "Major", Family: FamilyChord, Intervals: []int{0, 4, 7},
		Description: "Major third and perfect fifth"},
	{ID: "minor", Name: "Minor", Family: FamilyChord, Intervals: []int{0, 3, 7},
		Description: "Minor third and perfect fifth"},
	{ID: "diminished", Name: "Diminished", Family: FamilyChord, Intervals: []int{0, 3, 6},
		Description: "Minor third and diminished fifth"},
	{ID: "augmented", Name: "Augmented", Family: FamilyChord, Intervals: []int{0, 4, 8},
		Description: "Major third and augmented fifth"},
	{ID: "sus2", Name: "Suspended 2nd", Family: FamilyChord, Intervals: []int{0, 2, 7},
		Description: "Major second replaces the third"},
	{ID: "sus4", Name: "Suspended 4th", Family: FamilyChord, Intervals: []int{0, 5, 7},
		Description: "Perfect fourth replaces the third"},
}

var patternIndex = mustIndexPatterns(patterns)

func mustIndexPatterns(ps []Pattern) map[string]Pattern {
	idx, err := indexPatterns(ps)
	if err != nil {
		panic(err)
	}
	return idx
}

func indexPatterns(ps []Pattern) (map[string]Pattern, error) {
	idx := make(map[string]Pattern, len(ps))
	for _, p := range ps {
		if _, dup := idx[p.ID]; dup {
			return nil, fmt.Errorf("theory: duplicate pattern %q", p.ID)
		}
		if err := validatePattern(p); err != nil {
			return nil, err
		}
		idx[p.ID] = p
	}
	for _, p := range ps {
		for _, ref := range append(append([]string{}, p.RelatedArpeggios...), p.RelatedModes...) {
			if _, ok := idx[ref]; !ok {
				return nil, fmt.Errorf("theory: pattern %q references unknown %q", p.ID, ref)
			}
		}
	}
	return idx, nil
}

func validatePattern(p Pattern) error {
	bounds, ok := sizeBounds[p.Family]
	if !ok {
		return fmt.Errorf("theory: pattern %q has unknown family %q", p.ID, p.Family)
	}
	if n := len(p.Intervals); n < bounds[0] || n > bounds[1] {
		return fmt.Errorf("theory: pattern %q has %d notes, %s allows %d..%d", p.ID, n, p.Family, bounds[0], bounds[1])
	}
	seen := make(map[int]bool, len(p.Intervals))
	for _, iv := range p.Intervals {
		if iv < 0 || iv > 11 {
			return fmt.Errorf("theory: pattern %q interval %d out of range", p.ID, iv)
		}
		if seen[iv] {
			return fmt.Errorf("theory: pattern %q repeats interval %d", p.ID, iv)
		}
		seen[iv] = true
	}
	if !seen[0] {
		return fmt.Errorf("theory: pattern %q does not include the root", p.ID)
	}
	return nil
}

// LookupPattern returns the pattern with the given id.
func LookupPattern(id string) (Pattern, error) {
	p, ok := patternIndex[id]
	if !ok {
		return Pattern{}, fmt.Errorf("%w: %q", ErrUnknownPattern, id)
	}
	return p.clone(), nil
}

// Patterns returns the patterns of one family in catalog order, or every
// pattern when family is empty.
func Patterns(family Family) []Pattern {
	var out []Pattern
	for _, p := range patterns {
		if family == "" || p.Family == family {
			out = append(out, p.clone())
		}
	}
	return out
}

// Interval returns the ascending semitone distance from root to candidate.
func Interval(candidate, root string) (int, error) {
	c, err := IndexOf(candidate)
	if err != nil {
		return 0, err
	}
	r, err := IndexOf(root)
	if err != nil {
		return 0, err
	}
	return int(Mod(int(c) - int(r))), nil
}

// InPattern reports whether candidate belongs to the interval set built on
// root. An empty root means nothing is selected and yields false.
func InPattern(candidate, root string, intervals []int) (bool, error) {
	if root == "" {
		return false, nil
	}
	d, err := Interval(candidate, root)
	if err != nil {
		return false, err
	}
	return containsInterval(intervals, d), nil
}

func containsInterval(intervals []int, d int) bool {
	for _, iv := range intervals {
		if iv == d {
			return true
		}
	}
	return false
}

// DegreeLabel is either a major-scale degree (1..7) or, for tones outside the
// major scale, the pitch name itself.
type DegreeLabel struct {
	Degree int    `json:"degree,omitempty"`
	Pitch  string `json:"pitch"`
}

// IsDegree reports whether the label carries a scale degree.
func (l DegreeLabel) IsDegree() bool {
	return l.Degree > 0
}

func (l DegreeLabel) String() string {
	if l.IsDegree() {
		return strconv.Itoa(l.Degree)
	}
	return l.Pitch
}

// Degree numbers candidate against the major scale of root. Chromatic tones
// and an empty root fall back to the pitch name.
func Degree(candidate, root string) (DegreeLabel, error) {
	if root == "" {
		if _, err := IndexOf(candidate); err != nil {
			return DegreeLabel{}, err
		}
		return DegreeLabel{Pitch: candidate}, nil
	}
	d, err := Interval(candidate, root)
	if err != nil {
		return DegreeLabel{}, err
	}
	i := sort.SearchInts(majorScale, d)
	if i < len(majorScale) && majorScale[i] == d {
		return DegreeLabel{Degree: i + 1, Pitch: candidate}, nil
	}
	return DegreeLabel{Pitch: candidate}, nil
}

// ParseIntervals parses a comma separated list such as "0,4,7".
func ParseIntervals(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("bad interval %q: %w", field, err)
		}
		if n < 0 || n > 11 {
			return nil, fmt.Errorf("interval %d out of range 0..11", n)
		}
		out = append(out, n)
	}
	return out, nil
}
