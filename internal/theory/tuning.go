package theory

import (
	"fmt"
	"sort"
	"strings"
)

// Instrument is a fretted instrument family.
type Instrument string

const (
	Guitar Instrument = "guitar"
	Bass   Instrument = "bass"
)

// DefaultTuningID names the tuning every instrument/string-count pair starts on.
const DefaultTuningID = "standard"

// Tuning is an ordered set of open-string notes, lowest string first.
type Tuning struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Instrument Instrument `json:"instrument"`
	Notes      []Note     `json:"notes"`
}

// Strings returns the string count.
func (t Tuning) Strings() int {
	return len(t.Notes)
}

// Names returns the octave-less open-string spellings, lowest first.
func (t Tuning) Names() []string {
	out := make([]string, len(t.Notes))
	for i, n := range t.Notes {
		out[i] = n.Name()
	}
	return out
}

func (t Tuning) clone() Tuning {
	t.Notes = append([]Note(nil), t.Notes...)
	return t
}

type tuningKey struct {
	instrument Instrument
	strings    int
}

func tuning(id, name string, instrument Instrument, notes string) Tuning {
	fields := strings.Fields(notes)
	t := Tuning{ID: id, Name: name, Instrument: instrument, Notes: make([]Note, len(fields))}
	for i, f := range fields {
		t.Notes[i] = MustNote(f)
	}
	return t
}

var tunings = map[tuningKey][]Tuning{
	{Guitar, 6}: {
		tuning("standard", "Standard (E A D G B E)", Guitar, "E2 A2 D3 G3 B3 E4"),
		tuning("drop-d", "Drop D (D A D G B E)", Guitar, "D2 A2 D3 G3 B3 E4"),
		tuning("double-drop-d", "Double Drop D (D A D G B D)", Guitar, "D2 A2 D3 G3 B3 D4"),
		tuning("open-g", "Open G (D G D G B D)", Guitar, "D2 G2 D3 G3 B3 D4"),
		tuning("open-d", "Open D (D A D F# A D)", Guitar, "D2 A2 D3 F#3 A3 D4"),
		tuning("open-e", "Open E (E B E G# B E)", Guitar, "E2 B2 E3 G#3 B3 E4"),
		tuning("open-a", "Open A (E A E A C# E)", Guitar, "E2 A2 E3 A3 C#4 E4"),
		tuning("open-c", "Open C (C G C G C E)", Guitar, "C2 G2 C3 G3 C4 E4"),
		tuning("dadgad", "DADGAD (D A D G A D)", Guitar, "D2 A2 D3 G3 A3 D4"),
	},
	{Guitar, 7}: {
		tuning("standard", "Standard (B E A D G B E)", Guitar, "B1 E2 A2 D3 G3 B3 E4"),
		tuning("drop-a", "Drop A (A E A D G B E)", Guitar, "A1 E2 A2 D3 G3 B3 E4"),
	},
	{Bass, 4}: {
		tuning("standard", "Standard (E A D G)", Bass, "E1 A1 D2 G2"),
		tuning("drop-d", "Drop D (D A D G)", Bass, "D1 A1 D2 G2"),
		tuning("d-standard", "D Standard (D G C F)", Bass, "D1 G1 C2 F2"),
		tuning("c-standard", "C Standard (C F A# D#)", Bass, "C1 F1 A#1 D#2"),
	},
	{Bass, 5}: {
		tuning("standard", "Standard Low B (B E A D G)", Bass, "B0 E1 A1 D2 G2"),
		tuning("high-c", "Standard High C (E A D G C)", Bass, "E1 A1 D2 G2 C3"),
	},
	{Bass, 6}: {
		tuning("standard", "Standard (B E A D G C)", Bass, "B0 E1 A1 D2 G2 C3"),
	},
}

func init() {
	if err := validateTunings(tunings); err != nil {
		panic(err)
	}
}

func validateTunings(table map[tuningKey][]Tuning) error {
	for key, list := range table {
		seen := make(map[string]bool, len(list))
		hasDefault := false
		for _, t := range list {
			if t.Strings() == 0 {
				return fmt.Errorf("theory: tuning %s/%q has no strings", key.instrument, t.ID)
			}
			if t.Strings() != key.strings || t.Instrument != key.instrument {
				return fmt.Errorf("theory: tuning %q filed under %s/%d", t.ID, key.instrument, key.strings)
			}
			if seen[t.ID] {
				return fmt.Errorf("theory: duplicate tuning %s/%d/%q", key.instrument, key.strings, t.ID)
			}
			seen[t.ID] = true
			hasDefault = hasDefault || t.ID == DefaultTuningID
			for _, n := range t.Notes {
				if _, err := n.Class(); err != nil {
					return fmt.Errorf("theory: tuning %q: %w", t.ID, err)
				}
			}
		}
		if !hasDefault {
			return fmt.Errorf("theory: %s/%d has no %q tuning", key.instrument, key.strings, DefaultTuningID)
		}
	}
	return nil
}

// TuningsFor returns the named tunings for an instrument and string count.
func TuningsFor(instrument Instrument, count int) (map[string]Tuning, error) {
	list, ok := tunings[tuningKey{instrument, count}]
	if !ok {
		return nil, fmt.Errorf("%w: no %d-string %s tunings", ErrUnknownTuning, count, instrument)
	}
	out := make(map[string]Tuning, len(list))
	for _, t := range list {
		out[t.ID] = t.clone()
	}
	return out, nil
}

// TuningList is TuningsFor in catalog order.
func TuningList(instrument Instrument, count int) ([]Tuning, error) {
	list, ok := tunings[tuningKey{instrument, count}]
	if !ok {
		return nil, fmt.Errorf("%w: no %d-string %s tunings", ErrUnknownTuning, count, instrument)
	}
	out := make([]Tuning, len(list))
	for i, t := range list {
		out[i] = t.clone()
	}
	return out, nil
}

// LookupTuning returns one tuning. An empty id selects the default.
func LookupTuning(instrument Instrument, count int, id string) (Tuning, error) {
	if id == "" {
		id = DefaultTuningID
	}
	list, err := TuningList(instrument, count)
	if err != nil {
		return Tuning{}, err
	}
	for _, t := range list {
		if t.ID == id {
			return t, nil
		}
	}
	return Tuning{}, fmt.Errorf("%w: %q for %d-string %s", ErrUnknownTuning, id, count, instrument)
}

// StringCounts returns the supported string counts for an instrument.
func StringCounts(instrument Instrument) []int {
	var out []int
	for key := range tunings {
		if key.instrument == instrument {
			out = append(out, key.strings)
		}
	}
	sort.Ints(out)
	return out
}
