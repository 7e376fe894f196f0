package theory

import (
	"fmt"
	"strconv"
	"strings"
)

// PitchClass is an index into the 12-tone chromatic cycle, C = 0.
type PitchClass int

// Spelling selects how a pitch class with an accidental is written.
type Spelling string

const (
	SpellSharp Spelling = "sharp"
	SpellFlat  Spelling = "flat"
)

// chromatic lists every accepted spelling per pitch class. The first entry is
// canonical; for the five accidentals the second entry is the flat spelling.
var chromatic = [12][]string{
	{"C", "B#", "B♯"},
	{"C#", "Db", "C♯", "D♭"},
	{"D"},
	{"D#", "Eb", "D♯", "E♭"},
	{"E", "Fb", "F♭"},
	{"F", "E#", "E♯"},
	{"F#", "Gb", "F♯", "G♭"},
	{"G"},
	{"G#", "Ab", "G♯", "A♭"},
	{"A"},
	{"A#", "Bb", "A♯", "B♭"},
	{"B", "Cb", "C♭"},
}

var pitchIndex = buildPitchIndex()

func buildPitchIndex() map[string]PitchClass {
	idx := make(map[string]PitchClass)
	for pc, names := range chromatic {
		for _, n := range names {
			if prev, dup := idx[n]; dup {
				panic(fmt.Sprintf("theory: spelling %q listed at %d and %d", n, prev, pc))
			}
			idx[n] = PitchClass(pc)
		}
	}
	return idx
}

// Mod normalizes any integer into the 0..11 range.
func Mod(n int) PitchClass {
	return PitchClass(((n % 12) + 12) % 12)
}

// Add transposes the pitch class by n semitones.
func (pc PitchClass) Add(n int) PitchClass {
	return Mod(int(pc) + n)
}

// Name returns the canonical spelling.
func (pc PitchClass) Name() string {
	return chromatic[Mod(int(pc))][0]
}

// Spell returns the spelling of pc under the given convention. Naturals are
// the same under both.
func (pc PitchClass) Spell(s Spelling) string {
	names := chromatic[Mod(int(pc))]
	if s == SpellFlat && strings.ContainsAny(names[0], "#") {
		return names[1]
	}
	return names[0]
}

// Spellings returns every accepted spelling of pc, canonical first.
func (pc PitchClass) Spellings() []string {
	names := chromatic[Mod(int(pc))]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// IndexOf resolves a pitch spelling to its pitch class. Lookup is exact.
func IndexOf(name string) (PitchClass, error) {
	pc, ok := pitchIndex[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPitch, name)
	}
	return pc, nil
}

// ClassAtFret returns the pitch class sounding at fret on a string whose open
// pitch is open.
func ClassAtFret(open string, fret int) (PitchClass, error) {
	pc, err := IndexOf(open)
	if err != nil {
		return 0, err
	}
	return pc.Add(fret), nil
}

// PitchAtFret returns the canonical name of the pitch sounding at fret on a
// string whose open pitch is open. The spelling of open is not carried over.
func PitchAtFret(open string, fret int) (string, error) {
	pc, err := ClassAtFret(open, fret)
	if err != nil {
		return "", err
	}
	return pc.Name(), nil
}

// Note is a spelled pitch with an octave, e.g. F#2.
type Note struct {
	Letter     string `json:"letter"`
	Accidental string `json:"accidental,omitempty"`
	Octave     int    `json:"octave"`
}

// Name is the octave-less spelling.
func (n Note) Name() string {
	return n.Letter + n.Accidental
}

func (n Note) String() string {
	return n.Name() + strconv.Itoa(n.Octave)
}

// Class returns the pitch class of n.
func (n Note) Class() (PitchClass, error) {
	return IndexOf(n.Name())
}

// MIDI returns the MIDI key number, C4 = 60.
func (n Note) MIDI() (int, error) {
	pc, err := n.Class()
	if err != nil {
		return 0, err
	}
	// Spellings that cross the octave boundary keep their written octave:
	// B#3 sounds as C4 and Cb4 as B3.
	shift := 0
	switch n.Name() {
	case "B#", "B♯":
		shift = 12
	case "Cb", "C♭":
		shift = -12
	}
	return (n.Octave+1)*12 + int(pc) + shift, nil
}

// Transpose returns the canonically spelled note sounding frets semitones
// above n.
func (n Note) Transpose(frets int) (Note, error) {
	m, err := n.MIDI()
	if err != nil {
		return Note{}, err
	}
	return noteFromMIDI(m+frets, SpellSharp), nil
}

func noteFromMIDI(m int, s Spelling) Note {
	octave := m/12 - 1
	if m < 0 {
		octave = (m-11)/12 - 1
	}
	return splitName(Mod(m).Spell(s), octave)
}

func splitName(name string, octave int) Note {
	return Note{Letter: name[:1], Accidental: name[1:], Octave: octave}
}

// ParseNote parses a pitch token of the form letter, optional accidental,
// optional octave ("E", "F#2", "B♭1"). A missing octave yields octave 0.
func ParseNote(token string) (Note, error) {
	if token == "" {
		return Note{}, fmt.Errorf("%w: empty", ErrUnknownPitch)
	}
	cut := len(token)
	for cut > 0 && (token[cut-1] >= '0' && token[cut-1] <= '9' || token[cut-1] == '-') {
		cut--
	}
	name, digits := token[:cut], token[cut:]
	if _, err := IndexOf(name); err != nil {
		return Note{}, err
	}
	octave := 0
	if digits != "" {
		o, err := strconv.Atoi(digits)
		if err != nil {
			return Note{}, fmt.Errorf("%w: bad octave in %q", ErrUnknownPitch, token)
		}
		octave = o
	}
	return splitName(name, octave), nil
}

// MustNote is ParseNote for compiled-in tables.
func MustNote(token string) Note {
	n, err := ParseNote(token)
	if err != nil {
		panic(err)
	}
	return n
}

// Chromatic returns the 12 pitch classes in order from C.
func Chromatic() []PitchClass {
	out := make([]PitchClass, 12)
	for i := range out {
		out[i] = PitchClass(i)
	}
	return out
}
