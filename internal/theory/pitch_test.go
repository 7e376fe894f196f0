package theory

import (
	"errors"
	"testing"
)

func TestIndexOf(t *testing.T) {
	tests := []struct {
		name string
		want PitchClass
	}{
		{"C", 0},
		{"C#", 1},
		{"Db", 1},
		{"D♭", 1},
		{"E", 4},
		{"Fb", 4},
		{"E#", 5},
		{"Bb", 10},
		{"B", 11},
		{"Cb", 11},
		{"B#", 0},
	}
	for _, tt := range tests {
		got, err := IndexOf(tt.name)
		if err != nil {
			t.Errorf("IndexOf(%q) error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("IndexOf(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestIndexOf_Unknown(t *testing.T) {
	for _, name := range []string{"", "H", "c", " C", "C##", "E2"} {
		if _, err := IndexOf(name); !errors.Is(err, ErrUnknownPitch) {
			t.Errorf("IndexOf(%q) error = %v, want ErrUnknownPitch", name, err)
		}
	}
}

func TestPitchAtFret(t *testing.T) {
	tests := []struct {
		open string
		fret int
		want string
	}{
		{"E", 0, "E"},
		{"E", 1, "F"},
		{"E", 12, "E"},
		{"E", 5, "A"},
		{"A", 3, "C"},
		{"Db", 0, "C#"},
		{"Bb", 2, "C"},
		{"B", 1, "C"},
		{"G", 15, "A#"},
	}
	for _, tt := range tests {
		got, err := PitchAtFret(tt.open, tt.fret)
		if err != nil {
			t.Fatalf("PitchAtFret(%q, %d) error: %v", tt.open, tt.fret, err)
		}
		if got != tt.want {
			t.Errorf("PitchAtFret(%q, %d) = %q, want %q", tt.open, tt.fret, got, tt.want)
		}
	}
}

func TestPitchAtFret_OctavePeriodic(t *testing.T) {
	for _, pc := range Chromatic() {
		for _, open := range pc.Spellings() {
			for fret := 0; fret <= 15; fret++ {
				a, err := PitchAtFret(open, fret)
				if err != nil {
					t.Fatalf("PitchAtFret(%q, %d) error: %v", open, fret, err)
				}
				b, _ := PitchAtFret(open, fret+12)
				if a != b {
					t.Errorf("PitchAtFret(%q, %d) = %q but fret %d gives %q", open, fret, a, fret+12, b)
				}
				if again, _ := PitchAtFret(open, fret); again != a {
					t.Errorf("PitchAtFret(%q, %d) not deterministic", open, fret)
				}
			}
		}
	}
}

func TestPitchAtFret_UnknownOpen(t *testing.T) {
	if _, err := PitchAtFret("X", 3); !errors.Is(err, ErrUnknownPitch) {
		t.Errorf("expected ErrUnknownPitch, got %v", err)
	}
}

func TestClassAtFret(t *testing.T) {
	tests := []struct {
		open string
		fret int
		want PitchClass
		flat string
	}{
		{"E", 1, 5, "F"},
		{"A", 1, 10, "Bb"},
		{"Bb", 0, 10, "Bb"},
		{"B", 13, 0, "C"},
		{"G♭", 2, 8, "Ab"},
	}
	for _, tt := range tests {
		pc, err := ClassAtFret(tt.open, tt.fret)
		if err != nil {
			t.Fatalf("ClassAtFret(%q, %d) error: %v", tt.open, tt.fret, err)
		}
		if pc != tt.want || pc.Spell(SpellFlat) != tt.flat {
			t.Errorf("ClassAtFret(%q, %d) = %d (%s), want %d (%s)", tt.open, tt.fret, pc, pc.Spell(SpellFlat), tt.want, tt.flat)
		}
	}
	if _, err := ClassAtFret("X", 3); !errors.Is(err, ErrUnknownPitch) {
		t.Errorf("expected ErrUnknownPitch, got %v", err)
	}
}

func TestSpell(t *testing.T) {
	if got := PitchClass(1).Spell(SpellFlat); got != "Db" {
		t.Errorf("Spell(1, flat) = %q, want Db", got)
	}
	if got := PitchClass(1).Spell(SpellSharp); got != "C#" {
		t.Errorf("Spell(1, sharp) = %q, want C#", got)
	}
	if got := PitchClass(4).Spell(SpellFlat); got != "E" {
		t.Errorf("Spell(4, flat) = %q, want E", got)
	}
	if got := Mod(-1).Name(); got != "B" {
		t.Errorf("Mod(-1).Name() = %q, want B", got)
	}
}

func TestParseNote(t *testing.T) {
	tests := []struct {
		token string
		want  Note
		midi  int
	}{
		{"E2", Note{Letter: "E", Octave: 2}, 40},
		{"A#1", Note{Letter: "A", Accidental: "#", Octave: 1}, 34},
		{"C4", Note{Letter: "C", Octave: 4}, 60},
		{"B0", Note{Letter: "B", Octave: 0}, 23},
		{"Cb4", Note{Letter: "C", Accidental: "b", Octave: 4}, 59},
		{"B#3", Note{Letter: "B", Accidental: "#", Octave: 3}, 60},
	}
	for _, tt := range tests {
		got, err := ParseNote(tt.token)
		if err != nil {
			t.Fatalf("ParseNote(%q) error: %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("ParseNote(%q) = %+v, want %+v", tt.token, got, tt.want)
		}
		m, err := got.MIDI()
		if err != nil {
			t.Fatalf("MIDI(%q) error: %v", tt.token, err)
		}
		if m != tt.midi {
			t.Errorf("MIDI(%q) = %d, want %d", tt.token, m, tt.midi)
		}
	}

	if _, err := ParseNote("Q3"); !errors.Is(err, ErrUnknownPitch) {
		t.Errorf("ParseNote(Q3) error = %v, want ErrUnknownPitch", err)
	}
}

func TestNoteTranspose(t *testing.T) {
	n := MustNote("E2")
	up, err := n.Transpose(12)
	if err != nil {
		t.Fatalf("Transpose error: %v", err)
	}
	if up.String() != "E3" {
		t.Errorf("E2 + 12 = %s, want E3", up)
	}
	up, _ = n.Transpose(8)
	if up.String() != "C3" {
		t.Errorf("E2 + 8 = %s, want C3", up)
	}
	up, _ = MustNote("B1").Transpose(1)
	if up.String() != "C2" {
		t.Errorf("B1 + 1 = %s, want C2", up)
	}
}
