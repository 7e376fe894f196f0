package theory

import (
	"errors"
	"reflect"
	"testing"
)

func TestInPattern(t *testing.T) {
	triad := []int{0, 4, 7}
	tests := []struct {
		note, root string
		want       bool
	}{
		{"E", "C", true},
		{"G", "C", true},
		{"C", "C", true},
		{"F", "C", false},
		{"Eb", "C", false},
		{"C#", "A", true},
		{"Db", "A", true},
		{"E", "A", true},
	}
	for _, tt := range tests {
		got, err := InPattern(tt.note, tt.root, triad)
		if err != nil {
			t.Fatalf("InPattern(%q, %q) error: %v", tt.note, tt.root, err)
		}
		if got != tt.want {
			t.Errorf("InPattern(%q, %q, %v) = %v, want %v", tt.note, tt.root, triad, got, tt.want)
		}
	}
}

func TestInPattern_NoRoot(t *testing.T) {
	got, err := InPattern("E", "", []int{0, 4, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("expected false without a root")
	}
}

func TestInPattern_UnknownPitch(t *testing.T) {
	if _, err := InPattern("H", "C", []int{0}); !errors.Is(err, ErrUnknownPitch) {
		t.Errorf("expected ErrUnknownPitch, got %v", err)
	}
	if _, err := InPattern("C", "H", []int{0}); !errors.Is(err, ErrUnknownPitch) {
		t.Errorf("expected ErrUnknownPitch, got %v", err)
	}
}

func TestDegree(t *testing.T) {
	tests := []struct {
		note, root string
		want       string
	}{
		{"G", "C", "5"},
		{"C", "C", "1"},
		{"B", "C", "7"},
		{"C#", "C", "C#"},
		{"Bb", "C", "Bb"},
		{"F#", "D", "3"},
		{"E", "", "E"},
	}
	for _, tt := range tests {
		got, err := Degree(tt.note, tt.root)
		if err != nil {
			t.Fatalf("Degree(%q, %q) error: %v", tt.note, tt.root, err)
		}
		if got.String() != tt.want {
			t.Errorf("Degree(%q, %q) = %q, want %q", tt.note, tt.root, got, tt.want)
		}
	}

	got, _ := Degree("G", "C")
	if got.Degree != 5 || !got.IsDegree() {
		t.Errorf("Degree(G, C) = %+v, want degree 5", got)
	}
}

func TestPatternCatalog(t *testing.T) {
	for _, p := range Patterns("") {
		if err := validatePattern(p); err != nil {
			t.Errorf("pattern %q: %v", p.ID, err)
		}
		got, err := LookupPattern(p.ID)
		if err != nil {
			t.Errorf("LookupPattern(%q) error: %v", p.ID, err)
			continue
		}
		if !reflect.DeepEqual(got, p) {
			t.Errorf("LookupPattern(%q) returned a different entry", p.ID)
		}
	}

	for _, f := range Families {
		if len(Patterns(f)) == 0 {
			t.Errorf("family %q has no patterns", f)
		}
	}
}

func TestIndexPatterns_Rejects(t *testing.T) {
	bad := []Pattern{
		{ID: "no-root", Family: FamilyChord, Intervals: []int{3, 4, 7}},
		{ID: "dup", Family: FamilyChord, Intervals: []int{0, 4, 4}},
		{ID: "range", Family: FamilyChord, Intervals: []int{0, 4, 12}},
		{ID: "size", Family: FamilyArpeggio, Intervals: []int{0, 4, 7, 10, 11}},
		{ID: "family", Family: "riff", Intervals: []int{0, 4, 7}},
		{ID: "ref", Family: FamilyChord, Intervals: []int{0, 4, 7}, RelatedModes: []string{"missing"}},
	}
	for _, p := range bad {
		if _, err := indexPatterns([]Pattern{p}); err == nil {
			t.Errorf("indexPatterns accepted %q", p.ID)
		}
	}
}

func TestLookupPattern_Unknown(t *testing.T) {
	if _, err := LookupPattern("bebop"); !errors.Is(err, ErrUnknownPattern) {
		t.Errorf("expected ErrUnknownPattern, got %v", err)
	}
}

func TestParseIntervals(t *testing.T) {
	got, err := ParseIntervals("0, 4,7")
	if err != nil {
		t.Fatalf("ParseIntervals error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{0, 4, 7}) {
		t.Errorf("ParseIntervals = %v", got)
	}
	for _, s := range []string{"0,x", "0,12", "-1"} {
		if _, err := ParseIntervals(s); err == nil {
			t.Errorf("ParseIntervals(%q) accepted", s)
		}
	}
}

func TestPatternsAreImmutable(t *testing.T) {
	p, _ := LookupPattern("major")
	p.Intervals[1] = 5
	Patterns(FamilyScale)[0].Intervals[0] = 9

	major, _ := LookupPattern("major")
	if !reflect.DeepEqual(major.Intervals, []int{0, 4, 7}) {
		t.Errorf("major intervals = %v after caller mutation", major.Intervals)
	}
	if in, _ := InPattern("F", "C", major.Intervals); in {
		t.Error("F reported in C major triad")
	}
	if ionian, _ := LookupPattern("ionian"); ionian.Intervals[0] != 0 {
		t.Error("mutating Patterns() changed the catalog")
	}
}
