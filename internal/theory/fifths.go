package theory

import (
	"fmt"
	"strings"
)

// Key is one major key on the circle of fifths.
type Key struct {
	Tonic string `json:"tonic"`
	// Position counts clockwise steps from C.
	Position int `json:"position"`
	// Accidentals is the tabulated number of sharps or flats.
	Accidentals   int       `json:"accidentals"`
	Kind          SignKind  `json:"kind"`
	Scale         [7]string `json:"scale"`
	RelativeMinor string    `json:"relativeMinor"`
}

// SignKind tells which accidental a key signature uses.
type SignKind string

const (
	SignNone   SignKind = "none"
	SignSharps SignKind = "sharps"
	SignFlats  SignKind = "flats"
)

var (
	sharpsOrder = []string{"F#", "C#", "G#", "D#", "A#", "E#", "B#"}
	flatsOrder  = []string{"Bb", "Eb", "Ab", "Db", "Gb", "Cb", "Fb"}
)

var circle = []Key{
	{Tonic: "C", Accidentals: 0, Kind: SignNone, Scale: [7]string{"C", "D", "E", "F", "G", "A", "B"}, RelativeMinor: "Am"},
	{Tonic: "G", Accidentals: 1, Kind: SignSharps, Scale: [7]string{"G", "A", "B", "C", "D", "E", "F#"}, RelativeMinor: "Em"},
	{Tonic: "D", Accidentals: 2, Kind: SignSharps, Scale: [7]string{"D", "E", "F#", "G", "A", "B", "C#"}, RelativeMinor: "Bm"},
	{Tonic: "A", Accidentals: 3, Kind: SignSharps, Scale: [7]string{"A", "B", "C#", "D", "E", "F#", "G#"}, RelativeMinor: "F#m"},
	{Tonic: "E", Accidentals: 4, Kind: SignSharps, Scale: [7]string{"E", "F#", "G#", "A", "B", "C#", "D#"}, RelativeMinor: "C#m"},
	{Tonic: "B", Accidentals: 5, Kind: SignSharps, Scale: [7]string{"B", "C#", "D#", "E", "F#", "G#", "A#"}, RelativeMinor: "G#m"},
	{Tonic: "F#", Accidentals: 6, Kind: SignSharps, Scale: [7]string{"F#", "G#", "A#", "B", "C#", "D#", "E#"}, RelativeMinor: "D#m"},
	{Tonic: "Db", Accidentals: 5, Kind: SignFlats, Scale: [7]string{"Db", "Eb", "F", "Gb", "Ab", "Bb", "C"}, RelativeMinor: "Bbm"},
	{Tonic: "Ab", Accidentals: 4, Kind: SignFlats, Scale: [7]string{"Ab", "Bb", "C", "Db", "Eb", "F", "G"}, RelativeMinor: "Fm"},
	{Tonic: "Eb", Accidentals: 3, Kind: SignFlats, Scale: [7]string{"Eb", "F", "G", "Ab", "Bb", "C", "D"}, RelativeMinor: "Cm"},
	{Tonic: "Bb", Accidentals: 2, Kind: SignFlats, Scale: [7]string{"Bb", "C", "D", "Eb", "F", "G", "A"}, RelativeMinor: "Gm"},
	{Tonic: "F", Accidentals: 1, Kind: SignFlats, Scale: [7]string{"F", "G", "A", "Bb", "C", "D", "E"}, RelativeMinor: "Dm"},
}

var keyIndex = mustIndexKeys(circle)

func mustIndexKeys(keys []Key) map[string]int {
	idx, err := indexKeys(keys)
	if err != nil {
		panic(err)
	}
	return idx
}

func indexKeys(keys []Key) (map[string]int, error) {
	if len(keys) != 12 {
		return nil, fmt.Errorf("theory: circle has %d keys, want 12", len(keys))
	}
	idx := make(map[string]int, len(keys))
	for i := range keys {
		k := &keys[i]
		k.Position = i
		if _, dup := idx[k.Tonic]; dup {
			return nil, fmt.Errorf("theory: duplicate key %q", k.Tonic)
		}
		if k.Scale[0] != k.Tonic {
			return nil, fmt.Errorf("theory: key %q scale starts on %q", k.Tonic, k.Scale[0])
		}
		if k.RelativeMinor != k.Scale[5]+"m" {
			return nil, fmt.Errorf("theory: key %q relative minor %q is not its 6th degree", k.Tonic, k.RelativeMinor)
		}
		if k.Accidentals < 0 || k.Accidentals > 6 || (k.Accidentals == 0) != (k.Kind == SignNone) {
			return nil, fmt.Errorf("theory: key %q has %d %s", k.Tonic, k.Accidentals, k.Kind)
		}
		idx[k.Tonic] = i
	}
	return idx, nil
}

var glyphs = strings.NewReplacer("♯", "#", "♭", "b")

// LookupKey returns the circle entry for a major tonic. Unicode accidentals
// are accepted; enharmonic aliases are not.
func LookupKey(tonic string) (Key, error) {
	i, ok := keyIndex[glyphs.Replace(tonic)]
	if !ok {
		return Key{}, fmt.Errorf("%w: %q", ErrUnknownKey, tonic)
	}
	return circle[i], nil
}

// Keys returns the circle in clockwise order starting at C.
func Keys() []Key {
	out := make([]Key, len(circle))
	copy(out, circle)
	return out
}

// Signature describes a key signature.
type Signature struct {
	Count       int      `json:"count"`
	Kind        SignKind `json:"kind"`
	Accidentals []string `json:"accidentals"`
	Description string   `json:"description"`
}

// KeySignature returns the key signature of a major key.
func KeySignature(tonic string) (Signature, error) {
	k, err := LookupKey(tonic)
	if err != nil {
		return Signature{}, err
	}
	sig := Signature{Count: k.Accidentals, Kind: k.Kind, Accidentals: []string{}}
	switch k.Kind {
	case SignNone:
		sig.Description = "No sharps or flats"
	case SignSharps:
		sig.Accidentals = append(sig.Accidentals, sharpsOrder[:k.Accidentals]...)
		sig.Description = describe(k.Accidentals, "sharp", sig.Accidentals)
	case SignFlats:
		sig.Accidentals = append(sig.Accidentals, flatsOrder[:k.Accidentals]...)
		sig.Description = describe(k.Accidentals, "flat", sig.Accidentals)
	}
	return sig, nil
}

func describe(n int, word string, accidentals []string) string {
	if n > 1 {
		word += "s"
	}
	return fmt.Sprintf("%d %s: %s", n, word, strings.Join(accidentals, ", "))
}

// RelativeMinor returns the relative minor of a major key, e.g. "F#m" for A.
func RelativeMinor(tonic string) (string, error) {
	k, err := LookupKey(tonic)
	if err != nil {
		return "", err
	}
	return k.RelativeMinor, nil
}

// Primary holds the roots of the I, IV and V chords.
type Primary struct {
	I  string `json:"I"`
	IV string `json:"IV"`
	V  string `json:"V"`
}

// PrimaryTriads reads the I, IV and V roots from the key's scale.
func PrimaryTriads(tonic string) (Primary, error) {
	k, err := LookupKey(tonic)
	if err != nil {
		return Primary{}, err
	}
	return Primary{I: k.Scale[0], IV: k.Scale[3], V: k.Scale[4]}, nil
}

// Derived holds the ii, iii, vi and vii° chord labels.
type Derived struct {
	II  string `json:"ii"`
	III string `json:"iii"`
	VI  string `json:"vi"`
	VII string `json:"vii"`
}

// DerivedTriads labels the secondary triads assuming a natural major parent
// scale. Chord qualities are fixed per degree.
func DerivedTriads(tonic string) (Derived, error) {
	k, err := LookupKey(tonic)
	if err != nil {
		return Derived{}, err
	}
	return Derived{
		II:  k.Scale[1] + "m",
		III: k.Scale[2] + "m",
		VI:  k.Scale[5] + "m",
		VII: k.Scale[6] + "dim",
	}, nil
}

// Neighbors holds the keys adjacent to a tonic on the circle.
type Neighbors struct {
	Subdominant string `json:"subdominant"`
	Dominant    string `json:"dominant"`
}

// KeyNeighbors returns the counter-clockwise and clockwise neighbors.
func KeyNeighbors(tonic string) (Neighbors, error) {
	k, err := LookupKey(tonic)
	if err != nil {
		return Neighbors{}, err
	}
	return Neighbors{
		Subdominant: circle[(k.Position+11)%12].Tonic,
		Dominant:    circle[(k.Position+1)%12].Tonic,
	}, nil
}
