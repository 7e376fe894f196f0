// Package render draws fretboards as plain text diagrams.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fretnav/api/internal/model"
	"github.com/fretnav/api/internal/theory"
)

const cellWidth = 5

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Width(4).Align(lipgloss.Right).PaddingRight(1)
	cellStyle   = lipgloss.NewStyle().Width(cellWidth).Align(lipgloss.Center)
	rootStyle   = cellStyle.Bold(true)
	mutedStyle  = cellStyle.Faint(true)
	headerStyle = cellStyle.Faint(true)
)

// Title describes what a fretboard shows.
func Title(fb *model.Fretboard) string {
	var b strings.Builder
	b.WriteString(fb.Tuning.Name)
	if fb.Root != "" && fb.Pattern != nil {
		fmt.Fprintf(&b, " | %s %s", fb.Root, fb.Pattern.Name)
	} else if fb.Root != "" {
		fmt.Fprintf(&b, " | root %s", fb.Root)
	}
	return b.String()
}

// Fretboard renders one fretboard, highest string on top. When a pattern is
// selected the root is bracketed and tones outside the pattern are dashed.
func Fretboard(fb *model.Fretboard) string {
	rows := []string{titleStyle.Render(Title(fb)), header(fb.Frets)}
	for _, s := range fb.Strings {
		rows = append(rows, stringRow(fb, s))
	}
	rows = append(rows, markers(fb))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func header(frets int) string {
	cells := []string{labelStyle.Render("")}
	for f := 0; f < frets; f++ {
		cells = append(cells, headerStyle.Render(strconv.Itoa(f)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func stringRow(fb *model.Fretboard, s model.StringRow) string {
	cells := []string{labelStyle.Render(s.Label)}
	for _, c := range s.Cells {
		cells = append(cells, cell(fb, c))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func cell(fb *model.Fretboard, c model.Cell) string {
	switch {
	case c.IsRoot && fb.Pattern != nil:
		return rootStyle.Render("[" + c.Label + "]")
	case fb.Pattern == nil || c.InPattern:
		return cellStyle.Render(c.Label)
	default:
		return mutedStyle.Render("-")
	}
}

func markers(fb *model.Fretboard) string {
	double := make(map[int]bool, len(fb.Markers))
	for _, m := range fb.Markers {
		double[m.Fret] = m.Double
	}
	cells := []string{labelStyle.Render("")}
	for f := 0; f < fb.Frets; f++ {
		mark := ""
		if d, ok := double[f]; ok {
			mark = "*"
			if d {
				mark = "**"
			}
		}
		cells = append(cells, headerStyle.Render(mark))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

// Key renders a circle-of-fifths summary card for one key.
func Key(d *model.KeyDetail) string {
	lines := []string{
		titleStyle.Render(d.Tonic + " major"),
		"Key signature: " + d.Signature.Description,
		"Relative minor: " + d.RelativeMinor,
		"Scale: " + strings.Join(d.Scale[:], " "),
		fmt.Sprintf("Primary: I %s  IV %s  V %s", d.PrimaryTriads.I, d.PrimaryTriads.IV, d.PrimaryTriads.V),
		fmt.Sprintf("Derived: ii %s  iii %s  vi %s  vii %s", d.DerivedTriads.II, d.DerivedTriads.III, d.DerivedTriads.VI, d.DerivedTriads.VII),
		fmt.Sprintf("Neighbors: %s <- %s -> %s", d.Neighbors.Subdominant, d.Tonic, d.Neighbors.Dominant),
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Circle renders the twelve keys in fifths order with their relative minors.
func Circle(keys []theory.Key) string {
	major := []string{labelStyle.Render("maj")}
	minor := []string{labelStyle.Render("min")}
	for _, k := range keys {
		major = append(major, cellStyle.Render(k.Tonic))
		minor = append(minor, cellStyle.Render(k.RelativeMinor))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, major...),
		lipgloss.JoinHorizontal(lipgloss.Top, minor...),
	)
}
